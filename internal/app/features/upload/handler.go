// internal/app/features/upload/handler.go
package upload

import (
	"bufio"
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/orgsync/internal/app/features/errors"
	"github.com/dalemusser/orgsync/internal/app/system/csvutil"
	"github.com/dalemusser/orgsync/internal/app/system/ingest"
	"github.com/dalemusser/orgsync/internal/app/system/ratelimit"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

// Batcher runs one roster batch.
type Batcher interface {
	Run(ctx context.Context, r io.Reader, source string) (ingest.Result, error)
	RunXLSX(ctx context.Context, r io.Reader, source string) (ingest.Result, error)
}

// Handler accepts roster uploads.
type Handler struct {
	Batch     Batcher
	MaxUpload int64
	Limiter   *ratelimit.Limiter // nil disables per-client throttling
	Log       *zap.Logger
}

// NewHandler constructs an upload Handler. maxUpload <= 0 uses
// csvutil.MaxUploadSize.
func NewHandler(batch Batcher, maxUpload int64, logger *zap.Logger) *Handler {
	if maxUpload <= 0 {
		maxUpload = csvutil.MaxUploadSize
	}
	return &Handler{Batch: batch, MaxUpload: maxUpload, Log: logger}
}

// HandleUpload handles POST /upload.
//
// The roster is either the raw request body (text/csv, or an Excel
// workbook sent with its own media type) or the "csv" file field of a
// multipart form, where a .xlsx filename selects the workbook reader.
// On success: 200 and
//
//	{ "numCreated":1, "numUpdated":2, "errors":["line 3: salary: not a whole number: \"abc\""], "runId":"…" }
//
// Per-record problems never change the status. A body that cannot be read
// as a roster at all is a 400 and nothing is written.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if h.Limiter != nil {
		if ip := ratelimit.ClientIP(r); !h.Limiter.Allow(ip) {
			h.Log.Warn("roster upload throttled", zap.String("ip", ip))
			uierrors.RenderTooManyRequests(w, r, h.Limiter.RetryAfter(), "Too many uploads. Please wait before trying again.")
			return
		}
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUpload)

	body, source, isXLSX, closeFn, err := h.rosterBody(r)
	if err != nil {
		h.renderReadError(w, r, err)
		return
	}
	defer closeFn()
	if !isXLSX {
		body, isXLSX = sniffWorkbook(body)
	}

	// A batch runs to completion once the roster is read; a client that
	// hangs up must not leave chains half-cascaded.
	ctx := context.WithoutCancel(r.Context())

	run := h.Batch.Run
	if isXLSX {
		run = h.Batch.RunXLSX
	}
	res, err := run(ctx, body, source)
	if err != nil {
		h.renderReadError(w, r, err)
		return
	}

	uierrors.WriteJSON(w, http.StatusOK, res)
}

// rosterBody picks the roster stream out of the request and reports
// whether it is a workbook.
func (h *Handler) rosterBody(r *http.Request) (io.Reader, string, bool, func(), error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return r.Body, "upload", mediaType == csvutil.XLSXContentType, func() {}, nil
	}

	file, fh, err := r.FormFile("csv")
	if err != nil {
		return nil, "", false, nil, err
	}
	source := "upload"
	isXLSX := false
	if fh != nil {
		if fh.Filename != "" {
			source = "upload:" + fh.Filename
		}
		ct, _, _ := mime.ParseMediaType(fh.Header.Get("Content-Type"))
		isXLSX = ct == csvutil.XLSXContentType ||
			strings.HasSuffix(strings.ToLower(fh.Filename), ".xlsx")
	}
	return file, source, isXLSX, func() { _ = file.Close() }, nil
}

// sniffLen covers the zip local headers mimetype inspects.
const sniffLen = 3072

// sniffWorkbook peeks at the body so a workbook sent as
// application/octet-stream (or mislabelled text/csv) is still read as one.
// The returned reader replays the peeked bytes.
func sniffWorkbook(body io.Reader) (io.Reader, bool) {
	br := bufio.NewReaderSize(body, sniffLen)
	head, _ := br.Peek(sniffLen)
	mt := mimetype.Detect(head)
	return br, mt.Is(csvutil.XLSXContentType) || mt.Is("application/zip")
}

func (h *Handler) renderReadError(w http.ResponseWriter, r *http.Request, err error) {
	var tooBig *http.MaxBytesError
	switch {
	case errors.As(err, &tooBig):
		uierrors.RenderTooLarge(w, r, "CSV file is too large.")
	case errors.Is(err, http.ErrMissingFile):
		uierrors.RenderBadRequest(w, r, "CSV file is required.")
	case errors.Is(err, csvutil.ErrTooManyRows):
		uierrors.RenderBadRequest(w, r, "CSV file has too many rows.")
	default:
		h.Log.Info("roster upload rejected", zap.Error(err))
		uierrors.RenderBadRequest(w, r, "CSV file could not be read: "+err.Error())
	}
}
