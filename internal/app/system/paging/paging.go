// internal/app/system/paging/paging.go
package paging

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Page sizes for listing endpoints.
const (
	DefaultSize = 50
	MaxSize     = 200
)

var (
	ErrBothCursors = errors.New("before and after cannot both be set")
	ErrBadCursor   = errors.New("invalid cursor")
	ErrBadSize     = errors.New("size must be a number between 1 and 200")
)

// Request is one keyset page request, parsed from ?before, ?after and ?size.
type Request struct {
	Size   int
	Before string
	After  string
}

// ParseRequest reads the page parameters. Unknown or malformed cursors are
// rejected rather than silently restarting from the first page.
func ParseRequest(r *http.Request) (Request, error) {
	req := Request{
		Size:   DefaultSize,
		Before: query.Get(r, "before"),
		After:  query.Get(r, "after"),
	}
	if req.Before != "" && req.After != "" {
		return req, ErrBothCursors
	}
	if s := query.Get(r, "size"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > MaxSize {
			return req, ErrBadSize
		}
		req.Size = n
	}
	for _, c := range []string{req.Before, req.After} {
		if c == "" {
			continue
		}
		if _, ok := wafflemongo.DecodeCursor(c); !ok {
			return req, ErrBadCursor
		}
	}
	return req, nil
}

// Keyset is the store-facing form of a Request: a direction, an optional
// cursor and a look-ahead limit of Size+1.
type Keyset struct {
	Backward bool
	Cursor   *wafflemongo.Cursor
	Limit    int
}

// Keyset decodes the request's cursor.
func (req Request) Keyset() Keyset {
	size := req.Size
	if size <= 0 {
		size = DefaultSize
	}
	k := Keyset{Limit: size + 1}
	raw := req.After
	if req.Before != "" {
		k.Backward = true
		raw = req.Before
	}
	if raw != "" {
		if c, ok := wafflemongo.DecodeCursor(raw); ok {
			k.Cursor = &c
		}
	}
	return k
}

// SortOrder is 1 going forward and -1 going backward.
func (k Keyset) SortOrder() int {
	if k.Backward {
		return -1
	}
	return 1
}

// FindOptions sorts by (sortField, _id) in the keyset direction and applies
// the look-ahead limit.
func (k Keyset) FindOptions(sortField string) *options.FindOptions {
	return options.Find().
		SetSort(bson.D{
			{Key: sortField, Value: k.SortOrder()},
			{Key: "_id", Value: k.SortOrder()},
		}).
		SetLimit(int64(k.Limit))
}

// Filter returns the cursor condition, or an empty filter on the first page.
func (k Keyset) Filter(sortField string) bson.M {
	if k.Cursor == nil {
		return bson.M{}
	}
	dir := "gt"
	if k.Backward {
		dir = "lt"
	}
	return wafflemongo.KeysetWindow(sortField, dir, k.Cursor.CI, k.Cursor.ID)
}

// Admits reports whether a row with the given sort key and id lies past the
// cursor, matching Filter. In-memory stores use it in place of a query.
func (k Keyset) Admits(key string, id primitive.ObjectID) bool {
	if k.Cursor == nil {
		return true
	}
	c := compare(key, id, k.Cursor.CI, k.Cursor.ID)
	if k.Backward {
		return c < 0
	}
	return c > 0
}

// Less orders two rows in the keyset direction.
func (k Keyset) Less(aKey string, aID primitive.ObjectID, bKey string, bID primitive.ObjectID) bool {
	c := compare(aKey, aID, bKey, bID)
	if k.Backward {
		return c > 0
	}
	return c < 0
}

func compare(aKey string, aID primitive.ObjectID, bKey string, bID primitive.ObjectID) int {
	switch {
	case aKey < bKey:
		return -1
	case aKey > bKey:
		return 1
	}
	return bytes.Compare(aID[:], bID[:])
}

// Result carries the navigation flags of a trimmed page.
type Result struct {
	HasPrev bool
	HasNext bool
}

// Trim drops the look-ahead row, restores ascending order when paging
// backward, and reports whether neighbouring pages exist.
func Trim[T any](rows []T, req Request) ([]T, Result) {
	size := req.Size
	if size <= 0 {
		size = DefaultSize
	}
	var res Result
	more := len(rows) > size
	if more {
		rows = rows[:size]
	}
	if req.Before != "" {
		reverse(rows)
		res.HasPrev = more
		res.HasNext = true
	} else {
		res.HasNext = more
		res.HasPrev = req.After != ""
	}
	return rows, res
}

func reverse[T any](rows []T) {
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
}

// Cursors builds the before/after cursors for the first and last rows.
func Cursors[T any](rows []T, keyFn func(T) string, idFn func(T) primitive.ObjectID) (prev, next string) {
	if len(rows) == 0 {
		return "", ""
	}
	first, last := rows[0], rows[len(rows)-1]
	return wafflemongo.EncodeCursor(keyFn(first), idFn(first)),
		wafflemongo.EncodeCursor(keyFn(last), idFn(last))
}
