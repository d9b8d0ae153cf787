// internal/app/system/csvutil/limits.go
package csvutil

// Upload size and row limits for roster uploads. Both are defaults; the
// running values come from max_upload_bytes and max_rows.
const (
	MaxUploadSize = 5 << 20 // 5 MB
	MaxRows       = 20000
)
