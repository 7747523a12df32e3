// internal/app/system/limits/limits.go
package limits

// Request body size limits. These guard against memory exhaustion from
// oversized JSON payloads; handlers wrap r.Body with http.MaxBytesReader
// before decoding.
const (
	// MaxJSONBodySize bounds ordinary API request bodies (event and
	// staff writes, assignment requests).
	MaxJSONBodySize = 1 << 20 // 1 MB

	// MaxIncidentBodySize bounds incident reports, which carry longer
	// free-text narratives.
	MaxIncidentBodySize = 4 << 20 // 4 MB
)
