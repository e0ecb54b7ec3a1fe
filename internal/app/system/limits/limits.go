// internal/app/system/limits/limits.go
package limits

// Request body size limits. These help prevent memory exhaustion from
// oversized requests.
const (
	// MaxJSONBodySize is the maximum size for JSON API request bodies.
	MaxJSONBodySize = 1 << 20 // 1 MB

	// MaxAssetUploadSize is the maximum size for a single asset upload.
	MaxAssetUploadSize = 100 << 20 // 100 MB

	// MaxContractBodySize is the maximum size for an NDA body.
	MaxContractBodySize = 256 << 10 // 256 KB
)
