package classify

import (
	"fmt"
	"mime"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
)

// DetectMediaType fills in a media type for files whose source declared none.
// The extension wins when it is registered; otherwise the leading bytes are sniffed.
// Parameters such as charset are dropped so the result looks like a declared type.
func DetectMediaType(name string, head []byte) string {
	if byExt := mime.TypeByExtension(filepath.Ext(name)); byExt != "" {
		return normalize(byExt)
	}
	if len(head) == 0 {
		return ""
	}
	return normalize(mimetype.Detect(head).String())
}

// FormatSize renders a byte count the way the document list shows it.
func FormatSize(bytes int64) string {
	switch {
	case bytes < 1024:
		return fmt.Sprintf("%d B", bytes)
	case bytes < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
	}
}
