package restapi

import (
	"net/http"

	"github.com/klauspost/compress/gzhttp"
)

// compressionMinSize keeps small JSON envelopes uncompressed.
const compressionMinSize = 1024

var gzipWrapper = newGzipWrapper()

func newGzipWrapper() func(http.Handler) http.HandlerFunc {
	wrapper, err := gzhttp.NewWrapper(gzhttp.MinSize(compressionMinSize))
	if err != nil {
		return gzhttp.GzipHandler
	}
	return wrapper
}

// CompressionMiddleware gzips responses for clients that accept it.
func CompressionMiddleware(next http.Handler) http.Handler {
	return gzipWrapper(next)
}
