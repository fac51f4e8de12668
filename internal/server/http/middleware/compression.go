package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// DecompressRequest unwraps gzip-encoded request bodies so handlers and
// binding always see plain JSON. A body that claims gzip but is not
// readable as such is rejected outright.
func DecompressRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !strings.Contains(c.GetHeader("Content-Encoding"), "gzip") {
			c.Next()
			return
		}

		body := c.Request.Body
		unzipped, err := gzip.NewReader(body)
		if err != nil {
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}
		defer unzipped.Close()
		defer body.Close()

		c.Request.Body = io.NopCloser(unzipped)
		c.Request.Header.Del("Content-Encoding")
		c.Next()
	}
}
