package middleware

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// bufferedWriter holds the response body back until the ETag is known.
type bufferedWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bufferedWriter) Write(b []byte) (int, error) {
	return w.body.Write(b)
}

func (w *bufferedWriter) WriteString(s string) (int, error) {
	return w.body.WriteString(s)
}

// ETagCache tags successful GET responses with a SHA-256 ETag of their body and answers
// 304 Not Modified when If-None-Match carries the same tag. Dataset responses change
// only when the underlying CSV does, so clients revalidate cheaply.
// ETagCache 为 GET 响应生成 ETag，若 If-None-Match 匹配则返回 304。
func ETagCache(maxAge time.Duration) gin.HandlerFunc {
	cacheControl := fmt.Sprintf("private, max-age=%d, must-revalidate", int(maxAge.Seconds()))
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		bw := &bufferedWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = bw
		c.Next()
		c.Writer = bw.ResponseWriter

		body := bw.body.Bytes()
		if c.Writer.Status() != http.StatusOK || len(body) == 0 {
			_, _ = bw.ResponseWriter.Write(body)
			return
		}

		etag := fmt.Sprintf(`"%x"`, sha256.Sum256(body))
		c.Header("ETag", etag)
		c.Header("Cache-Control", cacheControl)
		if c.GetHeader("If-None-Match") == etag {
			c.Writer.WriteHeader(http.StatusNotModified)
			c.Writer.WriteHeaderNow()
			return
		}
		_, _ = bw.ResponseWriter.Write(body)
	}
}
