package chi

import (
	"io"
	"net/http"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// csvResponse defers response headers until the first byte of CSV, so errors
// raised before any output can still be reported as JSON.
type csvResponse struct {
	w       http.ResponseWriter
	gzip    bool
	zw      *gzip.Writer
	out     io.Writer
	started bool
}

func newCSVResponse(w http.ResponseWriter, gz bool) *csvResponse {
	return &csvResponse{w: w, gzip: gz}
}

func (c *csvResponse) Write(p []byte) (int, error) {
	if !c.started {
		c.start()
	}
	n, err := c.out.Write(p)
	if err != nil {
		return n, err
	}
	if c.zw != nil {
		err = c.zw.Flush()
	}
	if f, ok := c.w.(http.Flusher); ok {
		f.Flush()
	}
	return n, err
}

func (c *csvResponse) start() {
	c.started = true
	h := c.w.Header()
	h.Set("Content-Type", "text/csv; charset=utf-8")
	h.Set("Content-Disposition", `attachment; filename="facilities.csv"`)
	h.Add("Vary", "Accept-Encoding")
	c.out = c.w
	if c.gzip {
		h.Set("Content-Encoding", "gzip")
		c.zw = gzip.NewWriter(c.w)
		c.out = c.zw
	}
	c.w.WriteHeader(http.StatusOK)
}

// Close finishes the gzip stream if one was started.
func (c *csvResponse) Close() error {
	if c.zw == nil {
		return nil
	}
	return c.zw.Close()
}

func acceptsGzip(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		enc, _, _ := strings.Cut(strings.TrimSpace(part), ";")
		if strings.EqualFold(enc, "gzip") {
			return true
		}
	}
	return false
}
