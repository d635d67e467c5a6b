package mock

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aalvaropc/glimpse/internal/domain"
)

const maxRequestBody = 1 << 20

// Handler serves the table over plain HTTP so a frontend can run against it
// without a backend. Request URLs are rebuilt as absolute URLs before matching.
func (t *Table) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
		if err != nil {
			http.Error(w, "read body: "+err.Error(), http.StatusBadRequest)
			return
		}

		req := domain.InterceptedRequest{
			Method:  r.Method,
			URL:     absoluteURL(r),
			Headers: flattenHeaders(r.Header),
			Body:    string(body),
		}

		res, ok := t.Respond(req)
		if !ok {
			t.log.Info("mock.unmatched", "method", r.Method, "url", req.URL)
			http.NotFound(w, r)
			return
		}

		if res.DelayMS > 0 {
			timer := time.NewTimer(time.Duration(res.DelayMS) * time.Millisecond)
			select {
			case <-r.Context().Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}

		for k, v := range res.Headers {
			w.Header().Set(k, v)
		}
		w.WriteHeader(res.Status)
		_, _ = w.Write(res.Body)
	})
}

func absoluteURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}

func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = strings.Join(v, ", ")
	}
	return out
}
