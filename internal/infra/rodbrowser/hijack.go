package rodbrowser

import (
	"net/http"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/aalvaropc/glimpse/internal/domain"
	"github.com/aalvaropc/glimpse/internal/ports"
)

// hijack registers one handler per wildcard pattern. CDP patterns only know
// '*' and '?', so they over-match; routes.Respond makes the exact decision.
func (s *Session) hijack(routes ports.RouteResponder) error {
	router := s.page.HijackRequests()

	for _, pattern := range routes.Patterns() {
		if err := router.Add(pattern, "", s.routeHandler(routes)); err != nil {
			_ = router.Stop()
			return &domain.OpError{
				Op:   "rodbrowser.hijack",
				Kind: domain.KindInvalidConfig,
				Err:  err,
			}
		}
	}

	s.router = router
	go router.Run()
	return nil
}

func (s *Session) routeHandler(routes ports.RouteResponder) func(*rod.Hijack) {
	return func(h *rod.Hijack) {
		req := interceptedRequest(h)

		resp, ok := routes.Respond(req)
		if !ok {
			h.ContinueRequest(&proto.FetchContinueRequest{})
			return
		}

		if resp.DelayMS > 0 {
			t := time.NewTimer(time.Duration(resp.DelayMS) * time.Millisecond)
			select {
			case <-t.C:
			case <-s.done:
				t.Stop()
				return
			}
		}

		status := resp.Status
		if status == 0 {
			status = http.StatusOK
		}
		h.Response.Payload().ResponseCode = status
		for k, v := range resp.Headers {
			h.Response.SetHeader(k, v)
		}
		h.Response.SetBody(resp.Body)
	}
}

func interceptedRequest(h *rod.Hijack) domain.InterceptedRequest {
	headers := map[string]string{}
	for k, v := range h.Request.Headers() {
		headers[k] = v.Str()
	}
	return domain.InterceptedRequest{
		Method:  h.Request.Method(),
		URL:     h.Request.URL().String(),
		Headers: headers,
		Body:    h.Request.Body(),
	}
}
