package mock

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/aalvaropc/glimpse/internal/domain"
	ucassert "github.com/aalvaropc/glimpse/internal/usecase/assert"
	ucextract "github.com/aalvaropc/glimpse/internal/usecase/extract"
)

type entry struct {
	mock    domain.RouteMock
	re      *regexp.Regexp
	body    []byte
	headers domain.Headers
	hits    []domain.MockHit
}

// Table answers intercepted requests from a list of route mocks.
// The first declared mock whose pattern and method match wins.
// A Table is safe for concurrent use.
type Table struct {
	mu        sync.Mutex
	entries   []*entry
	extracted domain.Vars

	now func() time.Time
	log *slog.Logger
}

type Option func(*Table)

// WithClock overrides the hit timestamp source.
func WithClock(now func() time.Time) Option {
	return func(t *Table) { t.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(t *Table) {
		if l != nil {
			t.log = l
		}
	}
}

// NewTable compiles every mock pattern and pre-encodes response bodies.
// Mocks are expected to be resolved already (no {{placeholders}} left).
func NewTable(mocks []domain.RouteMock, opts ...Option) (*Table, error) {
	t := &Table{
		extracted: domain.Vars{},
		now:       time.Now,
		log:       slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(t)
	}

	for i, m := range mocks {
		re, err := CompileGlob(m.Pattern)
		if err != nil {
			return nil, &domain.OpError{
				Op:   "mock.compile",
				Kind: domain.KindInvalidConfig,
				Err:  fmt.Errorf("mocks[%d] (%s): %w", i, Label(m, i), err),
			}
		}

		body, contentType, err := encodeBody(m.Body)
		if err != nil {
			return nil, &domain.OpError{
				Op:   "mock.body",
				Kind: domain.KindInvalidConfig,
				Err:  fmt.Errorf("mocks[%d] (%s): %w", i, Label(m, i), err),
			}
		}

		headers := domain.Headers{}
		for k, v := range m.Headers {
			headers[k] = v
		}
		if contentType != "" && !hasHeader(headers, "Content-Type") {
			headers["Content-Type"] = contentType
		}

		m.Name = Label(m, i)
		t.entries = append(t.entries, &entry{mock: m, re: re, body: body, headers: headers})
	}

	return t, nil
}

// Len is the number of mocks in the table.
func (t *Table) Len() int { return len(t.entries) }

// Patterns returns the de-duplicated CDP wildcards that cover every mock.
func (t *Table) Patterns() []string {
	seen := map[string]bool{}
	var out []string
	for _, e := range t.entries {
		w := Wildcard(e.mock.Pattern)
		if seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}

// Respond returns the canned response for req, or false when no mock applies.
func (t *Table) Respond(req domain.InterceptedRequest) (domain.MockResponse, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, e := range t.entries {
		if !e.matches(req) {
			continue
		}

		e.hits = append(e.hits, domain.MockHit{
			Method: strings.ToUpper(req.Method),
			URL:    req.URL,
			Body:   req.Body,
			At:     t.now(),
		})

		if len(e.mock.Extract) > 0 && strings.TrimSpace(req.Body) != "" {
			vars, _ := ucextract.Apply([]byte(req.Body), e.mock.Extract)
			for k, v := range vars {
				t.extracted[k] = v
			}
		}

		t.log.Debug("mock.hit", "mock", e.mock.Name, "method", req.Method, "url", req.URL, "hits", len(e.hits))

		status := e.mock.Status
		if status == 0 {
			status = 200
		}
		headers := make(domain.Headers, len(e.headers))
		for k, v := range e.headers {
			headers[k] = v
		}
		return domain.MockResponse{
			Status:  status,
			Headers: headers,
			Body:    e.body,
			DelayMS: e.mock.DelayMS,
		}, true
	}

	return domain.MockResponse{}, false
}

// Extracted returns the variables captured from request bodies so far.
func (t *Table) Extracted() domain.Vars {
	t.mu.Lock()
	defer t.mu.Unlock()
	return domain.Merge(nil, t.extracted)
}

// Results reports hits per mock and evaluates request-body assertions and extracts.
// Assertions run against every hit; a mock with assertions and no hits fails.
func (t *Table) Results() []domain.MockResult {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]domain.MockResult, 0, len(t.entries))
	for _, e := range t.entries {
		res := domain.MockResult{
			Name:      e.mock.Name,
			Pattern:   e.mock.Pattern,
			Hits:      append([]domain.MockHit(nil), e.hits...),
			Extracted: domain.Vars{},
		}

		if len(e.mock.Assert) > 0 {
			if len(e.hits) == 0 {
				res.Assertions = append(res.Assertions, ucassert.Hits(e.mock.Name, 0))
			}
			for _, h := range e.hits {
				res.Assertions = append(res.Assertions, ucassert.RequestBody(e.mock.Assert, []byte(h.Body))...)
			}
		}

		if len(e.mock.Extract) > 0 {
			res.Extracted, res.Extracts = ucextract.FromHits(e.hits, e.mock.Extract)
		}

		out = append(out, res)
	}
	return out
}

func (e *entry) matches(req domain.InterceptedRequest) bool {
	if e.mock.Times > 0 && len(e.hits) >= e.mock.Times {
		return false
	}
	if e.mock.Method != domain.MethodAny && !strings.EqualFold(string(e.mock.Method), req.Method) {
		return false
	}
	return e.re.MatchString(req.URL)
}

func encodeBody(b domain.BodySpec) ([]byte, string, error) {
	switch b.Type {
	case domain.BodyJSON:
		raw, err := json.Marshal(b.JSON)
		if err != nil {
			return nil, "", fmt.Errorf("encode json body: %w", err)
		}
		return raw, contentTypeOr(b.ContentType, "application/json"), nil
	case domain.BodyRaw:
		return []byte(b.Raw), contentTypeOr(b.ContentType, "text/plain; charset=utf-8"), nil
	case domain.BodyNone, "":
		return nil, b.ContentType, nil
	default:
		return nil, "", fmt.Errorf("unsupported body type %q", b.Type)
	}
}

func contentTypeOr(v, def string) string {
	if strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

func hasHeader(h domain.Headers, name string) bool {
	for k := range h {
		if strings.EqualFold(k, name) {
			return true
		}
	}
	return false
}

// Label names the i-th mock for errors and results: its name, else its
// pattern, else its position.
func Label(m domain.RouteMock, i int) string {
	if strings.TrimSpace(m.Name) != "" {
		return m.Name
	}
	if m.Pattern != "" {
		return m.Pattern
	}
	return fmt.Sprintf("mock-%d", i+1)
}
