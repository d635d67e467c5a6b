package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// VarResolver resolves {{var}} placeholders in steps, mocks and JSON fixtures.
// It supports built-ins: {{$timestamp}} and {{$uuid}}.
type VarResolver struct {
	now    func() time.Time
	uuidV4 func() (string, error)
}

// VarResolverOption configures VarResolver.
type VarResolverOption func(*VarResolver)

// WithNow overrides the clock (useful for tests).
func WithNow(now func() time.Time) VarResolverOption {
	return func(r *VarResolver) { r.now = now }
}

// WithUUID overrides UUID generation (useful for tests).
func WithUUID(gen func() (string, error)) VarResolverOption {
	return func(r *VarResolver) { r.uuidV4 = gen }
}

func NewVarResolver(opts ...VarResolverOption) *VarResolver {
	r := &VarResolver{
		now:    time.Now,
		uuidV4: newUUID,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RuntimeResolver caches built-ins for a single resolution session (one step or one mock)
// so repeated {{$uuid}} inside multiple fields stays consistent.
type RuntimeResolver struct {
	base     Vars
	builtins Vars
}

func (r *VarResolver) NewRuntime(vars Vars) (*RuntimeResolver, error) {
	ts := strconv.FormatInt(r.now().Unix(), 10)

	u, err := r.uuidV4()
	if err != nil {
		return nil, &OpError{
			Op:   "vars.builtins.uuid",
			Kind: KindExecution,
			Err:  err,
		}
	}

	return &RuntimeResolver{
		base: Merge(nil, vars),
		builtins: Vars{
			"$timestamp": ts,
			"$uuid":      u,
		},
	}, nil
}

// ResolveString resolves placeholders in a string. Built-ins shadow vars.
func (rr *RuntimeResolver) ResolveString(s string) (string, error) {
	return expand(s, rr.lookup)
}

func (rr *RuntimeResolver) lookup(name string) (string, bool) {
	if v, ok := rr.builtins[name]; ok {
		return v, true
	}
	v, ok := rr.base[name]
	return v, ok
}

// ResolveHeaders resolves placeholders in header values.
func (rr *RuntimeResolver) ResolveHeaders(h Headers) (Headers, error) {
	out := make(Headers, len(h))
	for k, v := range h {
		rv, err := rr.ResolveString(v)
		if err != nil {
			return nil, err
		}
		out[k] = rv
	}
	return out, nil
}

// ResolveBodySpec resolves placeholders inside a mocked body. JSON bodies
// only have their string leaves resolved; raw bodies are resolved as text.
func (rr *RuntimeResolver) ResolveBodySpec(b BodySpec) (BodySpec, error) {
	var err error
	switch b.Type {
	case BodyJSON:
		if b.JSON != nil {
			b.JSON, err = rr.ResolveJSONValue(b.JSON)
		}
	case BodyRaw:
		b.Raw, err = rr.ResolveString(b.Raw)
	}
	if err != nil {
		return BodySpec{}, err
	}
	return b, nil
}

// ResolveStep resolves placeholders in URL, locator and value. It returns a copy.
func (rr *RuntimeResolver) ResolveStep(step StepSpec) (StepSpec, error) {
	out := step

	fields := []struct {
		name string
		ptr  *string
	}{
		{"step.url", &out.URL},
		{"step.value", &out.Value},
		{"step.screenshot", &out.Screenshot},
		{"step.locator.name", &out.Locator.Name},
		{"step.locator.text", &out.Locator.Text},
		{"step.locator.selector", &out.Locator.Selector},
	}
	for _, f := range fields {
		v, err := rr.ResolveString(*f.ptr)
		if err != nil {
			return StepSpec{}, wrapField(err, f.name)
		}
		*f.ptr = v
	}

	return out, nil
}

// ResolveMock resolves placeholders in the pattern, headers, body and
// assertion operands. It returns a copy.
func (rr *RuntimeResolver) ResolveMock(m RouteMock) (RouteMock, error) {
	out := m

	pattern, err := rr.ResolveString(m.Pattern)
	if err != nil {
		return RouteMock{}, wrapField(err, "mock.pattern")
	}
	out.Pattern = pattern

	if m.Headers != nil {
		h, err := rr.ResolveHeaders(m.Headers)
		if err != nil {
			return RouteMock{}, wrapField(err, "mock.headers")
		}
		out.Headers = h
	} else {
		out.Headers = Headers{}
	}

	body, err := rr.ResolveBodySpec(m.Body)
	if err != nil {
		return RouteMock{}, wrapField(err, "mock.body")
	}
	out.Body = body

	if len(m.Assert) > 0 {
		out.Assert = make(map[string]JSONPathAssertion, len(m.Assert))
		for expr, a := range m.Assert {
			for _, f := range []**string{&a.Eq, &a.Contains, &a.Matches} {
				if *f == nil {
					continue
				}
				v, err := rr.ResolveString(**f)
				if err != nil {
					return RouteMock{}, wrapField(err, "mock.assert."+expr)
				}
				*f = &v
			}
			out.Assert[expr] = a
		}
	}

	return out, nil
}

// ResolveJSONValue returns a copy of a decoded JSON value with every string
// leaf resolved. Numbers, bools and nil pass through.
func (rr *RuntimeResolver) ResolveJSONValue(v any) (any, error) {
	switch t := v.(type) {
	case string:
		return rr.ResolveString(t)

	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			rv, err := rr.ResolveJSONValue(vv)
			if err != nil {
				return nil, err
			}
			out[k] = rv
		}
		return out, nil

	case []any:
		out := make([]any, len(t))
		for i, it := range t {
			rv, err := rr.ResolveJSONValue(it)
			if err != nil {
				return nil, err
			}
			out[i] = rv
		}
		return out, nil
	}
	return v, nil
}

// expand replaces each {{name}} in s with lookup(name).
func expand(s string, lookup func(string) (string, bool)) (string, error) {
	if !strings.Contains(s, "{{") {
		return s, nil
	}

	var b strings.Builder
	b.Grow(len(s))

	rest := s
	for {
		before, after, found := strings.Cut(rest, "{{")
		b.WriteString(before)
		if !found {
			return b.String(), nil
		}

		name, tail, closed := strings.Cut(after, "}}")
		if !closed {
			return "", resolveError(KindInvalidConfig, errors.New("unclosed placeholder"))
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return "", resolveError(KindInvalidConfig, errors.New("empty placeholder"))
		}

		val, ok := lookup(name)
		if !ok {
			return "", resolveError(KindMissingVar, fmt.Errorf("missing variable: %s", name))
		}
		b.WriteString(val)
		rest = tail
	}
}

func resolveError(kind ErrorKind, err error) error {
	return &OpError{Op: "vars.resolve", Kind: kind, Err: err}
}

func wrapField(err error, field string) error {
	kind := KindOf(err)
	if kind == "" {
		kind = KindExecution
	}
	return resolveError(kind, fmt.Errorf("%s: %w", field, err))
}

func newUUID() (string, error) {
	u, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return u.String(), nil
}
