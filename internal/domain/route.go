package domain

// InterceptedRequest is the browser request handed to a route responder.
type InterceptedRequest struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    string
}

// MockResponse is the canned answer for an intercepted request.
type MockResponse struct {
	Status  int
	Headers Headers
	Body    []byte
	DelayMS int
}
