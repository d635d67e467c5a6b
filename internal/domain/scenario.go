package domain

// HTTPMethod represents an HTTP method (e.g., GET, POST).
type HTTPMethod string

const (
	MethodAny     HTTPMethod = ""
	MethodGet     HTTPMethod = "GET"
	MethodPost    HTTPMethod = "POST"
	MethodPut     HTTPMethod = "PUT"
	MethodPatch   HTTPMethod = "PATCH"
	MethodDelete  HTTPMethod = "DELETE"
	MethodHead    HTTPMethod = "HEAD"
	MethodOptions HTTPMethod = "OPTIONS"
)

// BodyType represents the type of payload for a mocked response body.
type BodyType string

const (
	BodyNone BodyType = "none"
	BodyJSON BodyType = "json"
	BodyRaw  BodyType = "raw"
)

// Headers is a map representation of HTTP headers.
type Headers map[string]string

// BodySpec describes a mocked response body.
// JSON holds any JSON-compatible value (objects and arrays are both common fixtures).
type BodySpec struct {
	Type        BodyType
	JSON        any
	Raw         string
	ContentType string // Optional override.
}

// JSONPathAssertion defines a JSONPath-based check over a captured request body.
type JSONPathAssertion struct {
	Exists   bool
	Eq       *string
	Contains *string
	Matches  *string
	Gt       *float64
	Lt       *float64
}

// ExtractSpec defines variable extraction from captured request bodies.
// Map: variableName -> jsonpathExpression
type ExtractSpec map[string]string

// RouteMock intercepts browser requests whose URL matches Pattern and answers them
// with a canned response instead of contacting the server.
type RouteMock struct {
	Name    string
	Pattern string
	Method  HTTPMethod

	Status  int
	Headers Headers
	Body    BodySpec
	DelayMS int

	// Times limits how many requests the mock answers (0 = unlimited).
	Times int

	Assert  map[string]JSONPathAssertion
	Extract ExtractSpec
}

// StepKind is the action performed by a scenario step.
type StepKind string

const (
	StepGoto         StepKind = "goto"
	StepWait         StepKind = "wait"
	StepExpect       StepKind = "expect"
	StepExpectAbsent StepKind = "expect_absent"
	StepExpectURL    StepKind = "expect_url"
	StepClick        StepKind = "click"
	StepFill         StepKind = "fill"
	StepScreenshot   StepKind = "screenshot"
)

// Locator identifies elements on the page.
// Exactly one of Role, Text or Selector is set; Name narrows a Role lookup.
type Locator struct {
	Role     string
	Name     string
	Text     string
	Selector string
	Exact    bool
}

// IsZero reports whether no lookup strategy was configured.
func (l Locator) IsZero() bool {
	return l.Role == "" && l.Text == "" && l.Selector == ""
}

// Strategies returns how many lookup strategies are set.
func (l Locator) Strategies() int {
	n := 0
	if l.Role != "" {
		n++
	}
	if l.Text != "" {
		n++
	}
	if l.Selector != "" {
		n++
	}
	return n
}

// String renders the locator the way it shows up in reports.
func (l Locator) String() string {
	switch {
	case l.Role != "" && l.Name != "":
		return "role=" + l.Role + "[name=" + l.Name + "]"
	case l.Role != "":
		return "role=" + l.Role
	case l.Text != "":
		return "text=" + l.Text
	case l.Selector != "":
		return l.Selector
	default:
		return "(none)"
	}
}

// StepSpec describes a single scenario step.
type StepSpec struct {
	Name string
	Kind StepKind

	// URL is used by goto; relative paths are joined to the selected base URL.
	URL     string
	Locator Locator

	// Value is the text for fill and the expected URL fragment for expect_url.
	Value string

	// Screenshot is the artifact file name for screenshot steps.
	Screenshot string
	FullPage   bool

	TimeoutMS *int

	// Optional steps record failures without failing the run.
	Optional bool

	// If names earlier steps that must all have passed for this one to run.
	If []string
}

// Scenario is an ordered browser flow with the mocks it needs (Git-friendly).
type Scenario struct {
	Name string

	// Vars are default variables available to all steps and mocks.
	// These can be overridden by environment vars and secrets.
	Vars Vars

	// BaseURLs are candidate application roots, tried in order.
	BaseURLs []string

	Mocks []RouteMock
	Steps []StepSpec
}

// ScenarioRef is a lightweight reference to a scenario file on disk.
type ScenarioRef struct {
	Name string
	Path string
}
