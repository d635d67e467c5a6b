package yamlscenario

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

type yamlScenario struct {
	Name     string            `yaml:"name"`
	Vars     map[string]string `yaml:"vars"`
	BaseURLs []string          `yaml:"base_urls"`
	Mocks    []yamlMock        `yaml:"mocks"`
	Steps    []yamlStep        `yaml:"steps"`
}

type yamlMock struct {
	Name    string            `yaml:"name"`
	Pattern string            `yaml:"pattern"`
	Method  string            `yaml:"method"`
	Status  int               `yaml:"status"`
	Headers map[string]string `yaml:"headers"`

	JSON        any    `yaml:"json"`
	Raw         string `yaml:"raw"`
	BodyFile    string `yaml:"body_file"`
	ContentType string `yaml:"content_type"`

	DelayMS int `yaml:"delay_ms"`
	Times   int `yaml:"times"`

	Assert  map[string]yamlJSONPathAssertion `yaml:"assert"`
	Extract map[string]string                `yaml:"extract"`
}

type yamlJSONPathAssertion struct {
	Exists   bool     `yaml:"exists"`
	Eq       *string  `yaml:"eq"`
	Contains *string  `yaml:"contains"`
	Matches  *string  `yaml:"matches"`
	Gt       *float64 `yaml:"gt"`
	Lt       *float64 `yaml:"lt"`
}

// yamlStep holds exactly one action key (goto, wait, click, ...) plus modifiers.
type yamlStep struct {
	Name string `yaml:"name"`

	Goto         *string      `yaml:"goto"`
	Wait         *yamlLocator `yaml:"wait"`
	Expect       *yamlLocator `yaml:"expect"`
	ExpectAbsent *yamlLocator `yaml:"expect_absent"`
	ExpectURL    *string      `yaml:"expect_url"`
	Click        *yamlLocator `yaml:"click"`
	Fill         *yamlLocator `yaml:"fill"`
	Screenshot   *string      `yaml:"screenshot"`

	Value     string   `yaml:"value"`
	FullPage  bool     `yaml:"full_page"`
	TimeoutMS *int     `yaml:"timeout_ms"`
	Optional  bool     `yaml:"optional"`
	If        stepRefs `yaml:"if"`
}

// stepRefs accepts one step name or a list of them.
//
//	if: paper-link
//	if: [news-tab, paper-tab]
type stepRefs []string

func (r *stepRefs) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		*r = stepRefs{n.Value}
		return nil
	case yaml.SequenceNode:
		var names []string
		if err := n.Decode(&names); err != nil {
			return err
		}
		*r = names
		return nil
	default:
		return fmt.Errorf("line %d: if must be a step name or a list of step names", n.Line)
	}
}

// yamlLocator accepts either a bare string (visible text) or a mapping.
//
//	wait: TechCrunch
//	click: {role: button, name: 学术论文}
type yamlLocator struct {
	Role     string `yaml:"role"`
	Name     string `yaml:"name"`
	Text     string `yaml:"text"`
	Selector string `yaml:"selector"`
	Exact    bool   `yaml:"exact"`
}

func (l *yamlLocator) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		l.Text = n.Value
		return nil
	case yaml.MappingNode:
		type plain yamlLocator
		var p plain
		if err := n.Decode(&p); err != nil {
			return err
		}
		*l = yamlLocator(p)
		return nil
	default:
		return fmt.Errorf("line %d: locator must be a string or a mapping", n.Line)
	}
}
