package yamlscenario

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aalvaropc/glimpse/internal/domain"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestLoadScenario_AdminLogin(t *testing.T) {
	tmp := t.TempDir()
	p := filepath.Join(tmp, "scenarios", "admin-login.yaml")
	writeFile(t, filepath.Join(tmp, "scenarios", "fixtures", "articles.json"),
		`{"articles":[{"title":"{{title}}"}],"pagination":{"total":20,"totalPages":2}}`)
	writeFile(t, p, `
name: admin login
base_urls: ["http://localhost:3000", " http://localhost:3001 "]
vars:
  title: AI news
mocks:
  - name: articles
    pattern: "**/api/articles?*"
    body_file: fixtures/articles.json
  - name: login
    pattern: "**/api/admin/login"
    method: post
    json: {success: true}
    assert:
      $.username: {eq: admin}
    extract:
      login.user: $.username
  - pattern: "**/api/rss-sources"
    json:
      - {id: 1, name: TechCrunch}
steps:
  - goto: /
  - wait: TechCrunch
  - screenshot: main_page.png
    full_page: true
  - fill: {selector: "input[type=text]"}
    value: admin
  - name: submit
    click: {role: button, name: 登录, exact: true}
  - expect: {role: link, name: 学术论文}
    optional: true
    timeout_ms: 2000
  - expect_url: paper
    if: submit
`)

	sc, err := NewLoader().LoadScenario(p)
	if err != nil {
		t.Fatalf("LoadScenario error: %v", err)
	}

	if sc.Name != "admin login" {
		t.Fatalf("expected name=admin login, got=%s", sc.Name)
	}
	if len(sc.BaseURLs) != 2 || sc.BaseURLs[1] != "http://localhost:3001" {
		t.Fatalf("unexpected base urls: %v", sc.BaseURLs)
	}

	if len(sc.Mocks) != 3 {
		t.Fatalf("expected 3 mocks, got %d", len(sc.Mocks))
	}
	articles := sc.Mocks[0]
	if articles.Body.Type != domain.BodyJSON {
		t.Fatalf("expected body_file .json to be a JSON body, got %q", articles.Body.Type)
	}
	doc, ok := articles.Body.JSON.(map[string]any)
	if !ok || doc["pagination"] == nil {
		t.Fatalf("unexpected fixture body: %#v", articles.Body.JSON)
	}
	login := sc.Mocks[1]
	if login.Method != domain.MethodPost {
		t.Fatalf("expected POST, got %q", login.Method)
	}
	if a := login.Assert["$.username"]; a.Eq == nil || *a.Eq != "admin" {
		t.Fatalf("unexpected assert: %+v", login.Assert)
	}
	if login.Extract["login.user"] != "$.username" {
		t.Fatalf("unexpected extract: %v", login.Extract)
	}
	if _, ok := sc.Mocks[2].Body.JSON.([]any); !ok {
		t.Fatalf("expected array body, got %#v", sc.Mocks[2].Body.JSON)
	}

	wantKinds := []domain.StepKind{
		domain.StepGoto, domain.StepWait, domain.StepScreenshot, domain.StepFill,
		domain.StepClick, domain.StepExpect, domain.StepExpectURL,
	}
	if len(sc.Steps) != len(wantKinds) {
		t.Fatalf("expected %d steps, got %d", len(wantKinds), len(sc.Steps))
	}
	for i, k := range wantKinds {
		if sc.Steps[i].Kind != k {
			t.Fatalf("steps[%d]: expected %s, got %s", i, k, sc.Steps[i].Kind)
		}
	}
	if sc.Steps[1].Locator.Text != "TechCrunch" {
		t.Fatalf("expected scalar locator to be text, got %+v", sc.Steps[1].Locator)
	}
	if !sc.Steps[2].FullPage || sc.Steps[2].Screenshot != "main_page.png" {
		t.Fatalf("unexpected screenshot step: %+v", sc.Steps[2])
	}
	if sc.Steps[3].Value != "admin" || sc.Steps[3].Locator.Selector != "input[type=text]" {
		t.Fatalf("unexpected fill step: %+v", sc.Steps[3])
	}
	if l := sc.Steps[4].Locator; l.Role != "button" || l.Name != "登录" || !l.Exact {
		t.Fatalf("unexpected click locator: %+v", l)
	}
	if !sc.Steps[5].Optional || sc.Steps[5].TimeoutMS == nil || *sc.Steps[5].TimeoutMS != 2000 {
		t.Fatalf("unexpected expect step: %+v", sc.Steps[5])
	}
	if sc.Steps[6].Value != "paper" || len(sc.Steps[6].If) != 1 || sc.Steps[6].If[0] != "submit" {
		t.Fatalf("unexpected expect_url step: %+v", sc.Steps[6])
	}
}

func TestLoadScenario_RawBodyFile(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, filepath.Join(tmp, "page.html"), "<h1>hi</h1>")
	p := filepath.Join(tmp, "s.yaml")
	writeFile(t, p, `
name: raw
mocks:
  - pattern: "**/page"
    body_file: page.html
    content_type: text/html
steps:
  - goto: http://localhost:3000/page
`)
	sc, err := NewLoader().LoadScenario(p)
	if err != nil {
		t.Fatalf("LoadScenario error: %v", err)
	}
	b := sc.Mocks[0].Body
	if b.Type != domain.BodyRaw || b.Raw != "<h1>hi</h1>" || b.ContentType != "text/html" {
		t.Fatalf("unexpected body: %+v", b)
	}
}

func TestLoadScenario_IfAcceptsList(t *testing.T) {
	p := filepath.Join(t.TempDir(), "s.yaml")
	writeFile(t, p, `
name: tabs
steps:
  - {name: news, expect: {text: news}}
  - {name: paper, expect: {text: paper}}
  - name: open
    click: {text: paper}
    if: [news, " paper "]
`)
	sc, err := NewLoader().LoadScenario(p)
	if err != nil {
		t.Fatalf("LoadScenario error: %v", err)
	}
	if got := sc.Steps[2].If; len(got) != 2 || got[0] != "news" || got[1] != "paper" {
		t.Fatalf("unexpected if: %q", got)
	}
}

func TestLoadScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		kind    domain.ErrorKind
	}{
		{"missing name", "steps: [{goto: /}]", "field name", domain.KindInvalidConfig},
		{"sleep is rejected", "name: x\nsteps:\n  - sleep: 3000\n", "sleep", domain.KindInvalidConfig},
		{"two actions", "name: x\nsteps:\n  - goto: /\n    wait: TechCrunch\n", "exactly one action", domain.KindInvalidConfig},
		{"no action", "name: x\nsteps:\n  - optional: true\n", "exactly one action", domain.KindInvalidConfig},
		{"two strategies", "name: x\nsteps:\n  - click: {text: a, selector: b}\n", "exactly one of role", domain.KindInvalidConfig},
		{"bad method", "name: x\nmocks:\n  - pattern: '**/a'\n    method: FETCH\n", "unsupported method", domain.KindInvalidConfig},
		{"missing pattern", "name: x\nmocks:\n  - json: {}\n", "mocks[0].pattern", domain.KindInvalidConfig},
		{"two bodies", "name: x\nmocks:\n  - pattern: '**/a'\n    json: {}\n    raw: x\n", "only one of", domain.KindInvalidConfig},
		{"bad status", "name: x\nmocks:\n  - pattern: '**/a'\n    status: 42\n", "invalid status", domain.KindInvalidConfig},
		{"missing body file", "name: x\nmocks:\n  - pattern: '**/a'\n    body_file: nope.json\n", "body_file", domain.KindNotFound},
		{"screenshot dir", "name: x\nsteps:\n  - screenshot: ../x.png\n", "directories", domain.KindInvalidConfig},
		{"duplicate names", "name: x\nsteps:\n  - {name: a, goto: /}\n  - {name: a, goto: /b}\n", "duplicate", domain.KindInvalidConfig},
		{"zero timeout", "name: x\nsteps:\n  - wait: a\n    timeout_ms: 0\n", "timeout_ms", domain.KindInvalidConfig},
		{"bad locator", "name: x\nsteps:\n  - wait: [a, b]\n", "locator", domain.KindInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := filepath.Join(t.TempDir(), "s.yaml")
			writeFile(t, p, tt.content)

			_, err := NewLoader().LoadScenario(p)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !domain.IsKind(err, tt.kind) {
				t.Fatalf("expected kind %s, got %v", tt.kind, err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error to contain %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := NewLoader().LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	if !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestListScenarios_SortedByName(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, filepath.Join(tmp, "scenarios", "news-paper.yaml"), "name: news paper\n")
	writeFile(t, filepath.Join(tmp, "scenarios", "admin-login.yml"), "name: admin login\n")
	writeFile(t, filepath.Join(tmp, "scenarios", "unnamed.yaml"), "steps: []\n")
	writeFile(t, filepath.Join(tmp, "scenarios", "notes.txt"), "ignore")
	writeFile(t, filepath.Join(tmp, "scenarios", "fixtures", "a.json"), "{}")

	refs, err := NewLoader().ListScenarios(tmp)
	if err != nil {
		t.Fatalf("ListScenarios error: %v", err)
	}
	var names []string
	for _, r := range refs {
		names = append(names, r.Name)
	}
	if strings.Join(names, ",") != "admin login,news paper,unnamed" {
		t.Fatalf("unexpected names: %v", names)
	}
}

func TestListScenarios_CustomDirMissing(t *testing.T) {
	_, err := NewLoader(WithScenariosDir("flows")).ListScenarios(t.TempDir())
	if !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestResolve(t *testing.T) {
	tmp := t.TempDir()
	p := filepath.Join(tmp, "scenarios", "admin-login.yaml")
	writeFile(t, p, "name: admin login\n")

	l := NewLoader()
	for _, in := range []string{p, "admin-login", "admin login"} {
		got, err := l.Resolve(tmp, in)
		if err != nil {
			t.Fatalf("Resolve(%q): %v", in, err)
		}
		if got != p {
			t.Fatalf("Resolve(%q) = %q, want %q", in, got, p)
		}
	}

	if _, err := l.Resolve(tmp, "missing"); !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}
