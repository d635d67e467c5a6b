package domain

import (
	"strings"
	"testing"
)

func TestMaskRun(t *testing.T) {
	run := RunResult{
		ScenarioName: "admin-login",
		Mocks: []MockResult{{
			Name: "login",
			Hits: []MockHit{
				{Method: "POST", URL: "http://localhost:3000/api/admin/login", Body: `{"username":"admin","password":"hunter2"}`},
				{Method: "POST", URL: "http://localhost:3000/api/admin/login?api_key=k1&page=2", Body: "username=admin&password=hunter2"},
				{Method: "GET", URL: "http://localhost:3000/api/articles", Body: "not json"},
			},
			Extracted: Vars{"login_user": "admin", "session_token": "abc"},
		}},
	}

	got := MaskRun(run)
	hits := got.Mocks[0].Hits

	tests := []struct {
		name      string
		got       string
		mustHave  string
		mustNotBe string
	}{
		{"json body", hits[0].Body, `"username":"admin"`, "hunter2"},
		{"form body", hits[1].Body, "username=admin", "hunter2"},
		{"query", hits[1].URL, "page=2", "k1"},
		{"plain body", hits[2].Body, "not json", MaskedValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.Contains(tt.got, tt.mustHave) {
				t.Errorf("expected %q in %q", tt.mustHave, tt.got)
			}
			if strings.Contains(tt.got, tt.mustNotBe) {
				t.Errorf("unexpected %q in %q", tt.mustNotBe, tt.got)
			}
		})
	}

	if got.Mocks[0].Extracted["session_token"] != MaskedValue || got.Mocks[0].Extracted["login_user"] != "admin" {
		t.Errorf("unexpected extracted vars: %v", got.Mocks[0].Extracted)
	}
	if !strings.Contains(run.Mocks[0].Hits[0].Body, "hunter2") || run.Mocks[0].Extracted["session_token"] != "abc" {
		t.Errorf("input was mutated: %+v", run.Mocks[0])
	}
}
