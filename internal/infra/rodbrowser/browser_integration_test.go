//go:build integration

package rodbrowser_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aalvaropc/glimpse/internal/domain"
	"github.com/aalvaropc/glimpse/internal/infra/rodbrowser"
	"github.com/aalvaropc/glimpse/internal/usecase/mock"
)

const loginPage = `<!doctype html>
<html><body>
<h1>管理后台</h1>
<form id="f">
  <input aria-label="用户名" id="u">
  <input type="password" aria-label="密码" id="p">
  <button type="submit">登录</button>
</form>
<div id="out"></div>
<div style="display:none">hidden text</div>
<script>
document.getElementById('f').addEventListener('submit', async (e) => {
  e.preventDefault();
  const r = await fetch('/api/login', {
    method: 'POST',
    headers: {'Content-Type': 'application/json'},
    body: JSON.stringify({username: document.getElementById('u').value, password: document.getElementById('p').value}),
  });
  const j = await r.json();
  document.getElementById('out').textContent = 'welcome ' + j.user;
  history.pushState({}, '', '/dashboard');
});
</script>
</body></html>`

func newBrowser(t *testing.T) *rodbrowser.Browser {
	t.Helper()
	cfg := domain.DefaultConfig().Browser
	cfg.NoSandbox = true

	b, err := rodbrowser.New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestSession_LoginFlowWithMock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, loginPage)
	}))
	defer srv.Close()

	table, err := mock.NewTable([]domain.RouteMock{{
		Name:    "login",
		Pattern: "**/api/login",
		Method:  domain.MethodPost,
		Body:    domain.BodySpec{Type: domain.BodyJSON, JSON: map[string]any{"user": "admin"}},
	}})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s, err := newBrowser(t).NewSession(ctx, table)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Navigate(ctx, srv.URL))

	n, err := s.WaitFor(ctx, domain.Locator{Role: "heading", Name: "管理"}, 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = s.Count(ctx, domain.Locator{Text: "hidden text"})
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, s.Fill(ctx, domain.Locator{Role: "textbox", Name: "用户名"}, "admin", 5*time.Second))
	require.NoError(t, s.Fill(ctx, domain.Locator{Role: "textbox", Name: "密码"}, "secret", 5*time.Second))
	require.NoError(t, s.Click(ctx, domain.Locator{Role: "button", Name: "登录", Exact: true}, 5*time.Second))

	_, err = s.WaitFor(ctx, domain.Locator{Text: "welcome admin"}, 5*time.Second)
	require.NoError(t, err)

	u, err := s.WaitURL(ctx, "/dashboard", 5*time.Second)
	require.NoError(t, err)
	assert.Contains(t, u, "/dashboard")

	results := table.Results()
	require.Len(t, results, 1)
	require.Len(t, results[0].Hits, 1)
	assert.JSONEq(t, `{"username":"admin","password":"secret"}`, results[0].Hits[0].Body)

	png, err := s.Screenshot(ctx, true)
	require.NoError(t, err)
	assert.Greater(t, len(png), 100)
}

func TestSession_WaitForTimesOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "<p>nothing here</p>")
	}))
	defer srv.Close()

	ctx := context.Background()
	s, err := newBrowser(t).NewSession(ctx, nil)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Navigate(ctx, srv.URL))

	_, err = s.WaitFor(ctx, domain.Locator{Selector: "#missing"}, 300*time.Millisecond)
	var nf *domain.ElementNotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestSession_NavigateRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	ctx := context.Background()
	s, err := newBrowser(t).NewSession(ctx, nil)
	require.NoError(t, err)
	defer s.Close()

	err = s.Navigate(ctx, addr)
	var nav *domain.NavigationError
	require.ErrorAs(t, err, &nav, fmt.Sprintf("got %v", err))
}
