package rodbrowser

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/cdp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aalvaropc/glimpse/internal/domain"
)

func TestPoll_StopsWhenCheckPasses(t *testing.T) {
	calls := 0
	err := poll(context.Background(), time.Second, func(context.Context) (bool, error) {
		calls++
		return calls == 3, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestPoll_Timeout(t *testing.T) {
	err := poll(context.Background(), 50*time.Millisecond, func(context.Context) (bool, error) {
		return false, nil
	})
	assert.ErrorIs(t, err, errPollTimeout)
}

func TestPoll_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := poll(ctx, time.Second, func(context.Context) (bool, error) {
		return false, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPoll_CheckError(t *testing.T) {
	boom := errors.New("boom")
	err := poll(context.Background(), time.Second, func(context.Context) (bool, error) {
		return false, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestPoll_KeepsPollingWhileNavigating(t *testing.T) {
	destroyed := *cdp.ErrCtxDestroyed
	notFound := *cdp.ErrCtxNotFound
	errs := []error{
		fmt.Errorf("eval: %w", &destroyed),
		&notFound,
	}

	calls := 0
	err := poll(context.Background(), time.Second, func(context.Context) (bool, error) {
		calls++
		if calls <= len(errs) {
			return false, errs[calls-1]
		}
		return true, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestPoll_NavigatingUntilTimeout(t *testing.T) {
	err := poll(context.Background(), 50*time.Millisecond, func(context.Context) (bool, error) {
		return false, cdp.ErrCtxDestroyed
	})
	assert.ErrorIs(t, err, errPollTimeout)
}

func TestNavigationError_MapsRodReason(t *testing.T) {
	err := navigationError(context.Background(), "http://localhost:3000/", &rod.NavigationError{Reason: "net::ERR_CONNECTION_REFUSED"})

	var nav *domain.NavigationError
	require.ErrorAs(t, err, &nav)
	assert.Equal(t, "http://localhost:3000/", nav.URL)
	assert.Equal(t, "net::ERR_CONNECTION_REFUSED", nav.Reason)
	assert.Equal(t, domain.RunErrorNavigation, domain.ClassifyRunError(err))
}

func TestNavigationError_PrefersContextError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := navigationError(ctx, "http://x", &rod.NavigationError{Reason: "net::ERR_ABORTED"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestToArg(t *testing.T) {
	arg := toArg(domain.Locator{Role: "button", Name: "登录", Exact: true})
	assert.Equal(t, locatorArg{Role: "button", Name: "登录", Exact: true}, arg)
}
