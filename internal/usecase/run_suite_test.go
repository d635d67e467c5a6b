package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aalvaropc/glimpse/internal/domain"
)

func TestRunSuite_ResultsKeepInputOrder(t *testing.T) {
	loader := fakeScenarioLoader{byPath: map[string]domain.Scenario{}}
	paths := []string{"a.yaml", "b.yaml", "c.yaml", "d.yaml"}
	for _, p := range paths {
		loader.byPath[p] = domain.Scenario{
			Name:  p,
			Steps: []domain.StepSpec{{Name: "home", Kind: domain.StepGoto, URL: "http://localhost:3000/" + p}},
		}
	}

	b := &fakeBrowser{}
	run := NewRunScenario(loader, devEnv(nil), b, &fakeStore{})

	results, err := NewRunSuite(run, 3).Execute(context.Background(), paths, "dev")
	require.NoError(t, err)
	require.Len(t, results, len(paths))

	for i, r := range results {
		assert.Equal(t, paths[i], r.Path)
		assert.Equal(t, paths[i], r.Run.ScenarioName)
		assert.NoError(t, r.Err)
	}
	assert.True(t, Passed(results))
	assert.Len(t, b.sessions, len(paths))
}

func TestRunSuite_FailureDoesNotStopOthers(t *testing.T) {
	loader := fakeScenarioLoader{byPath: map[string]domain.Scenario{
		"ok.yaml": {Name: "ok"},
		"bad.yaml": {Name: "bad", Steps: []domain.StepSpec{
			{Name: "missing", Kind: domain.StepWait, Locator: domain.Locator{Text: "nope"}, TimeoutMS: intPtr(10)},
		}},
	}}
	run := NewRunScenario(loader, devEnv(nil), &fakeBrowser{}, nil)

	results, err := NewRunSuite(run, 0).Execute(context.Background(), []string{"bad.yaml", "missing.yaml", "ok.yaml"}, "dev")
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.False(t, results[0].Run.Passed())
	assert.True(t, domain.IsKind(results[1].Err, domain.KindNotFound))
	assert.True(t, results[2].Run.Passed())
	assert.False(t, Passed(results))
}

func TestRunSuite_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	run := NewRunScenario(oneScenario(domain.Scenario{Name: "x"}), devEnv(nil), &fakeBrowser{}, nil)
	results, err := NewRunSuite(run, 2).Execute(ctx, []string{"scenario.yaml"}, "dev")
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, context.Canceled)
}
