package ports

import "github.com/aalvaropc/glimpse/internal/domain"

// ScenarioLoader loads scenarios from a source (e.g., filesystem).
type ScenarioLoader interface {
	LoadScenario(path string) (domain.Scenario, error)
	ListScenarios(root string) ([]domain.ScenarioRef, error)
}
