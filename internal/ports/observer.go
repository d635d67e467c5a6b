package ports

import "github.com/aalvaropc/glimpse/internal/domain"

// RunObserver receives step progress while a scenario runs.
type RunObserver interface {
	StepStarted(scenario string, index, total int, step domain.StepSpec)
	StepFinished(scenario string, index, total int, res domain.StepResult)
}
