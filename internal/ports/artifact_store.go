package ports

import (
	"time"

	"github.com/aalvaropc/glimpse/internal/domain"
)

// ArtifactStore persists run results and screenshots for later inspection.
type ArtifactStore interface {
	NewRunID(scenarioName string, startedAt time.Time) string
	SaveScreenshot(runID, name string, png []byte) (path string, err error)
	SaveRun(run domain.RunResult) (id string, err error)
}
