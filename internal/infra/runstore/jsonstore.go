package runstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aalvaropc/glimpse/internal/domain"
	"github.com/aalvaropc/glimpse/internal/ports"
)

const defaultRunsDir = "runs"

// JSONStore writes runs/<id>.json and keeps screenshots under runs/<id>/.
type JSONStore struct {
	rootDir        string
	runsDirName    string
	maskingEnabled bool
	writeIndex     bool
	now            func() time.Time

	mu       sync.Mutex
	reserved map[string]bool
}

type Option func(*JSONStore)

// WithIndex enables a simple JSONL index: runs/index.jsonl
func WithIndex(enabled bool) Option {
	return func(s *JSONStore) { s.writeIndex = enabled }
}

// WithNow is useful for tests.
func WithNow(now func() time.Time) Option {
	return func(s *JSONStore) { s.now = now }
}

func NewJSONStore(root string, cfg domain.Config, opts ...Option) *JSONStore {
	runsDir := cfg.Paths.RunsDir
	if strings.TrimSpace(runsDir) == "" {
		runsDir = defaultRunsDir
	}

	s := &JSONStore{
		rootDir:        root,
		runsDirName:    runsDir,
		maskingEnabled: cfg.Masking.Enabled,
		now:            time.Now,
		reserved:       map[string]bool{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ ports.ArtifactStore = (*JSONStore)(nil)

// NewRunID returns "<UTC timestamp>_<scenario slug>", suffixed when the id is
// already taken on disk or by a concurrent run in this process.
func (s *JSONStore) NewRunID(scenarioName string, startedAt time.Time) string {
	ts := startedAt
	if ts.IsZero() {
		ts = s.now()
	}
	slug := slugify(scenarioName)
	if slug == "" {
		slug = "run"
	}
	base := fmt.Sprintf("%s_%s", ts.UTC().Format("20060102T150405Z"), slug)

	s.mu.Lock()
	defer s.mu.Unlock()

	id := base
	for n := 2; s.taken(id); n++ {
		id = base + "-" + strconv.Itoa(n)
	}
	s.reserved[id] = true
	return id
}

func (s *JSONStore) taken(id string) bool {
	if s.reserved[id] {
		return true
	}
	dir := s.runsDir()
	if _, err := os.Stat(filepath.Join(dir, id+".json")); err == nil {
		return true
	}
	if _, err := os.Stat(filepath.Join(dir, id)); err == nil {
		return true
	}
	return false
}

func (s *JSONStore) runsDir() string {
	return filepath.Join(s.rootDir, s.runsDirName)
}

// SaveScreenshot writes png to runs/<runID>/<name> and returns its path.
func (s *JSONStore) SaveScreenshot(runID, name string, png []byte) (string, error) {
	if runID == "" {
		runID = "adhoc"
	}
	name = filepath.Base(strings.TrimSpace(name))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "", &domain.OpError{
			Op:   "runstore.screenshot",
			Kind: domain.KindInvalidConfig,
			Err:  fmt.Errorf("invalid screenshot name %q", name),
		}
	}

	dir := filepath.Join(s.runsDir(), runID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &domain.OpError{
			Op:   "runstore.mkdir",
			Kind: domain.KindExecution,
			Path: dir,
			Err:  err,
		}
	}

	path := filepath.Join(dir, name)
	if err := writeAtomic(path, png, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (s *JSONStore) SaveRun(run domain.RunResult) (string, error) {
	dir := s.runsDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &domain.OpError{
			Op:   "runstore.mkdir",
			Kind: domain.KindExecution,
			Path: dir,
			Err:  err,
		}
	}

	toSave := run
	if toSave.StartedAt.IsZero() {
		toSave.StartedAt = s.now().UTC()
	}

	id := run.ID
	if strings.TrimSpace(id) == "" {
		name := run.ScenarioName
		if strings.TrimSpace(name) == "" {
			name = strings.TrimSuffix(filepath.Base(run.ScenarioPath), filepath.Ext(run.ScenarioPath))
		}
		id = s.NewRunID(name, toSave.StartedAt)
		toSave.ID = id
	}

	filename := id + ".json"
	path := filepath.Join(dir, filename)

	if s.maskingEnabled {
		toSave = domain.MaskRun(toSave)
	}

	b, err := json.MarshalIndent(toSave, "", "  ")
	if err != nil {
		return "", &domain.OpError{
			Op:   "runstore.marshal",
			Kind: domain.KindExecution,
			Path: path,
			Err:  err,
		}
	}

	if err := writeAtomic(path, b, 0o600); err != nil {
		return "", err
	}

	if s.writeIndex {
		_ = s.appendIndex(dir, id, filename, toSave)
	}

	return id, nil
}

// writeAtomic writes to a temp file and renames it into place.
func writeAtomic(path string, b []byte, perm os.FileMode) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, perm); err != nil {
		return &domain.OpError{
			Op:   "runstore.write",
			Kind: domain.KindExecution,
			Path: tmp,
			Err:  err,
		}
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return &domain.OpError{
			Op:   "runstore.rename",
			Kind: domain.KindExecution,
			Path: path,
			Err:  err,
		}
	}
	return nil
}

type indexEntry struct {
	ID        string    `json:"id"`
	File      string    `json:"file"`
	Scenario  string    `json:"scenario"`
	Env       string    `json:"env"`
	Passed    bool      `json:"passed"`
	StartedAt time.Time `json:"started_at"`
}

func (s *JSONStore) appendIndex(dir, id, filename string, run domain.RunResult) error {
	line, err := json.Marshal(indexEntry{
		ID:        id,
		File:      filename,
		Scenario:  run.ScenarioName,
		Env:       run.EnvironmentName,
		Passed:    run.Passed(),
		StartedAt: run.StartedAt,
	})
	if err != nil {
		return err
	}

	indexPath := filepath.Join(dir, "index.jsonl")
	f, err := os.OpenFile(indexPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(append(line, '\n'))
	return err
}
