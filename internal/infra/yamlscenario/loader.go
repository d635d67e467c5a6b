package yamlscenario

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aalvaropc/glimpse/internal/domain"
	"github.com/aalvaropc/glimpse/internal/ports"
	"gopkg.in/yaml.v3"
)

type Loader struct {
	scenariosDir string
}

func NewLoader(opts ...Option) *Loader {
	l := &Loader{scenariosDir: "scenarios"}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

type Option func(*Loader)

func WithScenariosDir(dir string) Option {
	return func(l *Loader) { l.scenariosDir = dir }
}

var _ ports.ScenarioLoader = (*Loader)(nil)

// LoadScenario reads and validates a scenario file. Unknown keys are rejected
// so typos (and removed actions such as fixed sleeps) fail loudly.
func (l *Loader) LoadScenario(path string) (domain.Scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return domain.Scenario{}, &domain.OpError{
			Op:   "yamlscenario.load",
			Kind: domain.KindNotFound,
			Path: path,
			Err:  err,
		}
	}

	var ys yamlScenario
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&ys); err != nil && !errors.Is(err, io.EOF) {
		return domain.Scenario{}, &domain.OpError{
			Op:   "yamlscenario.load",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}

	return mapAndValidate(path, ys)
}

func (l *Loader) ListScenarios(root string) ([]domain.ScenarioRef, error) {
	dir := filepath.Join(root, l.scenariosDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &domain.OpError{
			Op:   "yamlscenario.list",
			Kind: domain.KindNotFound,
			Path: dir,
			Err:  err,
		}
	}

	var refs []domain.ScenarioRef
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}

		p := filepath.Join(dir, name)
		n, _ := readScenarioName(p)
		if strings.TrimSpace(n) == "" {
			n = strings.TrimSuffix(name, filepath.Ext(name))
		}

		refs = append(refs, domain.ScenarioRef{Name: n, Path: p})
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
	return refs, nil
}

// Resolve maps a scenario name or file stem to its path under root.
// Existing file paths are returned as-is.
func (l *Loader) Resolve(root, nameOrPath string) (string, error) {
	if st, err := os.Stat(nameOrPath); err == nil && !st.IsDir() {
		return nameOrPath, nil
	}

	for _, ext := range []string{".yaml", ".yml"} {
		p := filepath.Join(root, l.scenariosDir, nameOrPath+ext)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	refs, err := l.ListScenarios(root)
	if err != nil {
		return "", err
	}
	for _, r := range refs {
		if r.Name == nameOrPath {
			return r.Path, nil
		}
	}

	return "", &domain.OpError{
		Op:   "yamlscenario.resolve",
		Kind: domain.KindNotFound,
		Path: nameOrPath,
		Err:  domain.ErrNotFound,
	}
}

func readScenarioName(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var v struct {
		Name string `yaml:"name"`
	}
	if err := yaml.Unmarshal(b, &v); err != nil {
		return "", err
	}
	return v.Name, nil
}
