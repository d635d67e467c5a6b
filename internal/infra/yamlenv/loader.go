package yamlenv

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aalvaropc/glimpse/internal/domain"
	"github.com/aalvaropc/glimpse/internal/ports"
	"gopkg.in/yaml.v3"
)

type Loader struct {
	rootDir     string
	envDir      string
	secretsFile string
}

type Option func(*Loader)

func WithEnvDir(dir string) Option {
	return func(l *Loader) { l.envDir = dir }
}

func WithSecretsFile(name string) Option {
	return func(l *Loader) { l.secretsFile = name }
}

func NewLoader(root string, opts ...Option) *Loader {
	l := &Loader{
		rootDir:     root,
		envDir:      "env",
		secretsFile: "secrets.local.yaml",
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

var (
	_ ports.EnvironmentLoader  = (*Loader)(nil)
	_ ports.EnvironmentCatalog = (*Loader)(nil)
)

// LoadEnvironment accepts either an env name (e.g., "dev") or a full path to a YAML file.
// base_urls from the file are exposed as the comma-separated var base_url.
func (l *Loader) LoadEnvironment(nameOrPath string) (domain.Environment, error) {
	envPath, envName := l.locate(nameOrPath)

	base, err := readEnv(envPath)
	if err != nil {
		return domain.Environment{}, err
	}

	// Secrets are optional; they override base vars.
	secretsPath := filepath.Join(filepath.Dir(envPath), l.secretsFile)
	secrets, err := readSecrets(secretsPath)
	if err != nil {
		return domain.Environment{}, err
	}

	return domain.Environment{
		Name: envName,
		Vars: domain.Merge(base, secrets),
	}, nil
}

// ListEnvironments lists env files under <root>/<envDir>, skipping the secrets file.
func (l *Loader) ListEnvironments(root string) ([]domain.EnvironmentRef, error) {
	dir := filepath.Join(root, l.envDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &domain.OpError{
			Op:   "yamlenv.list",
			Kind: domain.KindNotFound,
			Path: dir,
			Err:  err,
		}
	}

	var refs []domain.EnvironmentRef
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == l.secretsFile {
			continue
		}
		ext := filepath.Ext(name)
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		refs = append(refs, domain.EnvironmentRef{
			Name: strings.TrimSuffix(name, ext),
			Path: filepath.Join(dir, name),
		})
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
	return refs, nil
}

func (l *Loader) locate(nameOrPath string) (path, name string) {
	if strings.HasSuffix(nameOrPath, ".yaml") || strings.HasSuffix(nameOrPath, ".yml") || strings.ContainsRune(nameOrPath, filepath.Separator) {
		path = filepath.Clean(nameOrPath)
		return path, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	path = filepath.Join(l.rootDir, l.envDir, nameOrPath+".yaml")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		alt := filepath.Join(l.rootDir, l.envDir, nameOrPath+".yml")
		if _, err := os.Stat(alt); err == nil {
			path = alt
		}
	}
	return path, nameOrPath
}

type yamlEnv struct {
	BaseURLs []string          `yaml:"base_urls"`
	Vars     map[string]string `yaml:"vars"`
}

func readEnv(path string) (domain.Vars, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.OpError{
			Op:   "yamlenv.load",
			Kind: domain.KindNotFound,
			Path: path,
			Err:  err,
		}
	}

	var y yamlEnv
	if err := yaml.Unmarshal(b, &y); err != nil {
		return nil, &domain.OpError{
			Op:   "yamlenv.load",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}

	vars := domain.Vars(y.Vars)
	if vars == nil {
		vars = domain.Vars{}
	}

	var bases []string
	for _, u := range y.BaseURLs {
		if u = strings.TrimSpace(u); u != "" {
			bases = append(bases, u)
		}
	}
	if len(bases) > 0 {
		if _, ok := vars["base_url"]; ok {
			return nil, &domain.OpError{
				Op:   "yamlenv.load",
				Kind: domain.KindInvalidConfig,
				Path: path,
				Err:  fmt.Errorf("set either base_urls or vars.base_url, not both"),
			}
		}
		vars["base_url"] = strings.Join(bases, ",")
	}

	return vars, nil
}

func readSecrets(path string) (domain.Vars, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return domain.Vars{}, nil
		}
		return nil, &domain.OpError{
			Op:   "yamlenv.secrets",
			Kind: domain.KindExecution,
			Path: path,
			Err:  err,
		}
	}

	v, err := readEnv(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load secrets: %w", err)
	}
	return v, nil
}
