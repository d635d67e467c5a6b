package ports

import "github.com/aalvaropc/glimpse/internal/domain"

// EnvironmentLoader resolves an environment by name (env/<name>.yaml) or by
// path, with the optional secrets file merged in.
type EnvironmentLoader interface {
	LoadEnvironment(nameOrPath string) (domain.Environment, error)
}

type EnvironmentCatalog interface {
	ListEnvironments(root string) ([]domain.EnvironmentRef, error)
}
