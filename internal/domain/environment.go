package domain

import "strings"

// MaskedValue replaces secret values in stored runs, logs and listings.
const MaskedValue = "********"

// Vars is a key/value store used for templating and runtime variable resolution.
type Vars map[string]string

// Environment defines variables for a given runtime context (local/dev/ci).
// Secrets may be merged on top by infrastructure implementations.
type Environment struct {
	Name string
	Vars Vars
}

// Get returns a value for the given key and a boolean indicating if it exists.
func Get(vars Vars, key string) (string, bool) {
	if vars == nil {
		return "", false
	}
	val, ok := vars[key]
	return val, ok
}

// Set sets a key/value in the map, initializing it if needed.
func Set(vars Vars, key, value string) Vars {
	if vars == nil {
		vars = Vars{}
	}
	vars[key] = value
	return vars
}

// Merge merges base and override vars (override wins) and returns a new map.
func Merge(base Vars, override Vars) Vars {
	out := Vars{}
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}

// IsSensitiveKey reports whether a var, JSON field or form key names a credential.
func IsSensitiveKey(k string) bool {
	k = strings.ToLower(k)
	for _, s := range []string{"token", "secret", "password", "api_key", "apikey"} {
		if strings.Contains(k, s) {
			return true
		}
	}
	return false
}

// EnvironmentRef is a lightweight reference to an environment file on disk.
type EnvironmentRef struct {
	Name string
	Path string
}

// WorkspaceSpec describes where a workspace is created.
type WorkspaceSpec struct {
	Root string
}
