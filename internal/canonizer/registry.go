package canonizer

import "fmt"

// Factory builds an Engine (e.g. ExecDriver).
type Factory func() Engine

var registry = map[string]Factory{}

// Register is called from each driver's init() or main() factory map.
func Register(name string, f Factory) {
	registry[name] = f
}

// NewEngine returns a driver by name ("exec", ...).
func NewEngine(name string) (Engine, error) {
	if f, ok := registry[name]; ok {
		return f(), nil
	}
	return nil, fmt.Errorf("canonizer: unsupported driver %q", name)
}
