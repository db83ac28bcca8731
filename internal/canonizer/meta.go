package canonizer

import (
	"fmt"
	"os"
	"path/filepath"
)

// MetaRegistry resolves transform names against a directory of
// <name>.meta.yaml descriptors. Descriptor content is owned by the
// engine; the stage only checks existence.
type MetaRegistry struct {
	Dir string
}

func (r MetaRegistry) Path(name string) string {
	return filepath.Join(r.Dir, name+".meta.yaml")
}

// Resolve returns the descriptor path for name, or an error if the
// mapping references a transform that cannot be located.
func (r MetaRegistry) Resolve(name string) (string, error) {
	p := r.Path(name)
	if _, err := os.Stat(p); err != nil {
		return "", fmt.Errorf("transform metadata not found: %s", p)
	}
	return p, nil
}
