package sink

import "fmt"

// Adapter is the common behaviour every result sink exposes. A sink
// receives the marshaled stage result exactly once per stage run.
type Adapter interface {
	Configure(any) error                      // driver-specific YAML ⇒ struct
	Publish(key string, payload []byte) error // one stage result, JSON-encoded
	Close() error                             // idempotent
}

/*──────── registry ───────*/

type factory = func() Adapter

var reg = map[string]factory{}

func Register(name string, f factory) { reg[name] = f }

func NewAdapter(name string) (Adapter, error) {
	if f, ok := reg[name]; ok {
		return f(), nil
	}
	return nil, fmt.Errorf("unknown sink %q", name)
}
