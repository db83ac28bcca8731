// canonize/sink/stdout/driver.go
package stdout

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"canonize/sink"
)

/* ────────── public YAML config ────────── */
type Config struct {
	Pretty bool `yaml:"pretty"` // indent the result JSON
}

/* ────────── driver ────────── */
type driver struct {
	cfg Config
	out io.Writer // swapped in tests
}

/* ────────── sink.Adapter ────────── */
func (d *driver) Configure(raw any) error {
	c, ok := raw.(Config)
	if !ok {
		return fmt.Errorf("stdout-sink: expected Config, got %T", raw)
	}
	d.cfg = c
	return nil
}

func (d *driver) Publish(key string, payload []byte) error {
	w := d.out
	if w == nil {
		w = os.Stdout
	}
	if d.cfg.Pretty {
		var buf bytes.Buffer
		if err := json.Indent(&buf, payload, "", "  "); err == nil {
			payload = buf.Bytes()
		}
	}
	_, err := fmt.Fprintf(w, "[%s] %s\n", key, payload)
	return err
}

func (d *driver) Close() error { return nil }

/* ────────── auto-register ────────── */
func init() {
	sink.Register("stdout", func() sink.Adapter { return &driver{} })
}
