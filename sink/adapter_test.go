package sink

import "testing"

type nopAdapter struct{}

func (nopAdapter) Configure(any) error          { return nil }
func (nopAdapter) Publish(string, []byte) error { return nil }
func (nopAdapter) Close() error                 { return nil }

func TestRegistry_RoundTrip(t *testing.T) {
	Register("nop", func() Adapter { return nopAdapter{} })

	if _, err := NewAdapter("nop"); err != nil {
		t.Fatalf("NewAdapter(nop): %v", err)
	}
}

func TestRegistry_UnknownSink(t *testing.T) {
	if _, err := NewAdapter("definitely-not-registered"); err == nil {
		t.Fatal("expected error for unknown sink")
	}
}
