package vault

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Part is one gzip-compressed JSONL chunk of a run. Seq values order the
// parts and are not required to be contiguous.
type Part struct {
	Seq  int    `json:"seq"`
	Path string `json:"path"` // relative to the run directory
}

type Totals struct {
	Records int `json:"records"`
}

// Manifest describes one ingestion run for a single (source, account)
// pair. Parts carry the data; Totals.Records is informational only.
type Manifest struct {
	Account string `json:"account"`
	Source  string `json:"source"` // slash-separated, e.g. "email/gmail"
	Totals  Totals `json:"totals"`
	Parts   []Part `json:"parts"`
}

// ReadManifest loads and parses a run manifest. A missing or malformed
// manifest is a hard error; discovery already verified existence, so a
// failure here means the vault changed underneath us.
func ReadManifest(path string) (Manifest, error) {
	var m Manifest
	raw, err := os.ReadFile(path)
	if err != nil {
		return m, fmt.Errorf("read manifest %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, &m); err != nil {
		return m, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return m, nil
}

// SortedParts returns the parts in ascending seq order, regardless of
// their order in the manifest.
func (m Manifest) SortedParts() []Part {
	parts := append([]Part(nil), m.Parts...)
	sort.SliceStable(parts, func(i, j int) bool { return parts[i].Seq < parts[j].Seq })
	return parts
}
