package vault

import (
	"encoding/json"
	"os"
	"path/filepath"

	"canonize/internal/logging"
)

// latestMarker is the LATEST.json content pinning an account's
// authoritative run. There is no most-recent fallback: no marker, no run.
type latestMarker struct {
	DT    string `json:"dt"`
	RunID string `json:"run_id"`
}

// FindManifests resolves the manifest path of the LATEST run for every
// account under vaultRoot/sourcePath.
//
// One bad account never aborts discovery for the others: missing markers
// are skipped at debug, malformed or stale markers at warn. The returned
// order follows directory traversal and is not guaranteed stable.
func FindManifests(vaultRoot, sourcePath string) []string {
	log := logging.L()
	var manifests []string

	sourceDir := filepath.Join(vaultRoot, sourcePath)
	entries, err := os.ReadDir(sourceDir)
	if err != nil {
		// Absent source categories are expected.
		log.Debug("source path not readable, skipping", "source_dir", sourceDir, "err", err)
		return manifests
	}

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		accountDir := filepath.Join(sourceDir, e.Name())
		marker := filepath.Join(accountDir, "LATEST.json")

		raw, err := os.ReadFile(marker)
		if err != nil {
			if os.IsNotExist(err) {
				log.Debug("no LATEST.json, skipping account", "account_dir", accountDir)
			} else {
				log.Warn("could not read LATEST.json", "account_dir", accountDir, "err", err)
			}
			continue
		}

		var latest latestMarker
		if err := json.Unmarshal(raw, &latest); err != nil {
			log.Warn("could not parse LATEST.json", "account_dir", accountDir, "err", err)
			continue
		}
		if latest.DT == "" || latest.RunID == "" {
			log.Warn("invalid LATEST.json", "account_dir", accountDir)
			continue
		}

		manifest := filepath.Join(accountDir,
			"dt="+latest.DT, "run_id="+latest.RunID, "manifest.json")
		if _, err := os.Stat(manifest); err != nil {
			log.Warn("LATEST points to non-existent run", "manifest", manifest)
			continue
		}

		manifests = append(manifests, manifest)
		log.Debug("found LATEST manifest",
			"account", e.Name(), "dt", latest.DT, "run_id", latest.RunID)
	}

	return manifests
}
