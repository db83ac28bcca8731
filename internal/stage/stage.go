// Package stage implements the canonize pipeline stage: vault discovery,
// per-manifest transformation through the canonizer engine, and the
// best-effort fold of per-manifest outcomes into one stage result.
package stage

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"canonize/internal/canonizer"
	"canonize/internal/logging"
	"canonize/internal/spec"
	"canonize/internal/telemetry"
	"canonize/internal/vault"
)

const Name = "canonize"

type Stage struct {
	cfg       spec.File
	engineCfg canonizer.Config
	engine    canonizer.Engine
	registry  canonizer.MetaRegistry

	runID string
	log   *slog.Logger
}

func New(cfg spec.File, engineCfg canonizer.Config, eng canonizer.Engine) *Stage {
	runID := uuid.NewString()
	return &Stage{
		cfg:       cfg,
		engineCfg: engineCfg,
		engine:    eng,
		registry:  canonizer.MetaRegistry{Dir: cfg.TransformRegistry},
		runID:     runID,
		log:       logging.Stage(Name, runID),
	}
}

func (s *Stage) RunID() string { return s.runID }

// Validate checks every precondition before any processing starts. A
// violation here is fatal: the stage must not run.
func (s *Stage) Validate() error {
	if _, err := os.Stat(s.engineCfg.RepoPath); err != nil {
		return fmt.Errorf("canonizer repo not found: %s", s.engineCfg.RepoPath)
	}
	if _, err := os.Stat(s.engineCfg.VenvPath); err != nil {
		return fmt.Errorf("canonizer venv not found: %s", s.engineCfg.VenvPath)
	}
	if _, err := os.Stat(s.engineCfg.Bin()); err != nil {
		return fmt.Errorf("canonizer executable not found: %s", s.engineCfg.Bin())
	}
	if _, err := os.Stat(s.cfg.TransformRegistry); err != nil {
		return fmt.Errorf("transform registry not found: %s", s.cfg.TransformRegistry)
	}
	if _, err := os.Stat(s.cfg.InputDir); err != nil {
		return fmt.Errorf("vault directory does not exist: %s", s.cfg.InputDir)
	}
	if err := ensureWritableDir(s.cfg.OutputDir); err != nil {
		return fmt.Errorf("output directory not writable: %w", err)
	}
	if len(s.cfg.Mappings) == 0 {
		return fmt.Errorf("no transform mappings configured")
	}
	return nil
}

// Execute runs every configured mapping sequentially. Individual manifest
// failures are collected, not propagated: the stage only fails when every
// transform failed and nothing was produced.
func (s *Stage) Execute(ctx context.Context) Result {
	s.log.Info("starting canonization from vault",
		"mappings_count", len(s.cfg.Mappings), "vault_root", s.cfg.InputDir)

	var outcomes []manifestOutcome

	for _, m := range s.cfg.Mappings {
		manifests := vault.FindManifests(s.cfg.InputDir, m.SourcePattern)
		if len(manifests) == 0 {
			s.log.Warn("no manifests found for source", "source_path", m.SourcePattern)
			continue
		}
		s.log.Info("manifests discovered",
			"source_path", m.SourcePattern, "manifest_count", len(manifests))

		for _, manifestPath := range manifests {
			records, err := s.transformFromManifest(ctx, manifestPath, m)
			outcomes = append(outcomes, manifestOutcome{
				manifest: manifestPath,
				records:  records,
				err:      err,
			})
			if err != nil {
				telemetry.ManifestErrors.Inc()
				s.log.Error("failed to transform manifest",
					"manifest", manifestPath, "err", err)
				continue
			}
			s.log.Info("manifest transformed",
				"manifest", manifestPath, "records", records)
		}
	}

	return s.fold(outcomes)
}

// fold turns per-manifest outcomes plus the on-disk output set into the
// stage result. Partial success is not stage failure.
func (s *Stage) fold(outcomes []manifestOutcome) Result {
	totalRecords := 0
	var failures []manifestOutcome
	for _, o := range outcomes {
		if o.failed() {
			failures = append(failures, o)
			continue
		}
		totalRecords += o.records
	}

	outputFiles := collectOutputs(s.cfg.OutputDir)

	if len(failures) > 0 && len(outputFiles) == 0 {
		first := failures[0]
		return Result{
			StageName: Name,
			Success:   false,
			ErrorMessage: fmt.Sprintf("%d transform(s) failed: failed to transform manifest %s: %v",
				len(failures), first.manifest, first.err),
		}
	}

	return Result{
		StageName:        Name,
		Success:          true,
		RecordsProcessed: totalRecords,
		OutputFiles:      outputFiles,
		Metadata: map[string]any{
			"run_id":             s.runID,
			"transform_registry": s.cfg.TransformRegistry,
			"mappings_applied":   len(s.cfg.Mappings),
			"errors":             len(failures),
		},
	}
}

// collectOutputs lists every *.jsonl under the output root, including
// files left by earlier runs; stale-file cleanup is not this stage's job.
func collectOutputs(outputDir string) []string {
	var files []string
	_ = filepath.WalkDir(outputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".jsonl") {
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)
	return files
}

func ensureWritableDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	probe, err := os.CreateTemp(dir, ".write-check-*")
	if err != nil {
		return err
	}
	probe.Close()
	return os.Remove(probe.Name())
}
