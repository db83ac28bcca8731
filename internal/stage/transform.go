package stage

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"canonize/internal/spec"
	"canonize/internal/telemetry"
	"canonize/internal/vault"
)

// transformFromManifest rebuilds one (source, account) canonical file
// from the manifest's parts. Reprocessing the same LATEST run always
// yields the same output: the previous file is deleted first.
func (s *Stage) transformFromManifest(ctx context.Context, manifestPath string, m spec.Mapping) (int, error) {
	manifest, err := vault.ReadManifest(manifestPath)
	if err != nil {
		return 0, err
	}
	runDir := filepath.Dir(manifestPath)

	parts := manifest.SortedParts()
	if len(parts) == 0 {
		s.log.Warn("no parts found in manifest", "manifest", manifestPath)
		return 0, nil
	}
	s.log.Info("processing manifest parts",
		"manifest", manifestPath,
		"parts_count", len(parts),
		"total_records", manifest.Totals.Records,
		"output_name", outputNameOf(m))

	metaPath, err := s.registry.Resolve(m.Transform)
	if err != nil {
		return 0, err
	}

	account := manifest.Account
	if account == "" {
		account = "unknown"
	}
	source := manifest.Source
	if source == "" {
		source = "unknown"
	}
	// email/gmail -> email_gmail
	sourceDir := strings.ReplaceAll(source, "/", "_")

	accountOutputDir := filepath.Join(s.cfg.OutputDir, sourceDir)
	if err := os.MkdirAll(accountOutputDir, 0o755); err != nil {
		return 0, err
	}
	outputFile := filepath.Join(accountOutputDir, account+".jsonl")

	// Idempotency: rebuild from LATEST, never append across runs.
	if _, err := os.Stat(outputFile); err == nil {
		s.log.Debug("clearing existing canonical output", "file", outputFile)
		if err := os.Remove(outputFile); err != nil {
			return 0, err
		}
	}

	totalRecords := 0
	for _, part := range parts {
		partPath := filepath.Join(runDir, part.Path)
		if _, err := os.Stat(partPath); err != nil {
			s.log.Warn("part file not found", "part", partPath)
			continue
		}
		records, err := s.transformGzipPart(ctx, partPath, metaPath, outputFile)
		if err != nil {
			return totalRecords, err
		}
		telemetry.PartsTotal.WithLabelValues(source).Inc()
		totalRecords += records
	}

	telemetry.RecordsTotal.WithLabelValues(source).Add(float64(totalRecords))
	return totalRecords, nil
}

// transformGzipPart feeds one decompressed part through the engine and
// appends the captured stdout to the account's canonical file. Records
// are a newline count of the output, a line proxy rather than a parsed
// JSON count.
func (s *Stage) transformGzipPart(ctx context.Context, partPath, metaPath, outputFile string) (int, error) {
	input, err := readGzipText(partPath)
	if err != nil {
		return 0, err
	}

	s.log.Debug("transforming part", "part", filepath.Base(partPath))

	res, err := s.engine.Transform(ctx, metaPath, input)
	if err != nil {
		return 0, fmt.Errorf("canonizer failed on %s: %w", filepath.Base(partPath), err)
	}
	if res.ExitCode != 0 {
		return 0, res.FailureError(filepath.Base(partPath))
	}

	f, err := os.OpenFile(outputFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, err
	}
	if _, err := f.WriteString(res.Stdout); err != nil {
		f.Close()
		return 0, err
	}
	if err := f.Close(); err != nil {
		return 0, err
	}

	return strings.Count(res.Stdout, "\n"), nil
}

// readGzipText decompresses a whole part into memory as UTF-8 text.
func readGzipText(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return "", fmt.Errorf("open gzip %s: %w", path, err)
	}
	defer gz.Close()

	raw, err := io.ReadAll(gz)
	if err != nil {
		return "", fmt.Errorf("decompress %s: %w", path, err)
	}
	return string(raw), nil
}

func outputNameOf(m spec.Mapping) string {
	if m.OutputName != "" {
		return m.OutputName
	}
	return "canonical"
}
