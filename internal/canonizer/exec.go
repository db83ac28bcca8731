package canonizer

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"

	"canonize/internal/logging"
)

// ExecDriver runs the canonizer CLI out of its venv, one blocking
// subprocess per invocation.
type ExecDriver struct {
	cfg Config
}

func (d *ExecDriver) Configure(cfg Config) error {
	d.cfg = cfg
	return nil
}

func (d *ExecDriver) Transform(ctx context.Context, metaPath, input string) (Result, error) {
	args := []string{"transform", "run", "--meta", metaPath}
	return d.run(ctx, args, strings.NewReader(input))
}

// TransformFile is the --input variant for uncompressed JSONL already on
// disk; the engine reads the file itself instead of stdin.
func (d *ExecDriver) TransformFile(ctx context.Context, metaPath, inputFile string) (Result, error) {
	args := []string{"transform", "run", "--meta", metaPath, "--input", inputFile}
	return d.run(ctx, args, nil)
}

func (d *ExecDriver) run(ctx context.Context, args []string, stdin *strings.Reader) (Result, error) {
	bin := d.cfg.Bin()
	logging.L().Debug("executing canonizer", "bin", bin, "args", strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, bin, args...)
	if stdin != nil {
		cmd.Stdin = stdin
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// The process ran and failed; the exit code is the signal.
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		// Could not start at all (missing binary, cancelled ctx, ...).
		return res, err
	}
	res.ExitCode = cmd.ProcessState.ExitCode()
	return res, nil
}

func (d *ExecDriver) Close() error { return nil }

func init() { Register("exec", func() Engine { return &ExecDriver{} }) }
