package canonizer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

// fakeVenv installs a shell script as <venv>/bin/can and returns the
// matching Config. The script echoes stdin back, or the --input file when
// one is passed.
func fakeVenv(t *testing.T, script string) Config {
	t.Helper()
	venv := filepath.Join(t.TempDir(), "venv")
	binDir := filepath.Join(venv, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatalf("mkdir bin: %v", err)
	}
	if err := os.WriteFile(filepath.Join(binDir, "can"), []byte(script), 0o755); err != nil {
		t.Fatalf("write can script: %v", err)
	}
	return Config{VenvPath: venv, BinName: "can"}
}

const echoScript = `#!/bin/sh
if [ "$5" = "--input" ]; then
  cat "$6"
else
  cat
fi
`

func TestExecDriver_TransformEchoesStdin(t *testing.T) {
	d := &ExecDriver{}
	if err := d.Configure(fakeVenv(t, echoScript)); err != nil {
		t.Fatalf("Configure: %v", err)
	}

	res, err := d.Transform(context.Background(), "/meta.yaml", "{\"a\":1}\n{\"a\":2}\n")
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if res.ExitCode != 0 {
		t.Fatalf("want exit 0, got %d (stderr %q)", res.ExitCode, res.Stderr)
	}
	if res.Stdout != "{\"a\":1}\n{\"a\":2}\n" {
		t.Fatalf("unexpected stdout: %q", res.Stdout)
	}
}

func TestExecDriver_NonZeroExitCaptured(t *testing.T) {
	d := &ExecDriver{}
	script := "#!/bin/sh\necho \"bad transform\" >&2\nexit 3\n"
	if err := d.Configure(fakeVenv(t, script)); err != nil {
		t.Fatalf("Configure: %v", err)
	}

	res, err := d.Transform(context.Background(), "/meta.yaml", "x\n")
	if err != nil {
		t.Fatalf("Transform should not error on non-zero exit: %v", err)
	}
	if res.ExitCode != 3 {
		t.Fatalf("want exit 3, got %d", res.ExitCode)
	}
	if res.Stderr != "bad transform\n" {
		t.Fatalf("unexpected stderr: %q", res.Stderr)
	}
}

func TestExecDriver_MissingBinary(t *testing.T) {
	d := &ExecDriver{}
	if err := d.Configure(Config{VenvPath: t.TempDir(), BinName: "can"}); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if _, err := d.Transform(context.Background(), "/meta.yaml", "x\n"); err == nil {
		t.Fatal("expected start error for missing binary")
	}
}

func TestExecDriver_TransformFileReadsInput(t *testing.T) {
	d := &ExecDriver{}
	if err := d.Configure(fakeVenv(t, echoScript)); err != nil {
		t.Fatalf("Configure: %v", err)
	}

	input := filepath.Join(t.TempDir(), "in.jsonl")
	if err := os.WriteFile(input, []byte("{\"b\":1}\n"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	res, err := d.TransformFile(context.Background(), "/meta.yaml", input)
	if err != nil {
		t.Fatalf("TransformFile: %v", err)
	}
	if res.Stdout != "{\"b\":1}\n" {
		t.Fatalf("unexpected stdout: %q", res.Stdout)
	}
}

func TestNewEngine_Registry(t *testing.T) {
	if _, err := NewEngine("exec"); err != nil {
		t.Fatalf("exec driver should be registered: %v", err)
	}
	if _, err := NewEngine("nope"); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
