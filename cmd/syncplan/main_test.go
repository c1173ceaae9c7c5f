package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeTestConfig points every configured path into the test's temp dir so
// commands never touch the invoking user's home.
func writeTestConfig(t *testing.T, base string) string {
	t.Helper()
	configPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`[paths]
temp_root = %q
output_dir = %q
log_dir = %q
`, filepath.Join(base, "tmp"), filepath.Join(base, "out"), filepath.Join(base, "logs"))
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return configPath
}

func runCLI(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", configPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestConfigInitWritesSample(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(base, "config.toml")

	out, err := runCLI(t, "", "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, target) {
		t.Fatalf("output %q does not mention target", out)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[analysis]") {
		t.Fatal("sample config missing analysis section")
	}

	if _, err := runCLI(t, "", "config", "init", "--path", target); err == nil {
		t.Fatal("expected refusal to overwrite without --overwrite")
	}
}

func TestQueueAddAndList(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)

	out, err := runCLI(t, configPath, "queue", "add", "/in/ref.mkv", "/in/sec.mkv")
	if err != nil {
		t.Fatalf("queue add: %v", err)
	}
	if !strings.Contains(out, "Queued job 1") {
		t.Fatalf("unexpected add output: %q", out)
	}

	out, err = runCLI(t, configPath, "queue", "list")
	if err != nil {
		t.Fatalf("queue list: %v", err)
	}
	if !strings.Contains(out, "/in/ref.mkv") || !strings.Contains(out, "pending") {
		t.Fatalf("unexpected list output: %q", out)
	}

	out, err = runCLI(t, configPath, "queue", "list", "--status", "completed")
	if err != nil {
		t.Fatalf("queue list filtered: %v", err)
	}
	if !strings.Contains(out, "Queue is empty") {
		t.Fatalf("completed filter should match nothing: %q", out)
	}

	if _, err := runCLI(t, configPath, "queue", "list", "--status", "bogus"); err == nil {
		t.Fatal("expected unknown status error")
	}
}

func TestQueueClear(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)

	if _, err := runCLI(t, configPath, "queue", "add", "/in/a.mkv", "/in/b.mkv"); err != nil {
		t.Fatalf("queue add: %v", err)
	}

	out, err := runCLI(t, configPath, "queue", "clear")
	if err != nil {
		t.Fatalf("queue clear: %v", err)
	}
	if !strings.Contains(out, "Removed 0") {
		t.Fatalf("pending jobs must survive a plain clear: %q", out)
	}

	out, err = runCLI(t, configPath, "queue", "clear", "--all")
	if err != nil {
		t.Fatalf("queue clear --all: %v", err)
	}
	if !strings.Contains(out, "Removed 1") {
		t.Fatalf("unexpected clear output: %q", out)
	}
}

func TestConfigShowPrintsEffectiveConfig(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)

	out, err := runCLI(t, configPath, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, filepath.Join(base, "out")) {
		t.Fatalf("config show missing configured output dir: %q", out)
	}
}
