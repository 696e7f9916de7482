package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/dshills/ustring/internal/config"
)

// writeFile creates a file under t.TempDir and returns its path.
func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

// runCmd runs the command with the given stdin and returns its exit code,
// stdout and stderr.
func runCmd(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestVersion(t *testing.T) {
	code, out, _ := runCmd(t, "", "-version")
	if code != exitOK {
		t.Fatalf("exit code = %d, want %d", code, exitOK)
	}
	if !strings.HasPrefix(out, "ustring dev\n") {
		t.Errorf("output = %q", out)
	}
}

func TestUsage(t *testing.T) {
	code, _, errOut := runCmd(t, "")
	if code != exitUsage {
		t.Errorf("exit code = %d, want %d", code, exitUsage)
	}
	if !strings.Contains(errOut, "Usage: ustring") {
		t.Errorf("stderr = %q", errOut)
	}

	code, _, errOut = runCmd(t, "", "frobnicate")
	if code != exitUsage || !strings.Contains(errOut, `unknown command "frobnicate"`) {
		t.Errorf("unknown command: code %d, stderr %q", code, errOut)
	}
}

func TestValidate(t *testing.T) {
	good := writeFile(t, "good.txt", []byte("héllo\n"))
	bad := writeFile(t, "bad.txt", []byte{0x68, 0x69, 0xFF})

	code, out, _ := runCmd(t, "", "validate", good)
	if code != exitOK {
		t.Fatalf("exit code = %d, want %d", code, exitOK)
	}
	if want := good + ": ok (7 bytes, 6 chars)\n"; out != want {
		t.Errorf("output = %q, want %q", out, want)
	}

	code, out, _ = runCmd(t, "", "validate", good, bad)
	if code != exitFail {
		t.Errorf("exit code = %d, want %d", code, exitFail)
	}
	if !strings.Contains(out, bad+": invalid UTF-8 at byte 2\n") {
		t.Errorf("output = %q", out)
	}
}

func TestValidateStdin(t *testing.T) {
	code, out, _ := runCmd(t, "中文", "validate", "-")
	if code != exitOK || out != "-: ok (6 bytes, 2 chars)\n" {
		t.Errorf("code %d, output %q", code, out)
	}
}

func TestValidateMissingFile(t *testing.T) {
	code, _, errOut := runCmd(t, "", "validate", filepath.Join(t.TempDir(), "nope.txt"))
	if code != exitFail || !strings.Contains(errOut, "Error:") {
		t.Errorf("code %d, stderr %q", code, errOut)
	}
}

func TestValidateWithLimitedBudget(t *testing.T) {
	cfgPath := writeFile(t, "ustring.toml", []byte("[allocator]\nkind = \"limited\"\nlimit_bytes = 4\n"))
	file := writeFile(t, "big.txt", []byte("more than four bytes"))

	code, _, errOut := runCmd(t, "", "-config", cfgPath, "validate", file)
	if code != exitFail {
		t.Errorf("exit code = %d, want %d", code, exitFail)
	}
	if !strings.Contains(errOut, "budget exceeded") {
		t.Errorf("stderr = %q", errOut)
	}
}

func TestSanitize(t *testing.T) {
	file := writeFile(t, "mixed.txt", []byte("hi\xffthere"))
	code, out, _ := runCmd(t, "", "sanitize", file)
	if code != exitOK {
		t.Fatalf("exit code = %d, want %d", code, exitOK)
	}
	if out != "hi\uFFFDthere" {
		t.Errorf("output = %q", out)
	}

	code, out, _ = runCmd(t, "ok\xc3", "sanitize", "-")
	if code != exitOK || out != "ok\uFFFD" {
		t.Errorf("stdin: code %d, output %q", code, out)
	}
}

func TestStats(t *testing.T) {
	file := writeFile(t, "poem.txt", []byte("línea uno\nline two\n"))

	code, out, _ := runCmd(t, "", "stats", file)
	if code != exitOK {
		t.Fatalf("exit code = %d, want %d", code, exitOK)
	}
	for _, want := range []string{"bytes:     20\n", "chars:     19\n", "lines:     2\n", "allocator: heap\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}

	code, out, _ = runCmd(t, "", "stats", "-format", "json", file)
	if code != exitOK {
		t.Fatalf("json exit code = %d", code)
	}
	var fromJSON map[string]any
	if err := json.Unmarshal([]byte(out), &fromJSON); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if fromJSON["file"] != file || fromJSON["chars"] != float64(19) {
		t.Errorf("json = %v", fromJSON)
	}

	code, out, _ = runCmd(t, "", "stats", "-format", "yaml", file)
	if code != exitOK {
		t.Fatalf("yaml exit code = %d", code)
	}
	var fromYAML map[string]any
	if err := yaml.Unmarshal([]byte(out), &fromYAML); err != nil {
		t.Fatalf("invalid YAML %q: %v", out, err)
	}
	if fromYAML["lines"] != 2 {
		t.Errorf("yaml = %v", fromYAML)
	}

	code, _, errOut := runCmd(t, "", "stats", "-format", "xml", file)
	if code != exitUsage || !strings.Contains(errOut, "unknown format") {
		t.Errorf("xml: code %d, stderr %q", code, errOut)
	}
}

func TestStatsPoolAllocator(t *testing.T) {
	t.Setenv("USTRING_ALLOCATOR", "pool")
	file := writeFile(t, "a.txt", []byte("abc"))

	code, out, _ := runCmd(t, "", "stats", file)
	if code != exitOK {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(out, "capacity:  64\n") || !strings.Contains(out, "allocator: pool(max=65536)\n") {
		t.Errorf("output = %q", out)
	}
}

func TestExtract(t *testing.T) {
	file := writeFile(t, "doc.json", []byte(`{"user":{"name":"Zoë","age":30}}`))

	code, out, _ := runCmd(t, "", "extract", "-path", "user.name", file)
	if code != exitOK || out != "Zoë\n" {
		t.Errorf("code %d, output %q", code, out)
	}

	code, _, errOut := runCmd(t, "", "extract", "-path", "user.age", file)
	if code != exitFail || !strings.Contains(errOut, "not a string") {
		t.Errorf("age: code %d, stderr %q", code, errOut)
	}

	code, _, _ = runCmd(t, "", "extract", file)
	if code != exitUsage {
		t.Errorf("missing -path: code %d, want %d", code, exitUsage)
	}
}

func TestConfigCommand(t *testing.T) {
	cfgPath := writeFile(t, "ustring.toml", []byte("[growth]\nmin_capacity = 256\n"))

	code, out, errOut := runCmd(t, "", "-verbose", "-c", cfgPath, "config")
	if code != exitOK {
		t.Fatalf("exit code = %d, stderr %q", code, errOut)
	}
	if !strings.Contains(errOut, "loaded configuration from "+cfgPath) {
		t.Errorf("stderr = %q", errOut)
	}

	var got config.Config
	if err := toml.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not TOML: %v\n%s", err, out)
	}
	want := config.Default()
	want.Growth.MinCapacity = 256
	if got != want {
		t.Errorf("config = %+v, want %+v", got, want)
	}
}

func TestUnrelatedEnvIgnored(t *testing.T) {
	t.Setenv("USTRING_LOG_LEVEL", "debug")

	code, out, errOut := runCmd(t, "abc", "validate", "-")
	if code != exitOK {
		t.Fatalf("exit code = %d, stderr %q", code, errOut)
	}
	if out != "-: ok (3 bytes, 3 chars)\n" {
		t.Errorf("output = %q", out)
	}
}

func TestBadConfig(t *testing.T) {
	cfgPath := writeFile(t, "ustring.toml", []byte("[allocator]\nkind = \"arena\"\n"))
	code, _, errOut := runCmd(t, "", "-config", cfgPath, "config")
	if code != exitFail || !strings.Contains(errOut, "allocator.kind") {
		t.Errorf("code %d, stderr %q", code, errOut)
	}
}
