package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const allocTrace = `+ InitAnd q2
+ Controlled Z ([q0, q1], q2)
- Controlled Z
- InitAnd
`

const twoToffolis = `+ Controlled X ([q0, q1], q2)
- Controlled X
+ Controlled X ([q0, q1], q3)
- Controlled X
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestListingAndCounts(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := writeFile(t, dir, "alloc.trace", allocTrace)

	code, out, errOut := runCLI(t, path)
	if code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, errOut)
	}
	want := "a := [2]\nInitAnd(a)\n    if reg[0:1] then Z(a)\nCCZ: 1\n"
	if out != want {
		t.Errorf("stdout = %q, want %q", out, want)
	}
}

func TestQuietAndNoCounts(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := writeFile(t, dir, "alloc.trace", allocTrace)

	_, out, _ := runCLI(t, "-q", path)
	if out != "CCZ: 1\n" {
		t.Errorf("-q stdout = %q", out)
	}
	_, out, _ = runCLI(t, "-q", "-counts=false", path)
	if out != "" {
		t.Errorf("-q -counts=false stdout = %q, want nothing", out)
	}
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := writeFile(t, dir, "alloc.trace", allocTrace)
	writeFile(t, dir, "qtrace.toml", "[printer]\nindent = 1\n\n[profiler.aliases]\nCCZ = \"T\"\n")

	code, out, errOut := runCLI(t, path)
	if code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, errOut)
	}
	if !strings.Contains(out, "\n if reg[0:1] then Z(a)\n") || !strings.HasSuffix(out, "T: 1\n") {
		t.Errorf("config not applied, stdout = %q", out)
	}

	bad := writeFile(t, dir, "bad.toml", "[printer]\nwidth = 3\n")
	if code, _, errOut := runCLI(t, "-c", bad, path); code != 1 || !strings.Contains(errOut, "width") {
		t.Errorf("bad config: exit %d, stderr %q", code, errOut)
	}
}

func TestConvertToCBOR(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	text := writeFile(t, dir, "alloc.trace", allocTrace)
	bin := filepath.Join(dir, "alloc.cbor")

	_, fromText, _ := runCLI(t, "-o", bin, text)
	code, fromBin, errOut := runCLI(t, bin)
	if code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, errOut)
	}
	if fromText != fromBin {
		t.Errorf("binary replay = %q, text replay = %q", fromBin, fromText)
	}
}

func TestRecordAndHistory(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	db := filepath.Join(dir, "runs.db")
	first := writeFile(t, dir, "first.trace", allocTrace)
	second := writeFile(t, dir, "second.trace", twoToffolis)

	if code, _, errOut := runCLI(t, "-q", "-db", db, "-label", "demo", first); code != 0 {
		t.Fatalf("first run: exit %d, stderr: %s", code, errOut)
	}
	code, out, errOut := runCLI(t, "-q", "-db", db, "-label", "demo", second)
	if code != 0 {
		t.Fatalf("second run: exit %d, stderr: %s", code, errOut)
	}
	if !strings.Contains(out, "CCZ: 1 -> 2 (+1)") {
		t.Errorf("second run should report the change, stdout = %q", out)
	}

	_, out, _ = runCLI(t, "-db", db, "-history")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 || !strings.Contains(lines[0], "demo") {
		t.Errorf("history = %q, want two demo runs", out)
	}
}

func TestErrors(t *testing.T) {
	t.Chdir(t.TempDir())

	if code, _, _ := runCLI(t); code != 1 {
		t.Errorf("no files: exit %d, want 1", code)
	}
	if code, _, _ := runCLI(t, "missing.trace"); code != 1 {
		t.Errorf("missing file: exit %d, want 1", code)
	}
	if code, _, _ := runCLI(t, "-history"); code != 1 {
		t.Errorf("-history without -db: exit %d, want 1", code)
	}
	if code, _, _ := runCLI(t, "-nope"); code != 2 {
		t.Errorf("unknown flag: exit %d, want 2", code)
	}
}

func TestInitWritesDefaultConfig(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	if code, _, errOut := runCLI(t, "-init"); code != 0 {
		t.Fatalf("-init: exit %d, stderr: %s", code, errOut)
	}
	if _, err := os.Stat(filepath.Join(dir, "qtrace.toml")); err != nil {
		t.Fatalf("qtrace.toml not written: %v", err)
	}
	if code, _, _ := runCLI(t, "-init"); code != 1 {
		t.Errorf("second -init: exit %d, want 1", code)
	}
}

func TestVerbosityFlag(t *testing.T) {
	var v verbosity
	for _, s := range []string{"true", "true"} {
		if err := v.Set(s); err != nil {
			t.Fatal(err)
		}
	}
	if v != 2 {
		t.Errorf("after two -v, verbosity = %d, want 2", v)
	}
	if err := v.Set("5"); err != nil || v != 5 {
		t.Errorf("Set(5) = %v, verbosity %d", err, v)
	}
	if err := v.Set("lots"); err == nil {
		t.Error("expected error for non-numeric verbosity")
	}
}

func TestAdderExample(t *testing.T) {
	dir, err := filepath.Abs(filepath.Join("..", "..", "examples", "adder"))
	if err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)

	code, out, errOut := runCLI(t, "adder.trace")
	if code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, errOut)
	}
	for _, want := range []string{
		"Add(int[0:1], int[2:3])\n",
		"    a := [4:5]\n",
		"    InitAnd(a[0], qubit[0], qubit[2])\n",
		"    if reg[4]+[1] then X(a[1])\n",
		"    DelCarry(a)\n",
		"C: 3\nCCZ: 2\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
