package runner

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// fakeGo stands in for the go tool: "build -o OUT" writes an OUT script
// that prints a template whose FromPort is the SSHPort constant declared in
// infra/security.go of the current directory.
const fakeGo = `#!/bin/sh
out=""
while [ $# -gt 0 ]; do
  if [ "$1" = "-o" ]; then out="$2"; shift; fi
  shift
done
port=$(sed -n 's/^const SSHPort = \([0-9]*\)$/\1/p' infra/security.go)
cat > "$out" <<BIN
#!/bin/sh
echo '{"AWSTemplateFormatVersion":"2010-09-09","Resources":{"SG":{"Type":"AWS::EC2::SecurityGroup","Properties":{"FromPort":$port}}}}'
BIN
chmod +x "$out"
`

func writeModule(t *testing.T, port string) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"go.mod":                        "module example.com/ws\n\ngo 1.24\n",
		"cmd/wetwire-workspace/main.go": "package main\n\nfunc main() {}\n",
		"infra/security.go":             "package infra\n\nconst SSHPort = " + port + "\n",
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func fakeGoBinary(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in for go")
	}
	path := filepath.Join(t.TempDir(), "go")
	if err := os.WriteFile(path, []byte(fakeGo), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNew_FindsModuleRoot(t *testing.T) {
	dir := writeModule(t, "22")

	r, err := New(filepath.Join(dir, "infra"), zerolog.Nop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if r.ModuleDir != dir {
		t.Errorf("ModuleDir = %q, want %q", r.ModuleDir, dir)
	}
	if r.ModulePath != "example.com/ws" {
		t.Errorf("ModulePath = %q", r.ModulePath)
	}
	if r.GoBin == "" {
		t.Error("GoBin should be set")
	}
}

func TestNew_RequiresCommand(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module example.com/other\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := New(dir, zerolog.Nop())
	if err == nil || !strings.Contains(err.Error(), CommandDir) {
		t.Errorf("err = %v, want missing %s", err, CommandDir)
	}
}

func TestFindModule_NoModuleDirective(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "go.mod"), []byte("go 1.24\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := findModule(dir); err == nil {
		t.Error("expected error for go.mod without module directive")
	}
}

func TestHasVendorDir(t *testing.T) {
	dir := t.TempDir()
	if hasVendorDir(dir) {
		t.Error("hasVendorDir should return false when no vendor directory")
	}
	if err := os.Mkdir(filepath.Join(dir, "vendor"), 0o755); err != nil {
		t.Fatal(err)
	}
	if !hasVendorDir(dir) {
		t.Error("hasVendorDir should return true when vendor directory exists")
	}
}

func TestFindGoBinary(t *testing.T) {
	if FindGoBinary() == "" {
		t.Error("FindGoBinary returned empty path")
	}
}

func TestBuild_RecompilesDeclarations(t *testing.T) {
	goBin := fakeGoBinary(t)
	dir := writeModule(t, "22")

	r, err := New(dir, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	r.GoBin = goBin

	tmpl, err := r.Build(context.Background(), "")
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if got := tmpl.Resources["SG"].Properties["FromPort"]; got != float64(22) {
		t.Errorf("FromPort = %v, want 22", got)
	}

	if err := os.WriteFile(filepath.Join(dir, "infra", "security.go"), []byte("package infra\n\nconst SSHPort = 2222\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	tmpl, err = r.Build(context.Background(), "")
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if got := tmpl.Resources["SG"].Properties["FromPort"]; got != float64(2222) {
		t.Errorf("FromPort = %v, want 2222", got)
	}
}

func TestBuild_CompileError(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in for go")
	}
	dir := writeModule(t, "22")
	goBin := filepath.Join(t.TempDir(), "go")
	if err := os.WriteFile(goBin, []byte("#!/bin/sh\necho 'infra/security.go:3: syntax error' >&2\nexit 1\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	r, err := New(dir, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	r.GoBin = goBin

	_, err = r.Build(context.Background(), "")
	if err == nil || !strings.Contains(err.Error(), "syntax error") {
		t.Errorf("err = %v, want compiler output", err)
	}
}
