// Package runner rebuilds the workspace command from a module checkout and
// runs it, so edits to the Go declarations show up in the synthesized
// template without restarting the process that watches them.
package runner

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	wetwire "github.com/lex00/wetwire-workspace-go"
	"github.com/lex00/wetwire-workspace-go/internal/template"
)

// CommandDir is the package, relative to the module root, that is rebuilt.
const CommandDir = "cmd/wetwire-workspace"

// Runner compiles and runs the workspace command of one module.
type Runner struct {
	ModuleDir  string
	ModulePath string
	GoBin      string
	Log        zerolog.Logger
}

// New finds the module enclosing dir and checks that it carries the
// workspace command.
func New(dir string, log zerolog.Logger) (*Runner, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("getting absolute path: %w", err)
	}
	root, modPath, err := findModule(abs)
	if err != nil {
		return nil, err
	}
	if info, err := os.Stat(filepath.Join(root, CommandDir)); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("module %s has no %s package", modPath, CommandDir)
	}
	return &Runner{
		ModuleDir:  root,
		ModulePath: modPath,
		GoBin:      FindGoBinary(),
		Log:        log,
	}, nil
}

// Build compiles the command into a temp dir, runs its build subcommand and
// parses the template it prints. configPath is passed through as --config
// when set; the child otherwise resolves the configuration the same way
// this process does.
func (r *Runner) Build(ctx context.Context, configPath string) (*wetwire.Template, error) {
	tmpDir, err := os.MkdirTemp("", "wetwire-workspace-runner-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	bin := filepath.Join(tmpDir, "wetwire-workspace")
	args := []string{"build"}
	if hasVendorDir(r.ModuleDir) {
		args = append(args, "-mod=vendor")
	}
	args = append(args, "-o", bin, "./"+CommandDir)

	compile := exec.CommandContext(ctx, r.GoBin, args...)
	compile.Dir = r.ModuleDir
	if output, err := compile.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("go build failed: %w\n%s", err, output)
	}
	r.Log.Debug().Str("module", r.ModulePath).Str("binary", bin).Msg("compiled workspace command")

	runArgs := []string{"build", "-f", "json"}
	if configPath != "" {
		abs, err := filepath.Abs(configPath)
		if err != nil {
			return nil, err
		}
		runArgs = append(runArgs, "--config", abs)
	}
	run := exec.CommandContext(ctx, bin, runArgs...)

	var stdout, stderr bytes.Buffer
	run.Stdout = &stdout
	run.Stderr = &stderr
	if err := run.Run(); err != nil {
		return nil, fmt.Errorf("running workspace command: %w\n%s", err, strings.TrimSpace(stderr.String()))
	}

	t, err := template.Load(stdout.Bytes())
	if err != nil {
		return nil, fmt.Errorf("parsing output: %w\nstderr: %s", err, stderr.String())
	}
	return t, nil
}

// findModule walks up from dir to the nearest go.mod and returns its
// directory and module path.
func findModule(dir string) (string, string, error) {
	for {
		data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
		if err == nil {
			for _, line := range strings.Split(string(data), "\n") {
				trimmed := strings.TrimSpace(line)
				if strings.HasPrefix(trimmed, "module ") {
					return dir, strings.TrimSpace(strings.TrimPrefix(trimmed, "module ")), nil
				}
			}
			return "", "", fmt.Errorf("no module directive in %s", filepath.Join(dir, "go.mod"))
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", "", fmt.Errorf("no go.mod found")
		}
		dir = parent
	}
}

func hasVendorDir(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, "vendor"))
	return err == nil && info.IsDir()
}

// FindGoBinary locates the go executable on PATH, then in common install
// locations.
func FindGoBinary() string {
	if path, err := exec.LookPath("go"); err == nil {
		return path
	}
	for _, p := range []string{
		"/usr/local/go/bin/go",
		"/opt/homebrew/bin/go",
		"/usr/bin/go",
		"/usr/local/bin/go",
	} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	// Let exec report the missing binary.
	return "go"
}
