package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	wetwire "github.com/lex00/wetwire-workspace-go"
	"github.com/lex00/wetwire-workspace-go/internal/config"
	"github.com/lex00/wetwire-workspace-go/internal/lint"
	"github.com/lex00/wetwire-workspace-go/internal/runner"
)

// newWatchCmd creates the "watch" subcommand for rebuilding on changes.
func newWatchCmd(cfg configPath) *cobra.Command {
	var (
		lintOnly     bool
		debounce     time.Duration
		outputFormat string
		outputFile   string
	)

	cmd := &cobra.Command{
		Use:   "watch [source dirs...]",
		Short: "Rebuild when the configuration or declarations change",
		Long: `Watch monitors the configuration file and the given source directories
and rebuilds the template on every change:

- Recompiles the workspace command from the enclosing module, so edits
  to the Go declarations reach the template
- Runs template lint, plus source lint for the given directories
- Rebuilds if lint passes (unless --lint-only)
- Debounces rapid changes to avoid excessive rebuilds

Examples:
    wetwire-workspace watch
    wetwire-workspace watch ./infra/... -o template.json
    wetwire-workspace watch ./infra/... --lint-only --debounce 1s`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runWatch(ctx, cmd.OutOrStdout(), args, watchOptions{
				configPath:   cfg(),
				lintOnly:     lintOnly,
				debounce:     debounce,
				outputFormat: outputFormat,
				outputFile:   outputFile,
			})
		},
	}

	cmd.Flags().BoolVar(&lintOnly, "lint-only", false, "Only run lint, skip build")
	cmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, "Debounce duration for rapid changes")
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "json", "Output format for build: json or yaml")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file for build (default: summary only)")

	return cmd
}

type watchOptions struct {
	configPath   string
	lintOnly     bool
	debounce     time.Duration
	outputFormat string
	outputFile   string

	// runner recompiles the declarations; nil builds in-process.
	runner *runner.Runner
}

// runWatch rebuilds once, then again after each debounced change, until
// ctx is cancelled.
func runWatch(ctx context.Context, w io.Writer, sources []string, opts watchOptions) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() {
		_ = watcher.Close()
	}()

	dirs, err := resolvePackageDirs(sources)
	if err != nil {
		return fmt.Errorf("failed to resolve source dirs: %w", err)
	}
	for _, dir := range dirs {
		if err := addDirRecursive(watcher, dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		fmt.Fprintf(w, "Watching: %s\n", dir)
	}

	// The config file may not exist yet; watch its directory instead.
	configFile, _ := config.Resolve(opts.configPath)
	configFile, err = filepath.Abs(configFile)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(configFile)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(configFile), err)
	}
	fmt.Fprintf(w, "Watching: %s\n", configFile)

	if opts.runner == nil {
		root := "."
		if len(dirs) > 0 {
			root = dirs[0]
		}
		r, err := runner.New(root, log.Logger)
		if err != nil {
			log.Warn().Err(err).Msg("cannot recompile declarations; rebuilds follow configuration changes only")
		} else {
			opts.runner = r
		}
	}
	if opts.runner != nil {
		fmt.Fprintf(w, "Rebuilding from source in %s\n", opts.runner.ModuleDir)
	}

	fmt.Fprintln(w, "Running initial lint/build...")
	runLintAndBuild(ctx, w, sources, opts)

	var debounceTimer *time.Timer
	rebuildChan := make(chan struct{}, 1)

	fmt.Fprintln(w, "\nWatching for changes... (Ctrl+C to stop)")

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevantChange(event, configFile) {
				continue
			}
			log.Debug().Str("file", event.Name).Str("op", event.Op.String()).Msg("change")

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(opts.debounce, func() {
				select {
				case rebuildChan <- struct{}{}:
				default:
				}
			})

		case <-rebuildChan:
			fmt.Fprintf(w, "\n[%s] Change detected, rebuilding...\n", time.Now().Format("15:04:05"))
			runLintAndBuild(ctx, w, sources, opts)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error().Err(err).Msg("watch error")

		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			fmt.Fprintln(w, "\nStopping watch...")
			return nil
		}
	}
}

// relevantChange reports whether event touches a Go source file or the
// configuration file.
func relevantChange(event fsnotify.Event, configFile string) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	if abs, err := filepath.Abs(event.Name); err == nil && abs == configFile {
		return true
	}
	return strings.HasSuffix(event.Name, ".go") && !strings.HasSuffix(event.Name, "_test.go")
}

// resolvePackageDirs converts source dir patterns to absolute directories.
func resolvePackageDirs(packages []string) ([]string, error) {
	var dirs []string
	seen := make(map[string]bool)

	for _, pkg := range packages {
		pkg = strings.TrimSuffix(pkg, "/...")
		if pkg == "" || pkg == "..." {
			pkg = "."
		}

		absPath, err := filepath.Abs(pkg)
		if err != nil {
			return nil, err
		}
		if !seen[absPath] {
			seen[absPath] = true
			dirs = append(dirs, absPath)
		}
	}

	return dirs, nil
}

// addDirRecursive adds a directory and all subdirectories to the watcher.
func addDirRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		base := filepath.Base(path)
		if path != dir && (strings.HasPrefix(base, ".") || strings.HasPrefix(base, "_") || base == "vendor") {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

// buildTemplate recompiles the declarations through the runner when one is
// set, and synthesizes with the compiled-in declarations otherwise.
func buildTemplate(ctx context.Context, opts watchOptions) (*wetwire.Template, error) {
	if opts.runner != nil {
		return opts.runner.Build(ctx, opts.configPath)
	}
	_, tmpl, err := synthesize(opts.configPath)
	return tmpl, err
}

// runLintAndBuild builds the template, lints it, and writes it when lint
// passes. It reports failures on w and keeps watching.
func runLintAndBuild(ctx context.Context, w io.Writer, sources []string, opts watchOptions) bool {
	tmpl, err := buildTemplate(ctx, opts)
	if err != nil {
		fmt.Fprintf(w, "Build error: %v\n", err)
		return false
	}

	res := lint.Lint(tmpl, lint.Options{})
	for _, dir := range sources {
		src, err := lint.LintSource(dir, lint.Options{})
		if err != nil {
			fmt.Fprintf(w, "Lint error: %v\n", err)
			return false
		}
		res.Issues = append(res.Issues, src.Issues...)
		res.Success = res.Success && src.Success
	}
	for _, issue := range res.Issues {
		if issue.File != "" {
			fmt.Fprintf(w, "%s:%d:%d: %s: %s [%s]\n",
				issue.File, issue.Line, issue.Column,
				issue.Severity, issue.Message, issue.Rule)
		} else {
			fmt.Fprintf(w, "%s: %s: %s [%s]\n", issue.Resource, issue.Severity, issue.Message, issue.Rule)
		}
	}
	if !res.Success {
		fmt.Fprintln(w, "Lint failed, skipping build")
		return false
	}
	fmt.Fprintln(w, "Lint passed")

	if opts.lintOnly {
		return true
	}

	data, err := encodeTemplate(tmpl, opts.outputFormat)
	if err != nil {
		fmt.Fprintf(w, "Output error: %v\n", err)
		return false
	}
	if opts.outputFile == "" {
		fmt.Fprintf(w, "Build successful\nGenerated %d resources\n", len(tmpl.Resources))
		return true
	}
	if err := os.WriteFile(opts.outputFile, data, 0o644); err != nil {
		fmt.Fprintf(w, "Failed to write output: %v\n", err)
		return false
	}
	fmt.Fprintf(w, "Build successful, wrote %s\n", opts.outputFile)
	return true
}
