package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"go/parser"
	"go/token"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lex00/wetwire-workspace-go/internal/config"
)

// isolate runs the test in an empty directory with no workspace environment.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	for _, k := range []string{config.EnvConfig, config.EnvKeyPair, config.EnvStackName, config.EnvBucketName} {
		t.Setenv(k, "")
	}
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommands(t *testing.T) {
	cmd := newRootCmd()
	want := []string{"build", "list", "graph", "validate", "lint", "diff", "query", "simulate", "publish", "watch", "version"}
	for _, name := range want {
		found := false
		for _, c := range cmd.Commands() {
			if c.Name() == name {
				found = true
			}
		}
		if !found {
			t.Errorf("missing %q subcommand", name)
		}
	}
	if cmd.PersistentFlags().Lookup("config") == nil {
		t.Error("missing --config flag")
	}
}

func TestBuild(t *testing.T) {
	isolate(t)

	out, err := run(t, "build")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	var tmpl map[string]any
	if err := json.Unmarshal([]byte(out), &tmpl); err != nil {
		t.Fatalf("build output is not JSON: %v", err)
	}
	resources, _ := tmpl["Resources"].(map[string]any)
	if _, ok := resources["WorkspaceBucket"]; !ok {
		t.Error("template missing WorkspaceBucket")
	}
}

func TestBuild_YAMLToFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "template.yaml")

	if _, err := run(t, "build", "--format", "yaml", "-o", path); err != nil {
		t.Fatalf("build: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "AWSTemplateFormatVersion") {
		t.Errorf("yaml output missing format version:\n%s", data)
	}
}

func TestBuild_ConfigFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(path, []byte("bucket_name: team-scratch\nkey_pair: dev-key\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "--config", path, "query", "-r", "Resources.WorkspaceBucket.Properties.BucketName")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if strings.TrimSpace(out) != "team-scratch" {
		t.Errorf("bucket name = %q, want team-scratch", out)
	}
}

func TestBuild_UnknownFormat(t *testing.T) {
	isolate(t)
	if _, err := run(t, "build", "--format", "toml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestList(t *testing.T) {
	isolate(t)

	out, err := run(t, "list", "--format", "json")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "StopIdleEc2Pub") || !strings.Contains(out, "AWS::CloudWatch::Alarm") {
		t.Errorf("list output missing alarm:\n%s", out)
	}
}

func TestGraph(t *testing.T) {
	isolate(t)

	out, err := run(t, "graph")
	if err != nil {
		t.Fatalf("graph: %v", err)
	}
	if !strings.Contains(out, "digraph") {
		t.Errorf("expected DOT output, got:\n%s", out)
	}

	out, err = run(t, "graph", "--format", "mermaid")
	if err != nil {
		t.Fatalf("graph mermaid: %v", err)
	}
	if !strings.Contains(out, "flowchart") && !strings.Contains(out, "graph") {
		t.Errorf("expected Mermaid output, got:\n%s", out)
	}
}

func TestValidate(t *testing.T) {
	isolate(t)

	out, err := run(t, "validate", "--format", "json")
	if err != nil {
		t.Fatalf("validate: %v\n%s", err, out)
	}
	if !strings.Contains(out, `"success": true`) {
		t.Errorf("expected success:\n%s", out)
	}
}

func TestLint_PlaceholderKeyPair(t *testing.T) {
	isolate(t)

	out, err := run(t, "lint")
	if err != nil {
		t.Fatalf("lint without --strict: %v", err)
	}
	if !strings.Contains(out, "WWS007") {
		t.Errorf("expected placeholder key pair warning:\n%s", out)
	}

	_, err = run(t, "lint", "--strict")
	var exit *exitError
	if !errors.As(err, &exit) || exit.code != 2 {
		t.Errorf("lint --strict error = %v, want exit code 2", err)
	}
}

func TestLint_KeyPairSet(t *testing.T) {
	isolate(t)
	t.Setenv(config.EnvKeyPair, "dev-key")

	out, err := run(t, "lint", "--strict", "--format", "json")
	if err != nil {
		t.Fatalf("lint: %v\n%s", err, out)
	}
	if !strings.Contains(out, `"success": true`) {
		t.Errorf("expected success:\n%s", out)
	}
}

func TestLint_SourceDir(t *testing.T) {
	dir := isolate(t)
	t.Setenv(config.EnvKeyPair, "dev-key")
	src := "package infra\n\nvar Region = \"AWS::Region\"\n"
	if err := os.WriteFile(filepath.Join(dir, "decl.go"), []byte(src), 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "lint", dir)
	if err != nil {
		t.Fatalf("lint: %v", err)
	}
	if !strings.Contains(out, "WWS101") {
		t.Errorf("expected pseudo-parameter warning:\n%s", out)
	}
}

func TestDiff(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "deployed.json")
	if _, err := run(t, "build", "-o", path); err != nil {
		t.Fatalf("build: %v", err)
	}

	out, err := run(t, "diff", path)
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	if !strings.Contains(out, "identical") {
		t.Errorf("expected identical templates:\n%s", out)
	}

	t.Setenv(config.EnvBucketName, "renamed-bucket")
	out, err = run(t, "diff", path, "--format", "json")
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	if !strings.Contains(out, "WorkspaceBucket") {
		t.Errorf("expected bucket change:\n%s", out)
	}
}

func TestQuery(t *testing.T) {
	isolate(t)

	out, err := run(t, "query", "Resources.SecurityGroupOpenPort22.Properties.SecurityGroupIngress.#.FromPort")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if strings.TrimSpace(out) != "[22,443]" {
		t.Errorf("ports = %q, want [22,443]", out)
	}

	if _, err := run(t, "query", "Resources.Nope"); err == nil {
		t.Error("expected error for missing path")
	}
}

func TestSimulate(t *testing.T) {
	isolate(t)

	out, err := run(t, "simulate", "5", "3", "0.5", "0.2", "0.1", "0.1", "0.1", "--format", "json")
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	var steps []simulationStep
	if err := json.Unmarshal([]byte(out), &steps); err != nil {
		t.Fatalf("simulate output is not JSON: %v", err)
	}
	if len(steps) != 7 {
		t.Fatalf("got %d steps, want 7", len(steps))
	}
	if steps[5].State != "OK" || steps[5].Fired {
		t.Errorf("step 5 = %+v, want OK without action", steps[5])
	}
	if steps[6].State != "ALARM" || !steps[6].Fired {
		t.Errorf("step 6 = %+v, want ALARM with action", steps[6])
	}
}

func TestSimulate_UnknownAlarm(t *testing.T) {
	isolate(t)
	if _, err := run(t, "simulate", "1", "--alarm", "Nope"); err == nil {
		t.Error("expected error for unknown alarm")
	}
}

func TestParseDatapoints(t *testing.T) {
	points, err := parseDatapoints([]string{"0.5", "-", "NaN", "missing", "3"})
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 5 {
		t.Fatalf("got %d points", len(points))
	}
	for i, missing := range []bool{false, true, true, true, false} {
		if got := math.IsNaN(points[i]); got != missing {
			t.Errorf("point %d missing = %v, want %v", i, got, missing)
		}
	}

	if _, err := parseDatapoints([]string{"abc"}); err == nil {
		t.Error("expected error for invalid datapoint")
	}
}

func TestNewPublishCmd(t *testing.T) {
	cmd := newPublishCmd(func() string { return "" })
	for _, flag := range []string{"bucket", "prefix", "region", "endpoint", "format", "force"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("missing --%s flag", flag)
		}
	}
}

func TestPublish_UnknownFormatBeforeSynthesis(t *testing.T) {
	isolate(t)

	// The config file does not exist, so reaching synthesis would fail differently.
	_, err := run(t, "publish", "--config", "missing.yaml", "-f", "xml", "--endpoint", "http://127.0.0.1:1")
	if err == nil {
		t.Fatal("expected error for unknown format")
	}
	if !strings.Contains(err.Error(), "unknown format: xml") {
		t.Errorf("error = %v", err)
	}
}

func TestUsageListsEveryCommand(t *testing.T) {
	f, err := parser.ParseFile(token.NewFileSet(), "main.go", nil, parser.PackageClauseOnly|parser.ParseComments)
	if err != nil {
		t.Fatal(err)
	}
	doc := f.Doc.Text()
	for _, c := range newRootCmd().Commands() {
		if c.Hidden || c.Name() == "help" || c.Name() == "completion" {
			continue
		}
		if !strings.Contains(doc, "wetwire-workspace "+c.Name()+" ") {
			t.Errorf("package doc does not list %q", c.Name())
		}
	}
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "wetwire-workspace ") {
		t.Errorf("version output = %q", out)
	}
}
