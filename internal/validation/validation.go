// Package validation checks a synthesized template before it is handed to
// CloudFormation:
//   - References: every Ref, Fn::GetAtt, Fn::Sub variable and DependsOn resolves
//   - Inventory: the template declares the workspace topology exactly once
//   - cfn-lint-go: schema and best-practice checks (library dependency)
package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lex00/cfn-lint-go/pkg/lint"
	"github.com/rs/zerolog/log"

	wetwire "github.com/lex00/wetwire-workspace-go"
	"github.com/lex00/wetwire-workspace-go/internal/template"
)

// Entities counted by Inventory.
const (
	ObjectStore   = "object_store"
	Network       = "network"
	Endpoint      = "endpoint"
	Role          = "role"
	TrafficFilter = "traffic_filter"
	Instance      = "instance"
	StaticAddress = "static_address"
	Alarm         = "alarm"
)

// ExpectedInventory is the workspace topology.
var ExpectedInventory = map[string]int{
	ObjectStore:   1,
	Network:       1,
	Endpoint:      2,
	Role:          1,
	TrafficFilter: 1,
	Instance:      2,
	StaticAddress: 1,
	Alarm:         1,
}

var entityTypes = map[string]string{
	"AWS::S3::Bucket":         ObjectStore,
	"AWS::EC2::VPC":           Network,
	"AWS::EC2::VPCEndpoint":   Endpoint,
	"AWS::IAM::Role":          Role,
	"AWS::EC2::SecurityGroup": TrafficFilter,
	"AWS::EC2::Instance":      Instance,
	"AWS::CloudWatch::Alarm":  Alarm,
}

// Inventory counts the workspace entities declared in t. Elastic IPs count
// as static addresses only when bound to an instance; NAT addresses are
// supporting resources.
func Inventory(t *wetwire.Template) map[string]int {
	counts := make(map[string]int, len(ExpectedInventory))
	for entity := range ExpectedInventory {
		counts[entity] = 0
	}
	for _, res := range t.Resources {
		if res.Type == "AWS::EC2::EIP" {
			if _, bound := res.Properties["InstanceId"]; bound {
				counts[StaticAddress]++
			}
			continue
		}
		if entity, ok := entityTypes[res.Type]; ok {
			counts[entity]++
		}
	}
	return counts
}

// CheckInventory compares Inventory(t) with ExpectedInventory.
func CheckInventory(t *wetwire.Template) []string {
	counts := Inventory(t)
	entities := make([]string, 0, len(ExpectedInventory))
	for e := range ExpectedInventory {
		entities = append(entities, e)
	}
	sort.Strings(entities)

	var errs []string
	for _, e := range entities {
		if got, want := counts[e], ExpectedInventory[e]; got != want {
			errs = append(errs, fmt.Sprintf("inventory: expected %d %s, found %d", want, e, got))
		}
	}
	return errs
}

// References reports dangling references. Ref may target a resource or a
// parameter; Fn::GetAtt must target a resource.
func References(t *wetwire.Template) []string {
	var errs []string
	check := func(where string, v any) {
		for _, ref := range template.FindReferences(v) {
			if _, ok := t.Resources[ref.Target]; ok {
				continue
			}
			if _, ok := t.Parameters[ref.Target]; ok && ref.Attribute == "" {
				continue
			}
			if ref.Attribute != "" {
				errs = append(errs, fmt.Sprintf("%s: Fn::GetAtt target %s.%s is not a resource", where, ref.Target, ref.Attribute))
			} else {
				errs = append(errs, fmt.Sprintf("%s: Ref target %s is not declared", where, ref.Target))
			}
		}
	}

	for _, name := range template.Names(t) {
		res := t.Resources[name]
		check(name, res.Properties)
		for _, dep := range res.DependsOn {
			if _, ok := t.Resources[dep]; !ok {
				errs = append(errs, fmt.Sprintf("%s: DependsOn target %s is not a resource", name, dep))
			}
		}
	}

	outputs := make([]string, 0, len(t.Outputs))
	for name := range t.Outputs {
		outputs = append(outputs, name)
	}
	sort.Strings(outputs)
	for _, name := range outputs {
		out := t.Outputs[name]
		check("output "+name, out.Value)
		if out.Export != nil {
			check("output "+name, out.Export.Name)
		}
	}
	return errs
}

// CfnLintResult contains the result of running cfn-lint.
type CfnLintResult struct {
	Passed        bool     `json:"passed"`
	Errors        []string `json:"errors"`
	Warnings      []string `json:"warnings"`
	Informational []string `json:"informational"`
}

// TotalIssues returns the total number of issues found.
func (r CfnLintResult) TotalIssues() int {
	return len(r.Errors) + len(r.Warnings) + len(r.Informational)
}

// RunCfnLint runs cfn-lint-go on the given template file.
func RunCfnLint(templatePath string) (*CfnLintResult, error) {
	if _, err := os.Stat(templatePath); err != nil {
		return nil, fmt.Errorf("template not found: %w", err)
	}

	linter := lint.New(lint.Options{})
	matches, err := linter.LintFile(templatePath)
	if err != nil {
		return nil, fmt.Errorf("running cfn-lint: %w", err)
	}

	result := &CfnLintResult{
		Errors:        []string{},
		Warnings:      []string{},
		Informational: []string{},
	}
	for _, match := range matches {
		formatted := formatMatch(match)
		switch match.Level {
		case "Error":
			result.Errors = append(result.Errors, formatted)
		case "Warning":
			result.Warnings = append(result.Warnings, formatted)
		default:
			result.Informational = append(result.Informational, formatted)
		}
	}

	// Warnings are acceptable.
	result.Passed = len(result.Errors) == 0
	return result, nil
}

// formatMatch formats a cfn-lint-go match for display.
func formatMatch(match lint.Match) string {
	if len(match.Location.Path) > 0 {
		parts := make([]string, len(match.Location.Path))
		for i, p := range match.Location.Path {
			parts[i] = fmt.Sprintf("%v", p)
		}
		return fmt.Sprintf("%s: %s (at %s)", match.Rule.ID, match.Message, strings.Join(parts, "/"))
	}
	return fmt.Sprintf("%s: %s", match.Rule.ID, match.Message)
}

// Options selects the checks Validate runs.
type Options struct {
	// SkipInventory disables the topology check, for templates that are not
	// the workspace.
	SkipInventory bool
	// CfnLint runs cfn-lint-go over a temporary copy of the template.
	CfnLint bool
}

// Validate runs the selected checks over t.
func Validate(t *wetwire.Template, opts Options) (wetwire.ValidateResult, error) {
	result := wetwire.ValidateResult{
		Resources: len(t.Resources),
		Inventory: Inventory(t),
	}

	result.Errors = append(result.Errors, References(t)...)
	if !opts.SkipInventory {
		result.Errors = append(result.Errors, CheckInventory(t)...)
	}

	if opts.CfnLint {
		cfn, err := lintTemplate(t)
		if err != nil {
			return result, err
		}
		result.Errors = append(result.Errors, cfn.Errors...)
		result.Warnings = append(result.Warnings, cfn.Warnings...)
		result.Warnings = append(result.Warnings, cfn.Informational...)
	}

	result.Success = len(result.Errors) == 0
	log.Debug().
		Int("resources", result.Resources).
		Int("errors", len(result.Errors)).
		Int("warnings", len(result.Warnings)).
		Msg("validated template")
	return result, nil
}

func lintTemplate(t *wetwire.Template) (*CfnLintResult, error) {
	data, err := template.ToJSON(t)
	if err != nil {
		return nil, err
	}
	dir, err := os.MkdirTemp("", "wetwire-workspace-")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "template.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("writing template: %w", err)
	}
	return RunCfnLint(path)
}
