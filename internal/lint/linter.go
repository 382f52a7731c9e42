// Package lint checks synthesized templates against the workspace's
// security and cost rules, and checks declaration source for hardcoded
// values that have a named constant.
package lint

import (
	"sort"

	wetwire "github.com/lex00/wetwire-workspace-go"
)

// Severity of an issue.
type Severity string

// Severity levels.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Issue is a single lint finding.
type Issue struct {
	Rule     string
	Resource string
	Message  string
	Severity Severity

	// Set for source issues only.
	File   string
	Line   int
	Column int
}

// Rule is a template-level lint rule.
type Rule interface {
	ID() string
	Description() string
	Check(t *wetwire.Template) []Issue
}

// Result contains the outcome of linting.
type Result struct {
	Success bool
	Issues  []Issue
}

// Options configures the linter.
type Options struct {
	// Rules to enable. If empty, all rules are enabled.
	EnabledRules []string
	// Rules to skip, applied after EnabledRules.
	DisabledRules []string
	// WarningsAsErrors makes warnings fail the result.
	WarningsAsErrors bool
}

// Lint runs the template rules selected by opts.
func Lint(t *wetwire.Template, opts Options) Result {
	var issues []Issue
	for _, rule := range getRules(AllRules(), opts) {
		issues = append(issues, rule.Check(t)...)
	}
	sortIssues(issues)
	return result(issues, opts)
}

// AllRules returns every template rule in ID order.
func AllRules() []Rule {
	return []Rule{
		BucketPublicAccess{},
		WorldOpenIngress{},
		InstanceRoleTrust{},
		ElasticIPPublicInstance{},
		IdleStopAlarm{},
		VPCS3GatewayEndpoint{},
		PlaceholderKeyPair{},
		InstanceSingleSubnet{},
	}
}

// ToLintResult converts a Result to the CLI's JSON envelope.
func ToLintResult(r Result) wetwire.LintResult {
	out := wetwire.LintResult{Success: r.Success}
	for _, i := range r.Issues {
		out.Issues = append(out.Issues, wetwire.LintIssue{
			Resource: i.Resource,
			Severity: string(i.Severity),
			Message:  i.Message,
			Rule:     i.Rule,
			File:     i.File,
			Line:     i.Line,
			Column:   i.Column,
		})
	}
	return out
}

type identified interface{ ID() string }

// getRules filters rules by the enabled and disabled sets.
func getRules[R identified](all []R, opts Options) []R {
	enabled := toSet(opts.EnabledRules)
	disabled := toSet(opts.DisabledRules)

	var filtered []R
	for _, r := range all {
		if len(enabled) > 0 && !enabled[r.ID()] {
			continue
		}
		if disabled[r.ID()] {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func result(issues []Issue, opts Options) Result {
	success := true
	for _, i := range issues {
		if i.Severity == SeverityError || (opts.WarningsAsErrors && i.Severity == SeverityWarning) {
			success = false
			break
		}
	}
	return Result{Success: success, Issues: issues}
}

func sortIssues(issues []Issue) {
	sort.SliceStable(issues, func(a, b int) bool {
		x, y := issues[a], issues[b]
		if x.File != y.File {
			return x.File < y.File
		}
		if x.Line != y.Line {
			return x.Line < y.Line
		}
		if x.Resource != y.Resource {
			return x.Resource < y.Resource
		}
		return x.Rule < y.Rule
	})
}
