package lint

// Source rules:
//
//	WWS101: Use pseudo-parameter variables instead of "AWS::..." strings
//	WWS102: Use intrinsic types instead of map[string]any{"Ref": ...}
//	WWS103: Use PolicyVersion instead of a hardcoded policy date
//	WWS104: Name world-open CIDRs with a constant

import (
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// SourceRule is a lint rule over parsed Go declaration files.
type SourceRule interface {
	ID() string
	Description() string
	Check(file *ast.File, fset *token.FileSet) []Issue
}

// AllSourceRules returns every source rule in ID order.
func AllSourceRules() []SourceRule {
	return []SourceRule{
		HardcodedPseudoParameter{},
		MapShouldBeIntrinsic{},
		HardcodedPolicyVersion{},
		HardcodedWorldCIDR{},
	}
}

// LintFile lints a single Go file.
func LintFile(path string, opts Options) (Result, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, nil, parser.ParseComments)
	if err != nil {
		return Result{}, err
	}

	var issues []Issue
	for _, rule := range getRules(AllSourceRules(), opts) {
		issues = append(issues, rule.Check(file, fset)...)
	}
	sortIssues(issues)
	return result(issues, opts), nil
}

// LintSource lints the Go files under dir. A trailing "/..." walks
// subdirectories; test files, vendor and hidden directories are skipped.
func LintSource(dir string, opts Options) (Result, error) {
	recursive := false
	if strings.HasSuffix(dir, "...") {
		recursive = true
		dir = strings.TrimSuffix(strings.TrimSuffix(dir, "..."), "/")
	}
	if dir == "" {
		dir = "."
	}

	var issues []Issue
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == dir {
				return nil
			}
			if !recursive || d.Name() == "vendor" || strings.HasPrefix(d.Name(), ".") || strings.HasPrefix(d.Name(), "_") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}

		res, err := LintFile(path, opts)
		if err != nil {
			log.Debug().Err(err).Str("file", path).Msg("skipping unparsable file")
			return nil
		}
		issues = append(issues, res.Issues...)
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	sortIssues(issues)
	return result(issues, opts), nil
}

func stringLit(n ast.Node) (string, *ast.BasicLit, bool) {
	lit, ok := n.(*ast.BasicLit)
	if !ok || lit.Kind != token.STRING {
		return "", nil, false
	}
	s, err := strconv.Unquote(lit.Value)
	if err != nil {
		return "", nil, false
	}
	return s, lit, true
}

func sourceIssue(rule string, fset *token.FileSet, pos token.Pos, msg string, sev Severity) Issue {
	p := fset.Position(pos)
	return Issue{
		Rule:     rule,
		Message:  msg,
		File:     p.Filename,
		Line:     p.Line,
		Column:   p.Column,
		Severity: sev,
	}
}

// HardcodedPseudoParameter detects "AWS::Region" and friends as bare strings.
type HardcodedPseudoParameter struct{}

func (r HardcodedPseudoParameter) ID() string { return "WWS101" }
func (r HardcodedPseudoParameter) Description() string {
	return "Use pseudo-parameter variables instead of hardcoded strings"
}

var pseudoParams = map[string]string{
	"AWS::Region":    "AWS_REGION",
	"AWS::AccountId": "AWS_ACCOUNT_ID",
	"AWS::StackName": "AWS_STACK_NAME",
	"AWS::Partition": "AWS_PARTITION",
	"AWS::URLSuffix": "AWS_URL_SUFFIX",
}

func (r HardcodedPseudoParameter) Check(file *ast.File, fset *token.FileSet) []Issue {
	var issues []Issue
	ast.Inspect(file, func(n ast.Node) bool {
		value, lit, ok := stringLit(n)
		if !ok {
			return true
		}
		if name, found := pseudoParams[value]; found {
			issues = append(issues, sourceIssue(r.ID(), fset, lit.Pos(),
				"Use "+name+" instead of \""+value+"\"", SeverityWarning))
		}
		return true
	})
	return issues
}

// MapShouldBeIntrinsic detects single-key maps that spell out an intrinsic.
type MapShouldBeIntrinsic struct{}

func (r MapShouldBeIntrinsic) ID() string { return "WWS102" }
func (r MapShouldBeIntrinsic) Description() string {
	return "Use intrinsic types instead of raw map[string]any"
}

var intrinsicKeys = map[string]string{
	"Ref":        "Ref",
	"Fn::Sub":    "Sub",
	"Fn::Select": "Select",
	"Fn::GetAZs": "GetAZs",
	"Fn::GetAtt": "GetAtt",
}

func (r MapShouldBeIntrinsic) Check(file *ast.File, fset *token.FileSet) []Issue {
	var issues []Issue
	ast.Inspect(file, func(n ast.Node) bool {
		comp, ok := n.(*ast.CompositeLit)
		if !ok || !isMapStringAny(comp.Type) || len(comp.Elts) != 1 {
			return true
		}
		kv, ok := comp.Elts[0].(*ast.KeyValueExpr)
		if !ok {
			return true
		}
		key, _, ok := stringLit(kv.Key)
		if !ok {
			return true
		}
		if typeName, found := intrinsicKeys[key]; found {
			issues = append(issues, sourceIssue(r.ID(), fset, comp.Pos(),
				"Use "+typeName+"{...} instead of map[string]any{\""+key+"\": ...}", SeverityWarning))
		}
		return true
	})
	return issues
}

func isMapStringAny(expr ast.Expr) bool {
	m, ok := expr.(*ast.MapType)
	if !ok {
		return false
	}
	key, ok := m.Key.(*ast.Ident)
	if !ok || key.Name != "string" {
		return false
	}
	switch v := m.Value.(type) {
	case *ast.Ident:
		return v.Name == "any"
	case *ast.InterfaceType:
		return v.Methods == nil || len(v.Methods.List) == 0
	}
	return false
}

// HardcodedPolicyVersion detects Version: "2012-10-17" style literals.
type HardcodedPolicyVersion struct{}

func (r HardcodedPolicyVersion) ID() string { return "WWS103" }
func (r HardcodedPolicyVersion) Description() string {
	return "Use PolicyVersion for IAM policy documents"
}

var policyVersionPattern = regexp.MustCompile(`^20\d{2}-\d{2}-\d{2}$`)

func (r HardcodedPolicyVersion) Check(file *ast.File, fset *token.FileSet) []Issue {
	var issues []Issue
	ast.Inspect(file, func(n ast.Node) bool {
		kv, ok := n.(*ast.KeyValueExpr)
		if !ok {
			return true
		}
		if key, ok := kv.Key.(*ast.Ident); !ok || key.Name != "Version" {
			return true
		}
		value, lit, ok := stringLit(kv.Value)
		if ok && policyVersionPattern.MatchString(value) {
			issues = append(issues, sourceIssue(r.ID(), fset, lit.Pos(),
				"Use PolicyVersion instead of \""+value+"\"", SeverityInfo))
		}
		return true
	})
	return issues
}

// HardcodedWorldCIDR detects "0.0.0.0/0" literals outside const declarations.
type HardcodedWorldCIDR struct{}

func (r HardcodedWorldCIDR) ID() string { return "WWS104" }
func (r HardcodedWorldCIDR) Description() string {
	return "Declare world-open CIDRs as a named constant"
}

func (r HardcodedWorldCIDR) Check(file *ast.File, fset *token.FileSet) []Issue {
	var issues []Issue
	ast.Inspect(file, func(n ast.Node) bool {
		if decl, ok := n.(*ast.GenDecl); ok && decl.Tok == token.CONST {
			return false
		}
		value, lit, ok := stringLit(n)
		if ok && isWorld(value) {
			issues = append(issues, sourceIssue(r.ID(), fset, lit.Pos(),
				"Declare \""+value+"\" as a named constant so world-open rules are easy to audit", SeverityWarning))
		}
		return true
	})
	return issues
}
