package template

import (
	"regexp"
	"sort"
	"strings"

	"github.com/lex00/wetwire-workspace-go/intrinsics"
)

// Reference is one Ref or Fn::GetAtt found in a property tree.
type Reference struct {
	Target    string
	Attribute string // empty for Ref
}

var subVarPattern = regexp.MustCompile(`\$\{([^}!][^}]*)\}`)

// FindReferences walks serialized properties and returns every reference to
// another logical name. Pseudo-parameters (AWS::Region, ...) are skipped.
func FindReferences(v any) []Reference {
	var refs []Reference
	walk(v, &refs, nil)
	return refs
}

// ReferencedNames returns the sorted, distinct targets of FindReferences.
func ReferencedNames(v any) []string {
	seen := make(map[string]bool)
	var names []string
	for _, r := range FindReferences(v) {
		if !seen[r.Target] {
			seen[r.Target] = true
			names = append(names, r.Target)
		}
	}
	sort.Strings(names)
	return names
}

func walk(v any, refs *[]Reference, shadowed map[string]bool) {
	switch val := v.(type) {
	case map[string]any:
		if len(val) == 1 {
			if target, ok := val["Ref"].(string); ok {
				add(refs, Reference{Target: target}, shadowed)
				return
			}
			if getAtt, ok := val["Fn::GetAtt"]; ok {
				addGetAtt(refs, getAtt, shadowed)
				return
			}
			if sub, ok := val["Fn::Sub"]; ok {
				walkSub(sub, refs, shadowed)
				return
			}
		}
		for _, child := range val {
			walk(child, refs, shadowed)
		}
	case []any:
		for _, child := range val {
			walk(child, refs, shadowed)
		}
	}
}

func addGetAtt(refs *[]Reference, v any, shadowed map[string]bool) {
	switch args := v.(type) {
	case []any:
		if len(args) >= 1 {
			if target, ok := args[0].(string); ok {
				attr := ""
				if len(args) > 1 {
					attr, _ = args[1].(string)
				}
				add(refs, Reference{Target: target, Attribute: attr}, shadowed)
			}
		}
	case []string:
		if len(args) >= 1 {
			attr := ""
			if len(args) > 1 {
				attr = args[1]
			}
			add(refs, Reference{Target: args[0], Attribute: attr}, shadowed)
		}
	case string:
		target, attr, _ := strings.Cut(args, ".")
		add(refs, Reference{Target: target, Attribute: attr}, shadowed)
	}
}

func walkSub(v any, refs *[]Reference, shadowed map[string]bool) {
	switch sub := v.(type) {
	case string:
		subString(sub, refs, shadowed)
	case []any:
		if len(sub) == 0 {
			return
		}
		local := make(map[string]bool)
		for k := range shadowed {
			local[k] = true
		}
		if vars, ok := sub[len(sub)-1].(map[string]any); ok && len(sub) == 2 {
			for k, child := range vars {
				local[k] = true
				walk(child, refs, shadowed)
			}
		}
		if s, ok := sub[0].(string); ok {
			subString(s, refs, local)
		}
	}
}

func subString(s string, refs *[]Reference, shadowed map[string]bool) {
	for _, m := range subVarPattern.FindAllStringSubmatch(s, -1) {
		target, attr, _ := strings.Cut(m[1], ".")
		add(refs, Reference{Target: target, Attribute: attr}, shadowed)
	}
}

func add(refs *[]Reference, r Reference, shadowed map[string]bool) {
	if r.Target == "" || intrinsics.IsPseudoParameter(r.Target) || shadowed[r.Target] {
		return
	}
	*refs = append(*refs, r)
}
