package lint

import (
	"sort"
	"strconv"
	"strings"

	wetwire "github.com/lex00/wetwire-workspace-go"
)

// refTarget returns X for {"Ref": X}.
func refTarget(v any) (string, bool) {
	m, ok := v.(map[string]any)
	if !ok || len(m) != 1 {
		return "", false
	}
	s, ok := m["Ref"].(string)
	return s, ok
}

// number reads a JSON number, or a numeric string as CloudFormation allows.
func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

// stringish returns the literal string of v, or the template string of an
// Fn::Sub.
func stringish(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case map[string]any:
		switch sub := s["Fn::Sub"].(type) {
		case string:
			return sub, true
		case []any:
			if len(sub) > 0 {
				str, ok := sub[0].(string)
				return str, ok
			}
		}
	}
	return "", false
}

// asList wraps scalars so single values and lists are handled alike.
func asList(v any) []any {
	switch l := v.(type) {
	case nil:
		return nil
	case []any:
		return l
	default:
		return []any{l}
	}
}

// resourcesOfType returns the names of resources of typ, sorted.
func resourcesOfType(t *wetwire.Template, typ string) []string {
	var names []string
	for name, res := range t.Resources {
		if res.Type == typ {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func isType(t *wetwire.Template, name, typ string) bool {
	res, ok := t.Resources[name]
	return ok && res.Type == typ
}

func isWorld(cidr any) bool {
	s, _ := cidr.(string)
	return s == "0.0.0.0/0" || s == "::/0"
}

func isStopAction(v any) bool {
	s, ok := stringish(v)
	return ok && strings.Contains(s, ":automate:") && strings.HasSuffix(s, ":ec2:stop")
}
