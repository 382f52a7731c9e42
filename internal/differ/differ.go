// Package differ provides semantic comparison of CloudFormation templates.
package differ

import (
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"sort"
	"strings"

	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"

	wetwire "github.com/lex00/wetwire-workspace-go"
	"github.com/lex00/wetwire-workspace-go/internal/template"
)

// Options configures the differ.
type Options struct {
	// IgnoreOrder compares lists as multisets.
	IgnoreOrder bool
}

// Result is the difference between two templates.
type Result struct {
	Diff    wetwire.TemplateDiff
	Summary wetwire.DiffSummary
}

// Compare reports the resources added in, removed from, and modified
// between template1 and template2. Entries are sorted by logical name.
func Compare(template1, template2 *wetwire.Template, opts Options) (*Result, error) {
	result := &Result{}
	for _, name := range resourceNames(template1, template2) {
		def1, in1 := template1.Resources[name]
		def2, in2 := template2.Resources[name]
		switch {
		case !in1:
			result.Diff.Added = append(result.Diff.Added, wetwire.DiffEntry{Resource: name, Type: def2.Type})
		case !in2:
			result.Diff.Removed = append(result.Diff.Removed, wetwire.DiffEntry{Resource: name, Type: def1.Type})
		default:
			if changes := compareResources(def1, def2, opts); len(changes) > 0 {
				result.Diff.Modified = append(result.Diff.Modified, wetwire.DiffEntry{
					Resource: name,
					Type:     def1.Type,
					Changes:  changes,
				})
			}
		}
	}

	result.Summary = wetwire.DiffSummary{
		Added:    len(result.Diff.Added),
		Removed:  len(result.Diff.Removed),
		Modified: len(result.Diff.Modified),
	}
	result.Summary.Total = result.Summary.Added + result.Summary.Removed + result.Summary.Modified
	return result, nil
}

func resourceNames(templates ...*wetwire.Template) []string {
	seen := make(map[string]bool)
	var names []string
	for _, t := range templates {
		for name := range t.Resources {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}

// CompareFiles compares two template files.
func CompareFiles(file1, file2 string, opts Options) (*Result, error) {
	t1, err := template.LoadFile(file1)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", file1, err)
	}

	t2, err := template.LoadFile(file2)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", file2, err)
	}

	return Compare(t1, t2, opts)
}

// Delta renders the whole-template JSON difference in the ASCII delta
// format, with + and - markers on changed lines. It returns "" for equal
// templates.
func Delta(template1, template2 *wetwire.Template, color bool) (string, error) {
	left, err := json.Marshal(template1)
	if err != nil {
		return "", err
	}
	right, err := json.Marshal(template2)
	if err != nil {
		return "", err
	}

	diff, err := gojsondiff.New().Compare(left, right)
	if err != nil {
		return "", fmt.Errorf("comparing templates: %w", err)
	}
	if !diff.Modified() {
		return "", nil
	}

	var leftObject map[string]any
	if err := json.Unmarshal(left, &leftObject); err != nil {
		return "", err
	}
	f := formatter.NewAsciiFormatter(leftObject, formatter.AsciiFormatterConfig{
		ShowArrayIndex: true,
		Coloring:       color,
	})
	return f.Format(diff)
}

func compareResources(def1, def2 wetwire.ResourceDef, opts Options) []string {
	var changes []string
	if def1.Type != def2.Type {
		changes = append(changes, fmt.Sprintf("Type changed: %s → %s", def1.Type, def2.Type))
	}
	changes = append(changes, compareProperties("", def1.Properties, def2.Properties, opts)...)
	if !slices.Equal(def1.DependsOn, def2.DependsOn) {
		changes = append(changes, "DependsOn changed")
	}
	if def1.DeletionPolicy != def2.DeletionPolicy {
		changes = append(changes, fmt.Sprintf("DeletionPolicy changed: %q → %q", def1.DeletionPolicy, def2.DeletionPolicy))
	}
	if def1.UpdateReplacePolicy != def2.UpdateReplacePolicy {
		changes = append(changes, fmt.Sprintf("UpdateReplacePolicy changed: %q → %q", def1.UpdateReplacePolicy, def2.UpdateReplacePolicy))
	}
	return changes
}

// compareProperties walks two property maps. Nested objects are reported by
// dotted path; intrinsic functions are compared whole.
func compareProperties(prefix string, props1, props2 map[string]any, opts Options) []string {
	var changes []string
	for _, key := range unionKeys(props1, props2) {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		val1, in1 := props1[key]
		val2, in2 := props2[key]
		switch {
		case !in1:
			changes = append(changes, path+" added")
		case !in2:
			changes = append(changes, path+" removed")
		default:
			m1, ok1 := val1.(map[string]any)
			m2, ok2 := val2.(map[string]any)
			if ok1 && ok2 && !isIntrinsic(m1) && !isIntrinsic(m2) {
				changes = append(changes, compareProperties(path, m1, m2, opts)...)
			} else if !equal(val1, val2, opts) {
				changes = append(changes, path+" modified")
			}
		}
	}
	sort.Strings(changes)
	return changes
}

func unionKeys(a, b map[string]any) []string {
	keys := make([]string, 0, len(a)+len(b))
	for k := range a {
		keys = append(keys, k)
	}
	for k := range b {
		if _, ok := a[k]; !ok {
			keys = append(keys, k)
		}
	}
	return keys
}

// isIntrinsic reports whether m is a single-key Ref or Fn:: object.
func isIntrinsic(m map[string]any) bool {
	if len(m) != 1 {
		return false
	}
	for k := range m {
		return k == "Ref" || strings.HasPrefix(k, "Fn::")
	}
	return false
}

func equal(a, b any, opts Options) bool {
	if opts.IgnoreOrder {
		a, b = sortLists(a), sortLists(b)
	}
	return reflect.DeepEqual(a, b)
}

// sortLists orders every list in v by the JSON encoding of its elements.
func sortLists(v any) any {
	switch val := v.(type) {
	case []any:
		type keyed struct {
			key  string
			item any
		}
		items := make([]keyed, len(val))
		for i, item := range val {
			item = sortLists(item)
			data, _ := json.Marshal(item)
			items[i] = keyed{string(data), item}
		}
		sort.SliceStable(items, func(i, j int) bool { return items[i].key < items[j].key })
		out := make([]any, len(items))
		for i, it := range items {
			out[i] = it.item
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = sortLists(item)
		}
		return out
	}
	return v
}
