// Package template builds CloudFormation templates from stack declarations.
package template

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	wetwire "github.com/lex00/wetwire-workspace-go"
)

// FormatVersion is the only template format version CloudFormation accepts.
const FormatVersion = "2010-09-09"

// Builder constructs CloudFormation templates from declarations.
type Builder struct {
	description string
	resources   map[string]wetwire.Declaration
	parameters  map[string]wetwire.Parameter
	outputs     map[string]wetwire.Output
	values      map[string]map[string]any // serialized properties per resource
}

// NewBuilder creates a template builder from declarations.
func NewBuilder(decls []wetwire.Declaration) *Builder {
	b := &Builder{
		resources:  make(map[string]wetwire.Declaration, len(decls)),
		parameters: make(map[string]wetwire.Parameter),
		outputs:    make(map[string]wetwire.Output),
		values:     make(map[string]map[string]any),
	}
	for _, d := range decls {
		b.resources[d.Name] = d
	}
	return b
}

// SetDescription sets the template description.
func (b *Builder) SetDescription(desc string) {
	b.description = desc
}

// SetValue associates serialized properties with a logical name.
func (b *Builder) SetValue(name string, props map[string]any) {
	b.values[name] = props
}

// SetParameter adds a template parameter.
func (b *Builder) SetParameter(name string, p wetwire.Parameter) {
	b.parameters[name] = p
}

// SetOutput adds a template output.
func (b *Builder) SetOutput(name string, o wetwire.Output) {
	b.outputs[name] = o
}

// Build constructs the CloudFormation template.
func (b *Builder) Build() (*wetwire.Template, error) {
	for name, res := range b.resources {
		if res.Type == "" {
			return nil, fmt.Errorf("resource %s has no type", name)
		}
		for _, dep := range res.DependsOn {
			if _, ok := b.resources[dep]; !ok {
				return nil, fmt.Errorf("resource %s depends on unknown resource %s", name, dep)
			}
		}
	}

	if _, err := b.Order(); err != nil {
		return nil, err
	}

	t := &wetwire.Template{
		AWSTemplateFormatVersion: FormatVersion,
		Description:              b.description,
		Resources:                make(map[string]wetwire.ResourceDef, len(b.resources)),
	}

	if len(b.parameters) > 0 {
		t.Parameters = make(map[string]wetwire.Parameter, len(b.parameters))
		for name, p := range b.parameters {
			if p.Type == "" {
				p.Type = "String"
			}
			t.Parameters[name] = p
		}
	}

	for name, res := range b.resources {
		props, err := normalize(b.values[name])
		if err != nil {
			return nil, fmt.Errorf("serializing %s: %w", name, err)
		}

		var dependsOn []string
		if len(res.DependsOn) > 0 {
			dependsOn = append(dependsOn, res.DependsOn...)
			sort.Strings(dependsOn)
		}

		def := wetwire.ResourceDef{
			Type:       res.Type,
			Properties: props,
			DependsOn:  dependsOn,
		}
		if res.DeletionPolicy != "" {
			def.DeletionPolicy = res.DeletionPolicy
			def.UpdateReplacePolicy = res.DeletionPolicy
		}
		t.Resources[name] = def
	}

	if len(b.outputs) > 0 {
		t.Outputs = make(map[string]wetwire.Output, len(b.outputs))
		for name, o := range b.outputs {
			v, err := normalizeValue(o.Value)
			if err != nil {
				return nil, fmt.Errorf("serializing output %s: %w", name, err)
			}
			o.Value = v
			if o.Export != nil {
				exp, err := normalizeValue(o.Export.Name)
				if err != nil {
					return nil, fmt.Errorf("serializing output %s export: %w", name, err)
				}
				o.Export = &wetwire.Export{Name: exp}
			}
			t.Outputs[name] = o
		}
	}

	return t, nil
}

// Order returns resource names in dependency order: every resource comes
// after the resources it references or depends on.
func (b *Builder) Order() ([]string, error) {
	graph := make(map[string][]string)
	inDegree := make(map[string]int)

	for name := range b.resources {
		graph[name] = nil
		inDegree[name] = 0
	}

	for name := range b.resources {
		for _, dep := range b.edges(name) {
			graph[dep] = append(graph[dep], name)
			inDegree[name]++
		}
	}

	// Kahn's algorithm
	var queue []string
	for name, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, name)
		}
	}
	sort.Strings(queue)

	var result []string
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)

		for _, neighbor := range graph[node] {
			inDegree[neighbor]--
			if inDegree[neighbor] == 0 {
				queue = append(queue, neighbor)
				sort.Strings(queue)
			}
		}
	}

	if len(result) != len(b.resources) {
		return nil, b.detectCycle()
	}

	return result, nil
}

// edges returns the distinct resources name must be created after.
func (b *Builder) edges(name string) []string {
	res := b.resources[name]
	seen := make(map[string]bool)
	var out []string
	for _, dep := range append(append([]string{}, res.Dependencies...), res.DependsOn...) {
		if dep == name || seen[dep] {
			continue
		}
		if _, ok := b.resources[dep]; !ok {
			// parameters and pseudo-parameters
			continue
		}
		seen[dep] = true
		out = append(out, dep)
	}
	sort.Strings(out)
	return out
}

// detectCycle finds and reports a cycle in the dependency graph.
func (b *Builder) detectCycle() error {
	visited := make(map[string]bool)
	path := make(map[string]bool)

	var cycle []string
	var findCycle func(node string) bool
	findCycle = func(node string) bool {
		visited[node] = true
		path[node] = true

		for _, dep := range b.edges(node) {
			if !visited[dep] {
				if findCycle(dep) {
					cycle = append([]string{node}, cycle...)
					return true
				}
			} else if path[dep] {
				cycle = append([]string{dep, node}, cycle...)
				return true
			}
		}

		path[node] = false
		return false
	}

	names := make([]string, 0, len(b.resources))
	for name := range b.resources {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if !visited[name] && findCycle(name) {
			break
		}
	}

	if len(cycle) > 0 {
		var msg strings.Builder
		msg.WriteString("circular dependency detected:\n  ")
		for i, name := range cycle {
			fmt.Fprintf(&msg, "%s (%s)", name, b.resources[name].Type)
			if i < len(cycle)-1 {
				msg.WriteString("\n    → ")
			}
		}
		return errors.New(msg.String())
	}

	return errors.New("circular dependency detected")
}

func normalize(props map[string]any) (map[string]any, error) {
	if len(props) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(props)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func normalizeValue(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ToJSON serializes the template to indented JSON.
func ToJSON(t *wetwire.Template) ([]byte, error) {
	return json.MarshalIndent(t, "", "  ")
}

// ToYAML serializes the template to YAML.
func ToYAML(t *wetwire.Template) ([]byte, error) {
	return yaml.Marshal(t)
}

// Load parses a JSON or YAML template. JSON is tried first since every JSON
// document is also YAML but decodes more precisely.
func Load(data []byte) (*wetwire.Template, error) {
	var t wetwire.Template
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") {
		if err := json.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("parsing JSON template: %w", err)
		}
		return &t, nil
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing YAML template: %w", err)
	}
	// Re-encode through JSON so YAML ints and JSON numbers agree.
	buf, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("converting YAML template: %w", err)
	}
	if err := json.Unmarshal(buf, &t); err != nil {
		return nil, fmt.Errorf("converting YAML template: %w", err)
	}
	return &t, nil
}

// LoadFile reads and parses a template file.
func LoadFile(path string) (*wetwire.Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Load(data)
}

// Names returns the template's logical resource names, sorted.
func Names(t *wetwire.Template) []string {
	names := make([]string, 0, len(t.Resources))
	for name := range t.Resources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
