// Package stack holds the ordered set of resource declarations that make up
// one CloudFormation stack, and synthesizes them into a template.
package stack

import (
	"fmt"
	"regexp"
	"sort"

	wetwire "github.com/lex00/wetwire-workspace-go"
	"github.com/lex00/wetwire-workspace-go/internal/serialize"
	"github.com/lex00/wetwire-workspace-go/internal/template"
	"github.com/lex00/wetwire-workspace-go/intrinsics"
)

// Deletion policies.
const (
	Retain   = "Retain"
	Delete   = "Delete"
	Snapshot = "Snapshot"
)

var logicalIDPattern = regexp.MustCompile(`^[A-Za-z0-9]{1,255}$`)

// Handle refers to a registered resource.
type Handle struct {
	Name string
	Type string
}

// Ref returns a Ref to the resource.
func (h Handle) Ref() intrinsics.Ref {
	return intrinsics.Ref{LogicalName: h.Name}
}

// Attr returns a GetAtt reference to one of the resource's attributes.
func (h Handle) Attr(attribute string) wetwire.AttrRef {
	return wetwire.AttrRef{Resource: h.Name, Attribute: attribute}
}

// Stack is an ordered registry of logical name to resource.
type Stack struct {
	name        string
	description string

	order     []string
	resources map[string]wetwire.Resource
	dependsOn map[string][]string
	deletion  map[string]string

	paramOrder []string
	params     map[string]intrinsics.Parameter
	outputs    map[string]wetwire.Output
}

// New creates an empty stack.
func New(name, description string) *Stack {
	return &Stack{
		name:        name,
		description: description,
		resources:   make(map[string]wetwire.Resource),
		dependsOn:   make(map[string][]string),
		deletion:    make(map[string]string),
		params:      make(map[string]intrinsics.Parameter),
		outputs:     make(map[string]wetwire.Output),
	}
}

// Name returns the stack name.
func (s *Stack) Name() string { return s.name }

// Description returns the template description.
func (s *Stack) Description() string { return s.description }

// Add registers res under a logical name.
func (s *Stack) Add(name string, res wetwire.Resource) (Handle, error) {
	if err := s.checkName(name); err != nil {
		return Handle{}, err
	}
	if res == nil {
		return Handle{}, fmt.Errorf("resource %s is nil", name)
	}
	s.order = append(s.order, name)
	s.resources[name] = res
	return Handle{Name: name, Type: res.ResourceType()}, nil
}

// MustAdd is Add for declaration code, where a bad name is a programming error.
func (s *Stack) MustAdd(name string, res wetwire.Resource) Handle {
	h, err := s.Add(name, res)
	if err != nil {
		panic(err)
	}
	return h
}

// DependsOn adds explicit ordering edges from name to deps. Every name must
// already be registered.
func (s *Stack) DependsOn(name string, deps ...string) error {
	if _, ok := s.resources[name]; !ok {
		return fmt.Errorf("unknown resource %s", name)
	}
	for _, dep := range deps {
		if _, ok := s.resources[dep]; !ok {
			return fmt.Errorf("resource %s depends on unknown resource %s", name, dep)
		}
		if dep == name {
			return fmt.Errorf("resource %s cannot depend on itself", name)
		}
		s.dependsOn[name] = appendUnique(s.dependsOn[name], dep)
	}
	return nil
}

// SetDeletionPolicy sets the deletion and update-replace policy of a resource.
func (s *Stack) SetDeletionPolicy(name, policy string) error {
	if _, ok := s.resources[name]; !ok {
		return fmt.Errorf("unknown resource %s", name)
	}
	switch policy {
	case Retain, Delete, Snapshot:
	default:
		return fmt.Errorf("invalid deletion policy %q for %s", policy, name)
	}
	s.deletion[name] = policy
	return nil
}

// AddParameter registers a template parameter and returns it bound to its
// name, ready to be used as a property value.
func (s *Stack) AddParameter(name string, p intrinsics.Parameter) (intrinsics.Parameter, error) {
	if err := s.checkName(name); err != nil {
		return intrinsics.Parameter{}, err
	}
	bound := p.WithName(name)
	s.paramOrder = append(s.paramOrder, name)
	s.params[name] = bound
	return bound, nil
}

// MustAddParameter is AddParameter that panics on error.
func (s *Stack) MustAddParameter(name string, p intrinsics.Parameter) intrinsics.Parameter {
	bound, err := s.AddParameter(name, p)
	if err != nil {
		panic(err)
	}
	return bound
}

// AddOutput registers a template output.
func (s *Stack) AddOutput(name string, o wetwire.Output) error {
	if !logicalIDPattern.MatchString(name) {
		return fmt.Errorf("invalid output name %q: must be alphanumeric", name)
	}
	if _, ok := s.outputs[name]; ok {
		return fmt.Errorf("duplicate output %s", name)
	}
	s.outputs[name] = o
	return nil
}

// Resource returns the resource registered under name.
func (s *Stack) Resource(name string) (wetwire.Resource, bool) {
	res, ok := s.resources[name]
	return res, ok
}

// Names returns resource names in registration order.
func (s *Stack) Names() []string {
	return append([]string(nil), s.order...)
}

// Len returns the number of registered resources.
func (s *Stack) Len() int { return len(s.order) }

// Values serializes every resource to its property map.
func (s *Stack) Values() (map[string]map[string]any, error) {
	values := make(map[string]map[string]any, len(s.order))
	for _, name := range s.order {
		props, err := serialize.Properties(s.resources[name])
		if err != nil {
			return nil, fmt.Errorf("serializing %s: %w", name, err)
		}
		values[name] = props
	}
	return values, nil
}

// Declarations returns one declaration per resource, in registration order,
// with dependencies computed from the references in its properties.
func (s *Stack) Declarations() ([]wetwire.Declaration, error) {
	values, err := s.Values()
	if err != nil {
		return nil, err
	}
	return s.declarations(values), nil
}

func (s *Stack) declarations(values map[string]map[string]any) []wetwire.Declaration {
	decls := make([]wetwire.Declaration, 0, len(s.order))
	for _, name := range s.order {
		var deps []string
		for _, ref := range template.ReferencedNames(values[name]) {
			if ref != name {
				deps = append(deps, ref)
			}
		}
		var explicit []string
		if len(s.dependsOn[name]) > 0 {
			explicit = append(explicit, s.dependsOn[name]...)
			sort.Strings(explicit)
		}
		decls = append(decls, wetwire.Declaration{
			Name:           name,
			Type:           s.resources[name].ResourceType(),
			Dependencies:   deps,
			DependsOn:      explicit,
			DeletionPolicy: s.deletion[name],
		})
	}
	return decls
}

// Build synthesizes the stack into a CloudFormation template.
func (s *Stack) Build() (*wetwire.Template, error) {
	values, err := s.Values()
	if err != nil {
		return nil, err
	}

	builder := template.NewBuilder(s.declarations(values))
	builder.SetDescription(s.description)
	for name, props := range values {
		builder.SetValue(name, props)
	}
	for _, name := range s.paramOrder {
		p := s.params[name]
		builder.SetParameter(name, wetwire.Parameter{
			Type:          p.Type,
			Description:   p.Description,
			Default:       p.Default,
			AllowedValues: p.AllowedValues,
		})
	}
	for name, o := range s.outputs {
		builder.SetOutput(name, o)
	}
	return builder.Build()
}

func (s *Stack) checkName(name string) error {
	if !logicalIDPattern.MatchString(name) {
		return fmt.Errorf("invalid logical name %q: must be alphanumeric", name)
	}
	if _, ok := s.resources[name]; ok {
		return fmt.Errorf("duplicate logical name %s", name)
	}
	if _, ok := s.params[name]; ok {
		return fmt.Errorf("duplicate logical name %s (parameter)", name)
	}
	return nil
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}
