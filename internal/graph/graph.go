// Package graph generates DOT and Mermaid dependency graphs from a
// synthesized template.
package graph

import (
	"io"
	"sort"
	"strings"

	"github.com/emicklei/dot"

	wetwire "github.com/lex00/wetwire-workspace-go"
	"github.com/lex00/wetwire-workspace-go/internal/template"
)

// Format specifies the output format for the graph.
type Format string

const (
	// FormatDOT outputs Graphviz DOT format.
	FormatDOT Format = "dot"
	// FormatMermaid outputs Mermaid format for GitHub/markdown rendering.
	FormatMermaid Format = "mermaid"
)

// Generator creates dependency graphs from templates.
type Generator struct {
	// IncludeParameters includes parameter nodes and the edges to them.
	IncludeParameters bool

	// Format specifies the output format (dot or mermaid). Defaults to dot.
	Format Format

	// ClusterByType groups resources by AWS service.
	ClusterByType bool
}

// edgeKind distinguishes how one resource depends on another.
type edgeKind int

const (
	edgeRef edgeKind = iota
	edgeGetAtt
	edgeDependsOn
)

type edge struct {
	from, to string
	kind     edgeKind
}

// Generate creates a dependency graph of t and writes it to w.
func (g *Generator) Generate(t *wetwire.Template, w io.Writer) error {
	graph := g.buildGraph(t)

	var output string
	if g.Format == FormatMermaid {
		output = dot.MermaidGraph(graph, dot.MermaidTopToBottom)
	} else {
		output = graph.String()
	}

	_, err := io.WriteString(w, output)
	return err
}

// GenerateString is a convenience method that returns the graph as a string.
func (g *Generator) GenerateString(t *wetwire.Template) (string, error) {
	var sb strings.Builder
	if err := g.Generate(t, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (g *Generator) buildGraph(t *wetwire.Template) *dot.Graph {
	graph := dot.NewGraph(dot.Directed)
	graph.Attr("rankdir", "TB")

	graph.NodeInitializer(func(n dot.Node) {
		n.Attr("shape", "box")
		n.Attr("fontname", "Arial")
	})
	graph.EdgeInitializer(func(e dot.Edge) {
		e.Attr("fontname", "Arial")
		e.Attr("fontsize", "10")
	})

	names := template.Names(t)
	if g.ClusterByType {
		g.addClusteredNodes(graph, t, names)
	} else {
		for _, name := range names {
			graph.Node(name).Label(label(name, t.Resources[name].Type))
		}
	}

	if g.IncludeParameters {
		params := make([]string, 0, len(t.Parameters))
		for name := range t.Parameters {
			params = append(params, name)
		}
		sort.Strings(params)
		for _, name := range params {
			n := graph.Node(name)
			n.Attr("shape", "ellipse")
			n.Attr("style", "dashed")
			n.Label(name)
		}
	}

	for _, e := range g.edges(t, names) {
		de := graph.Edge(graph.Node(e.from), graph.Node(e.to))
		switch e.kind {
		case edgeGetAtt:
			de.Attr("color", "blue")
		case edgeDependsOn:
			de.Attr("style", "dashed")
		}
	}

	return graph
}

// edges returns one edge per (from, to) pair. A GetAtt wins over a Ref, and
// either wins over an explicit DependsOn.
func (g *Generator) edges(t *wetwire.Template, names []string) []edge {
	var out []edge
	for _, name := range names {
		res := t.Resources[name]
		kinds := make(map[string]edgeKind)
		var order []string
		note := func(to string, kind edgeKind) {
			prev, seen := kinds[to]
			if !seen {
				order = append(order, to)
				kinds[to] = kind
				return
			}
			if prev == edgeDependsOn || (prev == edgeRef && kind == edgeGetAtt) {
				kinds[to] = kind
			}
		}

		for _, ref := range template.FindReferences(res.Properties) {
			if ref.Target == name || !g.known(t, ref.Target) {
				continue
			}
			if ref.Attribute != "" {
				note(ref.Target, edgeGetAtt)
			} else {
				note(ref.Target, edgeRef)
			}
		}
		for _, dep := range res.DependsOn {
			if _, ok := t.Resources[dep]; ok {
				note(dep, edgeDependsOn)
			}
		}

		sort.Strings(order)
		for _, to := range order {
			out = append(out, edge{from: name, to: to, kind: kinds[to]})
		}
	}
	return out
}

func (g *Generator) known(t *wetwire.Template, name string) bool {
	if _, ok := t.Resources[name]; ok {
		return true
	}
	_, isParam := t.Parameters[name]
	return isParam && g.IncludeParameters
}

// addClusteredNodes adds resource nodes grouped by AWS service.
func (g *Generator) addClusteredNodes(graph *dot.Graph, t *wetwire.Template, names []string) {
	byService := make(map[string][]string)
	var services []string
	for _, name := range names {
		service := extractService(t.Resources[name].Type)
		if _, ok := byService[service]; !ok {
			services = append(services, service)
		}
		byService[service] = append(byService[service], name)
	}
	sort.Strings(services)

	for _, service := range services {
		members := byService[service]
		if len(members) == 1 {
			graph.Node(members[0]).Label(label(members[0], t.Resources[members[0]].Type))
			continue
		}
		cluster := graph.Subgraph("cluster_"+service, dot.ClusterOption{})
		cluster.Attr("label", service)
		cluster.Attr("style", "rounded")
		cluster.Attr("bgcolor", "lightyellow")
		for _, name := range members {
			cluster.Node(name).Label(label(name, t.Resources[name].Type))
		}
	}
}

func label(name, cfType string) string {
	return name + "\\n[" + cfType + "]"
}

// extractService extracts the service name from a CloudFormation type.
// e.g., "AWS::EC2::Instance" -> "EC2"
func extractService(cfType string) string {
	parts := strings.Split(cfType, "::")
	if len(parts) == 3 {
		return parts[1]
	}
	return "Other"
}
