package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lex00/wetwire-workspace-go/internal/graph"
)

func newGraphCmd(cfg configPath) *cobra.Command {
	var (
		outputFormat  string
		outputFile    string
		includeParams bool
		cluster       bool
	)

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Render the resource dependency graph",
		Long: `Graph renders resource dependencies in Graphviz DOT or Mermaid format.

Blue edges are Fn::GetAtt references, dashed edges are explicit DependsOn.

Examples:
    wetwire-workspace graph | dot -Tpng -o workspace.png
    wetwire-workspace graph --format mermaid --cluster
    wetwire-workspace graph --params -o workspace.dot`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format := graph.Format(outputFormat)
			if format != graph.FormatDOT && format != graph.FormatMermaid {
				return fmt.Errorf("unknown format: %s", outputFormat)
			}

			_, tmpl, err := synthesize(cfg())
			if err != nil {
				return err
			}

			gen := &graph.Generator{
				Format:            format,
				IncludeParameters: includeParams,
				ClusterByType:     cluster,
			}

			w := cmd.OutOrStdout()
			if outputFile != "" {
				f, err := os.Create(outputFile)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return gen.Generate(tmpl, w)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "dot", "Output format: dot or mermaid")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().BoolVarP(&includeParams, "params", "p", false, "Include template parameters")
	cmd.Flags().BoolVarP(&cluster, "cluster", "C", false, "Group resources by AWS service")

	return cmd
}
