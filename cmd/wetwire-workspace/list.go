package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	wetwire "github.com/lex00/wetwire-workspace-go"
	"github.com/lex00/wetwire-workspace-go/internal/template"
)

func newListCmd(cfg configPath) *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the declared resources",
		Long: `List synthesizes the workspace and shows every resource with its type and the
resources it references.

Examples:
    wetwire-workspace list
    wetwire-workspace list --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, tmpl, err := synthesize(cfg())
			if err != nil {
				return err
			}

			result := listResources(tmpl)
			switch outputFormat {
			case "json":
				data, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
			case "text":
				fmt.Fprint(cmd.OutOrStdout(), renderList(c.StackName, result))
			default:
				return fmt.Errorf("unknown format: %s", outputFormat)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")

	return cmd
}

// listResources lists resources in name order with their referenced
// resources and explicit DependsOn.
func listResources(t *wetwire.Template) wetwire.ListResult {
	result := wetwire.ListResult{Resources: make([]wetwire.ListResource, 0, len(t.Resources))}
	for _, name := range template.Names(t) {
		res := t.Resources[name]
		seen := make(map[string]bool)
		var deps []string
		for _, dep := range append(template.ReferencedNames(res.Properties), res.DependsOn...) {
			if _, ok := t.Resources[dep]; ok && !seen[dep] && dep != name {
				seen[dep] = true
				deps = append(deps, dep)
			}
		}
		result.Resources = append(result.Resources, wetwire.ListResource{
			Name:         name,
			Type:         res.Type,
			Dependencies: deps,
		})
	}
	return result
}
