package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	wetwire "github.com/lex00/wetwire-workspace-go"
	"github.com/lex00/wetwire-workspace-go/internal/template"
)

func newBuildCmd(cfg configPath) *cobra.Command {
	var (
		outputFormat string
		outputFile   string
		envelope     bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Generate the CloudFormation template",
		Long: `Build synthesizes the workspace stack and writes the CloudFormation template.

Examples:
    wetwire-workspace build
    wetwire-workspace build -o template.json
    wetwire-workspace build --format yaml
    wetwire-workspace build --result`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, tmpl, err := synthesize(cfg())
			if err != nil {
				return err
			}

			var data []byte
			if envelope {
				data, err = json.MarshalIndent(wetwire.BuildResult{
					Success:   true,
					Template:  *tmpl,
					Resources: template.Names(tmpl),
				}, "", "  ")
			} else {
				data, err = encodeTemplate(tmpl, outputFormat)
			}
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), data, outputFile)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "json", "Output format: json or yaml")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().BoolVar(&envelope, "result", false, "Wrap the template in a JSON build result")

	return cmd
}
