package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/lex00/wetwire-workspace-go/internal/template"
)

func newQueryCmd(cfg configPath) *cobra.Command {
	var (
		file string
		raw  bool
	)

	cmd := &cobra.Command{
		Use:   "query <path> [path...]",
		Short: "Extract values from the template with GJSON paths",
		Long: `Query evaluates GJSON paths against the synthesized template, or against an
existing template file with --file.

Examples:
    wetwire-workspace query Resources.WorkspaceBucket.Properties.PublicAccessBlockConfiguration
    wetwire-workspace query 'Resources.SecurityGroupOpenPort22.Properties.SecurityGroupIngress.#.FromPort'
    wetwire-workspace query Outputs.PublicIp.Value --file deployed.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			if file != "" {
				t, err := template.LoadFile(file)
				if err != nil {
					return err
				}
				if data, err = template.ToJSON(t); err != nil {
					return err
				}
			} else {
				_, t, err := synthesize(cfg())
				if err != nil {
					return err
				}
				if data, err = template.ToJSON(t); err != nil {
					return err
				}
			}

			for _, path := range args {
				res := gjson.GetBytes(data, path)
				if !res.Exists() {
					return fmt.Errorf("no value at %s", path)
				}
				if raw && res.Type == gjson.String {
					fmt.Fprintln(cmd.OutOrStdout(), res.String())
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), res.Raw)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Query a template file instead of the synthesized workspace")
	cmd.Flags().BoolVarP(&raw, "raw", "r", false, "Print strings without quotes")

	return cmd
}
