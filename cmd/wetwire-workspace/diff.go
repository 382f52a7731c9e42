package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	wetwire "github.com/lex00/wetwire-workspace-go"
	"github.com/lex00/wetwire-workspace-go/internal/differ"
	"github.com/lex00/wetwire-workspace-go/internal/template"
)

func newDiffCmd(cfg configPath) *cobra.Command {
	var (
		outputFormat string
		ignoreOrder  bool
	)

	cmd := &cobra.Command{
		Use:   "diff <template1> [template2]",
		Short: "Compare two templates",
		Long: `Diff compares two CloudFormation templates resource by resource. With a single
argument the file is compared against the freshly synthesized workspace.

The delta format prints the full JSON difference with + and - markers.

Examples:
    wetwire-workspace diff deployed.json
    wetwire-workspace diff old.yaml new.json --format json
    wetwire-workspace diff deployed.json --format delta`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			left, err := template.LoadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to load %s: %w", args[0], err)
			}

			var right *wetwire.Template
			if len(args) == 2 {
				if right, err = template.LoadFile(args[1]); err != nil {
					return fmt.Errorf("failed to load %s: %w", args[1], err)
				}
			} else if _, right, err = synthesize(cfg()); err != nil {
				return err
			}

			if outputFormat == "delta" {
				color := false
				if f, ok := cmd.OutOrStdout().(*os.File); ok {
					color = isatty.IsTerminal(f.Fd())
				}
				out, err := differ.Delta(left, right, color)
				if err != nil {
					return err
				}
				if out == "" {
					out = "Templates are identical.\n"
				}
				fmt.Fprint(cmd.OutOrStdout(), out)
				return nil
			}

			result, err := differ.Compare(left, right, differ.Options{IgnoreOrder: ignoreOrder})
			if err != nil {
				return err
			}

			switch outputFormat {
			case "json":
				data, err := json.MarshalIndent(struct {
					Diff    wetwire.TemplateDiff `json:"diff"`
					Summary wetwire.DiffSummary  `json:"summary"`
				}{result.Diff, result.Summary}, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
			case "text":
				fmt.Fprint(cmd.OutOrStdout(), renderDiff(result.Diff, result.Summary))
			default:
				return fmt.Errorf("unknown format: %s", outputFormat)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text, json or delta")
	cmd.Flags().BoolVar(&ignoreOrder, "ignore-order", false, "Ignore array element order")

	return cmd
}
