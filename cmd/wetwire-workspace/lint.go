package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	wetwire "github.com/lex00/wetwire-workspace-go"
	"github.com/lex00/wetwire-workspace-go/internal/lint"
)

func newLintCmd(cfg configPath) *cobra.Command {
	var (
		outputFormat string
		enabled      []string
		disabled     []string
		strict       bool
	)

	cmd := &cobra.Command{
		Use:   "lint [source dirs...]",
		Short: "Check the template against the workspace rules",
		Long: `Lint synthesizes the workspace and checks the template:

    WWS001: S3 bucket public access must be fully blocked
    WWS002: World-open ingress is limited to TCP 22 and 443, each declared once
    WWS003: Instance roles are assumable only by ec2.amazonaws.com
    WWS004: Instance-bound elastic IPs target an instance in a public subnet
    WWS005: Idle-stop alarms use LessThanThreshold and watch a declared instance
    WWS006: Every VPC has an S3 gateway endpoint
    WWS007: Instance key pair must be set before deploying
    WWS008: Every instance sits in exactly one subnet

Directories given as arguments are checked as Go declaration source:

    WWS101: Use pseudo-parameter variables instead of hardcoded strings
    WWS102: Use intrinsic types instead of raw map[string]any
    WWS103: Use PolicyVersion for IAM policy documents
    WWS104: Declare world-open CIDRs as a named constant

Exits with status 2 when errors (or, with --strict, warnings) are found.

Examples:
    wetwire-workspace lint
    wetwire-workspace lint ./infra/...
    wetwire-workspace lint --disable WWS007 --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, tmpl, err := synthesize(cfg())
			if err != nil {
				return err
			}

			opts := lint.Options{EnabledRules: enabled, DisabledRules: disabled, WarningsAsErrors: strict}
			res := lint.Lint(tmpl, opts)
			for _, dir := range args {
				src, err := lint.LintSource(dir, opts)
				if err != nil {
					return fmt.Errorf("linting %s: %w", dir, err)
				}
				res.Issues = append(res.Issues, src.Issues...)
				res.Success = res.Success && src.Success
			}

			result := lint.ToLintResult(res)
			if err := outputLintResult(cmd, result, outputFormat); err != nil {
				return err
			}
			if !result.Success {
				return &exitError{code: 2, msg: "lint failed"}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")
	cmd.Flags().StringSliceVar(&enabled, "enable", nil, "Only run these rule IDs")
	cmd.Flags().StringSliceVar(&disabled, "disable", nil, "Skip these rule IDs")
	cmd.Flags().BoolVar(&strict, "strict", false, "Treat warnings as errors")

	return cmd
}

func outputLintResult(cmd *cobra.Command, result wetwire.LintResult, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
	case "text":
		fmt.Fprint(cmd.OutOrStdout(), renderLint(result))
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	return nil
}
