package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lex00/wetwire-workspace-go/internal/validation"
)

func newValidateCmd(cfg configPath) *cobra.Command {
	var (
		outputFormat string
		cfnLint      bool
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check references and the workspace topology",
		Long: `Validate synthesizes the workspace and checks that every Ref, Fn::GetAtt,
Fn::Sub variable and DependsOn resolves, and that the template declares the
expected topology: 1 bucket, 1 VPC, 2 endpoints, 1 role, 1 security group,
2 instances, 1 instance-bound elastic IP and 1 alarm.

With --cfn-lint the template is also checked by cfn-lint-go.

Exits with status 2 when the template is invalid.

Examples:
    wetwire-workspace validate
    wetwire-workspace validate --cfn-lint --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, tmpl, err := synthesize(cfg())
			if err != nil {
				return err
			}

			result, err := validation.Validate(tmpl, validation.Options{CfnLint: cfnLint})
			if err != nil {
				return err
			}

			switch outputFormat {
			case "json":
				data, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
			case "text":
				fmt.Fprint(cmd.OutOrStdout(), renderValidate(result))
			default:
				return fmt.Errorf("unknown format: %s", outputFormat)
			}

			if !result.Success {
				return &exitError{code: 2, msg: "validation failed"}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&cfnLint, "cfn-lint", false, "Also run cfn-lint-go over the template")

	return cmd
}
