package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/lex00/wetwire-workspace-go/internal/lint"
	"github.com/lex00/wetwire-workspace-go/internal/publish"
	"github.com/lex00/wetwire-workspace-go/internal/validation"
)

func newPublishCmd(cfg configPath) *cobra.Command {
	var (
		bucket       string
		prefix       string
		region       string
		endpoint     string
		outputFormat string
		force        bool
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Upload the template to an S3 staging bucket",
		Long: `Publish synthesizes the workspace, refuses templates that fail lint or
validation (unless --force), and uploads the JSON template to S3 under
<prefix>/<stack>/<sha256>.json. The printed URL can be used as a TemplateURL.

Without a bucket the staging bucket wetwire-workspace-<account>-<region> is
used, and created if missing. Credentials come from the AWS SDK default chain.

Examples:
    wetwire-workspace publish
    wetwire-workspace publish --bucket my-templates --prefix dev
    wetwire-workspace publish --endpoint http://localhost:4566`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputFormat != "text" && outputFormat != "json" {
				return fmt.Errorf("unknown format: %s", outputFormat)
			}

			c, tmpl, err := synthesize(cfg())
			if err != nil {
				return err
			}

			if !force {
				if res := lint.Lint(tmpl, lint.Options{}); !res.Success {
					fmt.Fprint(cmd.ErrOrStderr(), renderLint(lint.ToLintResult(res)))
					return fmt.Errorf("template has lint errors; use --force to publish anyway")
				}
				v, err := validation.Validate(tmpl, validation.Options{})
				if err != nil {
					return err
				}
				if !v.Success {
					fmt.Fprint(cmd.ErrOrStderr(), renderValidate(v))
					return fmt.Errorf("template is invalid; use --force to publish anyway")
				}
			}

			pub := c.Publish
			if bucket != "" {
				pub.Bucket = bucket
			}
			if cmd.Flags().Changed("prefix") {
				pub.Prefix = prefix
			}
			if region != "" {
				pub.Region = region
			}
			if endpoint != "" {
				pub.Endpoint = endpoint
			}

			parent := cmd.Context()
			if parent == nil {
				parent = context.Background()
			}
			ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
			defer stop()

			p, err := publish.New(ctx, pub, log.Logger)
			if err != nil {
				return err
			}
			result, err := p.Publish(ctx, c.StackName, tmpl, pub)
			if err != nil {
				return err
			}

			if outputFormat == "json" {
				data, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.URL)
			return nil
		},
	}

	cmd.Flags().StringVar(&bucket, "bucket", "", "Staging bucket (default: from config, then wetwire-workspace-<account>-<region>)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Key prefix (default: from config)")
	cmd.Flags().StringVar(&region, "region", "", "AWS region (default: from config, then the SDK chain)")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "S3-compatible endpoint URL")
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&force, "force", false, "Publish even when lint or validation fails")

	return cmd
}
