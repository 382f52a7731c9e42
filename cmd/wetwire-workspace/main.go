// Command wetwire-workspace synthesizes the developer workspace stack as a
// CloudFormation template.
//
// Usage:
//
//	wetwire-workspace build              Generate the CloudFormation template
//	wetwire-workspace list               List resources in the template
//	wetwire-workspace graph              Show resource dependencies
//	wetwire-workspace validate           Check references and topology
//	wetwire-workspace lint               Check the template against workspace rules
//	wetwire-workspace diff               Compare the template with another one
//	wetwire-workspace query              Run a gjson query over the template
//	wetwire-workspace simulate           Replay datapoints through the idle-stop alarm
//	wetwire-workspace publish            Upload the template to S3
//	wetwire-workspace watch              Rebuild on source or config changes
//	wetwire-workspace version            Show version
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lex00/wetwire-workspace-go/internal/logging"
)

// exitError carries a non-default exit code out of a command.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
	)

	rootCmd := &cobra.Command{
		Use:   "wetwire-workspace",
		Short: "Synthesize the developer workspace CloudFormation stack",
		Long: `wetwire-workspace declares a developer workspace in Go and synthesizes it as a
CloudFormation template: a private S3 bucket, a VPC with S3 and SSM endpoints,
an EC2 role, a security group open on 22 and 443, a private and a public
instance, an elastic IP for the public one, and an alarm that stops it when idle.

Settings come from workspace.yaml (or --config / WORKSPACE_CONFIG) with
WORKSPACE_KEY_PAIR, WORKSPACE_STACK_NAME and WORKSPACE_BUCKET_NAME overrides.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(os.Stderr, logLevel)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Configuration file (default: workspace.yaml if present)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default: $LOG_LEVEL or warn)")

	cfg := func() string { return configPath }
	rootCmd.AddCommand(
		newBuildCmd(cfg),
		newListCmd(cfg),
		newGraphCmd(cfg),
		newValidateCmd(cfg),
		newLintCmd(cfg),
		newDiffCmd(cfg),
		newQueryCmd(cfg),
		newSimulateCmd(cfg),
		newPublishCmd(cfg),
		newWatchCmd(cfg),
		newVersionCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "wetwire-workspace %s\n", getVersion())
		},
	}
}
