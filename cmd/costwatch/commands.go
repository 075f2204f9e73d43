package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/cobra"

	"github.com/pankaj-dahiya-devops/costwatch/internal/output"
	"github.com/pankaj-dahiya-devops/costwatch/internal/version"
)

func newRootCmd() *cobra.Command {
	return newRootCmdWith(defaultDeps())
}

func newRootCmdWith(d deps) *cobra.Command {
	root := &cobra.Command{
		Use:          "costwatch",
		Short:        "AWS cost monitoring and idle resource cleanup",
		SilenceUsage: true,
	}
	root.AddCommand(newCostCmd(d))
	root.AddCommand(newCleanupCmd(d))
	root.AddCommand(newLambdaCmd(d))
	root.AddCommand(newDoctorCmd(d))
	root.AddCommand(newVersionCmd())
	return root
}

func newCostCmd(d deps) *cobra.Command {
	var (
		format string
		color  bool
	)

	cmd := &cobra.Command{
		Use:   "cost",
		Short: "Run the cost monitor once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), d, pipelineCost)
			if err != nil {
				return err
			}
			res, err := a.costMonitor().Run(cmd.Context())
			if err != nil {
				return fmt.Errorf("cost monitor failed: %w", err)
			}
			if format == "table" {
				output.RenderCost(cmd.OutOrStdout(), res.Report, output.TableOptions{Colored: color})
				return nil
			}
			return printJSON(cmd.OutOrStdout(), newCostResponse(res))
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "Output format: json or table")
	cmd.Flags().BoolVar(&color, "color", false, "Colour threshold status in table output")
	return cmd
}

func newCleanupCmd(d deps) *cobra.Command {
	var (
		format  string
		savings bool
	)

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Run the resource cleanup once",
		Long: "Discover idle resources, estimate savings and, when CLEANUP_ENABLED=true\n" +
			"and DRY_RUN=false, stop or delete them.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), d, pipelineCleanup)
			if err != nil {
				return err
			}
			res, err := a.resourceCleanup().Run(cmd.Context())
			if err != nil {
				return fmt.Errorf("resource cleanup failed: %w", err)
			}
			if format == "table" {
				output.RenderCleanup(cmd.OutOrStdout(), res.Report, output.TableOptions{IncludeSavings: savings})
				return nil
			}
			return printJSON(cmd.OutOrStdout(), newCleanupResponse(res))
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "Output format: json or table")
	cmd.Flags().BoolVar(&savings, "savings", true, "Add a per-resource SAVINGS/MO column to table output")
	return cmd
}

// newLambdaCmd groups the function entrypoints. Each subcommand loads its
// dependencies once and then hands control to the Lambda runtime.
func newLambdaCmd(d deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lambda",
		Short: "Start the AWS Lambda runtime for one handler",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "cost",
		Short: "Serve scheduled cost monitor invocations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), d, pipelineCost)
			if err != nil {
				return err
			}
			lambda.Start(costHandler(a.costMonitor()))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "cleanup",
		Short: "Serve scheduled resource cleanup invocations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), d, pipelineCleanup)
			if err != nil {
				return err
			}
			lambda.Start(cleanupHandler(a.resourceCleanup()))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "slack",
		Short: "Forward SNS notifications to the Slack webhook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), d, pipelineSlack)
			if err != nil {
				return err
			}
			lambda.Start(slackHandler(a.slackAdapter()))
			return nil
		},
	})

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), version.Info())
		},
	}
}

// printJSON writes v as indented JSON to w.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
