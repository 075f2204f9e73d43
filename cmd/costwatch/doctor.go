package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pankaj-dahiya-devops/costwatch/internal/config"
	"github.com/pankaj-dahiya-devops/costwatch/internal/providers/aws/common"
)

// DoctorResult holds the outcome of every check run by costwatch doctor.
type DoctorResult struct {
	Config struct {
		Loaded       bool     `json:"loaded"`
		CostValid    bool     `json:"cost_valid"`
		CleanupValid bool     `json:"cleanup_valid"`
		Errors       []string `json:"errors,omitempty"`
	} `json:"config"`

	AWS struct {
		Profile     string `json:"profile,omitempty"`
		Credentials bool   `json:"credentials"`
		AccountID   string `json:"account_id,omitempty"`
		Region      string `json:"region,omitempty"`
		Error       string `json:"error,omitempty"`
	} `json:"aws"`

	Cleanup struct {
		DryRun  bool `json:"dry_run"`
		Enabled bool `json:"enabled"`
	} `json:"cleanup"`

	OverallHealthy bool `json:"overall_healthy"`
}

func newDoctorCmd(d deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "doctor",
		Short:         "Check configuration and AWS credentials",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			result, err := runDoctor(cmd.Context(), d, cmd.OutOrStdout(), format)
			if err != nil {
				return err
			}
			if !result.OverallHealthy {
				os.Exit(1)
			}
			return nil
		},
	}
	cmd.Flags().String("format", "table", `Output format: "table" or "json"`)
	return cmd
}

// runDoctor collects the diagnostics, renders them to w and returns them.
// The error covers rendering only; callers inspect OverallHealthy.
func runDoctor(ctx context.Context, d deps, w io.Writer, format string) (DoctorResult, error) {
	result := collectDoctorResult(ctx, d)

	switch format {
	case "json":
		if err := json.NewEncoder(w).Encode(result); err != nil {
			return result, fmt.Errorf("encode doctor result: %w", err)
		}
	default:
		renderDoctorTable(result, w)
	}
	return result, nil
}

// collectDoctorResult validates the configuration for both pipelines and
// then resolves an AWS session with the configured profile and region.
func collectDoctorResult(ctx context.Context, d deps) DoctorResult {
	var result DoctorResult

	cfg, err := config.LoadFrom(d.lookup)
	if err != nil {
		result.Config.Errors = []string{err.Error()}
		result.AWS.Error = "skipped"
		return result
	}
	result.Config.Loaded = true
	result.Cleanup.DryRun = cfg.Cleanup.DryRun
	result.Cleanup.Enabled = cfg.Cleanup.Enabled

	if err := cfg.ValidateCost(); err != nil {
		result.Config.Errors = append(result.Config.Errors, "cost: "+err.Error())
	} else {
		result.Config.CostValid = true
	}
	if err := cfg.ValidateCleanup(); err != nil {
		result.Config.Errors = append(result.Config.Errors, "cleanup: "+err.Error())
	} else {
		result.Config.CleanupValid = true
	}

	result.AWS.Profile = cfg.AWS.Profile
	session, err := d.loader.Load(ctx, common.LoadOptions{
		Profile:     cfg.AWS.Profile,
		Region:      cfg.AWS.Region,
		MaxAttempts: cfg.AWS.MaxAttempts,
		AccountID:   cfg.AccountID,
	})
	if err != nil {
		result.AWS.Error = err.Error()
	} else {
		result.AWS.Credentials = true
		result.AWS.AccountID = session.AccountID
		result.AWS.Region = session.Region
	}

	result.OverallHealthy = result.Config.CostValid &&
		result.Config.CleanupValid &&
		result.AWS.Credentials
	return result
}

// renderDoctorTable writes the human-readable diagnostics to w.
func renderDoctorTable(result DoctorResult, w io.Writer) {
	fmt.Fprintln(w, "Environment Diagnostics")

	fmt.Fprintln(w, "\nConfiguration:")
	if !result.Config.Loaded {
		for _, e := range result.Config.Errors {
			doctorPrint(w, "Load", "FAIL", e)
		}
	} else {
		doctorPrint(w, "Load", "OK", "")
		doctorPrint(w, "Cost monitor", okOrFail(result.Config.CostValid), "")
		doctorPrint(w, "Resource cleanup", okOrFail(result.Config.CleanupValid), "")
		for _, e := range result.Config.Errors {
			doctorPrint(w, "Error", "FAIL", e)
		}
		doctorPrint(w, "Cleanup mode", cleanupMode(result), "")
	}

	if result.AWS.Profile != "" {
		fmt.Fprintf(w, "\nAWS (profile: %s):\n", result.AWS.Profile)
	} else {
		fmt.Fprintln(w, "\nAWS:")
	}
	if !result.AWS.Credentials {
		doctorPrint(w, "Credentials", "FAIL", result.AWS.Error)
		doctorPrint(w, "STS Identity", "FAIL", "skipped")
	} else {
		doctorPrint(w, "Credentials", "OK", "")
		doctorPrint(w, "STS Identity", "OK", "Account: "+result.AWS.AccountID)
		doctorPrint(w, "Region", "OK", result.AWS.Region)
	}
}

func cleanupMode(result DoctorResult) string {
	switch {
	case !result.Cleanup.Enabled:
		return "disabled"
	case result.Cleanup.DryRun:
		return "dry run"
	default:
		return "LIVE"
	}
}

func okOrFail(ok bool) string {
	if ok {
		return "OK"
	}
	return "FAIL"
}

// doctorPrint writes one check line; a non-empty detail is appended in
// parentheses.
func doctorPrint(w io.Writer, label, status, detail string) {
	if detail != "" {
		fmt.Fprintf(w, "  %s: %s (%s)\n", label, status, detail)
	} else {
		fmt.Fprintf(w, "  %s: %s\n", label, status)
	}
}
