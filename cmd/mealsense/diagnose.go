package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	appdiag "github.com/bryanwahyu/mealsense/internal/application/diagnostics"
	"github.com/bryanwahyu/mealsense/internal/config"
	domdiag "github.com/bryanwahyu/mealsense/internal/domain/diagnostics"
	"github.com/bryanwahyu/mealsense/internal/infra/firebase"
)

// errUnhealthy makes the process exit non-zero without printing another message.
var errUnhealthy = errors.New("credentials unhealthy")

var (
	diagnoseJSON bool

	// swapped in tests
	credentialSnapshot = config.CredentialSnapshot
)

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Check the service-account credentials and print a report",
	Long: `Runs the same credential diagnostics as GET /v1/diagnostics/firebase
against the current environment. Exits 1 when the report is unhealthy.`,
	RunE: runDiagnose,
}

func init() {
	diagnoseCmd.Flags().BoolVar(&diagnoseJSON, "json", false, "Print only the JSON report")
}

func runDiagnose(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	snap := credentialSnapshot()
	svc := appdiag.NewService(nil, log, cfg.Production())
	report := svc.Run(cmd.Context(), snap, firebase.NewInitializer(snap, log))

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return err
	}
	if !diagnoseJSON {
		printVerdict(cmd, report)
	}

	if report.Status != domdiag.HealthHealthy {
		return errUnhealthy
	}
	return nil
}

func printVerdict(cmd *cobra.Command, report *domdiag.Report) {
	out := cmd.OutOrStdout()
	ok := color.New(color.Bold, color.FgHiGreen)
	bad := color.New(color.Bold, color.FgHiRed)
	dim := color.New(color.FgHiBlack)

	line := func(name string, status domdiag.CheckStatus) {
		c := dim
		switch status {
		case domdiag.StatusSuccess:
			c = ok
		case domdiag.StatusError:
			c = bad
		}
		fmt.Fprintf(out, "  %-24s %s\n", name, c.Sprint(status))
	}

	fmt.Fprintln(out)
	line("environment variables", report.Checks.EnvironmentVariables.Status)
	line("private key", report.Checks.PrivateKeyValidation.Status)
	line("initialization", report.Checks.FirebaseInitialization.Status)

	if report.Status == domdiag.HealthHealthy {
		fmt.Fprintln(out, ok.Sprint("healthy"))
	} else {
		fmt.Fprintln(out, bad.Sprint("unhealthy"))
	}
}
