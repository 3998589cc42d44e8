package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/meetinghours/attendance-backend/internal/compliance"
	"github.com/meetinghours/attendance-backend/internal/config"
	"github.com/meetinghours/attendance-backend/internal/domain/report"
	"github.com/meetinghours/attendance-backend/internal/domain/user"
	"github.com/meetinghours/attendance-backend/internal/pkg/validator"
	"github.com/meetinghours/attendance-backend/internal/repository"
	"github.com/meetinghours/attendance-backend/internal/repository/postgresql"
	"github.com/meetinghours/attendance-backend/internal/service/audit"
	reportService "github.com/meetinghours/attendance-backend/internal/service/report"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

var cliActor = user.Actor{UserID: "system:attendctl", Role: user.RoleAdmin}

var rootCmd = &cobra.Command{
	Use:           "attendctl",
	Short:         "Meeting attendance maintenance tool",
	Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("attendctl %s\n", rootCmd.Version)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the PostgreSQL schema",
	RunE:  runMigrate,
}

var reportCmd = &cobra.Command{
	Use:   "report <period-id>",
	Short: "Print the compliance report for a reporting period",
	Args:  cobra.ExactArgs(1),
	RunE:  runReport,
}

var auditAmbiguousCmd = &cobra.Command{
	Use:   "audit-ambiguous",
	Short: "List date-only records on windows that share their date and category",
	Long: `Lists attendance records without explicit times that are attached to a
window sharing its start date and category with another window. Such a record
may belong to the other window.`,
	RunE: runAudit(func(a *audit.Auditor) auditFunc { return a.SharedDateRecords }),
}

var auditDayOverflowCmd = &cobra.Command{
	Use:   "audit-day-overflow",
	Short: "List records whose explicit time range spans about a full day",
	RunE:  runAudit(func(a *audit.Auditor) auditFunc { return a.DayOverflowRecords }),
}

var (
	xlsxOutFlag string
	fromFlag    string
	toFlag      string
)

func init() {
	reportCmd.Flags().StringVar(&xlsxOutFlag, "xlsx", "", "Write the report as a spreadsheet to this path")
	for _, cmd := range []*cobra.Command{auditAmbiguousCmd, auditDayOverflowCmd} {
		cmd.Flags().StringVar(&fromFlag, "from", "", "First date to scan, YYYY-MM-DD (required)")
		cmd.Flags().StringVar(&toFlag, "to", "", "Last date to scan, YYYY-MM-DD, inclusive (required)")
		_ = cmd.MarkFlagRequired("from")
		_ = cmd.MarkFlagRequired("to")
	}

	rootCmd.AddCommand(versionCmd, migrateCmd, reportCmd, auditAmbiguousCmd, auditDayOverflowCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func openStore(ctx context.Context) (*config.Config, *repository.Repositories, error) {
	cfg, err := config.LoadStore()
	if err != nil {
		return nil, nil, err
	}
	repos, err := repository.Open(ctx, cfg.Database, cfg.DatabaseURL(), false)
	if err != nil {
		return nil, nil, err
	}
	return cfg, repos, nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, repos, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer repos.Close()

	if repos.DB == nil {
		return fmt.Errorf("migrate needs STORE_DRIVER=%s, got %q", config.StoreDriverPostgres, cfg.Database.Driver)
	}
	if err := postgresql.Migrate(ctx, repos.DB); err != nil {
		return err
	}
	fmt.Println("Schema is up to date")
	return nil
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, repos, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer repos.Close()

	policy, err := compliance.LoadPolicy(cfg.Compliance.PolicyFile)
	if err != nil {
		return err
	}
	svc := reportService.NewReportService(repos.Users, repos.Periods, repos.Windows, repos.Records, repos.Excuses, policy, cfg.App.Location)
	req := report.PeriodReportRequest{PeriodID: args[0], Actor: cliActor}

	if xlsxOutFlag != "" {
		file, err := svc.ExportPeriodReport(ctx, req)
		if err != nil {
			return err
		}
		if err := os.WriteFile(xlsxOutFlag, file.Content, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", xlsxOutFlag, err)
		}
		fmt.Printf("Wrote %s\n", xlsxOutFlag)
		return nil
	}

	result, err := svc.GeneratePeriodReport(ctx, req)
	if err != nil {
		return err
	}

	fmt.Printf("%s (%s to %s)\n\n", result.Period.Name, result.Period.StartDate, result.Period.EndDate)
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "USER\tREGULAR\tATTENDED H\tEXCUSED H\tOUTREACH H\tTEAM\tTRAVEL")
	for _, row := range result.Rows {
		pct := "n/a"
		if v, ok := row.Metrics.Regular.Percentage.Get(); ok {
			pct = fmt.Sprintf("%.1f%%", v)
		}
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%.2f\t%.2f\t%s\t%s\n",
			row.Username,
			pct,
			row.Metrics.Regular.AttendedHours,
			row.Metrics.Regular.ExcusedHours,
			row.Metrics.Outreach.AttendedHours,
			passFail(row.Verdict.MeetsTeamRequirement),
			passFail(row.Verdict.MeetsTravelRequirement),
		)
	}
	return tw.Flush()
}

type auditFunc func(ctx context.Context, from, to time.Time) ([]audit.Finding, error)

func runAudit(pick func(*audit.Auditor) auditFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, repos, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer repos.Close()

		loc := cfg.App.Location
		from, ok := validator.IsValidDate(fromFlag)
		if !ok {
			return fmt.Errorf("--from must be in YYYY-MM-DD format")
		}
		to, ok := validator.IsValidDate(toFlag)
		if !ok {
			return fmt.Errorf("--to must be in YYYY-MM-DD format")
		}
		fromAt := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, loc)
		toAt := time.Date(to.Year(), to.Month(), to.Day()+1, 0, 0, 0, 0, loc)

		auditor := audit.NewAuditor(repos.Windows, repos.Records, loc)
		findings, err := pick(auditor)(ctx, fromAt, toAt)
		if err != nil {
			return err
		}

		if len(findings) == 0 {
			fmt.Println("No records found")
			return nil
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "RECORD\tUSER\tWINDOW\tSTARTS\tCATEGORY\tDETAIL")
		for _, f := range findings {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
				f.RecordID, f.UserID, f.WindowID, f.WindowStart.In(loc).Format("2006-01-02 15:04"), f.Category, f.Detail)
		}
		return tw.Flush()
	}
}

func passFail(ok bool) string {
	if ok {
		return "yes"
	}
	return "no"
}
