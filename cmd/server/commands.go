package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/ndewijer/portfolio-dashboard/internal/apperrors"
	"github.com/ndewijer/portfolio-dashboard/internal/database"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and print the schema version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			v, err := database.Version(cmd.Context(), a.db)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", v)
			return nil
		},
	}
}

func autoInvestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "autoinvest",
		Short: "Manage auto-invest schedules",
	}

	var asOf string
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Execute every schedule that is due",
		RunE: func(cmd *cobra.Command, _ []string) error {
			when := time.Now()
			if asOf != "" {
				t, err := time.Parse("2006-01-02", asOf)
				if err != nil {
					return fmt.Errorf("invalid --as-of date: %w", err)
				}
				when = t
			}

			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			result, err := a.services.AutoInvest.RunDue(cmd.Context(), when)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, e := range result.Executions {
				if e.Error != "" || e.Transaction == nil {
					fmt.Fprintf(out, "FAIL %s: %s\n", e.ScheduleID, e.Error)
					continue
				}
				fmt.Fprintf(out, "OK   %s %s %.6f @ %.2f, next %s\n",
					e.ScheduleID, e.Symbol, e.Transaction.Shares, e.ExecutedPrice, e.NextDueDate.Format("2006-01-02"))
			}
			fmt.Fprintf(out, "%d executed, %d failed\n", result.Executed, result.Failed)
			return nil
		},
	}
	runCmd.Flags().StringVar(&asOf, "as-of", "", "run as of this date (YYYY-MM-DD), defaults to now")

	cmd.AddCommand(runCmd)
	return cmd
}

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Manage weekly reports",
	}

	var week string
	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the report of a week, the previous week by default",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var weekStart time.Time
			if week != "" {
				t, err := time.Parse("2006-01-02", week)
				if err != nil {
					return fmt.Errorf("invalid --week date: %w", err)
				}
				weekStart = t
			}

			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			report, err := a.services.Report.Generate(cmd.Context(), weekStart)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), report.Summary)
			return nil
		},
	}
	generateCmd.Flags().StringVar(&week, "week", "", "any date in the week to report (YYYY-MM-DD)")

	cmd.AddCommand(generateCmd)
	return cmd
}

func insightCmd() *cobra.Command {
	var generate bool
	var width int

	cmd := &cobra.Command{
		Use:   "insight",
		Short: "Render the latest AI insight in the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			insight, err := a.services.Advisor.GetLatestInsight(cmd.Context())
			if generate {
				insight, err = a.services.Advisor.GenerateInsight(cmd.Context())
			}
			if errors.Is(err, apperrors.ErrInsightNotFound) {
				return errors.New("no insight yet, run with --generate")
			}
			if err != nil {
				return err
			}

			renderer, err := glamour.NewTermRenderer(
				glamour.WithAutoStyle(),
				glamour.WithWordWrap(width),
			)
			if err != nil {
				return err
			}
			out, err := renderer.Render(insight.Content)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s, %s)\n%s",
				insight.Kind, insight.Model, insight.CreatedAt.Format(time.RFC822), out)
			return nil
		},
	}
	cmd.Flags().BoolVar(&generate, "generate", false, "generate a fresh insight first")
	cmd.Flags().IntVar(&width, "width", 100, "word wrap width")
	return cmd
}
