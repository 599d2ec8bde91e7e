package main

import (
	"fmt"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/fenilsonani/file-organizer/internal/classify"
)

var cleanDays int

var plansCmd = &cobra.Command{
	Use:   "plans",
	Short: "Manage stored plans",
	Long: heredoc.Doc(`
		Lists the plans kept by 'organizer analyze --store', newest first.
		Plans live in plans.dir (default ~/.config/file-organizer/plans).
	`),
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openPlanStore()
		if err != nil {
			return err
		}
		plans, err := store.List()
		if err != nil {
			return err
		}
		return current.reporter.Plans(plans)
	},
}

var plansShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show the classifications of a stored plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openPlanStore()
		if err != nil {
			return err
		}
		plan, err := store.Load(args[0])
		if err != nil {
			return err
		}
		return current.reporter.Analysis(&plan.AnalyzeResult)
	},
}

var plansDeleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete stored plans",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openPlanStore()
		if err != nil {
			return err
		}
		for _, id := range args {
			if err := store.Delete(id); err != nil {
				return err
			}
			fmt.Printf("Deleted plan %s\n", id)
		}
		return nil
	},
}

var plansCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete plans older than plans.max_age_days",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		days := current.cfg.Plans.MaxAgeDays
		if cmd.Flags().Changed("days") {
			days = cleanDays
		}
		if days <= 0 {
			return fmt.Errorf("max age must be positive, got %d days", days)
		}

		store, err := openPlanStore()
		if err != nil {
			return err
		}
		removed, err := store.Clean(time.Duration(days) * 24 * time.Hour)
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d plans older than %d days\n", removed, days)
		return nil
	},
}

func init() {
	plansCleanCmd.Flags().IntVar(&cleanDays, "days", 0, "override plans.max_age_days")
	plansCmd.AddCommand(plansShowCmd, plansDeleteCmd, plansCleanCmd)
}

func openPlanStore() (*classify.PlanStore, error) {
	return classify.NewPlanStore(current.fs, current.cfg.Plans.Dir)
}
