package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// NewStreakCheckCmd runs the daily streak job once, for use from a scheduler.
func NewStreakCheckCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "streak-check",
		Short: "Run the daily streak check once",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStreakCheck(cmd.Context(), *configPath)
		},
	}
}

func runStreakCheck(ctx context.Context, configPath string) error {
	cfg, log, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	st, err := buildStack(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.services.Streak.DailyCheck(ctx); err != nil {
		return err
	}
	log.Info("daily streak check finished")
	return nil
}
