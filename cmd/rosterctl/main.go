package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arnavshah/roster-scheduler-go/pkg/auth"
	"github.com/arnavshah/roster-scheduler-go/pkg/config"
	"github.com/arnavshah/roster-scheduler-go/pkg/database"
	"github.com/arnavshah/roster-scheduler-go/pkg/logging"
	"github.com/arnavshah/roster-scheduler-go/pkg/models"
	"github.com/arnavshah/roster-scheduler-go/pkg/orchestrator"
	"github.com/arnavshah/roster-scheduler-go/pkg/scheduler"
	"github.com/arnavshah/roster-scheduler-go/pkg/store"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "rosterctl",
		Short: "Roster scheduler CLI",
		Long:  `Offline tools for the roster scheduler: mint API keys, solve a week from a YAML file, or generate a stored schedule.`,
	}

	rootCmd.AddCommand(keygenCmd())
	rootCmd.AddCommand(solveCmd())
	rootCmd.AddCommand(generateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func keygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen <client_id>",
		Short: "Generate a signed API key for a client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config.LoadDotEnv()
			secret := os.Getenv("API_MASTER_SECRET")
			if secret == "" {
				return fmt.Errorf("API_MASTER_SECRET is not set")
			}

			key := auth.New("", secret).GenerateAPIKey(args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "Generated Key for %s:\n%s\n", args[0], key)
			return nil
		},
	}
}

func solveCmd() *cobra.Command {
	var (
		file   string
		week   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Solve a week from a YAML input file without touching the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := loadSolveInput(file)
			if err != nil {
				return err
			}
			if week != "" {
				input.Week = models.WeekSelector(week)
			}

			result, err := scheduler.Solve(input.Workers, input.ShiftTypes, input.Constraints, input.Week)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			return printResult(cmd.OutOrStdout(), input, result)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML file with workers, shift_types and constraints")
	cmd.Flags().StringVarP(&week, "week", "w", "", "week selector (current or next), overrides the file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw result as JSON")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func generateCmd() *cobra.Command {
	var week string

	cmd := &cobra.Command{
		Use:   "generate <company_id>",
		Short: "Generate and store the schedule of a company's week",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			companyID, err := strconv.ParseUint(args[0], 10, 0)
			if err != nil {
				return fmt.Errorf("company_id must be a number: %w", err)
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger, err := logging.InitLogger("cli", cfg.LogDir)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer logger.Sync()

			db, err := database.Open(cfg.DatabaseURL, cfg.DataPath)
			if err != nil {
				return err
			}

			st := store.New(db)
			generator := orchestrator.NewGenerator(orchestrator.Dependencies{
				Companies:   st,
				Roster:      st,
				Catalog:     st,
				Constraints: st,
				Schedules:   st,
			}, logger, cfg.GenerateTimeout)

			result, err := generator.Generate(context.Background(), uint(companyID), models.WeekSelector(week))
			if err != nil {
				logger.Error("Generation failed", zap.Error(err))
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s (run %s, fairness %.1f)\n", result.Message, result.RunID, result.FairnessScore)
			return nil
		},
	}

	cmd.Flags().StringVarP(&week, "week", "w", string(models.WeekCurrent), "week selector (current or next)")
	return cmd
}
