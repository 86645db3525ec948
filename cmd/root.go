package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ICTylor/json-to-relational/internal/config"
	"github.com/ICTylor/json-to-relational/internal/fetcher"
	"github.com/ICTylor/json-to-relational/internal/mapper"
	"github.com/ICTylor/json-to-relational/internal/model"
	"github.com/ICTylor/json-to-relational/internal/pipeline"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "json-to-relational",
	Short: "Load the jsonplaceholder user collection into a relational database",
	Long: "Fetches the user collection, maps every user into user, address, geo and company rows " +
		"linked by foreign keys and commits them in a single transaction.",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := c.Validate(); err != nil {
			return fmt.Errorf("validate config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		m, err := mapper.New(model.DefaultRegistry())
		if err != nil {
			return eris.Wrap(err, "init mapper")
		}

		src := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			URL:         cfg.Source.URL,
			UserAgent:   cfg.Source.UserAgent,
			Timeout:     cfg.Source.Timeout(),
			MaxAttempts: cfg.Source.MaxAttempts,
		})

		result, err := pipeline.New(src, m, initStore).Run(ctx)
		if err != nil {
			return err
		}

		zap.L().Info("run complete",
			zap.String("run_id", result.RunID),
			zap.String("driver", cfg.Store.Driver),
			zap.Int("users", result.Committed),
		)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// errorMessage prefixes err with the run stage that failed, if known.
func errorMessage(err error) string {
	if stage := pipeline.Stage(err); stage != "" {
		return fmt.Sprintf("%s failed: %v", stage, err)
	}
	return fmt.Sprintf("error: %v", err)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorMessage(err))
		os.Exit(1)
	}
}
