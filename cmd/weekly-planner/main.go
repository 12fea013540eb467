package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"weekly-planner/internal/app"
	"weekly-planner/internal/config"
	"weekly-planner/internal/logging"
)

// cli carries what every command needs. services is opened lazily so that
// --help works without a database.
type cli struct {
	user     string
	logLevel string
	open     func(ctx context.Context, logger *zap.Logger) (*app.Services, error)

	logger   *zap.Logger
	services *app.Services
}

func main() {
	c := &cli{open: openFromEnv}
	if err := newRootCmd(c).Execute(); err != nil {
		os.Exit(1)
	}
}

func openFromEnv(ctx context.Context, logger *zap.Logger) (*app.Services, error) {
	cfg, err := config.NewFromEnv()
	if err != nil {
		return nil, err
	}
	return app.Setup(ctx, cfg, logger)
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:          "weekly-planner",
		Short:        "Weekly meal planner and fuel calculator",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if c.logger == nil {
				logger, err := logging.New(c.logLevel)
				if err != nil {
					return err
				}
				c.logger = logger
			}
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if c.services != nil {
				c.services.Close()
				c.services = nil
			}
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVarP(&c.user, "user", "u", app.DefaultUserID, "user whose plan and history are used")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(
		newPlanCmd(c),
		newNewWeekCmd(c),
		newSwapCmd(c),
		newAssignCmd(c),
		newProteinCmd(c),
		newShoppingListCmd(c),
		newSeedCmd(c),
		newPublishCmd(c),
		newFuelCmd(c),
		newHistoryCmd(c),
		newMetricsCleanupCmd(c),
	)
	return root
}

func (c *cli) app(ctx context.Context) (*app.App, error) {
	if c.services == nil {
		services, err := c.open(ctx, c.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to start planner: %w", err)
		}
		c.services = services
	}
	return c.services.App, nil
}
