package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"orgconsole/controller"
	"orgconsole/models"
	"orgconsole/utils"
	"orgconsole/utils/logger"
	"orgconsole/worker"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web console",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			log := logger.NewLogger(cfg.LogLevel, cfg.LogFormat)
			log.Debugf("Config loaded: %s", utils.PrintPrettyJSON(redacted(*cfg)))

			if cfg.AppEnv == "production" {
				gin.SetMode(gin.ReleaseMode)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			c, err := controller.NewController(ctx, cfg, log)
			if err != nil {
				return withCode(exitConfig, err)
			}
			r := gin.New()
			if err := c.RegisterRoutes(r); err != nil {
				return withCode(exitFailure, err)
			}

			sweeper, err := worker.NewService(cfg, c.Registry(), log)
			if err != nil {
				return withCode(exitConfig, err)
			}
			c.AttachSweeper(sweeper)
			if err := sweeper.StartInBackground(); err != nil {
				return withCode(exitFailure, fmt.Errorf("failed to start session sweeper: %w", err))
			}
			defer func() {
				if err := sweeper.Stop(); err != nil {
					log.Warnf("Failed to stop session sweeper: %v", err)
				}
			}()

			if err := c.Serve(ctx, r); err != nil {
				return withCode(exitFailure, fmt.Errorf("console server: %w", err))
			}
			return nil
		},
	}
}

// redacted hides the secrets before the config is logged
func redacted(cfg models.Config) models.Config {
	if cfg.SessionSecret != "" {
		cfg.SessionSecret = "***"
	}
	if cfg.CSRFKey != "" {
		cfg.CSRFKey = "***"
	}
	return cfg
}
