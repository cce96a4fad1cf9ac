package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/wyfcoding/optionpricing/internal/pricing/application"
	"github.com/wyfcoding/optionpricing/internal/pricing/infrastructure/client"
	"github.com/wyfcoding/optionpricing/pkg/config"
	"github.com/wyfcoding/optionpricing/pkg/logger"
	"github.com/wyfcoding/optionpricing/pkg/metrics"
)

const BootstrapName = "pricing"

// appContext 各子命令共享的依赖
type appContext struct {
	cfg     *config.Config
	metrics *metrics.Metrics
	svc     *application.PricingService
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		envFile    string
	)
	app := &appContext{}

	root := &cobra.Command{
		Use:           BootstrapName,
		Short:         "European and American option pricing",
		Long:          `Prices vanilla options with Black-Scholes, a CRR binomial lattice or Monte Carlo simulation and reports the Greeks.`,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.init(configPath, envFile, cmd.Flags().Changed("env-file"))
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a TOML config file")
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the config, e.g. for APP_MARKET_DATA_API_KEY")

	root.AddCommand(newQuoteCmd(app), newSweepCmd(app), newServeCmd(app))
	return root
}

// init 加载 .env、配置与日志，并装配定价服务
func (a *appContext) init(configPath, envFile string, envRequired bool) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if envRequired || !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("load env file %s: %w", envFile, err)
			}
		}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := logger.Init(logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		FilePath:   cfg.Logger.FilePath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
		WithCaller: cfg.Logger.WithCaller,
	}); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	market, err := client.NewMarketDataClient(cfg.MarketData)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.metrics = metrics.New(cfg.ServiceName)
	a.svc = application.NewPricingService(cfg.Pricing, market, a.metrics)
	return nil
}
