// Package cmd implements the magecli CLI commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/donaldgifford/magento-go/internal/config"
	"github.com/donaldgifford/magento-go/pkg/logger"
	"github.com/donaldgifford/magento-go/pkg/magento"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "magecli",
		Short: "CLI client for the Magento 2 REST API",
		Long: "magecli is a command-line client for Magento 2 stores.\n" +
			"It searches and inspects orders, products, customers, and\n" +
			"coupons through the store's REST API.",
	}
)

// Root returns the root cobra command for documentation generation.
func Root() *cobra.Command {
	return rootCmd
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().
		StringVar(&cfgFile, "config", "", "config file (default $HOME/.magecli.yaml)")
	rootCmd.PersistentFlags().
		String("output", "table", "output format (table, json)")

	cobra.CheckErr(viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output")))

	viper.SetEnvPrefix("MAGENTO")
	viper.AutomaticEnv()

	rootCmd.AddCommand(ordersCmd())
	rootCmd.AddCommand(productsCmd())
	rootCmd.AddCommand(customersCmd())
	rootCmd.AddCommand(couponsCmd())
	rootCmd.AddCommand(versionCommand())
}

// loadConfig resolves the config file path and loads it.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home directory: %w", err)
		}
		path = home + "/.magecli.yaml"
	}
	return config.Load(path)
}

// newClient builds a Magento client from the loaded configuration.
func newClient() (*magento.Client, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	opts := []magento.Option{
		magento.WithScheme(cfg.Store.Scheme),
		magento.WithLogger(logger.New(cfg.Logging.Level, cfg.Logging.Format)),
		magento.WithRateLimiter(magento.NewRateLimiter(
			cfg.RateLimit.PerSecond,
			cfg.RateLimit.Burst,
			cfg.RateLimit.HourlyLimit,
			magento.WithRateLimiterWindow(cfg.RateLimit.Window),
		)),
		magento.WithRetryPolicy(magento.RetryPolicy{
			MaxAttempts:     cfg.Retry.MaxAttempts,
			InitialInterval: cfg.Retry.InitialInterval,
			MaxInterval:     cfg.Retry.MaxInterval,
		}),
	}
	if cfg.Store.Scope != "" {
		opts = append(opts, magento.WithScope(cfg.Store.Scope))
	}
	if cfg.Store.UserAgent != "" {
		opts = append(opts, magento.WithUserAgent(cfg.Store.UserAgent))
	}

	var c *magento.Client
	if cfg.Auth.Method == "login" {
		c = magento.NewClientFromLogin(cfg.Store.Domain, cfg.Auth.Username, cfg.Auth.Password, opts...)
	} else {
		c = magento.NewClient(cfg.Store.Domain, magento.NewStaticTokenProvider(cfg.Auth.Token), opts...)
	}
	return c, cfg, nil
}

func jsonOutput() bool {
	return viper.GetString("output") == "json"
}
