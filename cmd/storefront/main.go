package main

import (
	"fmt"
	"os"

	"github.com/fjod/go_cart/storefront/internal/config"
	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func main() {
	app := &cli.App{
		Name:  "storefront",
		Usage: "shopping cart, checkout and catalog HTTP service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "optional dotenv file read before the environment",
				Value: ".env",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP server",
				Action: withConfig(serve),
			},
			{
				Name:   "migrate",
				Usage:  "apply SQLite catalog migrations",
				Action: withConfig(migrateCatalog),
			},
			{
				Name:   "seed",
				Usage:  "insert sample products into an empty catalog",
				Action: withConfig(seedCatalog),
			},
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type action func(c *cli.Context, cfg *config.Config, log *zap.Logger) error

func withConfig(fn action) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, err := config.Load(c.String("env-file"))
		if err != nil {
			return err
		}

		log, err := logger.New(cfg.LogLevel, cfg.LogDevelopment)
		if err != nil {
			return err
		}
		defer log.Sync() //nolint:errcheck
		zap.ReplaceGlobals(log)

		return fn(c, cfg, log)
	}
}
