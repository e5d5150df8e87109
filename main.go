package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/anicoll/energy-dashboard/cmd"
)

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "env-file",
			Usage: "dotenv file loaded before reading the environment",
			Value: ".env",
		},
		&cli.StringFlag{
			Name:    "log-level",
			EnvVars: []string{"LOG_LEVEL"},
			Value:   "INFO",
		},
		&cli.StringFlag{
			Name:    "preset",
			Usage:   "thisMonth, last30Days or last3Months",
			EnvVars: []string{"DEFAULT_PRESET"},
			Value:   "thisMonth",
		},
	}
}

func main() {
	app := &cli.App{
		Name:   "energy-dashboard",
		Usage:  "household energy dashboard API",
		Action: cmd.ServeCommand,
		Flags:  commonFlags(),
		Commands: []*cli.Command{
			{
				Name:   "snapshot",
				Usage:  "assemble one dashboard and print it",
				Action: cmd.SnapshotCommand,
				Flags:  commonFlags(),
			},
			{
				Name:   "token",
				Usage:  "generate a resync token and its RESYNC_TOKEN_HASH",
				Action: cmd.TokenCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "length",
						Value: 32,
					},
				},
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
