package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.Command{
		Name:  "meeting-summarizer",
		Usage: "Summarize meeting recordings from Google Drive over a WebSocket session",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Start the WebSocket server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "config",
						Usage: "Path to the YAML config file",
						Value: "config.yaml",
					},
					&cli.StringFlag{
						Name:  "env",
						Usage: "Path to the environment file",
						Value: ".env",
					},
					&cli.BoolFlag{
						Name:  "watch-config",
						Usage: "Reload the config file when it changes",
						Value: true,
					},
				},
				Action: serveAction,
			},
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
