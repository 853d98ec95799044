package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/zhubonan/castepxbin/internal/logger"
)

func main() {
	app := &cli.Command{
		Name:  "castepxbin",
		Usage: "Inspect CASTEP binary output files",
		Flags: loggingFlags(),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			cfg := LoadConfig()
			applyGlobalConfig(c, cfg)
			log := newLogger(logLevel, logFormat)
			return logger.WithContext(ctx, log), nil
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return cli.ShowAppHelp(c)
		},
		Commands: []*cli.Command{
			headersCmd(),
			dumpCmd(),
			omeCmd(),
			serveCmd(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
