package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/followhub/internal/client/cli"
	"github.com/dmitrijs2005/followhub/internal/client/config"
	"github.com/dmitrijs2005/followhub/internal/flagx"
)

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	app, err := cli.NewApp(ctx, cfg, os.Stdin, os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := app.Run(ctx, flagx.Positional(os.Args[1:], config.KnownFlags)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

}
