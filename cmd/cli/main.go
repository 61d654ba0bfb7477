package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/notesync/internal/client/cli"
	"github.com/dmitrijs2005/notesync/internal/client/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	app := cli.NewApp(cfg)
	defer app.Close()

	if err := cli.NewRootCommand(app).ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}
