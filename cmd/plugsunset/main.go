package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmylchreest/plugsunset/cmd/plugsunset/commands"
	"github.com/jmylchreest/plugsunset/internal/http/handlers"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := commands.NewRootCommand(handlers.BuildInfo{
		Version:   version,
		Commit:    commit,
		BuildDate: buildDate,
	})
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
