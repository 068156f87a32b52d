// Command benedict is a push-to-talk dictation session daemon and its
// forwarding CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/benedict-dev/benedict/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return app.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
}
