// Command studio-admin applies the schema, seeds the catalog and reads
// generation logs back for analytics.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		color.Red("Error: %v", err)
		cancel()
		os.Exit(1)
	}
}
