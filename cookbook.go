package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"cookbook/pkg/app"
)

// main lets operators start the application with `go run cookbook.go`.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, os.Args[1:], nil); err != nil {
		fmt.Fprintf(os.Stderr, "cookbook: %v\n", err)
		stop()
		os.Exit(1)
	}
}
