package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Minute)
	defer cancel()

	a := newApp(os.Stdin, os.Stdout)
	err := a.rootCmd().ExecuteContext(ctx)
	a.close()
	if err != nil {
		os.Exit(1)
	}
}
