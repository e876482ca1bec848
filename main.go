package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"checkers-tcp-server/config"
	"checkers-tcp-server/core"
	"checkers-tcp-server/util"
)

func main() {
	cfg, showHelp := config.LoadFromArgs(os.Args[1:])
	if showHelp {
		fmt.Print(config.Usage())
		os.Exit(0)
	}
	util.SetLogLevel(cfg.LogLevel)

	srv := core.NewServer(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	util.Info("Server", "==================================================")
	util.Info("Server", "checkers-tcp server")
	util.Info("Server", "==================================================")
	util.Info("Server", "Listening on %s:%d", cfg.Bind, cfg.Port)
	util.Info("Server", "==================================================")

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ctx)
	}()

	select {
	case <-ctx.Done():
		util.Info("Server", "shutdown signal received")
	case err := <-errCh:
		if err != nil {
			util.Fatal("Server", "serve error: %v", err)
		}
	}

	<-errCh
	util.Info("Server", "server stopped")
}
