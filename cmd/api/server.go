package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"property-catalog/pkg/logger"
)

func (a *App) InitializeServer() {
	a.Server = &http.Server{
		Addr:              fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// StartServer serves until SIGINT or SIGTERM, then shuts down gracefully.
func (a *App) StartServer() {
	a.startScheduler()

	go func() {
		logger.GlobalLogger.Printf("Starting server on %s (env %s)", a.Server.Addr, a.Config.Server.Env)
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.GlobalLogger.Errorf("failed to start server: %v", err)
			os.Exit(1)
		}
	}()

	a.shutdownServer()
}

func (a *App) shutdownServer() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.GlobalLogger.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.Server.Shutdown(ctx); err != nil {
		logger.GlobalLogger.Errorf("server forced to shutdown: %v", err)
	}
	a.cleanup()

	logger.GlobalLogger.Println("Server exited")
}
