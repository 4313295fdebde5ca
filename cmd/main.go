// cmd/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/patrik-rangel/hvac-telemetry-api/internal/app"
)

func main() {
	cfg, err := app.Bootstrap()
	if err != nil {
		slog.Error("erro de configuração", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	application, err := app.New(ctx, cfg)
	if err != nil {
		slog.Error("erro fatal ao inicializar o serviço", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	fmt.Print(application.Banner())

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           application.Handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		slog.Info("sinal de desligamento recebido")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("erro ao desligar servidor HTTP", "error", err)
		}
	}()

	slog.Info("servidor iniciado", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("erro no servidor HTTP", "error", err)
		application.Close()
		os.Exit(1)
	}
	slog.Info("servidor encerrado")
}
