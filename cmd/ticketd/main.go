// ticketd serves the ticket wire protocol from a SQL database so the
// board has something to talk to.
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

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/Madmaxim22/HelpDesk/internal/logging"
	"github.com/Madmaxim22/HelpDesk/internal/model"
	"github.com/Madmaxim22/HelpDesk/internal/server"
	"github.com/Madmaxim22/HelpDesk/internal/store"
)

const shutdownTimeout = 5 * time.Second

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	_ = godotenv.Load()

	var configPath string
	flags := pflag.NewFlagSet("ticketd", pflag.ContinueOnError)
	flags.StringVar(&configPath, "config", model.DefaultConfigPath(), "path to the YAML config file")
	flags.String("addr", "", "listen address")
	flags.String("driver", "", "database driver (sqlite or postgres)")
	flags.String("dsn", "", "database DSN or SQLite file path")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.Bool("dev", false, "human-readable logs and gin debug mode")

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := model.LoadConfig(configPath, flags)
	if err != nil {
		return err
	}
	svc := cfg.Service

	log := logging.New(cfg.Log.Level, os.Stdout, svc.Dev)
	if !svc.Dev {
		gin.SetMode(gin.ReleaseMode)
	}

	st, err := store.Open(svc.Driver, svc.DSN)
	if err != nil {
		return err
	}
	defer st.Close()

	h := server.New(st, log, server.Options{
		Token:          svc.Token,
		AllowedOrigins: svc.AllowedOrigins,
	})
	srv := &http.Server{
		Addr:              svc.Addr,
		Handler:           h.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", svc.Addr).Str("driver", svc.Driver).Msg("ticketd listening")
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		log.Info().Msg("shutting down...")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
