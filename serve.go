package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/wansing/newsroom/backend"
	"github.com/wansing/newsroom/logging"
	"github.com/wansing/newsroom/metrics"
	"github.com/wansing/newsroom/util"
	"golang.org/x/time/rate"
)

var (
	serveBase    string
	serveListen  string
	serveMetrics string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the newsroom web interface",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	// Your reverse proxy must not strip the prefix. So if you're using nginx, the "proxy_pass" value should not end with a slash.
	serveCmd.Flags().StringVar(&serveBase, "base", "", "strip off this `prefix` from every HTTP request and prepend it to every link")
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "serve HTTP content at this `ip:port` (default 127.0.0.1:8080)")
	serveCmd.Flags().StringVar(&serveMetrics, "metrics", "", "serve prometheus metrics at this `ip:port`")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("base") {
		cfg.Base = serveBase
	}
	if cmd.Flags().Changed("listen") {
		cfg.Listen = serveListen
	}
	if cmd.Flags().Changed("metrics") {
		cfg.MetricsListen = serveMetrics
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := cfg.Level()
	if err != nil {
		return err
	}
	var logger = logging.NewLogger(os.Stderr, level, cfg.LogFormat)
	slog.SetDefault(logger)

	// database

	sqlDB, dbURL, err := openDB(cfg.DB)
	if err != nil {
		return err
	}
	defer func() {
		logger.Info("closing database")
		sqlDB.Close()
	}()

	logger.Info("using database", "url", dbURL.Redacted())

	sessionStore, err := newSessionStore(sqlDB, dbURL.Driver)
	if err != nil {
		return err
	}

	var base = cfg.NormalizedBase()

	var db = newCoreDB(sqlDB)
	db.Init(sessionStore, base, cfg.SessionIdleTimeout, cfg.SessionLifetime)

	// mux

	var mux = http.NewServeMux()
	util.HandlePrefix(mux, base, backend.NewBackendRouter(db, backend.Options{
		Prefix:          base,
		PublicRedactors: cfg.PublicRedactors,
		LoginRate:       rate.Limit(cfg.LoginRate),
		LoginBurst:      cfg.LoginBurst,
	}))

	// listeners

	var ctx, stop = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM) // SIGINT (Interrupt) or SIGTERM
	defer stop()

	var servers = []*http.Server{
		{
			Addr:         cfg.Listen,
			Handler:      logging.Middleware(logger, db.SessionManager.LoadAndSave(mux)),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
	}

	if cfg.MetricsListen != "" {
		var metricsMux = http.NewServeMux()
		metricsMux.Handle("/metrics", metrics.Handler())
		servers = append(servers, &http.Server{
			Addr:         cfg.MetricsListen,
			Handler:      metricsMux,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		})
	}

	var serveErr = make(chan error, len(servers))

	for _, srv := range servers {
		listener, err := net.Listen("tcp", srv.Addr)
		if err != nil {
			shutdown(logger, servers)
			return err
		}
		logger.Info("listening", "addr", srv.Addr)
		go func(srv *http.Server) {
			if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- err
			}
		}(srv)
	}

	// graceful shutdown

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err = <-serveErr:
		logger.Error("serving", "error", err)
	}

	shutdown(logger, servers)
	return err
}

func shutdown(logger *slog.Logger, servers []*http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, srv := range servers {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("shutting down server", "addr", srv.Addr, "error", err)
		}
	}
}
