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

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"cv-analyzer/internal/app"
	"cv-analyzer/internal/web"
)

const shutdownTimeout = 15 * time.Second

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web UI",
	Long:  "Serves the CV Analyzer and CV Optimizer tabs plus the JSON API until SIGINT or SIGTERM.",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "listen port (default: PORT env var or 7860)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps := buildDeps(ctx, os.Stdout)
	defer deps.Close()

	port := deps.Config.Port
	if servePort != 0 {
		port = servePort
	}
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           web.NewRouter(webDeps(deps)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		deps.Log.Info("cv analyzer listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		deps.Log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		deps.Log.Error("server stopped", "err", err)
		return err
	}
	return nil
}

func webDeps(deps app.Deps) web.Deps {
	// Extraction and report rendering run on top of the inference call.
	timeout := deps.Config.LLMTimeout + 30*time.Second
	return web.Deps{
		Workflows:      deps.Workflows,
		Reports:        deps.Reports,
		Runs:           deps.Runs,
		Log:            deps.Log,
		MaxUploadSize:  deps.Config.MaxUploadSize,
		RequestTimeout: timeout,
	}
}
