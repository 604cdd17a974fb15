package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/eringen/folio"
	"github.com/eringen/folio/content"
)

var (
	serveAddr  string
	serveWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the portfolio",
	Long: `Serve the portfolio until interrupted. With --watch, edits to the
content file or the projects directory are picked up without a restart;
a broken edit is logged and the previous content stays live.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "reload content when its files change")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := folio.LoadConfig(cfgFile)
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Addr = serveAddr
	}

	app := folio.New(cfg, folio.ViewFuncs{})
	if err := app.Setup(); err != nil {
		return err
	}
	defer app.Close()
	logger := app.Echo.Logger

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if serveWatch {
		go func() {
			err := content.Watch(ctx, app.Config.ContentPath, app.Content, func(site *content.Site, err error) {
				if err != nil {
					logger.Errorf("content reload failed, keeping previous content: %v", err)
					return
				}
				app.ReloadContent(site)
				logger.Infof("content reloaded: %d projects", len(site.Projects))
			})
			if err != nil {
				logger.Errorf("content watch stopped: %v", err)
			}
		}()
	}

	errc := make(chan error, 1)
	go func() { errc <- app.Start() }()
	logger.Infof("folio listening on %s", app.Config.Addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errc
}
