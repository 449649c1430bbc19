package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roivaz/commitforge/internal/api"
	"github.com/roivaz/commitforge/internal/assist"
	"github.com/roivaz/commitforge/internal/commitgen"
	"github.com/roivaz/commitforge/internal/config"
	"github.com/roivaz/commitforge/internal/mcp"
	"github.com/roivaz/commitforge/internal/metrics"
	"github.com/roivaz/commitforge/internal/prdesc"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and MCP server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("host", "", "HTTP host (overrides HTTP_HOST)")
	serveCmd.Flags().Int("port", 0, "HTTP port (overrides HTTP_PORT)")
	_ = viper.BindPFlag(config.KeyHTTPHost, serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag(config.KeyHTTPPort, serveCmd.Flags().Lookup("port"))
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	log := a.log
	m := metrics.New()

	generator := commitgen.New(a.gateway, m, log)
	builder := prdesc.NewBuilder(a.gateway, m, log)
	ghClient := a.github()

	svc := api.Services{
		Gateway: a.gateway,
		Commits: generator,
		PRs:     builder,
		GitHub:  ghClient,
		Assist:  assist.New(a.gateway, m, log),
		Metrics: m,
	}
	if ms := a.media(m); ms != nil {
		svc.Media = ms
	}

	ragSvc, database, err := a.rag(cmd.Context(), m)
	if err != nil {
		return err
	}
	if database != nil {
		defer database.Close()
	}
	if ragSvc != nil {
		svc.RAG = ragSvc
	}

	mcpServer := mcp.New(mcp.DefaultConfig(mcp.Dependencies{
		Generator: generator,
		Builder:   builder,
		GitHub:    ghClient,
	}, log))
	svc.MCP = mcpServer.Handler

	addr := a.settings.Addr

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           api.NewServer(svc, api.Options{AllowedOrigins: a.settings.AllowedOrigins}, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", addr, "mcp", mcp.EndpointPath)
		errCh <- httpServer.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		log.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(ctx)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	}
}
