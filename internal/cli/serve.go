package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/virtgrid/pkg/server"
	"github.com/matzehuels/virtgrid/pkg/session"
)

const (
	// shutdownTimeout bounds how long in-flight requests may finish.
	shutdownTimeout = 5 * time.Second

	// sessionSweepInterval is how often expired sessions are dropped.
	sessionSweepInterval = time.Minute
)

// serveCommand creates the serve command for the HTTP session API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve virtualization sessions over HTTP",
		Long: `Serve virtualization sessions over HTTP.

Clients create a session from a layout and then send viewport changes;
each response lists the visible keys. Idle sessions expire after the
configured server.session_ttl.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.Config.Server.Addr
			}
			return c.runServe(cmd.Context(), addr, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	sessions := session.NewRegistry(c.Config.Server.SessionTTL.Duration)
	srv := &http.Server{
		Addr:              addr,
		Handler:           server.New(runner, sessions, c.Logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c.Logger.Info("listening", "addr", addr, "session_ttl", c.Config.Server.SessionTTL.Duration)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		err := sessions.Run(ctx, sessionSweepInterval)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		c.Logger.Info("shutting down", "sessions", sessions.Len())
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
