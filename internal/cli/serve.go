package cli

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func serveCmd(e *env) *cobra.Command {
	var migrate bool

	c := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := e.app()
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			if migrate && a.DB != nil {
				if err := a.Migrate(); err != nil {
					return err
				}
			}

			ln, port, err := listen(e.cfg.Port)
			if err != nil {
				return err
			}
			server := &http.Server{
				Handler:           a.HTTPHandler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info().Str("port", port).Str("backend", e.cfg.Backend).Msg("listening")
				if err := server.Serve(ln); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
				close(errCh)
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			log.Info().Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	}

	c.Flags().BoolVar(&migrate, "migrate", false, "run migrations before serving (postgres backend)")
	return c
}

// listen prueba el puerto configurado y si está ocupado los siguientes 10.
func listen(port string) (net.Listener, string, error) {
	ln, err := net.Listen("tcp", ":"+port)
	if err == nil {
		return ln, port, nil
	}
	log.Warn().Err(err).Str("port", port).Msg("puerto ocupado, busco alternativa")
	for p := 8081; p <= 8090; p++ {
		l2, err2 := net.Listen("tcp", net.JoinHostPort("", fmt.Sprintf("%d", p)))
		if err2 == nil {
			return l2, fmt.Sprint(p), nil
		}
	}
	return nil, "", err
}
