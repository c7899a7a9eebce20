package container

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"
)

// Serve runs handler on the configured port until ctx is done, then shuts the
// server down within Server.ShutdownTimeout.
func (c *Container) Serve(ctx context.Context, name string, handler http.Handler) error {
	ln, err := net.Listen("tcp", ":"+c.Config.Server.Port)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	c.Logger.Info("server listening", "server", name, "addr", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	c.Logger.Info("server shutting down", "server", name, "timeout", c.Config.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), c.Config.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
