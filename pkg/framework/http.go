package framework

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/golang/glog"
)

// HTTPServer runs an http.Server as a Runnable, shutting down gracefully
// when the context is done.
type HTTPServer struct {
	Addr    string
	Handler http.Handler
	// ShutdownTimeout defaults to 5s.
	ShutdownTimeout time.Duration
}

// Name implements Named.
func (s *HTTPServer) Name() string {
	return "http " + s.Addr
}

// Run implements Runnable.
func (s *HTTPServer) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	srv := &http.Server{Handler: s.Handler}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	glog.Infof("serving http on %s", ln.Addr())
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	timeout := s.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}
