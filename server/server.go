package server

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"

	"github.com/hiCozyty/zmq-bridge/server/multierr"
	"github.com/juju/errors"
)

var ErrTLSRequired = errors.New("tls certificate and key are required")

// LoadTLSConfig reads a PEM certificate chain and its private key.
func LoadTLSConfig(certFile, keyFile string) (*tls.Config, error) {
	if certFile == "" || keyFile == "" {
		return nil, errors.Trace(ErrTLSRequired)
	}

	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, errors.Annotatef(err, "load tls key pair: %s, %s", certFile, keyFile)
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}

type Params struct {
	// TLSConfig enables TLS when set.
	TLSConfig *tls.Config
}

type Server struct {
	server *http.Server
	params Params
}

func New(params Params, handler http.Handler) *Server {
	server := &http.Server{
		Handler:   handler,
		TLSConfig: params.TLSConfig,
	}

	return &Server{
		server: server,
		params: params,
	}
}

// Start serves on l until ctx is done. It returns nil after a shutdown caused
// by ctx.
func (s Server) Start(ctx context.Context, l net.Listener) error {
	startErrCh := make(chan error, 1)

	// Hijacked websocket connections outlive Close, their handlers stop
	// with the request context instead.
	s.server.BaseContext = func(net.Listener) context.Context {
		return ctx
	}

	go func() {
		defer close(startErrCh)

		var err error

		if s.params.TLSConfig != nil {
			err = s.server.ServeTLS(l, "", "")
			err = errors.Trace(err)
		} else {
			err = s.server.Serve(l)
			err = errors.Trace(err)
		}

		startErrCh <- errors.Annotate(err, "start server")
	}()

	select {
	case <-ctx.Done():
	case err := <-startErrCh:
		return errors.Trace(err)
	}

	err := errors.Trace(s.server.Close())

	if startErr := <-startErrCh; startErr != nil {
		err = errors.Trace(startErr)
	}

	if !multierr.Is(err, http.ErrServerClosed) {
		return errors.Trace(err)
	}

	return nil
}
