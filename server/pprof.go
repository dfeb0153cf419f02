package server

import (
	"context"
	"net"
	"net/http"
	"net/http/pprof"
)

type PProf struct {
	handler *http.ServeMux
}

func NewPProf() *PProf {
	handler := http.NewServeMux()

	handler.HandleFunc("/debug/pprof/", pprof.Index)
	handler.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	handler.HandleFunc("/debug/pprof/profile", pprof.Profile)
	handler.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	handler.HandleFunc("/debug/pprof/trace", pprof.Trace)

	return &PProf{
		handler: handler,
	}
}

// Start serves the profiling endpoints on l, without TLS, until ctx is done.
func (p *PProf) Start(ctx context.Context, l net.Listener) error {
	return New(Params{}, p.handler).Start(ctx, l)
}
