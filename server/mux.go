package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi"
	"github.com/hiCozyty/zmq-bridge/server/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type SessionCounter interface {
	Size() int
}

// TransportStatus is done once the transport stopped running.
type TransportStatus interface {
	Done() <-chan struct{}
}

type MuxParams struct {
	Log        logger.Logger
	WSPath     string
	WSS        http.Handler
	Sessions   SessionCounter
	Transport  TransportStatus
	Prometheus PrometheusConfig
}

type Mux struct {
	handler   *chi.Mux
	log       logger.Logger
	sessions  SessionCounter
	transport TransportStatus
}

func (mux *Mux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	mux.handler.ServeHTTP(w, r)
}

type healthResponse struct {
	Sessions  int    `json:"sessions"`
	Transport string `json:"transport"`
}

func NewMux(params MuxParams) *Mux {
	log := params.Log.WithNamespaceAppended("mux")

	wsPath := params.WSPath
	if wsPath == "" {
		wsPath = "/ws"
	}

	handler := chi.NewRouter()
	mux := &Mux{
		handler:   handler,
		log:       log,
		sessions:  params.Sessions,
		transport: params.Transport,
	}

	handler.Get("/probes/liveness", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
	})
	handler.Get("/probes/health", mux.routeHealth)
	handler.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		accessToken := r.Header.Get("Authorization")
		if strings.HasPrefix(accessToken, "Bearer ") {
			accessToken = accessToken[len("Bearer "):]
		} else {
			accessToken = r.FormValue("access_token")
		}

		if accessToken == "" || accessToken != params.Prometheus.AccessToken {
			w.WriteHeader(http.StatusUnauthorized)

			return
		}
		promhttp.Handler().ServeHTTP(w, r)
	})

	handler.Handle(wsPath, params.WSS)

	return mux
}

func (mux *Mux) transportUp() bool {
	select {
	case <-mux.transport.Done():
		return false
	default:
		return true
	}
}

func (mux *Mux) routeHealth(w http.ResponseWriter, r *http.Request) {
	res := healthResponse{
		Sessions:  mux.sessions.Size(),
		Transport: "up",
	}

	status := http.StatusOK

	if !mux.transportUp() {
		res.Transport = "down"
		status = http.StatusServiceUnavailable
	}

	prometheusHealthChecksTotal.WithLabelValues(res.Transport).Inc()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(res); err != nil {
		mux.log.Error("Write health response", err, nil)
	}
}
