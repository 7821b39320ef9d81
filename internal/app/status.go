package app

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/vk/originci/internal/executor"
)

// statusSource reports the pending units of a running test plan.
type statusSource interface {
	Snapshot() []executor.QueueStatus
}

type statusResponse struct {
	Pending int                    `json:"pending"`
	Queues  []executor.QueueStatus `json:"queues"`
}

func newStatusMux(src statusSource) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		queues := src.Snapshot()
		resp := statusResponse{Queues: queues}
		for _, q := range queues {
			resp.Pending += len(q.Pending)
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
	return mux
}

// startStatusServer serves /health and /status on addr until Close. The
// listener is bound before returning so a bad address fails the run early.
func (a *App) startStatusServer(addr string, src statusSource) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	a.httpServer = &http.Server{
		Handler:           newStatusMux(src),
		ReadHeaderTimeout: 5 * time.Second,
	}
	a.logger.Info("Starting status server.", "address", ln.Addr().String())

	go func() {
		if err := a.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("Status server failed.", "error", err)
		}
	}()
	return nil
}

func (a *App) stopStatusServer() error {
	if a.httpServer == nil {
		return nil
	}
	a.logger.Debug("Shutting down status server.")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := a.httpServer.Shutdown(ctx)
	a.httpServer = nil
	return err
}
