package http

import (
	"net/http"

	"github.com/m-mizutani/romfetch/pkg/domain/model"
	"github.com/m-mizutani/romfetch/pkg/domain/types"
	"github.com/m-mizutani/romfetch/pkg/infra/events"
)

// healthHandler reports liveness and, with a broker, the number of open event streams
func healthHandler(broker *events.Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := &model.HealthStatus{
			Status:  "healthy",
			Service: types.AppName,
			Version: types.Version,
		}
		if broker != nil {
			n := broker.Len()
			status.EventStreams = &n
		}
		writeJSON(r.Context(), w, http.StatusOK, status)
	}
}
