package controllers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/multierr"

	"github.com/vendaflow/pos-backend/api/responses"
	"github.com/vendaflow/pos-backend/pkg/config"
	pkgerrors "github.com/vendaflow/pos-backend/pkg/errors"
	"github.com/vendaflow/pos-backend/pkg/logger"
)

const readinessTimeout = 2 * time.Second

// Pinger is anything that can answer a health probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-VendaFlow-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady probes every backing service and reports all failures at once.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP, redisP Pinger) http.HandlerFunc {
	probes := []struct {
		name string
		dep  Pinger
	}{
		{"database", dbP},
		{"redis", redisP},
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-VendaFlow-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		var probeErr error
		for _, probe := range probes {
			if probe.dep == nil {
				continue
			}
			if err := probe.dep.Ping(ctx); err != nil {
				probeErr = multierr.Append(probeErr, pkgerrors.Wrap(pkgerrors.CodeDependency, err, probe.name+" unavailable"))
			}
		}
		if probeErr != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, probeErr, "not ready"))
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
