package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

type HealthStatus struct {
	Healthy           bool     `json:"healthy"`
	DatabaseConnected *bool    `json:"database_connected,omitempty"`
	NATSConnected     *bool    `json:"nats_connected,omitempty"`
	TrackedEncounter  string   `json:"tracked_encounter,omitempty"`
	Viewers           int      `json:"viewers"`
	Errors            []string `json:"errors"`
}

// checkHealth probes the dependencies this instance was configured with
func checkHealth(ctx context.Context, services *Services) HealthStatus {
	status := HealthStatus{
		Healthy: true,
		Errors:  []string{},
	}

	if services.DB != nil {
		ok := true
		if err := services.DB.PingContext(ctx); err != nil {
			ok = false
			status.Healthy = false
			status.Errors = append(status.Errors, fmt.Sprintf("database ping failed: %v", err))
		}
		status.DatabaseConnected = &ok
	}

	if services.Consumer != nil {
		ok := services.Consumer.IsConnected()
		if !ok {
			status.Healthy = false
			status.Errors = append(status.Errors, "NATS disconnected")
		}
		status.NATSConnected = &ok
	}

	status.TrackedEncounter = string(services.Tracker.State().Encounter)
	status.Viewers = services.Gateway.Stats().TotalConnections
	return status
}

func readinessHandler(services *Services) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := checkHealth(ctx, services)

		w.Header().Set("Content-Type", "application/json")
		if !status.Healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		if err := json.NewEncoder(w).Encode(status); err != nil {
			log.Error().Err(err).Msg("failed to encode health status")
		}
	}
}
