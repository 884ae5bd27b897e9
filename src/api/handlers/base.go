package handlers

import (
	"encoding/json"
	"net/http"

	"assetsync/src/repositories"
	"assetsync/src/services"
	"assetsync/src/utils"

	"github.com/sirupsen/logrus"
)

type Handler struct {
	SyncService   services.SyncServiceI
	BenchmarkRepo repositories.BenchmarkRateRepository
	Logger        *logrus.Logger
}

func NewHandler(syncService services.SyncServiceI, benchmarkRepo repositories.BenchmarkRateRepository, logger *logrus.Logger) *Handler {
	return &Handler{
		SyncService:   syncService,
		BenchmarkRepo: benchmarkRepo,
		Logger:        logger,
	}
}

func (h *Handler) respond(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			h.Logger.WithError(err).Error("failed to encode response")
		}
	}
}

func (h *Handler) handleError(w http.ResponseWriter, err error) {
	h.Logger.WithError(err).Error("request failed")
	utils.WriteError(w, err)
}

// Healthcheck reports liveness.
func Healthcheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
