package handler

import (
	"net/http"
	"time"
)

// healthResponse is the JSON body for GET /healthz.
type healthResponse struct {
	Status string    `json:"status"`
	Time   time.Time `json:"time"`
}

// Healthz handles GET /healthz.
//
// @Summary      Health check
// @Description  Liveness check. No authentication required.
// @Tags         health
// @Produce      json
// @Success      200  {object}  healthResponse
// @Router       /healthz [get]
func (h *GameHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, h.log, http.StatusOK, healthResponse{Status: "ok", Time: time.Now().UTC()})
}
