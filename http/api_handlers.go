package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"stresscheck/monitoring"
	"stresscheck/sensor"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 500
)

// manualRequest is the JSON body of POST /api/detect/manual. Pointers tell a
// missing field apart from zero.
type manualRequest struct {
	Temperature *float64 `json:"temperature"`
	SpO2        *float64 `json:"spo2"`
	HeartRate   *float64 `json:"heart_rate"`
}

type statsResponse struct {
	monitoring.StatsSnapshot
	Stored map[string]int `json:"stored,omitempty"`
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) handleAPIDetectLive(w http.ResponseWriter, r *http.Request) {
	snap, err := h.fetch(r.Context())
	if err != nil {
		respondError(w, http.StatusBadGateway, "fetch sensor data: "+err.Error())
		return
	}
	d, err := h.detect(r.Context(), snap.Reading, SourceLive)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, d)
}

func (h *Handlers) handleAPIDetectManual(w http.ResponseWriter, r *http.Request) {
	var req manualRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	missing := []struct {
		name  string
		value *float64
	}{
		{sensor.FieldTemperature, req.Temperature},
		{sensor.FieldSpO2, req.SpO2},
		{sensor.FieldHeartRate, req.HeartRate},
	}
	for _, f := range missing {
		if f.value == nil {
			respondError(w, http.StatusBadRequest, f.name+" is required")
			return
		}
	}

	reading, err := sensor.NewManualReading(*req.Temperature, *req.SpO2, *req.HeartRate)
	if err != nil {
		var be *sensor.BoundsError
		if errors.As(err, &be) {
			respondJSON(w, http.StatusBadRequest, map[string]interface{}{
				"error": be.Error(),
				"field": be.Field,
				"min":   be.Bounds.Min,
				"max":   be.Bounds.Max,
			})
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	d, err := h.detect(r.Context(), reading, SourceManual)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, d)
}

func (h *Handlers) handleHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		respondError(w, http.StatusServiceUnavailable, "detection history is disabled")
		return
	}

	limit := defaultHistoryLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil || l <= 0 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(l, maxHistoryLimit)
	}

	entries, err := h.history.RecentDetections(r.Context(), limit)
	if err != nil {
		h.logger.Error("query history", zap.String("request_id", GetRequestID(r.Context())), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "query history failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":      len(entries),
		"detections": entries,
	})
}

func (h *Handlers) handleStats(w http.ResponseWriter, r *http.Request) {
	resp := statsResponse{StatsSnapshot: h.stats.Snapshot()}
	if h.history != nil {
		counts, err := h.history.CountByLabel(r.Context())
		if err != nil {
			h.logger.Warn("count stored detections", zap.Error(err))
		} else {
			resp.Stored = counts
		}
	}
	respondJSON(w, http.StatusOK, resp)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Warn("encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
