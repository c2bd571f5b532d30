package http

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"stresscheck/db"
	"stresscheck/ml"
	"stresscheck/monitoring"
	"stresscheck/presentation"
	"stresscheck/sensor"
)

const (
	SourceLive   = "live"
	SourceManual = "manual"
)

// Detector is satisfied by *ml.Detector.
type Detector interface {
	Detect(ctx context.Context, reading sensor.Reading) (ml.Detection, error)
}

// History is satisfied by *db.Store.
type History interface {
	SaveDetection(ctx context.Context, d ml.Detection) (int64, error)
	RecentDetections(ctx context.Context, limit int) ([]db.HistoryEntry, error)
	CountByLabel(ctx context.Context) (map[string]int, error)
}

// Publisher is satisfied by *monitoring.Hub.
type Publisher interface {
	PublishDetection(d ml.Detection)
	PublishFetchFailure(err error)
}

// Deps are the collaborators a Handlers instance is built from. Detector and
// Source are required; the rest are optional.
type Deps struct {
	Detector Detector
	Source   sensor.Source
	History  History
	Events   Publisher
	Stream   http.Handler
	Stats    *monitoring.Stats
	Page     presentation.Renderer
	Logger   *zap.Logger
}

// Handlers serves the page and the JSON API.
type Handlers struct {
	detector Detector
	source   sensor.Source
	history  History
	events   Publisher
	stream   http.Handler
	stats    *monitoring.Stats
	page     presentation.Renderer
	logger   *zap.Logger
}

func NewHandlers(deps Deps) (*Handlers, error) {
	if deps.Detector == nil {
		return nil, errors.New("detector is required")
	}
	if deps.Source == nil {
		return nil, errors.New("reading source is required")
	}
	h := &Handlers{
		detector: deps.Detector,
		source:   deps.Source,
		history:  deps.History,
		events:   deps.Events,
		stream:   deps.Stream,
		stats:    deps.Stats,
		page:     deps.Page,
		logger:   deps.Logger,
	}
	if h.stats == nil {
		h.stats = monitoring.NewStats()
	}
	if h.page == nil {
		h.page = presentation.HTML{}
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	return h, nil
}

// Register mounts every route on mux.
func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.handleIndex)
	mux.HandleFunc("POST /detect/live", h.handleDetectLive)
	mux.HandleFunc("POST /detect/manual", h.handleDetectManual)

	mux.HandleFunc("GET /api/health", handleHealth)
	mux.HandleFunc("GET /api/stats", h.handleStats)
	mux.HandleFunc("GET /api/history", h.handleHistory)
	mux.HandleFunc("POST /api/detect/live", h.handleAPIDetectLive)
	mux.HandleFunc("POST /api/detect/manual", h.handleAPIDetectManual)
	if h.stream != nil {
		mux.Handle("GET /api/ws", h.stream)
	}
}

func (h *Handlers) handleIndex(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, presentation.View{})
}

func (h *Handlers) handleDetectLive(w http.ResponseWriter, r *http.Request) {
	snap, err := h.fetch(r.Context())
	if err != nil {
		// The page stays usable; the failure is shown in place of a result.
		h.render(w, r, http.StatusOK, presentation.View{Error: "Failed to fetch sensor data: " + err.Error()})
		return
	}

	d, err := h.detect(r.Context(), snap.Reading, SourceLive)
	if err != nil {
		h.render(w, r, http.StatusInternalServerError, presentation.View{Snapshot: &snap, Error: "Detection failed: " + err.Error()})
		return
	}
	h.render(w, r, http.StatusOK, presentation.View{Detection: &d, Snapshot: &snap})
}

func (h *Handlers) handleDetectManual(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, r, http.StatusBadRequest, presentation.View{Error: "Invalid form: " + err.Error()})
		return
	}
	form := presentation.FormValues{
		Temperature: r.PostForm.Get(sensor.FieldTemperature),
		SpO2:        r.PostForm.Get(sensor.FieldSpO2),
		HeartRate:   r.PostForm.Get(sensor.FieldHeartRate),
	}

	reading, err := sensor.ParseManualForm(r.PostForm)
	if err != nil {
		h.render(w, r, http.StatusBadRequest, presentation.View{Form: form, Error: err.Error()})
		return
	}

	d, err := h.detect(r.Context(), reading, SourceManual)
	if err != nil {
		h.render(w, r, http.StatusInternalServerError, presentation.View{Form: form, Error: "Detection failed: " + err.Error()})
		return
	}
	h.render(w, r, http.StatusOK, presentation.View{Detection: &d, Form: form})
}

// fetch pulls the latest sheet reading and reports failures to the event
// stream. It never retries.
func (h *Handlers) fetch(ctx context.Context) (sensor.Snapshot, error) {
	snap, err := h.source.FetchLatest(ctx)
	if err != nil {
		h.logger.Warn("live fetch failed", zap.String("request_id", GetRequestID(ctx)), zap.Error(err))
		h.stats.RecordFetchFailure()
		if h.events != nil {
			h.events.PublishFetchFailure(err)
		}
		return sensor.Snapshot{}, err
	}
	return snap, nil
}

// detect runs inference and fans the result out to stats, history and the
// event stream. History failures are logged only.
func (h *Handlers) detect(ctx context.Context, reading sensor.Reading, source string) (ml.Detection, error) {
	d, err := h.detector.Detect(ctx, reading)
	if err != nil {
		h.logger.Error("detection failed",
			zap.String("request_id", GetRequestID(ctx)),
			zap.String("source", source),
			zap.Any("reading", reading),
			zap.Error(err))
		return ml.Detection{}, err
	}
	d.Source = source

	h.stats.RecordDetection(d)
	if h.history != nil {
		if _, err := h.history.SaveDetection(ctx, d); err != nil {
			h.logger.Warn("save detection failed", zap.String("request_id", GetRequestID(ctx)), zap.Error(err))
		}
	}
	if h.events != nil {
		h.events.PublishDetection(d)
	}

	h.logger.Info("detection",
		zap.String("request_id", GetRequestID(ctx)),
		zap.String("source", source),
		zap.Stringer("label", d.Label),
		zap.Int("class_id", d.ClassID),
		zap.Float64("confidence", d.Confidence))
	return d, nil
}

func (h *Handlers) render(w http.ResponseWriter, r *http.Request, status int, v presentation.View) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.page.Render(w, v); err != nil {
		h.logger.Error("render page", zap.String("request_id", GetRequestID(r.Context())), zap.Error(err))
	}
}
