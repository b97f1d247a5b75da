package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/eldtechnologies/linkdrop/internal/notify"
	"github.com/eldtechnologies/linkdrop/internal/store"
)

// Options tunes webhook behaviour.
type Options struct {
	TopicClosedTTL      time.Duration
	ConfirmationMessage string
}

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	kv     store.KV
	sender notify.Sender
	logger zerolog.Logger
	opts   Options
	now    func() time.Time
}

// NewHandler creates a new Handler with the given store and sender.
func NewHandler(kv store.KV, sender notify.Sender, logger zerolog.Logger, opts Options) *Handler {
	return &Handler{
		kv:     kv,
		sender: sender,
		logger: logger,
		opts:   opts,
		now:    time.Now,
	}
}

// SetClock replaces the handler's time source.
func (h *Handler) SetClock(now func() time.Time) {
	h.now = now
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"error": message})
}
