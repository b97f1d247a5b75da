package handlers

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/eldtechnologies/linkdrop/internal/store"
)

// ChatLinksResponse represents a chat's link set for one day.
type ChatLinksResponse struct {
	ChatID int64    `json:"chat_id"`
	Date   string   `json:"date"`
	Links  []string `json:"links"`
	Count  int      `json:"count"`
}

// TopicStatusResponse represents a chat's closed-topic state.
type TopicStatusResponse struct {
	ChatID           int64 `json:"chat_id"`
	Closed           bool  `json:"closed"`
	ExpiresInSeconds int64 `json:"expires_in_seconds,omitempty"`
}

// chatIDParam parses the {id} URL parameter.
func chatIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// ChatLinks lists the links captured for a chat on a UTC day.
// The day defaults to today and can be chosen with ?date=YYYY-MM-DD.
func (h *Handler) ChatLinks(w http.ResponseWriter, r *http.Request) {
	chatID, ok := chatIDParam(r)
	if !ok {
		h.Error(w, http.StatusBadRequest, "invalid chat ID")
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		date = store.DateKey(h.now())
	} else if _, err := store.ParseDateKey(date); err != nil {
		h.Error(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	members, err := h.kv.SetMembers(r.Context(), store.DailyLinksKey(chatID, date))
	if err != nil {
		h.logger.Error().Err(err).Int64("chat_id", chatID).Msg("failed to load links")
		h.Error(w, http.StatusInternalServerError, "failed to load links")
		return
	}
	sort.Strings(members)

	h.JSON(w, http.StatusOK, ChatLinksResponse{
		ChatID: chatID,
		Date:   date,
		Links:  members,
		Count:  len(members),
	})
}

// TopicStatus reports whether link capture is stopped for a chat.
func (h *Handler) TopicStatus(w http.ResponseWriter, r *http.Request) {
	chatID, ok := chatIDParam(r)
	if !ok {
		h.Error(w, http.StatusBadRequest, "invalid chat ID")
		return
	}

	ttl, err := h.kv.TTL(r.Context(), store.TopicClosedKey(chatID))
	if err != nil {
		h.logger.Error().Err(err).Int64("chat_id", chatID).Msg("failed to load topic flag")
		h.Error(w, http.StatusInternalServerError, "failed to load topic status")
		return
	}

	resp := TopicStatusResponse{ChatID: chatID, Closed: ttl >= 0}
	if ttl > 0 {
		resp.ExpiresInSeconds = int64(ttl.Seconds())
	}
	h.JSON(w, http.StatusOK, resp)
}
