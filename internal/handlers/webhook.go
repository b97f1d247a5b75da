package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/eldtechnologies/linkdrop/internal/links"
	"github.com/eldtechnologies/linkdrop/internal/metrics"
	"github.com/eldtechnologies/linkdrop/internal/models"
	"github.com/eldtechnologies/linkdrop/internal/notify"
	"github.com/eldtechnologies/linkdrop/internal/store"
)

// Webhook response statuses.
const (
	StatusIgnored       = "OK (No message)"
	StatusTopicIsClosed = "Topic is closed"
	StatusTopicClosed   = "Topic closed"
	StatusOK            = "OK"
)

const internalErrorMessage = "Internal Server Error"

// closedFlagValue is stored under the closed-topic key; only presence matters.
const closedFlagValue = "true"

// WebhookResponse is the body of every successful webhook reply.
type WebhookResponse struct {
	Status string `json:"status"`
}

// outcomes maps a response status to its metrics label.
var outcomes = map[string]string{
	StatusIgnored:       metrics.OutcomeIgnored,
	StatusTopicIsClosed: metrics.OutcomeTopicIsClosed,
	StatusTopicClosed:   metrics.OutcomeTopicClosed,
	StatusOK:            metrics.OutcomeOK,
}

// Webhook handles Telegram updates. It always answers: 200 with a status
// for every processed or ignored update, 500 for anything that failed.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			h.fail(w, fmt.Errorf("panic: %v", rec))
		}
	}()

	status, err := h.processUpdate(r.Context(), r.Body)
	if err != nil {
		h.fail(w, err)
		return
	}

	metrics.UpdatesTotal.WithLabelValues(outcomes[status]).Inc()
	h.JSON(w, http.StatusOK, WebhookResponse{Status: status})
}

// fail logs err with whatever detail it carries and answers 500.
func (h *Handler) fail(w http.ResponseWriter, err error) {
	metrics.UpdatesTotal.WithLabelValues(metrics.OutcomeError).Inc()

	event := h.logger.Error().Err(err)
	addErrorDetail(event, err)
	event.Msg("error processing webhook")

	h.Error(w, http.StatusInternalServerError, internalErrorMessage)
}

// processUpdate runs the update through ignore, closed-check, close and
// link capture, in that order, and returns the response status.
func (h *Handler) processUpdate(ctx context.Context, body io.Reader) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("read update: %w", err)
	}

	update, err := models.ParseUpdate(data)
	if err != nil {
		return "", fmt.Errorf("decode update: %w", err)
	}

	event, ok := update.Event()
	if !ok {
		h.logger.Debug().Msg("no message or chat id received, skipping")
		return StatusIgnored, nil
	}

	log := h.logger.With().
		Int64("chat_id", event.ChatID).
		Int64("message_id", event.MessageID).
		Logger()
	log.Info().Msg("received message")

	closedKey := store.TopicClosedKey(event.ChatID)
	_, closed, err := h.kv.Get(ctx, closedKey)
	if err != nil {
		return "", fmt.Errorf("check topic flag: %w", err)
	}
	if closed {
		log.Info().Msg("topic is closed, ignoring message")
		return StatusTopicIsClosed, nil
	}

	if links.IsCloseCommand(event.Text) {
		if err := h.closeTopic(ctx, log, event.ChatID); err != nil {
			return "", err
		}
		return StatusTopicClosed, nil
	}

	found := links.Extract(event.Text)
	if len(found) == 0 {
		log.Debug().Msg("no links found in message")
		return StatusOK, nil
	}

	key := store.DailyLinksKey(event.ChatID, store.DateKey(h.now()))
	added, err := h.kv.SetAdd(ctx, key, found...)
	if err != nil {
		return "", fmt.Errorf("store links: %w", err)
	}

	metrics.LinksStored.Add(float64(len(found)))
	log.Info().
		Int("links", len(found)).
		Int64("new", added).
		Str("key", key).
		Msg("added links")

	return StatusOK, nil
}

// closeTopic sets the closed-topic flag and confirms in the chat.
// Only the flag write can fail the request.
func (h *Handler) closeTopic(ctx context.Context, log zerolog.Logger, chatID int64) error {
	if err := h.kv.Set(ctx, store.TopicClosedKey(chatID), closedFlagValue, h.opts.TopicClosedTTL); err != nil {
		return fmt.Errorf("set topic flag: %w", err)
	}

	if err := h.sender.SendMessage(ctx, chatID, h.opts.ConfirmationMessage); err != nil {
		metrics.Confirmations.WithLabelValues("failed").Inc()
		event := log.Warn().Err(err)
		addErrorDetail(event, err)
		event.Msg("failed to send topic closed confirmation")
	} else {
		metrics.Confirmations.WithLabelValues("sent").Inc()
	}

	log.Info().Dur("ttl", h.opts.TopicClosedTTL).Msg("topic marked as closed")
	return nil
}

// addErrorDetail attaches structured fields for error types that carry them.
func addErrorDetail(event *zerolog.Event, err error) {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var maxBytesErr *http.MaxBytesError

	switch {
	case errors.As(err, &syntaxErr):
		event.Int64("offset", syntaxErr.Offset)
	case errors.As(err, &typeErr):
		event.Str("field", typeErr.Field).Str("expected", typeErr.Type.String())
	case errors.As(err, &maxBytesErr):
		event.Int64("limit", maxBytesErr.Limit)
	}

	if apiErr, ok := notify.APIError(err); ok {
		event.Int("code", apiErr.Code).Str("description", apiErr.Message)
		if apiErr.RetryAfter > 0 {
			event.Int("retry_after", apiErr.RetryAfter)
		}
	}
}
