package models

import (
	"bytes"
	"encoding/json"
	"errors"
)

// ErrNullUpdate is returned for a body that is the JSON literal null.
var ErrNullUpdate = errors.New("update is null")

// Update is the subset of a Telegram update this service reads.
// Every other update type (callback queries, edits, ...) arrives with a nil Message.
type Update struct {
	UpdateID int64    `json:"update_id,omitempty"`
	Message  *Message `json:"message,omitempty"`
}

// Message is an inbound chat message.
type Message struct {
	MessageID int64  `json:"message_id,omitempty"`
	Chat      *Chat  `json:"chat,omitempty"`
	Text      string `json:"text,omitempty"`
	Caption   string `json:"caption,omitempty"` // Photos and videos carry their text here
}

// Chat identifies the conversation a message belongs to.
type Chat struct {
	ID int64 `json:"id,omitempty"`
}

// Event is a normalised inbound message.
type Event struct {
	ChatID    int64
	MessageID int64
	Text      string
}

// ParseUpdate decodes a webhook body. The whole body must be a single JSON
// value. A top-level value that is not an object decodes to an empty update;
// null is rejected with ErrNullUpdate.
func ParseUpdate(data []byte) (*Update, error) {
	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, ErrNullUpdate
	}
	if !isObject(raw) {
		return &Update{}, nil
	}

	var u Update
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UnmarshalJSON treats a message that is not an object as absent.
func (u *Update) UnmarshalJSON(data []byte) error {
	type plain Update
	var raw struct {
		plain
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*u = Update(raw.plain)
	u.Message = nil
	if !isObject(raw.Message) {
		return nil
	}

	u.Message = new(Message)
	return json.Unmarshal(raw.Message, u.Message)
}

// UnmarshalJSON treats a chat that is not an object as absent.
func (m *Message) UnmarshalJSON(data []byte) error {
	type plain Message
	var raw struct {
		plain
		Chat json.RawMessage `json:"chat"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*m = Message(raw.plain)
	m.Chat = nil
	if !isObject(raw.Chat) {
		return nil
	}

	m.Chat = new(Chat)
	return json.Unmarshal(raw.Chat, m.Chat)
}

func isObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}

// Event normalises the update. It returns false when the update has no
// identifiable chat, which callers treat as "ignore".
func (u *Update) Event() (Event, bool) {
	if u == nil || u.Message == nil || u.Message.Chat == nil || u.Message.Chat.ID == 0 {
		return Event{}, false
	}

	text := u.Message.Text
	if text == "" {
		text = u.Message.Caption
	}

	return Event{
		ChatID:    u.Message.Chat.ID,
		MessageID: u.Message.MessageID,
		Text:      text,
	}, true
}
