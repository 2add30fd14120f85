package api

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/raccoon129/xires-notify/internal/model"
)

// errorEnvelope is the body the server sends on non-2xx responses.
type errorEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// notificationsEnvelope is the response from GET /notifications/{userId}.
type notificationsEnvelope struct {
	Status string             `json:"status"`
	Data   *notificationsData `json:"data"`
}

type notificationsData struct {
	Notifications []rawNotification `json:"notifications"`

	// UnreadCount is authoritative when the server supplies it; nil
	// means the client derives the count locally.
	UnreadCount *int `json:"unreadCount"`
}

// unreadCountEnvelope is the response from
// GET /notifications/{userId}/unread-count.
type unreadCountEnvelope struct {
	Status string           `json:"status"`
	Data   *unreadCountData `json:"data"`
}

type unreadCountData struct {
	UnreadCount int `json:"unreadCount"`
}

// loginEnvelope is the response from POST /auth/login.
type loginEnvelope struct {
	Status string     `json:"status"`
	Data   *loginData `json:"data"`
}

type loginData struct {
	Token string `json:"token"`
}

// flexID decodes an identifier that may arrive as a number or a string.
type flexID string

// UnmarshalJSON implements json.Unmarshaler for flexID.
func (f *flexID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id is neither string nor number: %s", data)
	}
	*f = flexID(n.String())
	return nil
}

// flexBool decodes a read flag that may arrive as 0/1, true/false, or
// a quoted variant of either.
type flexBool bool

// UnmarshalJSON implements json.Unmarshaler for flexBool.
func (f *flexBool) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case "true", `"true"`, "1", `"1"`:
		*f = true
	case "false", `"false"`, "0", `"0"`, "null":
		*f = false
	default:
		return fmt.Errorf("read flag is neither boolean nor 0/1: %s", data)
	}
	return nil
}

// rawNotification is the wire shape of a single notification record.
// Decoding is tolerant at this boundary only; everything past it works
// with the typed model.Notification.
type rawNotification struct {
	ID        flexID   `json:"id"`
	Kind      string   `json:"kind"`
	Message   string   `json:"message"`
	Read      flexBool `json:"read"`
	CreatedAt string   `json:"created_at"`
	Target    string   `json:"target"`
	OriginID  flexID   `json:"origin_id"`
}

// timestampLayouts are the formats the server has been observed to use
// for creation timestamps.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02 15:04:05",
}

// toModel converts a wire record into a model.Notification. Unknown
// kinds fall back to the system kind and unparseable timestamps become
// the zero time; conversion itself never fails.
func (r rawNotification) toModel() model.Notification {
	var createdAt time.Time
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, r.CreatedAt); err == nil {
			createdAt = t
			break
		}
	}

	return model.Notification{
		ID:        string(r.ID),
		Kind:      model.ParseKind(r.Kind),
		Message:   r.Message,
		Read:      bool(r.Read),
		CreatedAt: createdAt,
		Target:    r.Target,
		OriginID:  string(r.OriginID),
	}
}
