package queue

import (
	"encoding/json"
	"errors"
	"strings"
)

// MessageVersion is the current job payload version.
const MessageVersion = 1

// Message is an analysis job: an upload already stored in the object store.
type Message struct {
	StorageKey string `json:"storageKey"`
	FileName   string `json:"fileName"`
	MimeType   string `json:"mimeType,omitempty"`
	RequestID  string `json:"requestId"`
	EnqueuedAt string `json:"enqueuedAt"`
	Version    int    `json:"version"`
}

// EncodeMessage returns the JSON representation of a message.
func EncodeMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeMessage parses a JSON payload into a Message.
func DecodeMessage(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}
	if strings.TrimSpace(msg.StorageKey) == "" {
		return Message{}, errors.New("storageKey is required")
	}
	return msg, nil
}
