package protocol

import (
	"encoding/json"
	"fmt"
)

// Control message types accepted on inbound text frames
const (
	ControlConfig = "config"
	ControlFlush  = "flush"
	ControlReset  = "reset"
)

// Outbound message types
const (
	TypeConnected     = "connected"
	TypeTranscription = "transcription"
	TypeFlushComplete = "flush_complete"
	TypeReset         = "reset"
	TypeConfigUpdated = "config_updated"
	TypeError         = "error"
)

// ControlMessage is an inbound text-frame command from the client.
// Language and Translate are only meaningful for "config" messages;
// pointer fields distinguish "absent" from zero values.
type ControlMessage struct {
	Type      string  `json:"type"`
	Language  *string `json:"language,omitempty"`
	Translate *bool   `json:"translate,omitempty"`
}

// ParseControl parses and validates an inbound text frame.
func ParseControl(data []byte) (*ControlMessage, error) {
	var msg ControlMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	if msg.Type == "" {
		return nil, fmt.Errorf("missing message type")
	}

	switch msg.Type {
	case ControlConfig, ControlFlush, ControlReset:
		return &msg, nil
	default:
		return nil, fmt.Errorf("unknown message type: %q", msg.Type)
	}
}

// ConnectedMessage is sent once when a connection is opened.
type ConnectedMessage struct {
	Type       string `json:"type"`
	SessionID  string `json:"session_id"`
	SampleRate int    `json:"sample_rate"`
	Message    string `json:"message"`
	Format     string `json:"format"`
}

// NewConnected builds the greeting for a freshly opened session.
func NewConnected(sessionID string, sampleRate int) ConnectedMessage {
	return ConnectedMessage{
		Type:       TypeConnected,
		SessionID:  sessionID,
		SampleRate: sampleRate,
		Message:    "Ready to receive PCM audio data",
		Format:     "Send binary PCM data: float32 or int16",
	}
}

// TranscriptionMessage carries one incremental transcription delta.
type TranscriptionMessage struct {
	Type      string `json:"type"`
	Text      string `json:"text"`
	SessionID string `json:"session_id"`
}

// NewTranscription builds a transcription result message.
func NewTranscription(sessionID, text string) TranscriptionMessage {
	return TranscriptionMessage{
		Type:      TypeTranscription,
		Text:      text,
		SessionID: sessionID,
	}
}

// FlushCompleteMessage acknowledges a flush with any final text.
type FlushCompleteMessage struct {
	Type      string `json:"type"`
	Text      string `json:"text"`
	SessionID string `json:"session_id"`
}

// NewFlushComplete builds a flush acknowledgement.
func NewFlushComplete(sessionID, text string) FlushCompleteMessage {
	return FlushCompleteMessage{
		Type:      TypeFlushComplete,
		Text:      text,
		SessionID: sessionID,
	}
}

// StatusMessage acknowledges a control command with a plain status.
type StatusMessage struct {
	Type   string `json:"type"`
	Status string `json:"status"`
}

// NewResetOK acknowledges a reset command.
func NewResetOK() StatusMessage {
	return StatusMessage{Type: TypeReset, Status: "ok"}
}

// NewConfigUpdated acknowledges a config command.
func NewConfigUpdated() StatusMessage {
	return StatusMessage{Type: TypeConfigUpdated, Status: "ok"}
}

// ErrorMessage reports a recoverable per-message failure; the connection
// stays open after it is sent.
type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// NewError builds an error response.
func NewError(message string) ErrorMessage {
	return ErrorMessage{Type: TypeError, Message: message}
}
