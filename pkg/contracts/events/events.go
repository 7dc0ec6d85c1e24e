// Package events defines the wire contract for messages the server pushes
// to connected frontend clients. Payload structs here are what the frontend
// decodes; field changes ripple into it.
package events

import "time"

// Message types pushed over the websocket.
const (
	// TypeConnection greets a client right after it registers.
	TypeConnection = "connection"

	// TypeSearchProgress reports the stages of a running search.
	TypeSearchProgress = "search_progress"

	// TypeExportProgress reports the stages of a running export.
	TypeExportProgress = "export_progress"
)

// Message is the envelope around every websocket frame. Data carries one of
// the payload structs below, keyed by Type.
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// NewMessage stamps an envelope with the current time.
func NewMessage(msgType string, data interface{}) Message {
	return Message{
		Type:      msgType,
		Data:      data,
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

// Connected is the payload of the connection greeting.
type Connected struct {
	Status   string `json:"status"`
	ClientID string `json:"client_id"`
}

// Progress is the payload of search_progress and export_progress messages.
// Count carries the listing count of the finished stage; JobID is set on
// export events only.
type Progress struct {
	Stage string `json:"stage"`
	Land  string `json:"land,omitempty"`
	Count int    `json:"count,omitempty"`
	JobID string `json:"jobId,omitempty"`
}
