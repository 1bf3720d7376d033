package models

import "time"

// ResponseEnvelope is the assistant's answer to one inbound message.
//
// PropertyData is nil when no property-related tool ran, so it is omitted
// from the JSON form rather than sent as an empty object.
type ResponseEnvelope struct {
	Response     string         `json:"response"`
	SessionID    string         `json:"session_id"`
	Timestamp    time.Time      `json:"timestamp"`
	ToolsUsed    []string       `json:"tools_used"`
	PropertyData map[string]any `json:"property_data,omitempty"`
}
