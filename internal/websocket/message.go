package websocket

import (
	"encoding/json"
	"time"
)

// Message types pushed to dashboard clients.
const (
	MessageTypeConnection      = "connection"
	MessageTypeMetricsUpdated  = "metrics_updated"
	MessageTypeAlertTriggered  = "alert_triggered"
	MessageTypeHeartbeat       = "heartbeat"
)

// Message is one WebSocket frame.
type Message struct {
	Type      string                 `json:"type"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
}

// ToJSON serializes the message, stamping the send time.
func (m Message) ToJSON() []byte {
	m.Timestamp = time.Now().UTC()
	data, _ := json.Marshal(m)
	return data
}
