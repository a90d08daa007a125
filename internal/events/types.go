// Package events provides a small pub/sub bus for link notifications.
package events

import "time"

// EventType identifies the category of event.
type EventType string

// Event types.
const (
	EventLinkNew EventType = "link.new" // RTM_NEWLINK: link created or changed
	EventLinkDel EventType = "link.del" // RTM_DELLINK
)

// Event is the message passed through the bus.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Data      any       `json:"data"`
}

// LinkData is the payload for link events.
type LinkData struct {
	Index     int32    `json:"index"`
	Name      string   `json:"name,omitempty"`
	Kind      string   `json:"kind,omitempty"`
	OperState string   `json:"operstate,omitempty"`
	Flags     []string `json:"flags,omitempty"`
}
