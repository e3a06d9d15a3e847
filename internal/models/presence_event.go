package models

type PresenceEventType string

const (
	EventInsert PresenceEventType = "insert"
	EventUpdate PresenceEventType = "update"
	EventDelete PresenceEventType = "delete"
)

// PresenceEvent is a single change notification on the presence table,
// fanned out to every subscribed client.
type PresenceEvent struct {
	Type   PresenceEventType `json:"event_type"`
	Record Presence          `json:"record"`
}
