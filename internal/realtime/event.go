package realtime

// EventType names a task change pushed to websocket clients.
type EventType string

const (
	TaskCreated         EventType = "task_created"
	TaskUpdated         EventType = "task_updated"
	TaskStatusChanged   EventType = "task_status_changed"
	TaskAssigned        EventType = "task_assigned"
	TaskPriorityChanged EventType = "task_priority_changed"
	TaskDeleted         EventType = "task_deleted"
	TaskClassified      EventType = "task_classified"
	TaskOverdue         EventType = "task_overdue"
)

// Event is the JSON message sent over the socket.
type Event struct {
	Type      EventType `json:"type"`
	TaskID    string    `json:"taskId"`
	ProjectID string    `json:"projectId,omitempty"`
	UserID    string    `json:"userId,omitempty"`
	Version   int       `json:"version"`
}

// Publisher delivers events to the listed users.
type Publisher interface {
	Publish(evt Event, recipients ...string)
}

// Discard is a Publisher that drops every event.
var Discard Publisher = discard{}

type discard struct{}

func (discard) Publish(Event, ...string) {}
