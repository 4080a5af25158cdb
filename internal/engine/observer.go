package engine

import "time"

// EventType represents the storage lifecycle points observers are told about
type EventType string

const (
	EventDatabaseOpened EventType = "database_opened"
	EventTableCreated   EventType = "table_created"
	EventTableLoaded    EventType = "table_loaded"
	EventTableSaved     EventType = "table_saved"
	EventRowInserted    EventType = "row_inserted"
)

// Event represents a lifecycle event on a database handle
type Event struct {
	Type      EventType   // Type of event
	SessionID string      // Database handle id for tracing
	Database  string      // Database name
	Table     string      // Table name (empty for database events)
	Timestamp time.Time   // When the event occurred
	Data      interface{} // Event-specific data (row count, path, ...)
}

// Observer interface for event subscribers
type Observer interface {
	OnEvent(event Event)
}
