package provisioning

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Observer defines the interface for structured observability during a
// deploy.
type Observer interface {
	// Printf emits a free-form progress message.
	Printf(format string, v ...interface{})

	// Event emits a structured event
	Event(event Event)

	// WithFields returns a new Observer with additional context fields
	WithFields(fields map[string]string) Observer
}

// Event represents a structured deploy event.
type Event struct {
	Type      EventType         // Type of event
	Phase     string            // Phase name (e.g., "policy", "tags")
	Message   string            // Human-readable message
	Resource  string            // Resource name/ID if applicable
	Timestamp time.Time         // When the event occurred
	Fields    map[string]string // Additional contextual fields
}

// EventType represents the type of deploy event.
type EventType string

const (
	// EventPhaseStarted indicates a deploy phase has started.
	EventPhaseStarted EventType = "phase.started"
	// EventPhaseCompleted indicates a deploy phase completed successfully.
	EventPhaseCompleted EventType = "phase.completed"
	// EventPhaseFailed indicates a deploy phase failed.
	EventPhaseFailed EventType = "phase.failed"

	// EventResourceCreated indicates a resource was created or updated.
	EventResourceCreated EventType = "resource.created"
	// EventResourceExists indicates a resource already exists.
	EventResourceExists EventType = "resource.exists"
	// EventResourceSkipped indicates a resource was intentionally skipped.
	EventResourceSkipped EventType = "resource.skipped"
)

// ZapObserver implements Observer on a zap logger.
type ZapObserver struct {
	logger        *zap.Logger
	contextFields map[string]string
}

// NewZapObserver creates an observer backed by the given logger.
// A nil logger falls back to a no-op.
func NewZapObserver(logger *zap.Logger) *ZapObserver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapObserver{
		logger:        logger,
		contextFields: make(map[string]string),
	}
}

// Printf implements Observer.
func (o *ZapObserver) Printf(format string, v ...interface{}) {
	o.logger.Info(fmt.Sprintf(format, v...))
}

// Event implements Observer.
func (o *ZapObserver) Event(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	fields := []zap.Field{
		zap.String("event", string(event.Type)),
	}
	if event.Phase != "" {
		fields = append(fields, zap.String("phase", event.Phase))
	}
	if event.Resource != "" {
		fields = append(fields, zap.String("resource", event.Resource))
	}
	for k, v := range o.contextFields {
		if _, exists := event.Fields[k]; !exists {
			fields = append(fields, zap.String(k, v))
		}
	}
	for k, v := range event.Fields {
		fields = append(fields, zap.String(k, v))
	}

	if event.Type == EventPhaseFailed {
		o.logger.Error(event.Message, fields...)
		return
	}
	o.logger.Info(event.Message, fields...)
}

// WithFields implements Observer.
func (o *ZapObserver) WithFields(fields map[string]string) Observer {
	newFields := make(map[string]string, len(o.contextFields)+len(fields))
	for k, v := range o.contextFields {
		newFields[k] = v
	}
	for k, v := range fields {
		newFields[k] = v
	}

	return &ZapObserver{
		logger:        o.logger,
		contextFields: newFields,
	}
}

// Helper functions for common events

// LogPhaseStart logs a phase start event.
func LogPhaseStart(observer Observer, phase string) {
	observer.Event(Event{
		Type:    EventPhaseStarted,
		Phase:   phase,
		Message: "starting",
	})
}

// LogPhaseComplete logs a phase completion event.
func LogPhaseComplete(observer Observer, phase string, duration time.Duration) {
	observer.Event(Event{
		Type:    EventPhaseCompleted,
		Phase:   phase,
		Message: fmt.Sprintf("completed in %v", duration.Round(time.Millisecond)),
	})
}

// LogPhaseFailed logs a phase failure event.
func LogPhaseFailed(observer Observer, phase string, err error) {
	observer.Event(Event{
		Type:    EventPhaseFailed,
		Phase:   phase,
		Message: fmt.Sprintf("failed: %v", err),
	})
}

// LogResourceCreated logs a successful resource creation or update.
func LogResourceCreated(observer Observer, phase, resourceType, resourceName, resourceID string) {
	observer.Event(Event{
		Type:     EventResourceCreated,
		Phase:    phase,
		Resource: resourceName,
		Message:  fmt.Sprintf("%s created", resourceType),
		Fields: map[string]string{
			"type": resourceType,
			"id":   resourceID,
		},
	})
}

// LogResourceSkipped logs an intentionally skipped resource.
func LogResourceSkipped(observer Observer, phase, resourceType, resourceName, reason string) {
	observer.Event(Event{
		Type:     EventResourceSkipped,
		Phase:    phase,
		Resource: resourceName,
		Message:  fmt.Sprintf("%s skipped: %s", resourceType, reason),
		Fields: map[string]string{
			"type": resourceType,
		},
	})
}
