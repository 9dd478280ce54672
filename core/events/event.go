package events

// Event is a structured state change emitted by the engine after a call
// commits.
type Event interface {
	EventType() string
}

// Emitter forwards events to downstream subscribers (RPC streams, indexers).
type Emitter interface {
	Emit(Event)
}

// NoopEmitter discards everything. It is the default wherever an emitter is
// optional.
type NoopEmitter struct{}

// Emit implements the Emitter interface.
func (NoopEmitter) Emit(Event) {}

// Payload is a generic attribute-bag event.
type Payload struct {
	Type       string
	Attributes map[string]string
}

// EventType implements the Event interface.
func (p Payload) EventType() string { return p.Type }
