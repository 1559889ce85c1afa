package voice

import (
	"context"
	"errors"
	"sync"
)

// EventKind names the lifecycle and telemetry events a voice transport emits.
type EventKind string

const (
	EventCallStart   EventKind = "call-start"
	EventCallEnd     EventKind = "call-end"
	EventMessage     EventKind = "message"
	EventSpeechStart EventKind = "speech-start"
	EventSpeechEnd   EventKind = "speech-end"
	EventError       EventKind = "error"
	EventVolume      EventKind = "volume-level"
)

// Message is the nested payload of an EventMessage. Only transcript messages
// with TranscriptType "final" are complete utterances; everything else is
// interim telemetry.
type Message struct {
	Type           string `json:"type"`
	TranscriptType string `json:"transcriptType,omitempty"`
	Role           string `json:"role,omitempty"`
	Transcript     string `json:"transcript,omitempty"`
}

type Event struct {
	Kind    EventKind
	Message *Message
	Volume  float64
	Err     error
}

type Handler func(Event)

var ErrNotConfigured = errors.New("voice client is not configured")

// Client is an explicitly constructed voice transport with a documented
// lifecycle: create, subscribe, start/stop, close. No package-level state.
type Client interface {
	Start(ctx context.Context, workflowID string, variables map[string]string) error
	Stop(ctx context.Context) error
	// Subscribe registers a handler for one event kind and returns its
	// cancellation func. Handlers for the same kind run in registration order.
	Subscribe(kind EventKind, fn Handler) (cancel func())
	Close() error
}

// hub is the shared subscription table used by Client implementations.
type hub struct {
	mu   sync.Mutex
	next int
	subs map[EventKind]map[int]Handler
}

func newHub() *hub {
	return &hub{subs: make(map[EventKind]map[int]Handler)}
}

func (h *hub) subscribe(kind EventKind, fn Handler) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.next++
	id := h.next
	if h.subs[kind] == nil {
		h.subs[kind] = make(map[int]Handler)
	}
	h.subs[kind][id] = fn

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs[kind], id)
	}
}

func (h *hub) emit(ev Event) {
	h.mu.Lock()
	handlers := make([]Handler, 0, len(h.subs[ev.Kind]))
	// registration order == ascending id
	for i := 1; i <= h.next; i++ {
		if fn, ok := h.subs[ev.Kind][i]; ok {
			handlers = append(handlers, fn)
		}
	}
	h.mu.Unlock()

	for _, fn := range handlers {
		fn(ev)
	}
}
