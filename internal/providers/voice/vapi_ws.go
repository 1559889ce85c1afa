package voice

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// VapiConfig holds the realtime endpoint credentials. Both fields are
// required before a call can be started.
type VapiConfig struct {
	URL   string // wss endpoint of the voice agent service
	Token string // public web token
}

// VapiWS drives one call over the voice agent's realtime websocket. It is a
// pure listener/controller: audio transport and speech-to-text stay on the
// remote side, this client only sends control frames and dispatches events.
type VapiWS struct {
	cfg VapiConfig
	hub *hub

	mu      sync.Mutex
	conn    *websocket.Conn
	closing bool
}

func NewVapiWS(cfg VapiConfig) *VapiWS {
	return &VapiWS{cfg: cfg, hub: newHub()}
}

type vapiControlFrame struct {
	Type       string            `json:"type"`
	WorkflowID string            `json:"workflowId,omitempty"`
	Variables  map[string]string `json:"variables,omitempty"`
}

type vapiWireEvent struct {
	Type           string  `json:"type"`
	TranscriptType string  `json:"transcriptType"`
	Role           string  `json:"role"`
	Transcript     string  `json:"transcript"`
	Volume         float64 `json:"volume"`
	Error          string  `json:"error"`
}

func (v *VapiWS) Start(ctx context.Context, workflowID string, variables map[string]string) error {
	if v.cfg.URL == "" || v.cfg.Token == "" || workflowID == "" {
		return ErrNotConfigured
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.conn != nil {
		return errors.New("call already in progress")
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+v.cfg.Token)

	dialer := websocket.Dialer{HandshakeTimeout: 15 * time.Second}
	conn, _, err := dialer.DialContext(ctx, v.cfg.URL, header)
	if err != nil {
		return err
	}

	start := vapiControlFrame{Type: "start", WorkflowID: workflowID, Variables: variables}
	if err := conn.WriteJSON(start); err != nil {
		_ = conn.Close()
		return err
	}

	v.conn = conn
	v.closing = false
	go v.readLoop(conn)
	return nil
}

func (v *VapiWS) Stop(ctx context.Context) error {
	v.mu.Lock()
	conn := v.conn
	v.closing = true
	v.conn = nil
	v.mu.Unlock()

	if conn == nil {
		return nil
	}
	_ = conn.WriteJSON(vapiControlFrame{Type: "stop"})
	return conn.Close()
}

func (v *VapiWS) Subscribe(kind EventKind, fn Handler) func() {
	return v.hub.subscribe(kind, fn)
}

func (v *VapiWS) Close() error {
	return v.Stop(context.Background())
}

func (v *VapiWS) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			v.mu.Lock()
			closing := v.closing
			if v.conn == conn {
				v.conn = nil
			}
			v.mu.Unlock()
			if !closing {
				v.hub.emit(Event{Kind: EventError, Err: err})
			}
			return
		}

		var ev vapiWireEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			continue // not a JSON event frame
		}
		v.dispatch(ev)
	}
}

func (v *VapiWS) dispatch(ev vapiWireEvent) {
	switch ev.Type {
	case "call-start":
		v.hub.emit(Event{Kind: EventCallStart})
	case "call-end":
		v.hub.emit(Event{Kind: EventCallEnd})
	case "speech-start":
		v.hub.emit(Event{Kind: EventSpeechStart})
	case "speech-end":
		v.hub.emit(Event{Kind: EventSpeechEnd})
	case "volume-level":
		v.hub.emit(Event{Kind: EventVolume, Volume: ev.Volume})
	case "transcript":
		v.hub.emit(Event{Kind: EventMessage, Message: &Message{
			Type:           "transcript",
			TranscriptType: ev.TranscriptType,
			Role:           ev.Role,
			Transcript:     ev.Transcript,
		}})
	case "error":
		v.hub.emit(Event{Kind: EventError, Err: errors.New(ev.Error)})
	}
}
