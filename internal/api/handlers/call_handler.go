package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/shubhamsharmax50/ai-mock-interviewer/internal/call"
	"github.com/shubhamsharmax50/ai-mock-interviewer/internal/providers/voice"
	"github.com/shubhamsharmax50/ai-mock-interviewer/internal/services"
	"github.com/shubhamsharmax50/ai-mock-interviewer/internal/utils"
)

// VoiceClientFactory builds one transport per session so concurrent sessions
// never share call state.
type VoiceClientFactory func() voice.Client

// CallHandler bridges the browser's session WebSocket and the voice
// transport. The browser sends start/stop control frames; the handler streams
// back status, transcript and speaking events, and a final redirect decision.
type CallHandler struct {
	newVoice    VoiceClientFactory
	feedback    call.FeedbackSink
	transcripts services.TranscriptService
	workflowID  string
	log         *logrus.Logger
	upgrader    websocket.Upgrader
}

func NewCallHandler(newVoice VoiceClientFactory, feedback call.FeedbackSink, transcripts services.TranscriptService, workflowID string, log *logrus.Logger) *CallHandler {
	return &CallHandler{
		newVoice:    newVoice,
		feedback:    feedback,
		transcripts: transcripts,
		workflowID:  workflowID,
		log:         log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true }, // TODO: restrict origin in prod
		},
	}
}

type callClientMsg struct {
	Type string `json:"type"` // start | stop
}

type callServerMsg struct {
	Type       string   `json:"type"`
	Status     string   `json:"status,omitempty"`
	Role       string   `json:"role,omitempty"`
	Content    string   `json:"content,omitempty"`
	Speaking   *bool    `json:"speaking,omitempty"`
	Volume     *float64 `json:"volume,omitempty"`
	To         string   `json:"to,omitempty"`
	FeedbackID string   `json:"feedbackId,omitempty"`
	Code       string   `json:"code,omitempty"`
	Message    string   `json:"message,omitempty"`
}

type wsConn struct {
	c  *websocket.Conn
	mu sync.Mutex
}

func (w *wsConn) writeJSON(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.c.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return w.c.WriteJSON(v)
}

func (h *CallHandler) SessionWS(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	interviewID := c.Param("interview_id")
	if interviewID == "" {
		writeError(c, utils.E(utils.CodeInvalidArgument, "CallHandler.SessionWS", "missing interview_id", nil))
		return
	}

	mode := call.Mode(c.DefaultQuery("mode", string(call.ModeInterview)))
	if mode != call.ModeGenerate && mode != call.ModeInterview {
		writeError(c, utils.E(utils.CodeInvalidArgument, "CallHandler.SessionWS", "mode must be generate or interview", nil))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// upgrade already wrote the response in most cases
		return
	}
	defer conn.Close()

	wc := &wsConn{c: conn}
	vc := h.newVoice()
	defer vc.Close()

	sess := call.NewSession(call.Config{
		Mode:        mode,
		InterviewID: interviewID,
		UserID:      userID,
		WorkflowID:  h.workflowID,
		Variables:   map[string]string{"interview_id": interviewID, "user_id": userID},
	}, vc, h.feedback, h.log)
	defer sess.Close()

	// voice events -> browser
	forward := func(msg callServerMsg) { _ = wc.writeJSON(msg) }
	cancels := []func(){
		vc.Subscribe(voice.EventCallStart, func(voice.Event) {
			forward(callServerMsg{Type: "status", Status: string(sess.Status())})
		}),
		vc.Subscribe(voice.EventCallEnd, func(voice.Event) {
			forward(callServerMsg{Type: "status", Status: string(sess.Status())})
		}),
		vc.Subscribe(voice.EventMessage, func(ev voice.Event) {
			if ev.Message == nil || ev.Message.Type != "transcript" || ev.Message.TranscriptType != "final" {
				return
			}
			forward(callServerMsg{Type: "transcript", Role: ev.Message.Role, Content: ev.Message.Transcript})
		}),
		vc.Subscribe(voice.EventSpeechStart, func(voice.Event) {
			speaking := true
			forward(callServerMsg{Type: "speaking", Speaking: &speaking})
		}),
		vc.Subscribe(voice.EventSpeechEnd, func(voice.Event) {
			speaking := false
			forward(callServerMsg{Type: "speaking", Speaking: &speaking})
		}),
		vc.Subscribe(voice.EventVolume, func(ev voice.Event) {
			vol := ev.Volume
			forward(callServerMsg{Type: "volume", Volume: &vol})
		}),
		vc.Subscribe(voice.EventError, func(ev voice.Event) {
			msg := "voice session error"
			if ev.Err != nil {
				msg = ev.Err.Error()
			}
			forward(callServerMsg{Type: "error", Code: string(utils.CodeUnavailable), Message: msg})
			forward(callServerMsg{Type: "status", Status: string(sess.Status())})
		}),
	}
	defer func() {
		for _, cancel := range cancels {
			cancel()
		}
	}()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// browser control frames -> session
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		for {
			_, data, rerr := conn.ReadMessage()
			if rerr != nil {
				return
			}

			var msg callClientMsg
			if err := json.Unmarshal(data, &msg); err != nil {
				forward(callServerMsg{Type: "error", Code: string(utils.CodeInvalidArgument), Message: "invalid json"})
				continue
			}

			switch msg.Type {
			case "start":
				if err := sess.Start(ctx); err != nil {
					code := utils.CodeInternal
					if err == call.ErrNotConfigured {
						code = utils.CodeUnavailable
					}
					forward(callServerMsg{Type: "error", Code: string(code), Message: err.Error()})
					forward(callServerMsg{Type: "status", Status: string(sess.Status())})
					continue
				}
				forward(callServerMsg{Type: "status", Status: string(sess.Status())})

			case "stop":
				if err := sess.Stop(ctx); err != nil {
					forward(callServerMsg{Type: "error", Code: string(utils.CodeInvalidArgument), Message: err.Error()})
					continue
				}
				forward(callServerMsg{Type: "status", Status: string(sess.Status())})

			default:
				forward(callServerMsg{Type: "error", Code: string(utils.CodeInvalidArgument), Message: "unknown message type"})
			}
		}
	}()

	select {
	case <-readDone:
	case <-ctx.Done():
	case out := <-sess.Outcome():
		h.archive(interviewID, userID, mode, sess.Transcript().Entries())
		_ = wc.writeJSON(callServerMsg{Type: "redirect", To: out.Route, FeedbackID: out.FeedbackID})
	}
}

// archive is fire-and-forget: it never gates the redirect.
func (h *CallHandler) archive(interviewID, userID string, mode call.Mode, entries []call.Entry) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		meta := services.ArchiveMeta{Mode: string(mode), WorkflowID: h.workflowID}
		if err := h.transcripts.Archive(ctx, interviewID, userID, meta, entries); err != nil {
			h.log.WithError(err).WithField("interview_id", interviewID).Warn("transcript archive failed")
		}
	}()
}
