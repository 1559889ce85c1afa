package call

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/shubhamsharmax50/ai-mock-interviewer/internal/providers/voice"
)

// Status is the call lifecycle state. A session starts INACTIVE, moves to
// CONNECTING on start, ACTIVE when the transport reports the call up, and
// FINISHED when the call ends. A transport error aborts back to INACTIVE.
type Status string

const (
	StatusInactive   Status = "INACTIVE"
	StatusConnecting Status = "CONNECTING"
	StatusActive     Status = "ACTIVE"
	StatusFinished   Status = "FINISHED"
)

// Mode is fixed at session start and never mutated.
type Mode string

const (
	ModeGenerate  Mode = "generate"
	ModeInterview Mode = "interview"
)

// FeedbackSink receives the accumulated transcript of a finished interview
// session. Implemented by the feedback service.
type FeedbackSink interface {
	CreateFromTranscript(ctx context.Context, interviewID, userID string, entries []Entry) (feedbackID string, err error)
}

// Outcome is the routing decision made once the session is terminal.
type Outcome struct {
	Route      string
	FeedbackID string
}

type Config struct {
	Mode        Mode
	InterviewID string
	UserID      string
	WorkflowID  string
	Variables   map[string]string
}

var (
	ErrNotConfigured = errors.New("missing voice workflow configuration")
	ErrBadTransition = errors.New("invalid call state transition")
)

// Session owns one end-to-end voice interview attempt. Event handlers are
// serialized behind the session mutex; the feedback submission runs async and
// resolves through Outcome().
type Session struct {
	cfg Config
	vc  voice.Client
	fb  FeedbackSink
	log *logrus.Logger

	mu         sync.Mutex
	status     Status
	speaking   bool
	transcript *Transcript
	fired      bool
	cancels    []func()
	outcome    chan Outcome
}

func NewSession(cfg Config, vc voice.Client, fb FeedbackSink, log *logrus.Logger) *Session {
	if log == nil {
		log = logrus.New()
	}
	s := &Session{
		cfg:        cfg,
		vc:         vc,
		fb:         fb,
		log:        log,
		status:     StatusInactive,
		transcript: NewTranscript(),
		outcome:    make(chan Outcome, 1),
	}

	s.cancels = append(s.cancels,
		vc.Subscribe(voice.EventCallStart, func(voice.Event) { s.onCallStart() }),
		vc.Subscribe(voice.EventCallEnd, func(voice.Event) { s.onCallEnd() }),
		vc.Subscribe(voice.EventMessage, func(ev voice.Event) { s.onMessage(ev) }),
		vc.Subscribe(voice.EventSpeechStart, func(voice.Event) { s.setSpeaking(true) }),
		vc.Subscribe(voice.EventSpeechEnd, func(voice.Event) { s.setSpeaking(false) }),
		vc.Subscribe(voice.EventError, func(ev voice.Event) { s.onError(ev.Err) }),
	)
	return s
}

// Start moves INACTIVE -> CONNECTING and asks the transport to place the
// call. Missing configuration aborts before any session attempt; a transport
// failure reverts to INACTIVE.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.status != StatusInactive {
		s.mu.Unlock()
		return ErrBadTransition
	}
	if s.cfg.WorkflowID == "" {
		s.mu.Unlock()
		return ErrNotConfigured
	}
	s.status = StatusConnecting
	s.mu.Unlock()

	if err := s.vc.Start(ctx, s.cfg.WorkflowID, s.cfg.Variables); err != nil {
		s.mu.Lock()
		if s.status == StatusConnecting {
			s.status = StatusInactive
		}
		s.mu.Unlock()
		if errors.Is(err, voice.ErrNotConfigured) {
			return ErrNotConfigured
		}
		return err
	}
	return nil
}

// Stop ends an active call. The transition to FINISHED is optimistic: local
// state flips before the transport stop completes so the caller sees intent
// immediately.
func (s *Session) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.status != StatusActive {
		s.mu.Unlock()
		return ErrBadTransition
	}
	s.status = StatusFinished
	s.speaking = false
	s.finishLocked()
	s.mu.Unlock()

	if err := s.vc.Stop(ctx); err != nil {
		s.log.WithError(err).Warn("voice transport stop failed")
	}
	return nil
}

func (s *Session) onCallStart() {
	s.mu.Lock()
	if s.status == StatusConnecting {
		s.status = StatusActive
	}
	s.mu.Unlock()
}

func (s *Session) onCallEnd() {
	s.mu.Lock()
	if s.status == StatusActive {
		s.status = StatusFinished
		s.speaking = false
		s.finishLocked()
	}
	s.mu.Unlock()
}

// onError forces the session back to INACTIVE: the attempt is aborted and no
// feedback is generated. Ignored once the session is already terminal.
func (s *Session) onError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusFinished || s.status == StatusInactive {
		return
	}
	s.log.WithError(err).Error("voice session aborted")
	s.status = StatusInactive
	s.speaking = false
}

func (s *Session) onMessage(ev voice.Event) {
	if ev.Message == nil {
		return
	}
	s.mu.Lock()
	terminal := s.status == StatusFinished
	s.mu.Unlock()
	if terminal {
		return
	}
	s.transcript.Consume(*ev.Message)
}

func (s *Session) setSpeaking(v bool) {
	s.mu.Lock()
	s.speaking = v
	s.mu.Unlock()
}

// finishLocked runs the terminal exit flow exactly once. Caller holds s.mu.
// The feedback submission uses a background context: navigating away
// abandons, but does not cancel, an in-flight request.
func (s *Session) finishLocked() {
	if s.fired {
		return
	}
	s.fired = true

	mode := s.cfg.Mode
	interviewID := s.cfg.InterviewID
	userID := s.cfg.UserID

	go func() {
		out := Outcome{Route: "/"}
		if mode != ModeGenerate {
			id, err := s.fb.CreateFromTranscript(context.Background(), interviewID, userID, s.transcript.Entries())
			if err != nil || id == "" {
				s.log.WithError(err).WithFields(logrus.Fields{
					"interview_id": interviewID,
					"user_id":      userID,
				}).Error("feedback generation failed; routing home")
			} else {
				out = Outcome{Route: "/interview/" + interviewID + "/feedback", FeedbackID: id}
			}
		}
		s.outcome <- out
	}()
}

// Outcome yields the routing decision after the session reaches FINISHED.
func (s *Session) Outcome() <-chan Outcome { return s.outcome }

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) Speaking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speaking
}

func (s *Session) Mode() Mode { return s.cfg.Mode }

// Transcript exposes the session log for display and archiving.
func (s *Session) Transcript() *Transcript { return s.transcript }

// Reset prepares a fresh session attempt. Only legal from FINISHED; every
// other state keeps its machine intact.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusFinished {
		return ErrBadTransition
	}
	s.status = StatusInactive
	s.speaking = false
	s.fired = false
	s.transcript = NewTranscript()
	s.outcome = make(chan Outcome, 1)
	return nil
}

// Close detaches the session from the transport's event stream.
func (s *Session) Close() {
	for _, cancel := range s.cancels {
		cancel()
	}
	s.cancels = nil
}
