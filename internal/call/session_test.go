package call

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/shubhamsharmax50/ai-mock-interviewer/internal/providers/voice"
)

type fakeVoice struct {
	mu       sync.Mutex
	handlers map[voice.EventKind][]voice.Handler
	startErr error
	starts   int
	stops    int
	onStop   func()
}

func newFakeVoice() *fakeVoice {
	return &fakeVoice{handlers: make(map[voice.EventKind][]voice.Handler)}
}

func (f *fakeVoice) Start(ctx context.Context, workflowID string, variables map[string]string) error {
	f.mu.Lock()
	f.starts++
	f.mu.Unlock()
	return f.startErr
}

func (f *fakeVoice) Stop(ctx context.Context) error {
	f.mu.Lock()
	f.stops++
	hook := f.onStop
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	return nil
}

func (f *fakeVoice) Subscribe(kind voice.EventKind, fn voice.Handler) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[kind] = append(f.handlers[kind], fn)
	return func() {}
}

func (f *fakeVoice) Close() error { return nil }

func (f *fakeVoice) emit(ev voice.Event) {
	f.mu.Lock()
	handlers := append([]voice.Handler(nil), f.handlers[ev.Kind]...)
	f.mu.Unlock()
	for _, fn := range handlers {
		fn(ev)
	}
}

type fakeSink struct {
	mu      sync.Mutex
	calls   int
	entries []Entry
	id      string
	err     error
}

func (f *fakeSink) CreateFromTranscript(ctx context.Context, interviewID, userID string, entries []Entry) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.entries = entries
	return f.id, f.err
}

func (f *fakeSink) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func quietLog() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestSession(t *testing.T, mode Mode, vc *fakeVoice, sink *fakeSink) *Session {
	t.Helper()
	s := NewSession(Config{
		Mode:        mode,
		InterviewID: "iv-1",
		UserID:      "u-1",
		WorkflowID:  "wf-1",
	}, vc, sink, quietLog())
	t.Cleanup(s.Close)
	return s
}

func waitOutcome(t *testing.T, s *Session) Outcome {
	t.Helper()
	select {
	case out := <-s.Outcome():
		return out
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for outcome")
		return Outcome{}
	}
}

func finalMsg(role, text string) voice.Event {
	return voice.Event{Kind: voice.EventMessage, Message: &voice.Message{
		Type: "transcript", TranscriptType: "final", Role: role, Transcript: text,
	}}
}

func TestSessionStartRequiresWorkflow(t *testing.T) {
	vc := newFakeVoice()
	s := NewSession(Config{Mode: ModeInterview}, vc, &fakeSink{}, quietLog())
	defer s.Close()

	if err := s.Start(context.Background()); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("Start() error = %v, want ErrNotConfigured", err)
	}
	if s.Status() != StatusInactive {
		t.Errorf("status = %s, want INACTIVE", s.Status())
	}
	if vc.starts != 0 {
		t.Errorf("transport started %d times, want 0", vc.starts)
	}
}

func TestSessionStartOnlyFromInactive(t *testing.T) {
	vc := newFakeVoice()
	s := newTestSession(t, ModeInterview, vc, &fakeSink{})

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if s.Status() != StatusConnecting {
		t.Fatalf("status = %s, want CONNECTING", s.Status())
	}
	if err := s.Start(context.Background()); !errors.Is(err, ErrBadTransition) {
		t.Errorf("second Start() error = %v, want ErrBadTransition", err)
	}
}

func TestSessionStartTransportFailureReverts(t *testing.T) {
	vc := newFakeVoice()
	vc.startErr = errors.New("dial failed")
	s := newTestSession(t, ModeInterview, vc, &fakeSink{})

	if err := s.Start(context.Background()); err == nil {
		t.Fatal("Start() succeeded, want error")
	}
	if s.Status() != StatusInactive {
		t.Errorf("status = %s, want INACTIVE after transport failure", s.Status())
	}
}

func TestSessionActiveOnlyFromConnecting(t *testing.T) {
	vc := newFakeVoice()
	s := newTestSession(t, ModeInterview, vc, &fakeSink{})

	// call-start before Start() must not activate the session
	vc.emit(voice.Event{Kind: voice.EventCallStart})
	if s.Status() != StatusInactive {
		t.Fatalf("status = %s, want INACTIVE", s.Status())
	}

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	vc.emit(voice.Event{Kind: voice.EventCallStart})
	if s.Status() != StatusActive {
		t.Errorf("status = %s, want ACTIVE", s.Status())
	}
}

func TestSessionStopOnlyFromActive(t *testing.T) {
	vc := newFakeVoice()
	s := newTestSession(t, ModeInterview, vc, &fakeSink{})

	if err := s.Stop(context.Background()); !errors.Is(err, ErrBadTransition) {
		t.Errorf("Stop() from INACTIVE = %v, want ErrBadTransition", err)
	}

	s.Start(context.Background())
	if err := s.Stop(context.Background()); !errors.Is(err, ErrBadTransition) {
		t.Errorf("Stop() from CONNECTING = %v, want ErrBadTransition", err)
	}
	if vc.stops != 0 {
		t.Errorf("transport stopped %d times, want 0", vc.stops)
	}
}

func TestSessionStopIsOptimistic(t *testing.T) {
	vc := newFakeVoice()
	sink := &fakeSink{id: "fb-1"}
	s := newTestSession(t, ModeInterview, vc, sink)

	var statusAtStop Status
	vc.onStop = func() { statusAtStop = s.Status() }

	s.Start(context.Background())
	vc.emit(voice.Event{Kind: voice.EventCallStart})

	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	// local state flips before the transport stop runs
	if statusAtStop != StatusFinished {
		t.Errorf("status during transport stop = %s, want FINISHED", statusAtStop)
	}
	if vc.stops != 1 {
		t.Errorf("transport stopped %d times, want 1", vc.stops)
	}
	waitOutcome(t, s)
}

func TestSessionErrorAbortsToInactive(t *testing.T) {
	vc := newFakeVoice()
	sink := &fakeSink{id: "fb-1"}
	s := newTestSession(t, ModeInterview, vc, sink)

	s.Start(context.Background())
	vc.emit(voice.Event{Kind: voice.EventCallStart})
	vc.emit(voice.Event{Kind: voice.EventError, Err: errors.New("transport lost")})

	if s.Status() != StatusInactive {
		t.Fatalf("status = %s, want INACTIVE after error", s.Status())
	}

	// an aborted session never produces feedback or an outcome
	select {
	case out := <-s.Outcome():
		t.Fatalf("unexpected outcome %+v after abort", out)
	case <-time.After(100 * time.Millisecond):
	}
	if sink.callCount() != 0 {
		t.Errorf("feedback called %d times, want 0", sink.callCount())
	}
}

func TestSessionErrorIgnoredWhenFinished(t *testing.T) {
	vc := newFakeVoice()
	s := newTestSession(t, ModeGenerate, vc, &fakeSink{})

	s.Start(context.Background())
	vc.emit(voice.Event{Kind: voice.EventCallStart})
	vc.emit(voice.Event{Kind: voice.EventCallEnd})
	waitOutcome(t, s)

	vc.emit(voice.Event{Kind: voice.EventError, Err: errors.New("late error")})
	if s.Status() != StatusFinished {
		t.Errorf("status = %s, want FINISHED (late error ignored)", s.Status())
	}
}

func TestSessionGenerateModeSkipsFeedback(t *testing.T) {
	vc := newFakeVoice()
	sink := &fakeSink{id: "fb-should-not-exist"}
	s := newTestSession(t, ModeGenerate, vc, sink)

	s.Start(context.Background())
	vc.emit(voice.Event{Kind: voice.EventCallStart})
	vc.emit(finalMsg("user", "hello"))
	vc.emit(voice.Event{Kind: voice.EventCallEnd})

	out := waitOutcome(t, s)
	if out.Route != "/" {
		t.Errorf("route = %q, want /", out.Route)
	}
	if out.FeedbackID != "" {
		t.Errorf("feedbackID = %q, want empty", out.FeedbackID)
	}
	if sink.callCount() != 0 {
		t.Errorf("feedback called %d times, want 0 in generate mode", sink.callCount())
	}
}

func TestSessionInterviewModeSubmitsOnce(t *testing.T) {
	vc := newFakeVoice()
	sink := &fakeSink{id: "fb-42"}
	s := newTestSession(t, ModeInterview, vc, sink)

	s.Start(context.Background())
	vc.emit(voice.Event{Kind: voice.EventCallStart})
	vc.emit(finalMsg("assistant", "first question"))
	vc.emit(voice.Event{Kind: voice.EventMessage, Message: &voice.Message{
		Type: "transcript", TranscriptType: "partial", Role: "user", Transcript: "my ans",
	}})
	vc.emit(finalMsg("user", "my answer"))
	vc.emit(voice.Event{Kind: voice.EventCallEnd})

	out := waitOutcome(t, s)
	if want := "/interview/iv-1/feedback"; out.Route != want {
		t.Errorf("route = %q, want %q", out.Route, want)
	}
	if out.FeedbackID != "fb-42" {
		t.Errorf("feedbackID = %q, want fb-42", out.FeedbackID)
	}

	// a duplicate terminal event must not re-submit
	vc.emit(voice.Event{Kind: voice.EventCallEnd})
	time.Sleep(50 * time.Millisecond)
	if sink.callCount() != 1 {
		t.Fatalf("feedback called %d times, want exactly 1", sink.callCount())
	}

	want := []Entry{
		{Role: "assistant", Content: "first question"},
		{Role: "user", Content: "my answer"},
	}
	if len(sink.entries) != len(want) {
		t.Fatalf("submitted %d entries, want %d", len(sink.entries), len(want))
	}
	for i := range want {
		if sink.entries[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, sink.entries[i], want[i])
		}
	}
}

func TestSessionFeedbackFailureRoutesHome(t *testing.T) {
	tests := []struct {
		name string
		sink *fakeSink
	}{
		{"sink error", &fakeSink{err: errors.New("llm unavailable")}},
		{"empty feedback id", &fakeSink{id: ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vc := newFakeVoice()
			s := newTestSession(t, ModeInterview, vc, tt.sink)

			s.Start(context.Background())
			vc.emit(voice.Event{Kind: voice.EventCallStart})
			vc.emit(finalMsg("user", "hello"))
			vc.emit(voice.Event{Kind: voice.EventCallEnd})

			out := waitOutcome(t, s)
			if out.Route != "/" {
				t.Errorf("route = %q, want / on feedback failure", out.Route)
			}
			if out.FeedbackID != "" {
				t.Errorf("feedbackID = %q, want empty", out.FeedbackID)
			}
		})
	}
}

func TestSessionIgnoresMessagesAfterFinish(t *testing.T) {
	vc := newFakeVoice()
	s := newTestSession(t, ModeGenerate, vc, &fakeSink{})

	s.Start(context.Background())
	vc.emit(voice.Event{Kind: voice.EventCallStart})
	vc.emit(finalMsg("user", "before end"))
	vc.emit(voice.Event{Kind: voice.EventCallEnd})
	waitOutcome(t, s)
	vc.emit(finalMsg("user", "after end"))

	if got := s.Transcript().Len(); got != 1 {
		t.Errorf("transcript has %d entries, want 1", got)
	}
}

func TestSessionSpeakingTracksSpeechEvents(t *testing.T) {
	vc := newFakeVoice()
	s := newTestSession(t, ModeInterview, vc, &fakeSink{})

	vc.emit(voice.Event{Kind: voice.EventSpeechStart})
	if !s.Speaking() {
		t.Error("Speaking() = false after speech-start")
	}
	vc.emit(voice.Event{Kind: voice.EventSpeechEnd})
	if s.Speaking() {
		t.Error("Speaking() = true after speech-end")
	}
}

func TestSessionResetOnlyFromFinished(t *testing.T) {
	vc := newFakeVoice()
	s := newTestSession(t, ModeGenerate, vc, &fakeSink{})

	if err := s.Reset(); !errors.Is(err, ErrBadTransition) {
		t.Fatalf("Reset() from INACTIVE = %v, want ErrBadTransition", err)
	}

	s.Start(context.Background())
	vc.emit(voice.Event{Kind: voice.EventCallStart})
	vc.emit(finalMsg("user", "hello"))
	vc.emit(voice.Event{Kind: voice.EventCallEnd})
	waitOutcome(t, s)

	if err := s.Reset(); err != nil {
		t.Fatalf("Reset() from FINISHED = %v", err)
	}
	if s.Status() != StatusInactive {
		t.Errorf("status = %s, want INACTIVE after reset", s.Status())
	}
	if s.Transcript().Len() != 0 {
		t.Errorf("transcript has %d entries after reset, want 0", s.Transcript().Len())
	}
}
