package call

import (
	"sync"

	"github.com/shubhamsharmax50/ai-mock-interviewer/internal/providers/voice"
)

// Entry is one finalized utterance of the session transcript.
type Entry struct {
	Role    string `json:"role"` // user | system | assistant
	Content string `json:"content"`
}

// Transcript is the append-only session log. Entries are never mutated after
// append; insertion order is the chronological order of finalized utterances.
type Transcript struct {
	mu      sync.Mutex
	entries []Entry
}

func NewTranscript() *Transcript {
	return &Transcript{}
}

// Consume appends the message if it is a finalized transcript fragment.
// Interim/partial transcripts are discarded, not buffered. Reports whether
// the message was accepted.
func (t *Transcript) Consume(m voice.Message) bool {
	if m.Type != "transcript" || m.TranscriptType != "final" {
		return false
	}
	t.mu.Lock()
	t.entries = append(t.entries, Entry{Role: m.Role, Content: m.Transcript})
	t.mu.Unlock()
	return true
}

// Entries returns a copy of the accumulated log.
func (t *Transcript) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Last returns the most recently appended entry, the one displayed live.
func (t *Transcript) Last() (Entry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.entries) == 0 {
		return Entry{}, false
	}
	return t.entries[len(t.entries)-1], true
}

func (t *Transcript) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
