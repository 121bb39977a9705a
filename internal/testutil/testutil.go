package testutil

import (
	"sync"
	"time"

	"github.com/abrezinsky/snapchaos/internal/models"
)

// Broadcast is one message recorded by RecordingBroadcaster
type Broadcast struct {
	Code string
	Msg  models.WSMessage
}

// RecordingBroadcaster keeps every room broadcast in arrival order
type RecordingBroadcaster struct {
	mu   sync.Mutex
	msgs []Broadcast
}

func (b *RecordingBroadcaster) BroadcastToRoom(code string, msg models.WSMessage) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.msgs = append(b.msgs, Broadcast{Code: code, Msg: msg})
}

// All returns a copy of everything recorded so far
func (b *RecordingBroadcaster) All() []Broadcast {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Broadcast(nil), b.msgs...)
}

// Types returns the message types recorded for code, oldest first
func (b *RecordingBroadcaster) Types(code string) []string {
	var types []string
	for _, m := range b.All() {
		if m.Code == code {
			types = append(types, m.Msg.Type)
		}
	}
	return types
}

// Last returns the most recent message of msgType for code
func (b *RecordingBroadcaster) Last(code, msgType string) (models.WSMessage, bool) {
	all := b.All()
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].Code == code && all[i].Msg.Type == msgType {
			return all[i].Msg, true
		}
	}
	return models.WSMessage{}, false
}

// Reset forgets every recorded message
func (b *RecordingBroadcaster) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.msgs = nil
}

// ScriptedReader is an io.Reader that yields the given byte chunks in
// order, then repeats the last one forever. It makes room codes predictable.
type ScriptedReader struct {
	mu     sync.Mutex
	chunks [][]byte
	next   int
}

// NewScriptedReader returns a reader over chunks
func NewScriptedReader(chunks ...[]byte) *ScriptedReader {
	return &ScriptedReader{chunks: chunks}
}

func (r *ScriptedReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	chunk := r.chunks[r.next]
	if r.next < len(r.chunks)-1 {
		r.next++
	}
	n := 0
	for n < len(p) {
		n += copy(p[n:], chunk)
	}
	return n, nil
}

// FailingReader always returns its error
type FailingReader struct {
	Err error
}

func (r FailingReader) Read([]byte) (int, error) {
	return 0, r.Err
}

// Clock is a manually advanced time source
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a clock stopped at start
func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
