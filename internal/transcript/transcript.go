// Package transcript keeps the ordered list of chat entries and the
// ephemeral typing indicator.
package transcript

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/Rorical/RoriChat/internal/markup"
	"github.com/Rorical/RoriChat/internal/models"
)

// Revealer fills an entry's markup over time.
type Revealer interface {
	Reveal(ctx context.Context, sink markup.Sink, content string)
}

// Observer receives a snapshot of the transcript after every change.
type Observer func(messages []models.Message)

// Transcript is append-only: committed entries are never removed. Only the
// typing indicator can leave the list.
type Transcript struct {
	mu       sync.RWMutex
	messages []models.Message
	revealer Revealer
	observer Observer
	scroll   func()
}

type Option func(*Transcript)

func WithObserver(observer Observer) Option {
	return func(t *Transcript) {
		t.observer = observer
	}
}

// WithScroller sets the scroll-to-bottom side effect run after every append
// and removal.
func WithScroller(scroll func()) Option {
	return func(t *Transcript) {
		t.scroll = scroll
	}
}

func New(revealer Revealer, opts ...Option) *Transcript {
	t := &Transcript{
		messages: make([]models.Message, 0),
		revealer: revealer,
		observer: func([]models.Message) {},
		scroll:   func() {},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Append formats raw text and adds it as a new entry.
func (t *Transcript) Append(role models.Role, raw string) models.Message {
	msg := models.Message{
		ID:      uuid.NewString(),
		Role:    role,
		Content: markup.Format(raw),
	}
	t.push(msg)
	return msg
}

// AppendAnimated adds an empty entry and reveals the formatted text into it.
// It returns once the reveal has finished.
func (t *Transcript) AppendAnimated(ctx context.Context, role models.Role, raw string) models.Message {
	msg := models.Message{
		ID:   uuid.NewString(),
		Role: role,
	}
	t.push(msg)

	content := markup.Format(raw)
	t.revealer.Reveal(ctx, markup.SinkFunc(func(m string) {
		t.setContent(msg.ID, m)
	}), content)
	t.scroll()

	msg.Content = content
	return msg
}

// ShowTyping appends the typing indicator and returns its ID.
func (t *Transcript) ShowTyping() string {
	id := uuid.NewString()
	t.push(models.Message{
		ID:     id,
		Role:   models.Bot,
		Typing: true,
	})
	return id
}

// RemoveTyping drops the typing indicator with the given ID. It reports
// whether anything was removed; committed entries are never touched.
func (t *Transcript) RemoveTyping(id string) bool {
	t.mu.Lock()
	idx := t.indexOf(id)
	if idx < 0 || !t.messages[idx].Typing {
		t.mu.Unlock()
		return false
	}
	t.messages = append(t.messages[:idx], t.messages[idx+1:]...)
	snapshot := t.snapshotLocked()
	t.mu.Unlock()

	t.observer(snapshot)
	t.scroll()
	return true
}

// Messages returns a copy of the current entries, typing indicator included.
func (t *Transcript) Messages() []models.Message {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snapshotLocked()
}

// HasTyping reports whether a typing indicator is present.
func (t *Transcript) HasTyping() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, msg := range t.messages {
		if msg.Typing {
			return true
		}
	}
	return false
}

func (t *Transcript) push(msg models.Message) {
	t.mu.Lock()
	t.messages = append(t.messages, msg)
	snapshot := t.snapshotLocked()
	t.mu.Unlock()

	t.observer(snapshot)
	t.scroll()
}

func (t *Transcript) setContent(id, content string) {
	t.mu.Lock()
	idx := t.indexOf(id)
	if idx < 0 {
		t.mu.Unlock()
		return
	}
	t.messages[idx].Content = content
	snapshot := t.snapshotLocked()
	t.mu.Unlock()

	t.observer(snapshot)
}

// indexOf searches from the end; the entry being updated is almost always last.
func (t *Transcript) indexOf(id string) int {
	for i := len(t.messages) - 1; i >= 0; i-- {
		if t.messages[i].ID == id {
			return i
		}
	}
	return -1
}

func (t *Transcript) snapshotLocked() []models.Message {
	result := make([]models.Message, len(t.messages))
	copy(result, t.messages)
	return result
}
