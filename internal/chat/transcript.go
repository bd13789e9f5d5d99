package chat

import (
	"sync"
	"time"

	"smartbite/internal/voice"
)

const (
	AuthorUser = "user"
	AuthorBot  = "bot"
)

// Message is one transcript entry
type Message struct {
	ID        int           `json:"id"`
	Author    string        `json:"author"`
	Text      string        `json:"text"`
	Source    Source        `json:"source,omitempty"`
	Channel   voice.Channel `json:"channel,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// Transcript is the append-only message log of one session
type Transcript struct {
	mu       sync.Mutex
	messages []Message
}

// NewTranscript creates a transcript opened by the welcome message
func NewTranscript() *Transcript {
	t := &Transcript{}
	t.Append(Message{Author: AuthorBot, Text: WelcomeMessage, Source: SourceWelcome})
	return t
}

// Append adds msg, assigning its id and timestamp
func (t *Transcript) Append(msg Message) Message {
	t.mu.Lock()
	defer t.mu.Unlock()

	msg.ID = len(t.messages) + 1
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	t.messages = append(t.messages, msg)
	return msg
}

// Messages returns a copy of the log in append order
func (t *Transcript) Messages() []Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Message(nil), t.messages...)
}

// Len returns the number of messages
func (t *Transcript) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.messages)
}
