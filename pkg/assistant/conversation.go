package assistant

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Message is one entry in a chat transcript
type Message struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation is a chat transcript that starts with the welcome message.
// It is safe for concurrent use.
type Conversation struct {
	assistant *Assistant
	clock     func() time.Time

	mu       sync.Mutex
	messages []Message
}

func NewConversation(a *Assistant, clock func() time.Time) *Conversation {
	if a == nil {
		a = New()
	}
	if clock == nil {
		clock = time.Now
	}

	c := &Conversation{assistant: a, clock: clock}
	c.messages = append(c.messages, c.message(WelcomeMessage, SenderAssistant))
	return c
}

func (c *Conversation) message(content string, sender Sender) Message {
	return Message{
		ID:        uuid.NewString(),
		Content:   content,
		Sender:    sender,
		Timestamp: c.clock(),
	}
}

// Send records the user's message and the assistant's reply, returning the
// reply. Blank messages are ignored.
func (c *Conversation) Send(content string) (Message, bool) {
	if strings.TrimSpace(content) == "" {
		return Message{}, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.messages = append(c.messages, c.message(content, SenderUser))
	reply := c.message(c.assistant.Respond(content), SenderAssistant)
	c.messages = append(c.messages, reply)
	return reply, true
}

// Messages returns a copy of the transcript
func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}
