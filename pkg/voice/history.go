package voice

import (
	"sync"

	"grant-assistant-be/pkg/llm"
)

const DefaultSystemPrompt = "You are a helpful AI grant writing assistant. Help users write grant proposals by asking relevant questions and providing guidance. Keep responses concise and conversational. Respond naturally as if speaking aloud."

// History is the chat-completion context of one session. It always starts
// with the system prompt.
type History struct {
	mu       sync.Mutex
	prompt   string
	messages []llm.Message
}

func NewHistory(systemPrompt string) *History {
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	h := &History{prompt: systemPrompt}
	h.Reset()
	return h
}

func (h *History) Add(role, content string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, llm.Message{Role: role, Content: content})
}

func (h *History) Messages() []llm.Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]llm.Message, len(h.messages))
	copy(out, h.messages)
	return out
}

// Reset drops every turn and keeps only the system prompt.
func (h *History) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = []llm.Message{{Role: llm.RoleSystem, Content: h.prompt}}
}

func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.messages)
}
