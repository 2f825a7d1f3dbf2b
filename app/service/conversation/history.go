package conversation

import (
	"leadcapture/app/client/gateway"
)

type ChatHistory struct {
	messages []gateway.ChatMessage
}

func (h *ChatHistory) add(role gateway.Role, content string) {
	h.messages = append(h.messages, gateway.ChatMessage{
		Role:    role,
		Content: content,
	})
}

func (h *ChatHistory) snapshot() []gateway.ChatMessage {
	result := make([]gateway.ChatMessage, len(h.messages))
	copy(result, h.messages)

	return result
}
