package widget

import "leadcapture/app/client/gateway"

type chatMessage struct {
	Role    string `json:"role" validate:"oneof=user assistant"`
	Content string `json:"content"`
}

type chatRequest struct {
	Message             string        `json:"message" validate:"required"`
	ConversationHistory []chatMessage `json:"conversation_history" validate:"dive"`
}

func (r chatRequest) history() []gateway.ChatMessage {
	result := make([]gateway.ChatMessage, 0, len(r.ConversationHistory))
	for _, msg := range r.ConversationHistory {
		result = append(result, gateway.ChatMessage{
			Role:    gateway.Role(msg.Role),
			Content: msg.Content,
		})
	}

	return result
}

type healthResponse struct {
	Primary   gateway.Endpoint        `json:"primary"`
	Secondary gateway.Endpoint        `json:"secondary"`
	Backends  []gateway.BackendStatus `json:"backends"`
}

type errorResponse struct {
	Error string `json:"error"`
}
