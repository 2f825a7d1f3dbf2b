package conversation

import (
	"errors"
	"sync"

	"leadcapture/app/client/gateway"
)

const Greeting = "Hello! I'm here to tell you about our charity foundation. How can I help you today?"

var ErrEmptyMessage = errors.New("message is empty")

type Reply struct {
	Message string
	// Lead is the accumulated lead record after this turn
	Lead gateway.LeadInfo
	// LeadUpdated is set when the turn captured any lead field
	LeadUpdated bool
}

type State struct {
	mu sync.RWMutex

	chatHistory ChatHistory
	lead        gateway.LeadInfo
}
