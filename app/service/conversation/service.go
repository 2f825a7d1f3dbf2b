package conversation

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"leadcapture/app/client/gateway"
	"leadcapture/app/util/mylog"

	"github.com/samber/do"
)

type ChatSender interface {
	SendChatMessage(ctx context.Context, message string, history []gateway.ChatMessage) gateway.ChatResponse
}

type Service struct {
	client ChatSender
}

func New(di *do.Injector) (*Service, error) {
	return NewService(do.MustInvoke[*gateway.Client](di)), nil
}

func NewService(client ChatSender) *Service {
	return &Service{
		client: client,
	}
}

// NewSession starts a conversation seeded with the assistant greeting.
func (s *Service) NewSession() *Session {
	return newSession(s.client)
}

// Session is one visitor's chat: ordered turns plus the lead captured so far.
type Session struct {
	client ChatSender

	sendMu sync.Mutex
	state  State
}

func newSession(client ChatSender) *Session {
	session := &Session{client: client}
	session.state.chatHistory.add(gateway.RoleAssistant, Greeting)

	return session
}

// Send delivers text with all previous turns as history, then records both
// turns and merges any captured lead info. Calls on one session are serialised.
func (s *Session) Send(ctx context.Context, text string) (*Reply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	s.state.mu.RLock()
	history := s.state.chatHistory.snapshot()
	s.state.mu.RUnlock()

	resp := s.client.SendChatMessage(ctx, text, history)

	s.state.mu.Lock()
	s.state.chatHistory.add(gateway.RoleUser, text)
	s.state.chatHistory.add(gateway.RoleAssistant, resp.Message)
	updated := resp.CapturedLeadInfo != nil && !resp.CapturedLeadInfo.IsEmpty()
	s.state.lead = s.state.lead.Merge(resp.CapturedLeadInfo)
	lead := s.state.lead
	s.state.mu.Unlock()

	if updated {
		slog.Info("Captured lead info",
			"lead", lead,
			mylog.TelegramKey, true)
	}

	return &Reply{
		Message:     resp.Message,
		Lead:        lead,
		LeadUpdated: updated,
	}, nil
}

func (s *Session) History() []gateway.ChatMessage {
	s.state.mu.RLock()
	defer s.state.mu.RUnlock()

	return s.state.chatHistory.snapshot()
}

func (s *Session) Lead() gateway.LeadInfo {
	s.state.mu.RLock()
	defer s.state.mu.RUnlock()

	return s.state.lead
}
