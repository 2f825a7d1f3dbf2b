package conversation

import (
	"context"
	"errors"
	"sync"
	"testing"

	"leadcapture/app/client/gateway"
)

type sentCall struct {
	message string
	history []gateway.ChatMessage
}

type fakeSender struct {
	mu        sync.Mutex
	calls     []sentCall
	responses []gateway.ChatResponse
}

func (f *fakeSender) SendChatMessage(_ context.Context, message string, history []gateway.ChatMessage) gateway.ChatResponse {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, sentCall{message: message, history: history})

	if len(f.responses) == 0 {
		return gateway.ChatResponse{Message: gateway.FallbackMessage}
	}

	resp := f.responses[0]
	f.responses = f.responses[1:]

	return resp
}

func strPtr(s string) *string {
	return &s
}

func TestSession_StartsWithGreeting(t *testing.T) {
	session := newSession(&fakeSender{})

	history := session.History()
	if len(history) != 1 || history[0].Role != gateway.RoleAssistant || history[0].Content != Greeting {
		t.Errorf("unexpected initial history %+v", history)
	}
	if !session.Lead().IsEmpty() {
		t.Error("new session should have no lead info")
	}
}

func TestSession_SendPassesPriorTurnsOnly(t *testing.T) {
	sender := &fakeSender{responses: []gateway.ChatResponse{
		{Message: "We run a food bank."},
		{Message: "Thanks!"},
	}}
	session := newSession(sender)

	if _, err := session.Send(context.Background(), "What do you do?"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := session.Send(context.Background(), "  Cool  "); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(sender.calls) != 2 {
		t.Fatalf("Expected 2 calls, got %d", len(sender.calls))
	}

	first := sender.calls[0]
	if first.message != "What do you do?" || len(first.history) != 1 {
		t.Errorf("unexpected first call %+v", first)
	}

	second := sender.calls[1]
	expected := []gateway.ChatMessage{
		{Role: gateway.RoleAssistant, Content: Greeting},
		{Role: gateway.RoleUser, Content: "What do you do?"},
		{Role: gateway.RoleAssistant, Content: "We run a food bank."},
	}
	if second.message != "Cool" {
		t.Errorf("Expected trimmed message, got %q", second.message)
	}
	if len(second.history) != len(expected) {
		t.Fatalf("Expected %d history entries, got %d", len(expected), len(second.history))
	}
	for i := range expected {
		if second.history[i] != expected[i] {
			t.Errorf("history[%d]: expected %+v, got %+v", i, expected[i], second.history[i])
		}
	}

	if n := len(session.History()); n != 5 {
		t.Errorf("Expected 5 turns after two sends, got %d", n)
	}
}

func TestSession_MergesLeadInfo(t *testing.T) {
	sender := &fakeSender{responses: []gateway.ChatResponse{
		{Message: "Hi Ann", CapturedLeadInfo: &gateway.LeadInfo{Name: strPtr("Ann")}},
		{Message: "Got it"},
		{Message: "Noted", CapturedLeadInfo: &gateway.LeadInfo{Email: strPtr("ann@example.org")}},
	}}
	session := newSession(sender)

	reply, err := session.Send(context.Background(), "I'm Ann")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reply.LeadUpdated || reply.Lead.Name == nil || *reply.Lead.Name != "Ann" {
		t.Errorf("unexpected first reply %+v", reply)
	}

	reply, _ = session.Send(context.Background(), "I like volunteering")
	if reply.LeadUpdated {
		t.Error("turn without lead info should not mark an update")
	}

	reply, _ = session.Send(context.Background(), "ann@example.org")
	lead := session.Lead()
	if lead.Name == nil || *lead.Name != "Ann" {
		t.Errorf("name lost after merge: %+v", lead)
	}
	if lead.Email == nil || *lead.Email != "ann@example.org" {
		t.Errorf("email not merged: %+v", lead)
	}
	if !reply.LeadUpdated {
		t.Error("Expected lead update on third turn")
	}
}

func TestSession_RejectsEmptyMessage(t *testing.T) {
	sender := &fakeSender{}
	session := newSession(sender)

	if _, err := session.Send(context.Background(), "   "); !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("Expected ErrEmptyMessage, got %v", err)
	}
	if len(sender.calls) != 0 {
		t.Errorf("empty message must not reach the backend")
	}
}

func TestSession_FallbackReplyIsRecorded(t *testing.T) {
	session := newSession(&fakeSender{})

	reply, err := session.Send(context.Background(), "Hello?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply.Message != gateway.FallbackMessage {
		t.Errorf("Expected fallback reply, got %q", reply.Message)
	}

	history := session.History()
	if last := history[len(history)-1]; last.Content != gateway.FallbackMessage {
		t.Errorf("Expected fallback in history, got %+v", last)
	}
}

func TestSession_ConcurrentSendsKeepTurnPairs(t *testing.T) {
	session := newSession(&fakeSender{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = session.Send(context.Background(), "ping")
		}()
	}
	wg.Wait()

	history := session.History()
	if len(history) != 1+8*2 {
		t.Fatalf("Expected 17 turns, got %d", len(history))
	}
	for i := 1; i < len(history); i += 2 {
		if history[i].Role != gateway.RoleUser || history[i+1].Role != gateway.RoleAssistant {
			t.Fatalf("turns interleaved at %d: %+v %+v", i, history[i], history[i+1])
		}
	}
}
