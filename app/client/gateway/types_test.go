package gateway

import (
	"encoding/json"
	"testing"
)

func strPtr(s string) *string {
	return &s
}

func TestLeadInfoMerge(t *testing.T) {
	lead := LeadInfo{}.
		Merge(&LeadInfo{Name: strPtr("Ann")}).
		Merge(&LeadInfo{Email: strPtr("ann@example.org")}).
		Merge(nil).
		Merge(&LeadInfo{Name: strPtr("Ann Lee"), Interests: strPtr("food bank")})

	if lead.Name == nil || *lead.Name != "Ann Lee" {
		t.Errorf("Expected overwritten name, got %v", lead.Name)
	}
	if lead.Email == nil || *lead.Email != "ann@example.org" {
		t.Errorf("Expected email to survive later merges, got %v", lead.Email)
	}
	if lead.Phone != nil {
		t.Errorf("Expected no phone, got %q", *lead.Phone)
	}
	if lead.Interests == nil || *lead.Interests != "food bank" {
		t.Errorf("Expected interests, got %v", lead.Interests)
	}
}

func TestLeadInfoIsEmpty(t *testing.T) {
	if !(LeadInfo{}).IsEmpty() {
		t.Error("zero value should be empty")
	}
	if (LeadInfo{Phone: strPtr("555-0100")}).IsEmpty() {
		t.Error("lead with phone should not be empty")
	}
}

func TestChatResponseJSON(t *testing.T) {
	var resp ChatResponse
	if err := json.Unmarshal([]byte(`{"message":"Hi","captured_lead_info":{"email":"a@b.org"}}`), &resp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.CapturedLeadInfo == nil || resp.CapturedLeadInfo.Email == nil || *resp.CapturedLeadInfo.Email != "a@b.org" {
		t.Fatalf("unexpected lead info %+v", resp.CapturedLeadInfo)
	}
	if resp.CapturedLeadInfo.Name != nil {
		t.Errorf("absent field should stay nil")
	}

	data, err := json.Marshal(ChatResponse{Message: "Hi"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `{"message":"Hi","captured_lead_info":null}` {
		t.Errorf("unexpected encoding %s", data)
	}
}

func TestDecodeLead(t *testing.T) {
	lead, err := DecodeLead(json.RawMessage(`{"id":7,"name":"Bo","created_at":"2024-03-01T10:00:00Z"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if lead.ID != 7 || lead.Name == nil || *lead.Name != "Bo" {
		t.Errorf("unexpected lead %+v", lead)
	}
	if lead.CreatedAt.Year() != 2024 {
		t.Errorf("unexpected created_at %s", lead.CreatedAt)
	}

	naive, err := DecodeLead(json.RawMessage(`{"id":8,"created_at":"2024-03-01T10:00:00.123456"}`))
	if err != nil {
		t.Fatalf("unexpected error for zone-less timestamp: %v", err)
	}
	if naive.CreatedAt.Hour() != 10 || naive.CreatedAt.Nanosecond() != 123456000 {
		t.Errorf("unexpected created_at %s", naive.CreatedAt)
	}

	if _, err = DecodeLead(json.RawMessage(`{"id":9,"created_at":"yesterday"}`)); err == nil {
		t.Error("Expected error for bad timestamp")
	}

	if _, err = DecodeLead(json.RawMessage(`[1,2]`)); err == nil {
		t.Error("Expected error for non-object record")
	}
}
