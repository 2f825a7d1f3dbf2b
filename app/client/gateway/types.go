package gateway

import (
	"encoding/json"
	"log/slog"
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// LeadInfo is contact data captured so far. Every field is optional.
type LeadInfo struct {
	Name      *string `json:"name,omitempty"`
	Email     *string `json:"email,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Interests *string `json:"interests,omitempty"`
}

// Merge overwrites the fields present in next and keeps the rest.
func (l LeadInfo) Merge(next *LeadInfo) LeadInfo {
	if next == nil {
		return l
	}

	if next.Name != nil {
		l.Name = next.Name
	}
	if next.Email != nil {
		l.Email = next.Email
	}
	if next.Phone != nil {
		l.Phone = next.Phone
	}
	if next.Interests != nil {
		l.Interests = next.Interests
	}

	return l
}

func (l LeadInfo) LogValue() slog.Value {
	var attrs []slog.Attr

	for _, field := range []struct {
		key   string
		value *string
	}{
		{"name", l.Name},
		{"email", l.Email},
		{"phone", l.Phone},
		{"interests", l.Interests},
	} {
		if field.value != nil {
			attrs = append(attrs, slog.String(field.key, *field.value))
		}
	}

	return slog.GroupValue(attrs...)
}

func (l LeadInfo) IsEmpty() bool {
	return l.Name == nil && l.Email == nil && l.Phone == nil && l.Interests == nil
}

type ChatRequest struct {
	Message             string        `json:"message"`
	ConversationHistory []ChatMessage `json:"conversation_history"`
}

type ChatResponse struct {
	Message          string    `json:"message"`
	CapturedLeadInfo *LeadInfo `json:"captured_lead_info"`
}

// Lead is the record shape the backend returns from /leads.
type Lead struct {
	ID        int64     `json:"id"`
	Name      *string   `json:"name,omitempty"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Interests *string   `json:"interests,omitempty"`
	CreatedAt Timestamp `json:"created_at"`
}

// Timestamp accepts RFC 3339 and the zone-less ISO form the backend emits for naive UTC datetimes.
type Timestamp struct {
	time.Time
}

const naiveLayout = "2006-01-02T15:04:05.999999999"

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var value *string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}

	if value == nil || *value == "" {
		t.Time = time.Time{}
		return nil
	}

	parsed, err := time.Parse(time.RFC3339Nano, *value)
	if err != nil {
		if parsed, err = time.Parse(naiveLayout, *value); err != nil {
			return err
		}
	}

	t.Time = parsed

	return nil
}

func DecodeLead(raw json.RawMessage) (*Lead, error) {
	var lead Lead
	if err := json.Unmarshal(raw, &lead); err != nil {
		return nil, err
	}

	return &lead, nil
}

type BackendStatus struct {
	Name      string        `json:"name"`
	URL       string        `json:"url"`
	Reachable bool          `json:"reachable"`
	Latency   time.Duration `json:"latency"`
}
