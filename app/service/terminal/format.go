package terminal

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"leadcapture/app/client/gateway"

	"github.com/elliotchance/pie/v2"
)

type leadField struct {
	label string
	value *string
}

func leadFields(name, email, phone, interests *string) []string {
	fields := pie.Filter([]leadField{
		{"Name", name},
		{"Email", email},
		{"Phone", phone},
		{"Interests", interests},
	}, func(f leadField) bool {
		return f.value != nil && *f.value != ""
	})

	return pie.Map(fields, func(f leadField) string {
		return fmt.Sprintf("%s: %s", f.label, *f.value)
	})
}

func formatLeadInfo(lead gateway.LeadInfo) string {
	lines := leadFields(lead.Name, lead.Email, lead.Phone, lead.Interests)
	if len(lines) == 0 {
		return ""
	}

	var builder strings.Builder
	builder.WriteString("Thanks for your information\n")
	for _, line := range lines {
		builder.WriteString("  " + line + "\n")
	}

	return builder.String()
}

func formatLead(raw json.RawMessage) string {
	lead, err := gateway.DecodeLead(raw)
	if err != nil {
		return string(raw)
	}

	parts := []string{fmt.Sprintf("#%d", lead.ID)}
	parts = append(parts, leadFields(lead.Name, lead.Email, lead.Phone, lead.Interests)...)
	if !lead.CreatedAt.IsZero() {
		parts = append(parts, "Created: "+lead.CreatedAt.Format(time.DateTime))
	}

	return strings.Join(parts, " | ")
}

func formatStatus(status gateway.BackendStatus) string {
	state := "unreachable"
	if status.Reachable {
		state = "reachable"
	}

	return fmt.Sprintf("%-10s %-45s %-11s %s", status.Name, status.URL, state, status.Latency.Round(time.Millisecond))
}
