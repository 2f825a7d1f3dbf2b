package terminal

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"leadcapture/app/client/gateway"
	"leadcapture/app/service/conversation"

	"github.com/samber/do"
)

const exitCommand = "exit"

type leadsClient interface {
	GetLeads(ctx context.Context) []json.RawMessage
	GetLead(ctx context.Context, id int64) (json.RawMessage, bool)
	Connectivity(ctx context.Context) []gateway.BackendStatus
}

// Service drives the chat and the leads listing from a terminal.
type Service struct {
	conversationSvc *conversation.Service
	client          leadsClient
}

func New(di *do.Injector) (*Service, error) {
	return &Service{
		conversationSvc: do.MustInvoke[*conversation.Service](di),
		client:          do.MustInvoke[*gateway.Client](di),
	}, nil
}

// RunChat reads one message per line until "exit", EOF or ctx is done.
func (s *Service) RunChat(ctx context.Context, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	session := s.conversationSvc.NewSession()

	fmt.Fprintf(out, "Assistant: %s\n", conversation.Greeting)
	fmt.Fprintln(out, "Type 'exit' to quit chat.")

	lines, scanErr := readLines(ctx, in)

	for {
		fmt.Fprint(out, "You: ")

		var (
			line string
			ok   bool
		)

		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return ctx.Err()
		case line, ok = <-lines:
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		if !ok {
			fmt.Fprintln(out)
			return <-scanErr
		}

		text := strings.TrimSpace(line)
		if text == exitCommand {
			return nil
		}

		reply, err := session.Send(ctx, text)
		if errors.Is(err, conversation.ErrEmptyMessage) {
			continue
		}
		if err != nil {
			return fmt.Errorf("session.Send: %w", err)
		}

		fmt.Fprintf(out, "Assistant: %s\n", reply.Message)

		if reply.LeadUpdated {
			fmt.Fprint(out, formatLeadInfo(reply.Lead))
		}
	}
}

// readLines scans in on its own goroutine so a blocked read cannot delay cancellation.
// lines is closed after the scan error, if any, is sent.
func readLines(ctx context.Context, in io.Reader) (<-chan string, <-chan error) {
	lines := make(chan string)
	scanErr := make(chan error, 1)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}

		scanErr <- scanner.Err()
	}()

	return lines, scanErr
}

func (s *Service) PrintLeads(ctx context.Context, out io.Writer) {
	leads := s.client.GetLeads(ctx)

	fmt.Fprintf(out, "%d lead(s)\n", len(leads))
	for _, lead := range leads {
		fmt.Fprintln(out, formatLead(lead))
	}
}

func (s *Service) PrintLead(ctx context.Context, out io.Writer, id int64) error {
	lead, ok := s.client.GetLead(ctx, id)
	if !ok {
		return fmt.Errorf("lead %d not found", id)
	}

	fmt.Fprintln(out, formatLead(lead))

	return nil
}

// PrintConnectivity reports both backends and returns false if any is unreachable.
func (s *Service) PrintConnectivity(ctx context.Context, out io.Writer) bool {
	statuses := s.client.Connectivity(ctx)

	allOK := true
	for _, status := range statuses {
		fmt.Fprintln(out, formatStatus(status))
		allOK = allOK && status.Reachable
	}

	return allOK
}
