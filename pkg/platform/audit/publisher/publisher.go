package publisher

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mssola/useragent"

	audit "voluntr/pkg/platform/audit"
	"voluntr/pkg/requestcontext"
)

// Publisher enriches events with request metadata and appends them to the
// store. Emit is synchronous so callers inside a transaction fail with it.
type Publisher struct {
	store audit.Store
}

func NewPublisher(store audit.Store) *Publisher {
	return &Publisher{store: store}
}

func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if p == nil || p.store == nil {
		return nil
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.ClientIP == "" {
		event.ClientIP = requestcontext.ClientIP(ctx)
	}
	if event.Device == "" {
		event.Device = deviceLabel(requestcontext.UserAgent(ctx))
	}
	if err := p.store.Append(ctx, event); err != nil {
		return fmt.Errorf("append audit event %s: %w", event.Action, err)
	}
	return nil
}

func deviceLabel(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	ua := useragent.New(raw)
	if ua.Bot() {
		return "bot"
	}
	name, version := ua.Browser()
	if major, _, ok := strings.Cut(version, "."); ok {
		version = major
	}
	label := strings.TrimSpace(name + " " + version)
	if os := ua.OSInfo().Name; os != "" {
		label += " on " + os
	}
	if ua.Mobile() {
		label += " (mobile)"
	}
	return label
}
