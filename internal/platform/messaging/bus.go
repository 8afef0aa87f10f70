package messaging

import (
	"context"
	"log/slog"
	"sync"

	"quorum/contexts/assembly-voting/voting-service/domain/entities"
	"quorum/contexts/assembly-voting/voting-service/ports"
)

// StatusBus fans session snapshots out to host displays (projector views,
// operator panels). In-process publish/subscribe; subscribers that fall
// behind drop snapshots rather than block the coordinator, since a newer
// snapshot supersedes anything missed.
type StatusBus struct {
	mu          sync.RWMutex
	subscribers []chan entities.VotingSession
	logger      *slog.Logger
}

func NewStatusBus(logger *slog.Logger) *StatusBus {
	return &StatusBus{logger: logger}
}

func (b *StatusBus) PublishStatus(ctx context.Context, session entities.VotingSession) error {
	b.mu.RLock()
	subs := append([]chan entities.VotingSession(nil), b.subscribers...)
	b.mu.RUnlock()

	for _, sub := range subs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sub <- session:
		default:
			if b.logger != nil {
				b.logger.Warn("dropping session snapshot for slow subscriber",
					"event", "status_bus_publish_drop",
					"module", "internal/platform/messaging",
					"layer", "platform",
					"mode", string(session.Mode),
					"target", session.Target,
				)
			}
		}
	}
	return nil
}

// Subscribe delivers every published snapshot to handler until ctx ends.
func (b *StatusBus) Subscribe(ctx context.Context, handler func(context.Context, entities.VotingSession)) {
	ch := make(chan entities.VotingSession, 16)

	b.mu.Lock()
	b.subscribers = append(b.subscribers, ch)
	b.mu.Unlock()

	go func() {
		for {
			select {
			case <-ctx.Done():
				b.removeSubscriber(ch)
				return
			case session := <-ch:
				handler(ctx, session)
			}
		}
	}()
}

func (b *StatusBus) removeSubscriber(target chan entities.VotingSession) {
	b.mu.Lock()
	defer b.mu.Unlock()

	filtered := make([]chan entities.VotingSession, 0, len(b.subscribers))
	for _, item := range b.subscribers {
		if item != target {
			filtered = append(filtered, item)
		}
	}
	b.subscribers = filtered
}

var _ ports.StatusPublisher = (*StatusBus)(nil)
