package workers

import (
	"context"
	"log/slog"

	application "quorum/contexts/assembly-voting/voting-service/application"
	"quorum/contexts/assembly-voting/voting-service/domain/entities"
	"quorum/contexts/assembly-voting/voting-service/ports"
)

// SessionSource exposes the current session snapshot to the broadcaster.
type SessionSource interface {
	Status() entities.VotingSession
}

// StatusBroadcaster periodically republishes the session snapshot so host
// displays that joined late (or dropped a push) converge on the live count.
type StatusBroadcaster struct {
	Source    SessionSource
	Publisher ports.StatusPublisher
	Logger    *slog.Logger
}

// RunOnce publishes one snapshot. Idle sessions are skipped; the
// event-driven publishes on start/stop already cover the idle transition.
func (b StatusBroadcaster) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(b.Logger)
	if b.Publisher == nil {
		return nil
	}

	session := b.Source.Status()
	if !session.Active() {
		logger.Debug("status broadcast skipped, session idle",
			"event", "session_status_broadcast_noop",
			"module", "assembly-voting/voting-service",
			"layer", "worker",
		)
		return nil
	}

	if err := b.Publisher.PublishStatus(ctx, session); err != nil {
		logger.Error("status broadcast failed",
			"event", "session_status_broadcast_failed",
			"module", "assembly-voting/voting-service",
			"layer", "worker",
			"mode", string(session.Mode),
			"target", session.Target,
			"error", err.Error(),
		)
		return err
	}

	logger.Debug("status broadcast completed",
		"event", "session_status_broadcast_completed",
		"module", "assembly-voting/voting-service",
		"layer", "worker",
		"mode", string(session.Mode),
		"target", session.Target,
		"votes_received", session.VotesReceived,
	)
	return nil
}
