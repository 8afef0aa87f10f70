package commands

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	application "quorum/contexts/assembly-voting/voting-service/application"
	"quorum/contexts/assembly-voting/voting-service/domain/entities"
	domainerrors "quorum/contexts/assembly-voting/voting-service/domain/errors"
	"quorum/contexts/assembly-voting/voting-service/ports"
)

// StartSessionCommand is the write-model input for session start. Kind is
// required for assignment polls; motion polls default to yes/no/abstain.
type StartSessionCommand struct {
	Mode        entities.SessionMode
	Target      string
	VotersCount int
	Kind        entities.PollKind
}

// Coordinator owns the single voting session and the in-progress vote
// records for it. Every mutation of session state is serialized behind one
// mutex; device round trips happen while it is held so that concurrent
// start/stop/ingest calls observe strictly ordered transitions.
type Coordinator struct {
	mu      sync.Mutex
	session entities.VotingSession
	serial  int
	kinds   map[string]entities.PollKind
	sealed  map[string]string

	device    ports.DeviceLink
	votes     ports.VoteRepository
	directory ports.Directory
	presence  ports.KeypadPresence
	roster    ports.SpeakerRoster
	journal   ports.ResultJournal
	status    ports.StatusPublisher
	clock     ports.Clock
	logger    *slog.Logger
}

type CoordinatorDeps struct {
	Device    ports.DeviceLink
	Votes     ports.VoteRepository
	Directory ports.Directory
	Presence  ports.KeypadPresence
	Roster    ports.SpeakerRoster
	Journal   ports.ResultJournal
	Status    ports.StatusPublisher
	Clock     ports.Clock
	Logger    *slog.Logger
}

func NewCoordinator(deps CoordinatorDeps) *Coordinator {
	return &Coordinator{
		session:   entities.VotingSession{Mode: entities.ModeIdle},
		kinds:     make(map[string]entities.PollKind),
		sealed:    make(map[string]string),
		device:    deps.Device,
		votes:     deps.Votes,
		directory: deps.Directory,
		presence:  deps.Presence,
		roster:    deps.Roster,
		journal:   deps.Journal,
		status:    deps.Status,
		clock:     deps.Clock,
		logger:    application.ResolveLogger(deps.Logger),
	}
}

// Status returns a snapshot of the current session. Never fails.
func (c *Coordinator) Status() entities.VotingSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// CheckDevice confirms hardware presence before a session start. The
// coordinator does not enforce this precondition on Start; well-behaved
// callers check first.
func (c *Coordinator) CheckDevice(ctx context.Context) (entities.DeviceStatus, error) {
	status, err := c.device.CheckDevice(ctx)
	if err != nil {
		c.logger.Error("device check failed",
			"event", "voting_device_check_failed",
			"module", "assembly-voting/voting-service",
			"layer", "application",
			"error", err.Error(),
		)
		return entities.DeviceStatus{}, err
	}
	return status, nil
}

// Start activates a voting session. A non-test start while another session
// is active fails with AlreadyActive carrying the blocking mode/target; a
// test start overrides whatever is running. A speaker-list start for the
// target already running is an idempotent no-op. Session state is mutated
// only after the device accepted the start, so a device failure leaves the
// prior session untouched.
func (c *Coordinator) Start(ctx context.Context, cmd StartSessionCommand) error {
	cmd.Target = strings.TrimSpace(cmd.Target)
	if err := validateStart(cmd); err != nil {
		c.logger.Warn("session start validation failed",
			"event", "voting_session_start_validation_failed",
			"module", "assembly-voting/voting-service",
			"layer", "application",
			"mode", string(cmd.Mode),
			"target", cmd.Target,
		)
		return err
	}
	kind := resolveKind(cmd)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session.Active() {
		if cmd.Mode == entities.ModeSpeakerList &&
			c.session.Mode == entities.ModeSpeakerList &&
			c.session.Target == cmd.Target {
			return nil
		}
		if cmd.Mode != entities.ModeTest {
			c.logger.Warn("session start rejected",
				"event", "voting_session_start_rejected",
				"module", "assembly-voting/voting-service",
				"layer", "application",
				"requested_mode", string(cmd.Mode),
				"requested_target", cmd.Target,
				"active_mode", string(c.session.Mode),
				"active_target", c.session.Target,
			)
			return &domainerrors.AlreadyActiveError{
				Mode:   c.session.Mode,
				Target: c.session.Target,
			}
		}
		// Test overrides: stop the running session on the device first.
		// A stop failure is not fatal here, the subsequent start decides.
		if err := c.device.StopSession(ctx); err != nil {
			c.logger.Warn("device stop before test override failed",
				"event", "voting_session_test_override_stop_failed",
				"module", "assembly-voting/voting-service",
				"layer", "application",
				"error", err.Error(),
			)
		}
	}

	if err := c.device.StartSession(ctx, cmd.Mode, ports.DeviceStartParams{
		Target:        cmd.Target,
		Method:        kind.Method,
		MaxSelectable: kind.MaxSelectable,
	}); err != nil {
		c.logger.Error("device session start failed",
			"event", "voting_session_start_device_failed",
			"module", "assembly-voting/voting-service",
			"layer", "application",
			"mode", string(cmd.Mode),
			"target", cmd.Target,
			"error", err.Error(),
		)
		return err
	}

	if cmd.Mode.IsPoll() {
		// The new session reclaims any previous records for its target.
		if err := c.votes.DeleteRecordsByTarget(ctx, cmd.Target); err != nil {
			c.logger.Error("reclaiming prior vote records failed",
				"event", "voting_session_start_reclaim_failed",
				"module", "assembly-voting/voting-service",
				"layer", "application",
				"target", cmd.Target,
				"error", err.Error(),
			)
			return err
		}
		c.kinds[cmd.Target] = kind
		delete(c.sealed, cmd.Target)
	}
	if cmd.Mode == entities.ModeTest && c.presence != nil {
		// The ping run re-discovers every keypad, so presence starts clean.
		if err := c.presence.ResetPresence(ctx); err != nil {
			c.logger.Warn("keypad presence reset failed",
				"event", "voting_session_presence_reset_failed",
				"module", "assembly-voting/voting-service",
				"layer", "application",
				"error", err.Error(),
			)
		}
	}

	c.session = entities.VotingSession{
		Mode:        cmd.Mode,
		Target:      cmd.Target,
		Kind:        kind,
		VotersCount: cmd.VotersCount,
		StartedAt:   c.now(),
	}
	c.serial = 0

	c.logger.Info("voting session started",
		"event", "voting_session_started",
		"module", "assembly-voting/voting-service",
		"layer", "application",
		"mode", string(cmd.Mode),
		"target", cmd.Target,
		"voters_count", cmd.VotersCount,
	)
	c.publishLocked(ctx)
	return nil
}

// Stop ends the active session. A stop while idle is a no-op success. A
// device failure leaves the session active (fail-closed); the caller may
// retry. Collected vote records stay retrievable until the next start for
// the same target reclaims them.
func (c *Coordinator) Stop(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.session.Active() {
		return nil
	}
	if err := c.device.StopSession(ctx); err != nil {
		c.logger.Error("device session stop failed",
			"event", "voting_session_stop_device_failed",
			"module", "assembly-voting/voting-service",
			"layer", "application",
			"mode", string(c.session.Mode),
			"target", c.session.Target,
			"error", err.Error(),
		)
		return err
	}

	c.logger.Info("voting session stopped",
		"event", "voting_session_stopped",
		"module", "assembly-voting/voting-service",
		"layer", "application",
		"mode", string(c.session.Mode),
		"target", c.session.Target,
		"votes_received", c.session.VotesReceived,
	)
	c.session = entities.VotingSession{Mode: entities.ModeIdle}
	c.serial = 0
	c.publishLocked(ctx)
	return nil
}

func (c *Coordinator) snapshotLocked() entities.VotingSession {
	snapshot := c.session
	if len(snapshot.Kind.CandidateIDs) > 0 {
		snapshot.Kind.CandidateIDs = append([]string(nil), snapshot.Kind.CandidateIDs...)
	}
	return snapshot
}

func (c *Coordinator) publishLocked(ctx context.Context) {
	if c.status == nil {
		return
	}
	if err := c.status.PublishStatus(ctx, c.snapshotLocked()); err != nil {
		c.logger.Warn("session status publish failed",
			"event", "voting_session_status_publish_failed",
			"module", "assembly-voting/voting-service",
			"layer", "application",
			"error", err.Error(),
		)
	}
}

func (c *Coordinator) now() time.Time {
	if c.clock != nil {
		return c.clock.Now().UTC()
	}
	return time.Now().UTC()
}

func validateStart(cmd StartSessionCommand) error {
	switch cmd.Mode {
	case entities.ModeTest:
		return nil
	case entities.ModeSpeakerList, entities.ModeMotionPoll, entities.ModeAssignmentPoll:
		if cmd.Target == "" {
			return domainerrors.ErrInvalidStartInput
		}
	default:
		return domainerrors.ErrInvalidStartInput
	}
	if cmd.VotersCount < 0 {
		return domainerrors.ErrInvalidStartInput
	}
	if cmd.Mode == entities.ModeAssignmentPoll &&
		cmd.Kind.Method == entities.MethodMultiCandidate &&
		len(cmd.Kind.CandidateIDs) == 0 {
		return domainerrors.ErrInvalidStartInput
	}
	return nil
}

func resolveKind(cmd StartSessionCommand) entities.PollKind {
	kind := cmd.Kind
	if !cmd.Mode.IsPoll() {
		return entities.PollKind{}
	}
	if kind.Method == "" {
		kind.Method = entities.MethodYesNoAbstain
	}
	if kind.Method == entities.MethodMultiCandidate {
		kind.CandidateIDs = append([]string(nil), kind.CandidateIDs...)
		if kind.MaxSelectable <= 0 {
			kind.MaxSelectable = 1
		}
	} else {
		kind.CandidateIDs = nil
		kind.MaxSelectable = 0
	}
	return kind
}
