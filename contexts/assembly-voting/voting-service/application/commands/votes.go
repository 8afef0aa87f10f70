package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"

	"quorum/contexts/assembly-voting/voting-service/domain/entities"
	domainerrors "quorum/contexts/assembly-voting/voting-service/domain/errors"
)

// IngestVoteCommand is one yes/no/abstain ballot reported by a keypad.
type IngestVoteCommand struct {
	Target       string
	KeypadID     int
	Value        string
	BatteryLevel int
}

// IngestCandidateCommand is one election ballot: Key is the pressed digit,
// 0 meaning abstain and 1..n selecting the n-th candidate.
type IngestCandidateCommand struct {
	Target       string
	KeypadID     int
	Key          int
	BatteryLevel int
}

// IngestSpeakerCommand is a speaker-list request: Y queues the keypad's
// participant for the agenda item, N removes them.
type IngestSpeakerCommand struct {
	ItemID       string
	KeypadID     int
	Value        string
	BatteryLevel int
}

// Ingest reconciles a yes/no/abstain vote into the record set of the
// active session. A repeat vote by the same keypad replaces the earlier
// record and takes a fresh arrival serial; VotesReceived counts distinct
// keypads only. Keypads unknown to the directory are accepted with the
// participant fields left empty.
func (c *Coordinator) Ingest(ctx context.Context, cmd IngestVoteCommand) error {
	cmd.Target = strings.TrimSpace(cmd.Target)
	cmd.Value = strings.TrimSpace(cmd.Value)

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.session.Active() || !c.session.Mode.IsPoll() || c.session.Target != cmd.Target {
		return domainerrors.ErrNoActiveSession
	}
	if c.session.Kind.Method != entities.MethodYesNoAbstain {
		return domainerrors.ErrInvalidVoteValue
	}
	switch cmd.Value {
	case entities.VoteYes, entities.VoteNo, entities.VoteAbstain:
	default:
		c.logger.Warn("vote rejected",
			"event", "vote_ingest_rejected",
			"module", "assembly-voting/voting-service",
			"layer", "application",
			"target", cmd.Target,
			"keypad_id", cmd.KeypadID,
			"value", cmd.Value,
		)
		return domainerrors.ErrInvalidVoteValue
	}

	return c.storeVoteLocked(ctx, cmd.Target, cmd.KeypadID, cmd.Value, "", cmd.BatteryLevel)
}

// IngestCandidate reconciles an election ballot. Digits beyond the
// candidate list stay recorded and count as invalid on finalize.
func (c *Coordinator) IngestCandidate(ctx context.Context, cmd IngestCandidateCommand) error {
	cmd.Target = strings.TrimSpace(cmd.Target)

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.session.Active() || c.session.Mode != entities.ModeAssignmentPoll || c.session.Target != cmd.Target {
		return domainerrors.ErrNoActiveSession
	}
	if c.session.Kind.Method != entities.MethodMultiCandidate {
		return domainerrors.ErrInvalidVoteValue
	}
	if cmd.Key < 0 || cmd.Key > 9 {
		return domainerrors.ErrInvalidVoteValue
	}

	candidateID := ""
	if cmd.Key >= 1 && cmd.Key <= len(c.session.Kind.CandidateIDs) {
		candidateID = c.session.Kind.CandidateIDs[cmd.Key-1]
	}
	return c.storeVoteLocked(ctx, cmd.Target, cmd.KeypadID, strconv.Itoa(cmd.Key), candidateID, cmd.BatteryLevel)
}

// IngestSpeaker applies a speaker-list request against the roster. Unlike
// vote ingestion, an unregistered or unassigned keypad is rejected so the
// operator can see why nobody was queued.
func (c *Coordinator) IngestSpeaker(ctx context.Context, cmd IngestSpeakerCommand) error {
	cmd.ItemID = strings.TrimSpace(cmd.ItemID)
	cmd.Value = strings.TrimSpace(cmd.Value)

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.session.Active() || c.session.Mode != entities.ModeSpeakerList || c.session.Target != cmd.ItemID {
		return domainerrors.ErrNoActiveSession
	}

	keypad, found, err := c.directory.GetKeypad(ctx, cmd.KeypadID)
	if err != nil {
		return err
	}
	if !found {
		return domainerrors.ErrKeypadUnknown
	}
	if keypad.ParticipantID == "" {
		return domainerrors.ErrUserUnknown
	}

	switch cmd.Value {
	case entities.VoteYes:
		err = c.roster.AddSpeaker(ctx, cmd.ItemID, keypad.ParticipantID)
	case entities.VoteNo:
		err = c.roster.RemoveSpeaker(ctx, cmd.ItemID, keypad.ParticipantID)
	default:
		return domainerrors.ErrInvalidVoteValue
	}
	if err != nil {
		return err
	}

	c.markSeenLocked(ctx, cmd.KeypadID, cmd.BatteryLevel)
	c.logger.Info("speaker request applied",
		"event", "speaker_request_applied",
		"module", "assembly-voting/voting-service",
		"layer", "application",
		"item_id", cmd.ItemID,
		"keypad_id", cmd.KeypadID,
		"value", cmd.Value,
	)
	return nil
}

// IngestKeypadPing records a keypad answering the hardware's ping run
// during a test session.
func (c *Coordinator) IngestKeypadPing(ctx context.Context, keypadID int, batteryLevel int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session.Mode != entities.ModeTest {
		return domainerrors.ErrNoActiveSession
	}
	if c.presence == nil {
		return nil
	}
	if err := c.presence.MarkSeen(ctx, keypadID, batteryLevel); err != nil {
		return err
	}
	c.session.VotesReceived++
	c.publishLocked(ctx)
	return nil
}

func (c *Coordinator) storeVoteLocked(ctx context.Context, target string, keypadID int, value, candidateID string, batteryLevel int) error {
	record := entities.VoteRecord{
		Target:      target,
		KeypadID:    keypadID,
		Value:       value,
		CandidateID: candidateID,
		ReceivedAt:  c.now(),
	}
	if keypad, found, err := c.directory.GetKeypad(ctx, keypadID); err != nil {
		return err
	} else if found {
		record.ParticipantID = keypad.ParticipantID
		if keypad.ParticipantID != "" {
			participant, ok, err := c.directory.GetParticipant(ctx, keypad.ParticipantID)
			if err != nil {
				return err
			}
			if ok {
				record.ParticipantName = participant.FullName()
			}
		}
		if keypad.SeatID != "" {
			seat, ok, err := c.directory.GetSeat(ctx, keypad.SeatID)
			if err != nil {
				return err
			}
			if ok {
				record.SeatLabel = seat.Label
			}
		}
	}

	_, replacing, err := c.votes.GetRecordByKeypad(ctx, target, keypadID)
	if err != nil {
		return err
	}
	c.serial++
	record.SerialNumber = c.serial
	if err := c.votes.SaveRecord(ctx, record); err != nil {
		c.serial--
		return err
	}
	if !replacing {
		c.session.VotesReceived++
	}

	c.markSeenLocked(ctx, keypadID, batteryLevel)
	c.logger.Info("vote reconciled",
		"event", "vote_reconciled",
		"module", "assembly-voting/voting-service",
		"layer", "application",
		"target", target,
		"keypad_id", keypadID,
		"serial_number", record.SerialNumber,
		"replaced", replacing,
	)
	c.publishLocked(ctx)
	return nil
}

func (c *Coordinator) markSeenLocked(ctx context.Context, keypadID int, batteryLevel int) {
	if c.presence == nil {
		return
	}
	if err := c.presence.MarkSeen(ctx, keypadID, batteryLevel); err != nil {
		c.logger.Warn("keypad presence update failed",
			"event", "keypad_presence_update_failed",
			"module", "assembly-voting/voting-service",
			"layer", "application",
			"keypad_id", keypadID,
			"error", err.Error(),
		)
	}
}

// Finalize computes the aggregate result for a target from the reconciled
// records, using the poll kind recorded at session start. It is idempotent:
// repeated calls over unchanged records return the same aggregate and the
// journal receives one entry per distinct aggregate.
func (c *Coordinator) Finalize(ctx context.Context, target string) (entities.AggregateResult, error) {
	target = strings.TrimSpace(target)

	c.mu.Lock()
	defer c.mu.Unlock()

	kind, ok := c.kinds[target]
	if !ok {
		return entities.AggregateResult{}, domainerrors.ErrUnknownPollKind
	}
	records, err := c.votes.ListRecordsByTarget(ctx, target)
	if err != nil {
		return entities.AggregateResult{}, err
	}

	result := aggregate(target, kind, records)

	if c.journal != nil {
		digest := resultDigest(result)
		if c.sealed[target] != digest {
			if err := c.journal.AppendResult(ctx, result); err != nil {
				c.logger.Warn("result journal append failed",
					"event", "result_journal_append_failed",
					"module", "assembly-voting/voting-service",
					"layer", "application",
					"target", target,
					"error", err.Error(),
				)
			} else {
				c.sealed[target] = digest
			}
		}
	}

	c.logger.Info("poll finalized",
		"event", "poll_finalized",
		"module", "assembly-voting/voting-service",
		"layer", "application",
		"target", target,
		"cast_votes", result.CastVotes,
		"invalid_votes", result.InvalidVotes,
	)
	return result, nil
}

// Anonymize strips the keypad/participant linkage from a target's records
// while keeping serial numbers and values intact. It is refused while a
// session for the target is running.
func (c *Coordinator) Anonymize(ctx context.Context, target string) error {
	target = strings.TrimSpace(target)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session.Active() && c.session.Target == target {
		return domainerrors.ErrSessionActive
	}
	if err := c.votes.AnonymizeRecordsByTarget(ctx, target); err != nil {
		return err
	}
	c.logger.Info("vote records anonymized",
		"event", "vote_records_anonymized",
		"module", "assembly-voting/voting-service",
		"layer", "application",
		"target", target,
	)
	return nil
}

// DeviceResult fetches the hardware's own tally for a target so the host
// can cross-check it against the reconciled aggregate.
func (c *Coordinator) DeviceResult(ctx context.Context, target string) (entities.AggregateResult, error) {
	target = strings.TrimSpace(target)

	c.mu.Lock()
	kind, ok := c.kinds[target]
	c.mu.Unlock()
	if !ok {
		return entities.AggregateResult{}, domainerrors.ErrUnknownPollKind
	}

	raw, err := c.device.PollResult(ctx, kind.Method, target)
	if err != nil {
		return entities.AggregateResult{}, err
	}
	result := entities.AggregateResult{
		Target: target,
		Method: kind.Method,
	}
	switch kind.Method {
	case entities.MethodYesNoAbstain:
		result.Yes = raw.Yes
		result.No = raw.No
		result.Abstain = raw.Abstain
		result.ValidVotes = raw.Yes + raw.No + raw.Abstain
		result.CastVotes = result.ValidVotes
	case entities.MethodMultiCandidate:
		result.CandidateVotes = raw.CandidateVotes
		for _, count := range raw.CandidateVotes {
			result.ValidVotes += count
		}
		result.CastVotes = result.ValidVotes
	}
	return result, nil
}

func aggregate(target string, kind entities.PollKind, records []entities.VoteRecord) entities.AggregateResult {
	result := entities.AggregateResult{
		Target:    target,
		Method:    kind.Method,
		CastVotes: len(records),
	}
	switch kind.Method {
	case entities.MethodYesNoAbstain:
		for _, record := range records {
			switch record.Value {
			case entities.VoteYes:
				result.Yes++
			case entities.VoteNo:
				result.No++
			case entities.VoteAbstain:
				result.Abstain++
			}
		}
		result.ValidVotes = result.CastVotes
	case entities.MethodMultiCandidate:
		result.CandidateVotes = make(map[string]int, len(kind.CandidateIDs))
		for _, id := range kind.CandidateIDs {
			result.CandidateVotes[id] = 0
		}
		for _, record := range records {
			switch {
			case record.CandidateID != "":
				result.CandidateVotes[record.CandidateID]++
				result.ValidVotes++
			case record.Value == "0":
				result.Abstain++
				result.ValidVotes++
			default:
				result.InvalidVotes++
			}
		}
	}
	return result
}

func resultDigest(result entities.AggregateResult) string {
	payload, _ := json.Marshal(result)
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
