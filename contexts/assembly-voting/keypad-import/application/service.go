package application

import (
	"context"
	"log/slog"
	"strings"
	"time"

	domainerrors "quorum/contexts/assembly-voting/keypad-import/domain/errors"
	"quorum/contexts/assembly-voting/keypad-import/ports"
)

// ValidationResult is one input record with its error set and, when the
// record is clean, the directory references resolved during matching.
type ValidationResult struct {
	Record        ports.ImportRecord
	ParticipantID string
	SeatID        string
	Errors        []error
}

func (r ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// CommitOutcome is the per-record result of a best-effort commit.
type CommitOutcome struct {
	KeypadID int
	Created  bool
	Message  string
}

type Service struct {
	Reader ports.DirectoryReader
	Writer ports.DirectoryWriter
	IDGen  ports.IDGenerator
	Clock  ports.Clock
	Logger *slog.Logger
}

// Validate matches every record against a single directory snapshot. Each
// record collects all errors that apply; a record with any error is excluded
// from the commit set. Duplicate keypad ids and seat labels inside the batch
// itself fail the later occurrence.
func (s Service) Validate(ctx context.Context, records []ports.ImportRecord) ([]ValidationResult, error) {
	if len(records) == 0 {
		return nil, domainerrors.ErrInvalidRequest
	}
	snapshot, err := s.Reader.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	participantsByName := make(map[string]ports.Participant, len(snapshot.Participants))
	for _, participant := range snapshot.Participants {
		participantsByName[normalizeName(participant.FullName())] = participant
	}
	seatsByLabel := make(map[string]ports.Seat, len(snapshot.Seats))
	for _, seat := range snapshot.Seats {
		seatsByLabel[normalizeName(seat.Label)] = seat
	}
	registeredKeypads := make(map[int]bool, len(snapshot.Keypads))
	assignedSeats := make(map[string]bool, len(snapshot.Keypads))
	for _, keypad := range snapshot.Keypads {
		registeredKeypads[keypad.KeypadID] = true
		if keypad.SeatID != "" {
			assignedSeats[keypad.SeatID] = true
		}
	}

	batchKeypads := make(map[int]bool, len(records))
	batchSeats := make(map[string]bool, len(records))

	results := make([]ValidationResult, 0, len(records))
	for _, record := range records {
		record.Title = strings.TrimSpace(record.Title)
		record.FirstName = strings.TrimSpace(record.FirstName)
		record.LastName = strings.TrimSpace(record.LastName)
		record.StructureLevel = strings.TrimSpace(record.StructureLevel)
		record.SeatLabel = strings.TrimSpace(record.SeatLabel)

		result := ValidationResult{Record: record}

		if record.FirstName == "" || record.LastName == "" {
			result.Errors = append(result.Errors, domainerrors.ErrNameMissing)
		} else {
			fullName := normalizeName(record.FirstName + " " + record.LastName)
			participant, ok := participantsByName[fullName]
			if !ok {
				result.Errors = append(result.Errors, domainerrors.ErrParticipantNotFound)
			} else {
				result.ParticipantID = participant.ParticipantID
			}
		}

		if registeredKeypads[record.KeypadID] || batchKeypads[record.KeypadID] {
			result.Errors = append(result.Errors, domainerrors.ErrKeypadAlreadyExists)
		}

		seat, seatFound := seatsByLabel[normalizeName(record.SeatLabel)]
		if record.SeatLabel == "" || !seatFound {
			result.Errors = append(result.Errors, domainerrors.ErrSeatNotFound)
		} else {
			if assignedSeats[seat.SeatID] || batchSeats[seat.SeatID] {
				result.Errors = append(result.Errors, domainerrors.ErrSeatAlreadyAssigned)
			} else {
				result.SeatID = seat.SeatID
			}
		}

		if result.Valid() {
			batchKeypads[record.KeypadID] = true
			batchSeats[result.SeatID] = true
		}
		results = append(results, result)
	}
	return results, nil
}

// Commit creates a keypad for every valid record. Each creation is
// independent: a rejected record reports the directory's message and the
// rest of the batch proceeds.
func (s Service) Commit(ctx context.Context, results []ValidationResult) (string, []CommitOutcome, error) {
	logger := s.logger()
	batchID := ""
	if s.IDGen != nil {
		if id, err := s.IDGen.NewID(ctx); err == nil {
			batchID = id
		}
	}

	outcomes := make([]CommitOutcome, 0, len(results))
	created := 0
	for _, result := range results {
		outcome := CommitOutcome{KeypadID: result.Record.KeypadID}
		if !result.Valid() {
			outcome.Message = "skipped: validation failed"
			outcomes = append(outcomes, outcome)
			continue
		}
		err := s.Writer.CreateKeypad(ctx, ports.Keypad{
			KeypadID:      result.Record.KeypadID,
			ParticipantID: result.ParticipantID,
			SeatID:        result.SeatID,
		})
		if err != nil {
			outcome.Message = err.Error()
			logger.Warn("keypad creation rejected",
				"event", "keypad_import_create_rejected",
				"module", "assembly-voting/keypad-import",
				"layer", "application",
				"batch_id", batchID,
				"keypad_id", result.Record.KeypadID,
				"error", err.Error(),
			)
			outcomes = append(outcomes, outcome)
			continue
		}
		outcome.Created = true
		created++
		outcomes = append(outcomes, outcome)
	}

	logger.Info("keypad import batch committed",
		"event", "keypad_import_committed",
		"module", "assembly-voting/keypad-import",
		"layer", "application",
		"batch_id", batchID,
		"records", len(results),
		"created", created,
	)
	return batchID, outcomes, nil
}

func (s Service) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

func normalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
