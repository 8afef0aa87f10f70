package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"quorum/contexts/assembly-voting/voting-service/domain/entities"
	"quorum/contexts/assembly-voting/voting-service/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository backs the vote record store, the directory read path and the
// keypad presence write path with one postgres schema. The directory
// tables (keypads, seats, participants) are owned by the host's roster
// management; this repository only reads them, except for the presence
// columns on keypads which the hardware ping run updates.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) SaveRecord(ctx context.Context, record entities.VoteRecord) error {
	row := voteRecordModelFromEntity(record)
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "target"}, {Name: "keypad_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"serial_number":    row.SerialNumber,
			"value":            row.Value,
			"candidate_id":     row.CandidateID,
			"participant_id":   row.ParticipantID,
			"participant_name": row.ParticipantName,
			"seat_label":       row.SeatLabel,
			"anonymized":       row.Anonymized,
			"received_at":      row.ReceivedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("voting_repo_save_record_failed", create.Error,
			"target", row.Target,
			"keypad_id", row.KeypadID,
		)
	}
	return nil
}

func (r *Repository) GetRecordByKeypad(ctx context.Context, target string, keypadID int) (entities.VoteRecord, bool, error) {
	var row voteRecordModel
	err := r.db.WithContext(ctx).
		Where("target = ?", strings.TrimSpace(target)).
		Where("keypad_id = ?", keypadID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.VoteRecord{}, false, nil
		}
		return entities.VoteRecord{}, false, r.logError("voting_repo_get_record_failed", err,
			"target", strings.TrimSpace(target),
			"keypad_id", keypadID,
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) ListRecordsByTarget(ctx context.Context, target string) ([]entities.VoteRecord, error) {
	var rows []voteRecordModel
	if err := r.db.WithContext(ctx).
		Where("target = ?", strings.TrimSpace(target)).
		Order("serial_number ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("voting_repo_list_records_failed", err,
			"target", strings.TrimSpace(target),
		)
	}
	items := make([]entities.VoteRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) DeleteRecordsByTarget(ctx context.Context, target string) error {
	if err := r.db.WithContext(ctx).
		Where("target = ?", strings.TrimSpace(target)).
		Delete(&voteRecordModel{}).Error; err != nil {
		return r.logError("voting_repo_delete_records_failed", err,
			"target", strings.TrimSpace(target),
		)
	}
	return nil
}

func (r *Repository) AnonymizeRecordsByTarget(ctx context.Context, target string) error {
	if err := r.db.WithContext(ctx).
		Model(&voteRecordModel{}).
		Where("target = ?", strings.TrimSpace(target)).
		Updates(map[string]any{
			"participant_id":   nil,
			"participant_name": "",
			"seat_label":       "",
			"anonymized":       true,
		}).Error; err != nil {
		return r.logError("voting_repo_anonymize_records_failed", err,
			"target", strings.TrimSpace(target),
		)
	}
	return nil
}

func (r *Repository) GetKeypad(ctx context.Context, keypadID int) (ports.KeypadRecord, bool, error) {
	var row keypadModel
	err := r.db.WithContext(ctx).
		Where("keypad_id = ?", keypadID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.KeypadRecord{}, false, nil
		}
		return ports.KeypadRecord{}, false, r.logError("voting_repo_get_keypad_failed", err,
			"keypad_id", keypadID,
		)
	}
	return row.toRecord(), true, nil
}

func (r *Repository) GetSeat(ctx context.Context, seatID string) (ports.SeatRecord, bool, error) {
	var row seatModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(seatID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.SeatRecord{}, false, nil
		}
		return ports.SeatRecord{}, false, r.logError("voting_repo_get_seat_failed", err,
			"seat_id", strings.TrimSpace(seatID),
		)
	}
	return ports.SeatRecord{SeatID: row.ID, Label: row.Label}, true, nil
}

func (r *Repository) GetParticipant(ctx context.Context, participantID string) (ports.ParticipantRecord, bool, error) {
	var row participantModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(participantID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.ParticipantRecord{}, false, nil
		}
		return ports.ParticipantRecord{}, false, r.logError("voting_repo_get_participant_failed", err,
			"participant_id", strings.TrimSpace(participantID),
		)
	}
	return ports.ParticipantRecord{
		ParticipantID:  row.ID,
		Title:          row.Title,
		FirstName:      row.FirstName,
		LastName:       row.LastName,
		StructureLevel: row.StructureLevel,
	}, true, nil
}

func (r *Repository) ResetPresence(ctx context.Context) error {
	if err := r.db.WithContext(ctx).
		Model(&keypadModel{}).
		Where("1 = 1").
		Updates(map[string]any{
			"in_range":      false,
			"battery_level": -1,
		}).Error; err != nil {
		return r.logError("voting_repo_reset_presence_failed", err)
	}
	return nil
}

func (r *Repository) MarkSeen(ctx context.Context, keypadID int, batteryLevel int) error {
	if err := r.db.WithContext(ctx).
		Model(&keypadModel{}).
		Where("keypad_id = ?", keypadID).
		Updates(map[string]any{
			"in_range":      true,
			"battery_level": batteryLevel,
			"last_seen_at":  time.Now().UTC(),
		}).Error; err != nil {
		return r.logError("voting_repo_mark_seen_failed", err,
			"keypad_id", keypadID,
		)
	}
	return nil
}

func (r *Repository) AddSpeaker(ctx context.Context, itemID string, participantID string) error {
	row := speakerModel{
		ItemID:        strings.TrimSpace(itemID),
		ParticipantID: strings.TrimSpace(participantID),
		QueuedAt:      time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		// Re-pressing Y while already queued is a no-op.
		if isUniqueViolation(err) {
			return nil
		}
		return r.logError("voting_repo_add_speaker_failed", err,
			"item_id", row.ItemID,
			"participant_id", row.ParticipantID,
		)
	}
	return nil
}

func (r *Repository) RemoveSpeaker(ctx context.Context, itemID string, participantID string) error {
	if err := r.db.WithContext(ctx).
		Where("item_id = ?", strings.TrimSpace(itemID)).
		Where("participant_id = ?", strings.TrimSpace(participantID)).
		Delete(&speakerModel{}).Error; err != nil {
		return r.logError("voting_repo_remove_speaker_failed", err,
			"item_id", strings.TrimSpace(itemID),
			"participant_id", strings.TrimSpace(participantID),
		)
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "assembly-voting/voting-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("voting repository operation failed", fields...)
	return err
}

type voteRecordModel struct {
	Target          string    `gorm:"column:target;primaryKey"`
	KeypadID        int       `gorm:"column:keypad_id;primaryKey"`
	SerialNumber    int       `gorm:"column:serial_number"`
	Value           string    `gorm:"column:value"`
	CandidateID     string    `gorm:"column:candidate_id"`
	ParticipantID   *string   `gorm:"column:participant_id"`
	ParticipantName string    `gorm:"column:participant_name"`
	SeatLabel       string    `gorm:"column:seat_label"`
	Anonymized      bool      `gorm:"column:anonymized"`
	ReceivedAt      time.Time `gorm:"column:received_at"`
}

func (voteRecordModel) TableName() string { return "vote_records" }

func voteRecordModelFromEntity(record entities.VoteRecord) voteRecordModel {
	row := voteRecordModel{
		Target:          strings.TrimSpace(record.Target),
		KeypadID:        record.KeypadID,
		SerialNumber:    record.SerialNumber,
		Value:           record.Value,
		CandidateID:     record.CandidateID,
		ParticipantName: record.ParticipantName,
		SeatLabel:       record.SeatLabel,
		Anonymized:      record.Anonymized,
		ReceivedAt:      record.ReceivedAt.UTC(),
	}
	if participantID := strings.TrimSpace(record.ParticipantID); participantID != "" {
		row.ParticipantID = &participantID
	}
	return row
}

func (m voteRecordModel) toEntity() entities.VoteRecord {
	record := entities.VoteRecord{
		Target:          m.Target,
		KeypadID:        m.KeypadID,
		SerialNumber:    m.SerialNumber,
		Value:           m.Value,
		CandidateID:     m.CandidateID,
		ParticipantName: m.ParticipantName,
		SeatLabel:       m.SeatLabel,
		Anonymized:      m.Anonymized,
		ReceivedAt:      m.ReceivedAt,
	}
	if m.ParticipantID != nil {
		record.ParticipantID = *m.ParticipantID
	}
	if m.Anonymized {
		// The row keeps its key for uniqueness; the linkage is gone from
		// everything callers see.
		record.KeypadID = 0
		record.ParticipantID = ""
	}
	return record
}

type keypadModel struct {
	KeypadID      int        `gorm:"column:keypad_id;primaryKey"`
	ParticipantID *string    `gorm:"column:participant_id"`
	SeatID        *string    `gorm:"column:seat_id"`
	InRange       bool       `gorm:"column:in_range"`
	BatteryLevel  int        `gorm:"column:battery_level"`
	LastSeenAt    *time.Time `gorm:"column:last_seen_at"`
}

func (keypadModel) TableName() string { return "keypads" }

func (m keypadModel) toRecord() ports.KeypadRecord {
	record := ports.KeypadRecord{KeypadID: m.KeypadID}
	if m.ParticipantID != nil {
		record.ParticipantID = *m.ParticipantID
	}
	if m.SeatID != nil {
		record.SeatID = *m.SeatID
	}
	return record
}

type seatModel struct {
	ID    string `gorm:"column:id;primaryKey"`
	Label string `gorm:"column:label"`
}

func (seatModel) TableName() string { return "seats" }

type participantModel struct {
	ID             string `gorm:"column:id;primaryKey"`
	Title          string `gorm:"column:title"`
	FirstName      string `gorm:"column:first_name"`
	LastName       string `gorm:"column:last_name"`
	StructureLevel string `gorm:"column:structure_level"`
}

func (participantModel) TableName() string { return "participants" }

type speakerModel struct {
	ItemID        string    `gorm:"column:item_id;primaryKey"`
	ParticipantID string    `gorm:"column:participant_id;primaryKey"`
	QueuedAt      time.Time `gorm:"column:queued_at"`
}

func (speakerModel) TableName() string { return "speakers" }

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

var _ ports.VoteRepository = (*Repository)(nil)
var _ ports.Directory = (*Repository)(nil)
var _ ports.KeypadPresence = (*Repository)(nil)
var _ ports.SpeakerRoster = (*Repository)(nil)
var _ ports.Clock = SystemClock{}
