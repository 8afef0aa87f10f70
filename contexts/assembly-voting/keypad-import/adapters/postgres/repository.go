package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	domainerrors "quorum/contexts/assembly-voting/keypad-import/domain/errors"
	"quorum/contexts/assembly-voting/keypad-import/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Repository reads the directory tables for validation snapshots and
// creates keypads on commit. The tables are shared with the voting
// service's directory read path.
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

func (r *Repository) Snapshot(ctx context.Context) (ports.DirectorySnapshot, error) {
	var participants []participantModel
	if err := r.db.WithContext(ctx).Find(&participants).Error; err != nil {
		return ports.DirectorySnapshot{}, r.logError("import_repo_list_participants_failed", err)
	}
	var seats []seatModel
	if err := r.db.WithContext(ctx).Find(&seats).Error; err != nil {
		return ports.DirectorySnapshot{}, r.logError("import_repo_list_seats_failed", err)
	}
	var keypads []keypadModel
	if err := r.db.WithContext(ctx).Find(&keypads).Error; err != nil {
		return ports.DirectorySnapshot{}, r.logError("import_repo_list_keypads_failed", err)
	}

	snapshot := ports.DirectorySnapshot{
		Participants: make([]ports.Participant, 0, len(participants)),
		Seats:        make([]ports.Seat, 0, len(seats)),
		Keypads:      make([]ports.Keypad, 0, len(keypads)),
	}
	for _, row := range participants {
		snapshot.Participants = append(snapshot.Participants, ports.Participant{
			ParticipantID:  row.ID,
			Title:          row.Title,
			FirstName:      row.FirstName,
			LastName:       row.LastName,
			StructureLevel: row.StructureLevel,
		})
	}
	for _, row := range seats {
		snapshot.Seats = append(snapshot.Seats, ports.Seat{SeatID: row.ID, Label: row.Label})
	}
	for _, row := range keypads {
		snapshot.Keypads = append(snapshot.Keypads, row.toPort())
	}
	return snapshot, nil
}

func (r *Repository) CreateKeypad(ctx context.Context, keypad ports.Keypad) error {
	row := keypadModel{KeypadID: keypad.KeypadID}
	if participantID := strings.TrimSpace(keypad.ParticipantID); participantID != "" {
		row.ParticipantID = &participantID
	}
	if seatID := strings.TrimSpace(keypad.SeatID); seatID != "" {
		row.SeatID = &seatID
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if strings.Contains(pgErr.ConstraintName, "seat") {
				return domainerrors.ErrSeatAlreadyAssigned
			}
			return domainerrors.ErrKeypadAlreadyExists
		}
		return r.logError("import_repo_create_keypad_failed", err,
			"keypad_id", keypad.KeypadID,
		)
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "assembly-voting/keypad-import",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("keypad import repository operation failed", fields...)
	return err
}

type keypadModel struct {
	KeypadID      int     `gorm:"column:keypad_id;primaryKey"`
	ParticipantID *string `gorm:"column:participant_id"`
	SeatID        *string `gorm:"column:seat_id"`
}

func (keypadModel) TableName() string { return "keypads" }

func (m keypadModel) toPort() ports.Keypad {
	keypad := ports.Keypad{KeypadID: m.KeypadID}
	if m.ParticipantID != nil {
		keypad.ParticipantID = *m.ParticipantID
	}
	if m.SeatID != nil {
		keypad.SeatID = *m.SeatID
	}
	return keypad
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

type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

var (
	_ ports.DirectoryReader = (*Repository)(nil)
	_ ports.DirectoryWriter = (*Repository)(nil)
	_ ports.IDGenerator     = UUIDGenerator{}
	_ ports.Clock           = SystemClock{}
)
