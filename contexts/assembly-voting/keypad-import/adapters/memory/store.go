package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	domainerrors "quorum/contexts/assembly-voting/keypad-import/domain/errors"
	"quorum/contexts/assembly-voting/keypad-import/ports"

	"github.com/google/uuid"
)

// Store is a seedable in-memory directory for the import service.
type Store struct {
	mu sync.RWMutex

	participants map[string]ports.Participant
	seats        map[string]ports.Seat
	keypads      map[int]ports.Keypad
}

func NewStore() *Store {
	return &Store{
		participants: make(map[string]ports.Participant),
		seats:        make(map[string]ports.Seat),
		keypads:      make(map[int]ports.Keypad),
	}
}

func (s *Store) SetParticipant(participant ports.Participant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.participants[strings.TrimSpace(participant.ParticipantID)] = participant
}

func (s *Store) SetSeat(seat ports.Seat) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seats[strings.TrimSpace(seat.SeatID)] = seat
}

func (s *Store) SetKeypad(keypad ports.Keypad) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keypads[keypad.KeypadID] = keypad
}

func (s *Store) Snapshot(_ context.Context) (ports.DirectorySnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := ports.DirectorySnapshot{
		Participants: make([]ports.Participant, 0, len(s.participants)),
		Seats:        make([]ports.Seat, 0, len(s.seats)),
		Keypads:      make([]ports.Keypad, 0, len(s.keypads)),
	}
	for _, participant := range s.participants {
		snapshot.Participants = append(snapshot.Participants, participant)
	}
	for _, seat := range s.seats {
		snapshot.Seats = append(snapshot.Seats, seat)
	}
	for _, keypad := range s.keypads {
		snapshot.Keypads = append(snapshot.Keypads, keypad)
	}
	sort.Slice(snapshot.Keypads, func(i, j int) bool {
		return snapshot.Keypads[i].KeypadID < snapshot.Keypads[j].KeypadID
	})
	return snapshot, nil
}

func (s *Store) CreateKeypad(_ context.Context, keypad ports.Keypad) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.keypads[keypad.KeypadID]; exists {
		return domainerrors.ErrKeypadAlreadyExists
	}
	if keypad.SeatID != "" {
		for _, existing := range s.keypads {
			if existing.SeatID == keypad.SeatID {
				return domainerrors.ErrSeatAlreadyAssigned
			}
		}
	}
	s.keypads[keypad.KeypadID] = keypad
	return nil
}

// Keypad returns a registered keypad. Test helper, not part of a port.
func (s *Store) Keypad(keypadID int) (ports.Keypad, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keypad, ok := s.keypads[keypadID]
	return keypad, ok
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

var (
	_ ports.DirectoryReader = (*Store)(nil)
	_ ports.DirectoryWriter = (*Store)(nil)
	_ ports.IDGenerator     = (*Store)(nil)
	_ ports.Clock           = (*Store)(nil)
)
