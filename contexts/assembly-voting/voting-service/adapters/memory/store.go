package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"quorum/contexts/assembly-voting/voting-service/domain/entities"
	"quorum/contexts/assembly-voting/voting-service/ports"
)

type recordKey struct {
	target   string
	keypadID int
}

type presenceRecord struct {
	InRange      bool
	BatteryLevel int
	LastSeenAt   time.Time
}

// Store is the in-memory backing for the voting service. It implements the
// vote repository, directory, presence and roster ports, seeded through the
// Set* helpers for tests and local runs.
type Store struct {
	mu sync.RWMutex

	records  map[recordKey]entities.VoteRecord
	keypads  map[int]ports.KeypadRecord
	seats    map[string]ports.SeatRecord
	people   map[string]ports.ParticipantRecord
	presence map[int]presenceRecord
	speakers map[string]map[string]bool
}

func NewStore(seed []entities.VoteRecord) *Store {
	records := make(map[recordKey]entities.VoteRecord, len(seed))
	for _, record := range seed {
		records[recordKey{target: record.Target, keypadID: record.KeypadID}] = record
	}
	return &Store{
		records:  records,
		keypads:  make(map[int]ports.KeypadRecord),
		seats:    make(map[string]ports.SeatRecord),
		people:   make(map[string]ports.ParticipantRecord),
		presence: make(map[int]presenceRecord),
		speakers: make(map[string]map[string]bool),
	}
}

func (s *Store) SetKeypad(keypad ports.KeypadRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keypads[keypad.KeypadID] = ports.KeypadRecord{
		KeypadID:      keypad.KeypadID,
		ParticipantID: strings.TrimSpace(keypad.ParticipantID),
		SeatID:        strings.TrimSpace(keypad.SeatID),
	}
}

func (s *Store) SetSeat(seat ports.SeatRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seats[strings.TrimSpace(seat.SeatID)] = ports.SeatRecord{
		SeatID: strings.TrimSpace(seat.SeatID),
		Label:  strings.TrimSpace(seat.Label),
	}
}

func (s *Store) SetParticipant(participant ports.ParticipantRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.people[strings.TrimSpace(participant.ParticipantID)] = ports.ParticipantRecord{
		ParticipantID:  strings.TrimSpace(participant.ParticipantID),
		Title:          strings.TrimSpace(participant.Title),
		FirstName:      strings.TrimSpace(participant.FirstName),
		LastName:       strings.TrimSpace(participant.LastName),
		StructureLevel: strings.TrimSpace(participant.StructureLevel),
	}
}

func (s *Store) GetKeypad(_ context.Context, keypadID int) (ports.KeypadRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keypad, ok := s.keypads[keypadID]
	return keypad, ok, nil
}

func (s *Store) GetSeat(_ context.Context, seatID string) (ports.SeatRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seat, ok := s.seats[strings.TrimSpace(seatID)]
	return seat, ok, nil
}

func (s *Store) GetParticipant(_ context.Context, participantID string) (ports.ParticipantRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	participant, ok := s.people[strings.TrimSpace(participantID)]
	return participant, ok, nil
}

func (s *Store) SaveRecord(_ context.Context, record entities.VoteRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record.Target = strings.TrimSpace(record.Target)
	s.records[recordKey{target: record.Target, keypadID: record.KeypadID}] = record
	return nil
}

func (s *Store) GetRecordByKeypad(_ context.Context, target string, keypadID int) (entities.VoteRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[recordKey{target: strings.TrimSpace(target), keypadID: keypadID}]
	return record, ok, nil
}

func (s *Store) ListRecordsByTarget(_ context.Context, target string) ([]entities.VoteRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	target = strings.TrimSpace(target)
	items := make([]entities.VoteRecord, 0)
	for key, record := range s.records {
		if key.target == target {
			items = append(items, record)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].SerialNumber < items[j].SerialNumber
	})
	return items, nil
}

func (s *Store) DeleteRecordsByTarget(_ context.Context, target string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	target = strings.TrimSpace(target)
	for key := range s.records {
		if key.target == target {
			delete(s.records, key)
		}
	}
	return nil
}

func (s *Store) AnonymizeRecordsByTarget(_ context.Context, target string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	target = strings.TrimSpace(target)
	for key, record := range s.records {
		if key.target != target {
			continue
		}
		record.KeypadID = 0
		record.ParticipantID = ""
		record.ParticipantName = ""
		record.SeatLabel = ""
		record.Anonymized = true
		s.records[key] = record
	}
	return nil
}

func (s *Store) ResetPresence(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for keypadID := range s.keypads {
		s.presence[keypadID] = presenceRecord{}
	}
	return nil
}

func (s *Store) MarkSeen(_ context.Context, keypadID int, batteryLevel int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.presence[keypadID] = presenceRecord{
		InRange:      true,
		BatteryLevel: batteryLevel,
		LastSeenAt:   time.Now().UTC(),
	}
	return nil
}

// Presence reports reachability and last reported battery for a keypad.
// Test helper, not part of a port.
func (s *Store) Presence(keypadID int) (bool, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record := s.presence[keypadID]
	return record.InRange, record.BatteryLevel
}

func (s *Store) AddSpeaker(_ context.Context, itemID string, participantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	itemID = strings.TrimSpace(itemID)
	queue, ok := s.speakers[itemID]
	if !ok {
		queue = make(map[string]bool)
		s.speakers[itemID] = queue
	}
	queue[strings.TrimSpace(participantID)] = true
	return nil
}

func (s *Store) RemoveSpeaker(_ context.Context, itemID string, participantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.speakers[strings.TrimSpace(itemID)], strings.TrimSpace(participantID))
	return nil
}

// Speakers returns the queued participant ids for an item in sorted order.
// Test helper, not part of a port.
func (s *Store) Speakers(itemID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	queue := s.speakers[strings.TrimSpace(itemID)]
	items := make([]string, 0, len(queue))
	for participantID := range queue {
		items = append(items, participantID)
	}
	sort.Strings(items)
	return items
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

var (
	_ ports.VoteRepository = (*Store)(nil)
	_ ports.Directory      = (*Store)(nil)
	_ ports.KeypadPresence = (*Store)(nil)
	_ ports.SpeakerRoster  = (*Store)(nil)
	_ ports.Clock          = (*Store)(nil)
)
