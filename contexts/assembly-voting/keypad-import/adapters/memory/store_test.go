package memory

import (
	"context"
	"errors"
	"testing"

	domainerrors "quorum/contexts/assembly-voting/keypad-import/domain/errors"
	"quorum/contexts/assembly-voting/keypad-import/ports"
)

func TestCreateKeypadEnforcesUniqueness(t *testing.T) {
	store := NewStore()
	store.SetKeypad(ports.Keypad{KeypadID: 1, ParticipantID: "p-1", SeatID: "seat-1"})

	err := store.CreateKeypad(context.Background(), ports.Keypad{KeypadID: 1, SeatID: "seat-2"})
	if !errors.Is(err, domainerrors.ErrKeypadAlreadyExists) {
		t.Fatalf("expected keypad-exists, got %v", err)
	}
	err = store.CreateKeypad(context.Background(), ports.Keypad{KeypadID: 2, SeatID: "seat-1"})
	if !errors.Is(err, domainerrors.ErrSeatAlreadyAssigned) {
		t.Fatalf("expected seat-already-assigned, got %v", err)
	}
	if err := store.CreateKeypad(context.Background(), ports.Keypad{KeypadID: 2, ParticipantID: "p-2", SeatID: "seat-2"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	keypad, ok := store.Keypad(2)
	if !ok || keypad.ParticipantID != "p-2" {
		t.Fatalf("expected stored keypad, got %+v ok=%v", keypad, ok)
	}
}

func TestSnapshotReturnsSeededDirectory(t *testing.T) {
	store := NewStore()
	store.SetParticipant(ports.Participant{ParticipantID: "p-1", FirstName: "Ada", LastName: "Nestor"})
	store.SetSeat(ports.Seat{SeatID: "seat-1", Label: "A-1"})
	store.SetKeypad(ports.Keypad{KeypadID: 2})
	store.SetKeypad(ports.Keypad{KeypadID: 1})

	snapshot, err := store.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	if len(snapshot.Participants) != 1 || len(snapshot.Seats) != 1 {
		t.Fatalf("unexpected snapshot sizes: %+v", snapshot)
	}
	if len(snapshot.Keypads) != 2 || snapshot.Keypads[0].KeypadID != 1 {
		t.Fatalf("expected keypads sorted by id, got %+v", snapshot.Keypads)
	}
}
