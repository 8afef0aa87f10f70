package unit

import (
	"context"
	"testing"

	keypadimport "quorum/contexts/assembly-voting/keypad-import"
	"quorum/contexts/assembly-voting/keypad-import/ports"
	httptransport "quorum/contexts/assembly-voting/keypad-import/transport/http"
)

func seededImportModule() keypadimport.Module {
	module := keypadimport.NewInMemoryModule(nil)
	module.Store.SetParticipant(ports.Participant{ParticipantID: "p-1", FirstName: "Ada", LastName: "Nestor"})
	module.Store.SetParticipant(ports.Participant{ParticipantID: "p-2", FirstName: "Juan", LastName: "Ortega"})
	module.Store.SetSeat(ports.Seat{SeatID: "seat-1", Label: "A-1"})
	module.Store.SetSeat(ports.Seat{SeatID: "seat-2", Label: "A-2"})
	module.Store.SetKeypad(ports.Keypad{KeypadID: 100, ParticipantID: "p-9", SeatID: "seat-9"})
	return module
}

func TestImportValidateReportsPerRecordErrors(t *testing.T) {
	module := seededImportModule()

	resp, err := module.Handler.ValidateHandler(context.Background(), httptransport.ImportRequest{
		Records: []httptransport.ImportRecordDTO{
			{FirstName: "Ada", LastName: "Nestor", KeypadID: 1, SeatLabel: "A-1"},
			{FirstName: "Greta", LastName: "Unknown", KeypadID: 100, SeatLabel: "Z-9"},
		},
	})
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if resp.Valid != 1 {
		t.Fatalf("expected one valid record, got %d", resp.Valid)
	}
	if len(resp.Items[0].Errors) != 0 {
		t.Fatalf("expected clean first record, got %v", resp.Items[0].Errors)
	}
	codes := make(map[string]bool)
	for _, code := range resp.Items[1].Errors {
		codes[code] = true
	}
	if !codes["participant_not_found"] || !codes["keypad_already_exists"] || !codes["seat_not_found"] {
		t.Fatalf("unexpected error codes: %v", resp.Items[1].Errors)
	}
}

func TestImportCommitCreatesOnlyCleanRecords(t *testing.T) {
	module := seededImportModule()

	resp, err := module.Handler.CommitHandler(context.Background(), httptransport.ImportRequest{
		Records: []httptransport.ImportRecordDTO{
			{FirstName: "Ada", LastName: "Nestor", KeypadID: 1, SeatLabel: "A-1"},
			{FirstName: "Juan", LastName: "Ortega", KeypadID: 2, SeatLabel: "A-2"},
			{FirstName: "Juan", LastName: "Ortega", KeypadID: 2, SeatLabel: "A-2"},
		},
	})
	if err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	if resp.BatchID == "" {
		t.Fatalf("expected batch id")
	}
	if resp.Created != 2 {
		t.Fatalf("expected two keypads created, got %d", resp.Created)
	}
	if resp.Items[2].Created || resp.Items[2].Message != "skipped: validation failed" {
		t.Fatalf("expected in-batch duplicate skipped, got %+v", resp.Items[2])
	}

	keypad, ok := module.Store.Keypad(1)
	if !ok || keypad.ParticipantID != "p-1" || keypad.SeatID != "seat-1" {
		t.Fatalf("expected keypad 1 bound to p-1/seat-1, got %+v ok=%v", keypad, ok)
	}
}
