package memory

import (
	"context"
	"testing"
	"time"

	"quorum/contexts/assembly-voting/voting-service/domain/entities"
	"quorum/contexts/assembly-voting/voting-service/ports"
)

func TestSaveRecordUpsertsByTargetAndKeypad(t *testing.T) {
	store := NewStore(nil)
	now := time.Date(2026, time.March, 12, 10, 0, 0, 0, time.UTC)

	first := entities.VoteRecord{Target: "poll-1", KeypadID: 7, SerialNumber: 1, Value: entities.VoteYes, ReceivedAt: now}
	if err := store.SaveRecord(context.Background(), first); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	second := first
	second.SerialNumber = 2
	second.Value = entities.VoteNo
	if err := store.SaveRecord(context.Background(), second); err != nil {
		t.Fatalf("replacing save failed: %v", err)
	}

	record, found, err := store.GetRecordByKeypad(context.Background(), "poll-1", 7)
	if err != nil || !found {
		t.Fatalf("lookup failed: found=%v err=%v", found, err)
	}
	if record.Value != entities.VoteNo || record.SerialNumber != 2 {
		t.Fatalf("expected replaced record, got %+v", record)
	}

	records, err := store.ListRecordsByTarget(context.Background(), "poll-1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected one record per keypad, got %d", len(records))
	}
}

func TestListRecordsSortedBySerial(t *testing.T) {
	store := NewStore([]entities.VoteRecord{
		{Target: "poll-1", KeypadID: 3, SerialNumber: 3, Value: entities.VoteAbstain},
		{Target: "poll-1", KeypadID: 1, SerialNumber: 1, Value: entities.VoteYes},
		{Target: "poll-2", KeypadID: 1, SerialNumber: 9, Value: entities.VoteNo},
		{Target: "poll-1", KeypadID: 2, SerialNumber: 2, Value: entities.VoteNo},
	})

	records, err := store.ListRecordsByTarget(context.Background(), "poll-1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records for poll-1, got %d", len(records))
	}
	for i, record := range records {
		if record.SerialNumber != i+1 {
			t.Fatalf("expected serial order, got %+v", records)
		}
	}
}

func TestDeleteRecordsByTargetLeavesOtherTargets(t *testing.T) {
	store := NewStore([]entities.VoteRecord{
		{Target: "poll-1", KeypadID: 1, SerialNumber: 1, Value: entities.VoteYes},
		{Target: "poll-2", KeypadID: 1, SerialNumber: 1, Value: entities.VoteNo},
	})

	if err := store.DeleteRecordsByTarget(context.Background(), "poll-1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	gone, _ := store.ListRecordsByTarget(context.Background(), "poll-1")
	if len(gone) != 0 {
		t.Fatalf("expected poll-1 records gone, got %d", len(gone))
	}
	kept, _ := store.ListRecordsByTarget(context.Background(), "poll-2")
	if len(kept) != 1 {
		t.Fatalf("expected poll-2 records kept, got %d", len(kept))
	}
}

func TestAnonymizeStripsLinkageOnly(t *testing.T) {
	store := NewStore([]entities.VoteRecord{
		{
			Target:          "poll-1",
			KeypadID:        7,
			SerialNumber:    4,
			Value:           entities.VoteAbstain,
			ParticipantID:   "p-1",
			ParticipantName: "Ada Nestor",
			SeatLabel:       "A-12",
		},
	})

	if err := store.AnonymizeRecordsByTarget(context.Background(), "poll-1"); err != nil {
		t.Fatalf("anonymize failed: %v", err)
	}
	records, _ := store.ListRecordsByTarget(context.Background(), "poll-1")
	record := records[0]
	if !record.Anonymized || record.KeypadID != 0 || record.ParticipantID != "" || record.SeatLabel != "" {
		t.Fatalf("expected stripped record, got %+v", record)
	}
	if record.SerialNumber != 4 || record.Value != entities.VoteAbstain {
		t.Fatalf("expected serial and value preserved, got %+v", record)
	}
}

func TestPresenceResetAndMarkSeen(t *testing.T) {
	store := NewStore(nil)
	store.SetKeypad(ports.KeypadRecord{KeypadID: 7})

	if err := store.MarkSeen(context.Background(), 7, 5); err != nil {
		t.Fatalf("mark seen failed: %v", err)
	}
	if inRange, battery := store.Presence(7); !inRange || battery != 5 {
		t.Fatalf("expected keypad in range with battery 5, got %v/%d", inRange, battery)
	}

	if err := store.ResetPresence(context.Background()); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if inRange, _ := store.Presence(7); inRange {
		t.Fatalf("expected keypad out of range after reset")
	}
}

func TestSpeakerQueue(t *testing.T) {
	store := NewStore(nil)

	if err := store.AddSpeaker(context.Background(), "item-3", "p-2"); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := store.AddSpeaker(context.Background(), "item-3", "p-1"); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := store.AddSpeaker(context.Background(), "item-3", "p-1"); err != nil {
		t.Fatalf("repeated add failed: %v", err)
	}

	queued := store.Speakers("item-3")
	if len(queued) != 2 || queued[0] != "p-1" || queued[1] != "p-2" {
		t.Fatalf("expected deduplicated sorted queue, got %v", queued)
	}

	if err := store.RemoveSpeaker(context.Background(), "item-3", "p-1"); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if queued := store.Speakers("item-3"); len(queued) != 1 || queued[0] != "p-2" {
		t.Fatalf("expected p-2 left, got %v", queued)
	}
}

func TestDirectoryLookups(t *testing.T) {
	store := NewStore(nil)
	store.SetKeypad(ports.KeypadRecord{KeypadID: 7, ParticipantID: " p-1 ", SeatID: "seat-1"})
	store.SetSeat(ports.SeatRecord{SeatID: "seat-1", Label: " A-12 "})
	store.SetParticipant(ports.ParticipantRecord{ParticipantID: "p-1", FirstName: "Ada", LastName: "Nestor"})

	keypad, found, err := store.GetKeypad(context.Background(), 7)
	if err != nil || !found {
		t.Fatalf("keypad lookup failed: found=%v err=%v", found, err)
	}
	if keypad.ParticipantID != "p-1" {
		t.Fatalf("expected trimmed participant id, got %q", keypad.ParticipantID)
	}
	seat, found, err := store.GetSeat(context.Background(), "seat-1")
	if err != nil || !found || seat.Label != "A-12" {
		t.Fatalf("seat lookup failed: %+v found=%v err=%v", seat, found, err)
	}
	if _, found, _ := store.GetParticipant(context.Background(), "p-404"); found {
		t.Fatalf("expected missing participant reported via bool")
	}
}
