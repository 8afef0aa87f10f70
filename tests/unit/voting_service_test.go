package unit

import (
	"context"
	"errors"
	"testing"

	votingservice "quorum/contexts/assembly-voting/voting-service"
	"quorum/contexts/assembly-voting/voting-service/domain/entities"
	domainerrors "quorum/contexts/assembly-voting/voting-service/domain/errors"
	"quorum/contexts/assembly-voting/voting-service/ports"
	httptransport "quorum/contexts/assembly-voting/voting-service/transport/http"
)

type scriptedDevice struct {
	startErr error
	stopErr  error
	raw      ports.DeviceRawResult
}

func (d *scriptedDevice) CheckDevice(_ context.Context) (entities.DeviceStatus, error) {
	return entities.DeviceStatus{Connected: true, DeviceName: "keypad-controller"}, nil
}

func (d *scriptedDevice) StartSession(_ context.Context, _ entities.SessionMode, _ ports.DeviceStartParams) error {
	return d.startErr
}

func (d *scriptedDevice) StopSession(_ context.Context) error {
	return d.stopErr
}

func (d *scriptedDevice) PollResult(_ context.Context, _ entities.PollMethod, _ string) (ports.DeviceRawResult, error) {
	return d.raw, nil
}

func TestMotionPollEndToEnd(t *testing.T) {
	module := votingservice.NewInMemoryModule(&scriptedDevice{}, nil)
	module.Store.SetKeypad(ports.KeypadRecord{KeypadID: 1, ParticipantID: "p-1", SeatID: "seat-1"})
	module.Store.SetParticipant(ports.ParticipantRecord{ParticipantID: "p-1", FirstName: "Ada", LastName: "Nestor"})
	module.Store.SetSeat(ports.SeatRecord{SeatID: "seat-1", Label: "A-1"})

	status, err := module.Handler.StartSessionHandler(context.Background(), httptransport.StartSessionRequest{
		Mode:        "motion_poll",
		Target:      "poll-1",
		VotersCount: 3,
	})
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if status.Mode != "motion_poll" || status.VotersCount != 3 {
		t.Fatalf("unexpected session status: %+v", status)
	}

	callbacks := []struct {
		keypadID int
		value    string
	}{
		{1, "Y"},
		{2, "N"},
		{3, "A"},
		{2, "Y"},
	}
	for _, callback := range callbacks {
		err := module.Handler.VoteCallbackHandler(context.Background(), "poll-1", callback.keypadID, httptransport.VoteCallbackRequest{
			Value:        callback.value,
			BatteryLevel: 5,
		})
		if err != nil {
			t.Fatalf("vote callback keypad=%d failed: %v", callback.keypadID, err)
		}
	}

	live, err := module.Handler.LiveViewHandler(context.Background(), "poll-1")
	if err != nil {
		t.Fatalf("live view failed: %v", err)
	}
	if len(live.Items) != 3 {
		t.Fatalf("expected 3 live records, got %d", len(live.Items))
	}
	if live.Items[0].ParticipantName != "Ada Nestor" || live.Items[0].SeatLabel != "A-1" {
		t.Fatalf("expected directory join on first record, got %+v", live.Items[0])
	}

	if err := module.Handler.StopSessionHandler(context.Background()); err != nil {
		t.Fatalf("stop failed: %v", err)
	}

	result, err := module.Handler.FinalizeHandler(context.Background(), "poll-1")
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if result.Yes != 2 || result.No != 0 || result.Abstain != 1 {
		t.Fatalf("expected last-vote-wins tally Y=2 N=0 A=1, got %+v", result)
	}
	if result.CastVotes != 3 || result.InvalidVotes != 0 {
		t.Fatalf("unexpected conservation counters: %+v", result)
	}
}

func TestElectionWithAnonymizeEndToEnd(t *testing.T) {
	module := votingservice.NewInMemoryModule(&scriptedDevice{}, nil)
	module.Store.SetKeypad(ports.KeypadRecord{KeypadID: 1, ParticipantID: "p-1"})
	module.Store.SetParticipant(ports.ParticipantRecord{ParticipantID: "p-1", FirstName: "Ada", LastName: "Nestor"})

	_, err := module.Handler.StartSessionHandler(context.Background(), httptransport.StartSessionRequest{
		Mode:         "assignment_poll",
		Target:       "election-1",
		Method:       "multi_candidate",
		CandidateIDs: []string{"cand-1", "cand-2"},
	})
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}

	keys := map[int]int{1: 1, 2: 2, 3: 0, 4: 9}
	for keypadID, key := range keys {
		err := module.Handler.CandidateCallbackHandler(context.Background(), "election-1", keypadID, httptransport.CandidateCallbackRequest{Key: key})
		if err != nil {
			t.Fatalf("candidate callback keypad=%d failed: %v", keypadID, err)
		}
	}

	if err := module.Handler.AnonymizeHandler(context.Background(), "election-1"); !errors.Is(err, domainerrors.ErrSessionActive) {
		t.Fatalf("expected anonymize refused while active, got %v", err)
	}
	if err := module.Handler.StopSessionHandler(context.Background()); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if err := module.Handler.AnonymizeHandler(context.Background(), "election-1"); err != nil {
		t.Fatalf("anonymize failed: %v", err)
	}

	live, err := module.Handler.LiveViewHandler(context.Background(), "election-1")
	if err != nil {
		t.Fatalf("live view failed: %v", err)
	}
	for _, item := range live.Items {
		if !item.Anonymized || item.ParticipantName != "" {
			t.Fatalf("expected anonymized record, got %+v", item)
		}
	}

	result, err := module.Handler.FinalizeHandler(context.Background(), "election-1")
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if result.CandidateVotes["cand-1"] != 1 || result.CandidateVotes["cand-2"] != 1 {
		t.Fatalf("unexpected candidate tally: %+v", result.CandidateVotes)
	}
	if result.Abstain != 1 || result.InvalidVotes != 1 || result.CastVotes != 4 {
		t.Fatalf("expected abstain=1 invalid=1 cast=4, got %+v", result)
	}
}

func TestSpeakerListSessionEndToEnd(t *testing.T) {
	module := votingservice.NewInMemoryModule(&scriptedDevice{}, nil)
	module.Store.SetKeypad(ports.KeypadRecord{KeypadID: 1, ParticipantID: "p-1"})
	module.Store.SetKeypad(ports.KeypadRecord{KeypadID: 2})

	_, err := module.Handler.StartSessionHandler(context.Background(), httptransport.StartSessionRequest{
		Mode:   "speaker_list",
		Target: "item-3",
	})
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}

	if err := module.Handler.SpeakerCallbackHandler(context.Background(), "item-3", 1, httptransport.SpeakerCallbackRequest{Value: "Y"}); err != nil {
		t.Fatalf("speaker add failed: %v", err)
	}
	if speakers := module.Store.Speakers("item-3"); len(speakers) != 1 || speakers[0] != "p-1" {
		t.Fatalf("expected p-1 queued, got %v", speakers)
	}

	err = module.Handler.SpeakerCallbackHandler(context.Background(), "item-3", 2, httptransport.SpeakerCallbackRequest{Value: "Y"})
	if !errors.Is(err, domainerrors.ErrUserUnknown) {
		t.Fatalf("expected unbound keypad rejection, got %v", err)
	}

	if err := module.Handler.SpeakerCallbackHandler(context.Background(), "item-3", 1, httptransport.SpeakerCallbackRequest{Value: "N"}); err != nil {
		t.Fatalf("speaker remove failed: %v", err)
	}
	if speakers := module.Store.Speakers("item-3"); len(speakers) != 0 {
		t.Fatalf("expected empty queue, got %v", speakers)
	}
}

func TestTestSessionPingAndOverride(t *testing.T) {
	module := votingservice.NewInMemoryModule(&scriptedDevice{}, nil)
	module.Store.SetKeypad(ports.KeypadRecord{KeypadID: 1})

	_, err := module.Handler.StartSessionHandler(context.Background(), httptransport.StartSessionRequest{
		Mode:   "motion_poll",
		Target: "poll-1",
	})
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	_, err = module.Handler.StartSessionHandler(context.Background(), httptransport.StartSessionRequest{Mode: "test"})
	if err != nil {
		t.Fatalf("test override failed: %v", err)
	}

	if err := module.Handler.KeypadCallbackHandler(context.Background(), 1, httptransport.KeypadCallbackRequest{BatteryLevel: 4}); err != nil {
		t.Fatalf("keypad ping failed: %v", err)
	}
	if inRange, battery := module.Store.Presence(1); !inRange || battery != 4 {
		t.Fatalf("expected keypad in range with battery 4, got %v/%d", inRange, battery)
	}

	status := module.Handler.StatusHandler(context.Background())
	if status.Mode != "test" || status.VotesReceived != 1 {
		t.Fatalf("unexpected status: %+v", status)
	}
}

func TestStartRejectionSurfacesBlockingSession(t *testing.T) {
	module := votingservice.NewInMemoryModule(&scriptedDevice{}, nil)

	_, err := module.Handler.StartSessionHandler(context.Background(), httptransport.StartSessionRequest{
		Mode:   "speaker_list",
		Target: "item-3",
	})
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	_, err = module.Handler.StartSessionHandler(context.Background(), httptransport.StartSessionRequest{
		Mode:   "motion_poll",
		Target: "poll-1",
	})
	var active *domainerrors.AlreadyActiveError
	if !errors.As(err, &active) {
		t.Fatalf("expected already-active error, got %v", err)
	}
	if active.Mode != entities.ModeSpeakerList || active.Target != "item-3" {
		t.Fatalf("expected blocking speaker_list/item-3, got %s/%s", active.Mode, active.Target)
	}
}

func TestDeviceResultCrossCheck(t *testing.T) {
	device := &scriptedDevice{raw: ports.DeviceRawResult{Yes: 2, No: 1, Abstain: 0}}
	module := votingservice.NewInMemoryModule(device, nil)

	_, err := module.Handler.StartSessionHandler(context.Background(), httptransport.StartSessionRequest{
		Mode:   "motion_poll",
		Target: "poll-1",
	})
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}

	result, err := module.Handler.DeviceResultHandler(context.Background(), "poll-1")
	if err != nil {
		t.Fatalf("device result failed: %v", err)
	}
	if result.Yes != 2 || result.No != 1 || result.CastVotes != 3 {
		t.Fatalf("unexpected device tally: %+v", result)
	}
}
