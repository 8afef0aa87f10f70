package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"quorum/contexts/assembly-voting/voting-service/application/commands"
	"quorum/contexts/assembly-voting/voting-service/application/queries"
	"quorum/contexts/assembly-voting/voting-service/domain/entities"
	httptransport "quorum/contexts/assembly-voting/voting-service/transport/http"
)

type Handler struct {
	Sessions *commands.Coordinator
	LiveView queries.LiveViewUseCase
	Logger   *slog.Logger
}

func (h Handler) StatusHandler(_ context.Context) httptransport.SessionStatusResponse {
	return sessionToResponse(h.Sessions.Status())
}

func (h Handler) StartSessionHandler(
	ctx context.Context,
	req httptransport.StartSessionRequest,
) (httptransport.SessionStatusResponse, error) {
	err := h.Sessions.Start(ctx, commands.StartSessionCommand{
		Mode:        entities.SessionMode(req.Mode),
		Target:      req.Target,
		VotersCount: req.VotersCount,
		Kind: entities.PollKind{
			Method:        entities.PollMethod(req.Method),
			CandidateIDs:  req.CandidateIDs,
			MaxSelectable: req.MaxSelectable,
		},
	})
	if err != nil {
		return httptransport.SessionStatusResponse{}, err
	}
	return sessionToResponse(h.Sessions.Status()), nil
}

func (h Handler) StopSessionHandler(ctx context.Context) error {
	return h.Sessions.Stop(ctx)
}

func (h Handler) DeviceCheckHandler(ctx context.Context) (httptransport.DeviceStatusResponse, error) {
	status, err := h.Sessions.CheckDevice(ctx)
	if err != nil {
		return httptransport.DeviceStatusResponse{}, err
	}
	return httptransport.DeviceStatusResponse{
		Connected: status.Connected,
		Device:    status.DeviceName,
	}, nil
}

func (h Handler) LiveViewHandler(ctx context.Context, target string) (httptransport.LiveViewResponse, error) {
	records, err := h.LiveView.Records(ctx, target)
	if err != nil {
		return httptransport.LiveViewResponse{}, err
	}
	items := make([]httptransport.VoteRecordItem, 0, len(records))
	for _, record := range records {
		items = append(items, httptransport.VoteRecordItem{
			KeypadID:        record.KeypadID,
			SerialNumber:    record.SerialNumber,
			Value:           record.Value,
			CandidateID:     record.CandidateID,
			ParticipantID:   record.ParticipantID,
			ParticipantName: record.ParticipantName,
			SeatLabel:       record.SeatLabel,
			Anonymized:      record.Anonymized,
		})
	}
	return httptransport.LiveViewResponse{Target: target, Items: items}, nil
}

func (h Handler) FinalizeHandler(ctx context.Context, target string) (httptransport.ResultResponse, error) {
	result, err := h.Sessions.Finalize(ctx, target)
	if err != nil {
		return httptransport.ResultResponse{}, err
	}
	return resultToResponse(result), nil
}

func (h Handler) DeviceResultHandler(ctx context.Context, target string) (httptransport.ResultResponse, error) {
	result, err := h.Sessions.DeviceResult(ctx, target)
	if err != nil {
		return httptransport.ResultResponse{}, err
	}
	return resultToResponse(result), nil
}

func (h Handler) AnonymizeHandler(ctx context.Context, target string) error {
	return h.Sessions.Anonymize(ctx, target)
}

func (h Handler) VoteCallbackHandler(
	ctx context.Context,
	target string,
	keypadID int,
	req httptransport.VoteCallbackRequest,
) error {
	return h.Sessions.Ingest(ctx, commands.IngestVoteCommand{
		Target:       target,
		KeypadID:     keypadID,
		Value:        req.Value,
		BatteryLevel: req.BatteryLevel,
	})
}

func (h Handler) CandidateCallbackHandler(
	ctx context.Context,
	target string,
	keypadID int,
	req httptransport.CandidateCallbackRequest,
) error {
	return h.Sessions.IngestCandidate(ctx, commands.IngestCandidateCommand{
		Target:       target,
		KeypadID:     keypadID,
		Key:          req.Key,
		BatteryLevel: req.BatteryLevel,
	})
}

func (h Handler) SpeakerCallbackHandler(
	ctx context.Context,
	itemID string,
	keypadID int,
	req httptransport.SpeakerCallbackRequest,
) error {
	return h.Sessions.IngestSpeaker(ctx, commands.IngestSpeakerCommand{
		ItemID:       itemID,
		KeypadID:     keypadID,
		Value:        req.Value,
		BatteryLevel: req.BatteryLevel,
	})
}

func (h Handler) KeypadCallbackHandler(
	ctx context.Context,
	keypadID int,
	req httptransport.KeypadCallbackRequest,
) error {
	return h.Sessions.IngestKeypadPing(ctx, keypadID, req.BatteryLevel)
}

func sessionToResponse(session entities.VotingSession) httptransport.SessionStatusResponse {
	resp := httptransport.SessionStatusResponse{
		Mode:          string(session.Mode),
		Target:        session.Target,
		VotersCount:   session.VotersCount,
		VotesReceived: session.VotesReceived,
	}
	if !session.StartedAt.IsZero() {
		resp.StartedAt = session.StartedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

func resultToResponse(result entities.AggregateResult) httptransport.ResultResponse {
	return httptransport.ResultResponse{
		Target:         result.Target,
		Method:         string(result.Method),
		Yes:            result.Yes,
		No:             result.No,
		Abstain:        result.Abstain,
		CandidateVotes: result.CandidateVotes,
		ValidVotes:     result.ValidVotes,
		InvalidVotes:   result.InvalidVotes,
		CastVotes:      result.CastVotes,
	}
}
