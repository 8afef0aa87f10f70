package httpadapter

import (
	"context"
	"errors"
	"log/slog"

	"quorum/contexts/assembly-voting/keypad-import/application"
	domainerrors "quorum/contexts/assembly-voting/keypad-import/domain/errors"
	"quorum/contexts/assembly-voting/keypad-import/ports"
	httptransport "quorum/contexts/assembly-voting/keypad-import/transport/http"
)

type Handler struct {
	Imports application.Service
	Logger  *slog.Logger
}

// ValidateHandler runs the matching pass only and reports per-record error
// sets without touching the directory.
func (h Handler) ValidateHandler(ctx context.Context, req httptransport.ImportRequest) (httptransport.ValidateResponse, error) {
	results, err := h.Imports.Validate(ctx, recordsFromDTO(req.Records))
	if err != nil {
		return httptransport.ValidateResponse{}, err
	}
	return validationToResponse(results), nil
}

// CommitHandler validates and then creates keypads for the clean records.
func (h Handler) CommitHandler(ctx context.Context, req httptransport.ImportRequest) (httptransport.CommitResponse, error) {
	results, err := h.Imports.Validate(ctx, recordsFromDTO(req.Records))
	if err != nil {
		return httptransport.CommitResponse{}, err
	}
	batchID, outcomes, err := h.Imports.Commit(ctx, results)
	if err != nil {
		return httptransport.CommitResponse{}, err
	}
	resp := httptransport.CommitResponse{
		BatchID: batchID,
		Items:   make([]httptransport.CommitItem, 0, len(outcomes)),
	}
	for _, outcome := range outcomes {
		if outcome.Created {
			resp.Created++
		}
		resp.Items = append(resp.Items, httptransport.CommitItem{
			KeypadID: outcome.KeypadID,
			Created:  outcome.Created,
			Message:  outcome.Message,
		})
	}
	return resp, nil
}

func recordsFromDTO(items []httptransport.ImportRecordDTO) []ports.ImportRecord {
	records := make([]ports.ImportRecord, 0, len(items))
	for _, item := range items {
		records = append(records, ports.ImportRecord{
			Title:          item.Title,
			FirstName:      item.FirstName,
			LastName:       item.LastName,
			StructureLevel: item.StructureLevel,
			KeypadID:       item.KeypadID,
			SeatLabel:      item.SeatLabel,
		})
	}
	return records
}

func validationToResponse(results []application.ValidationResult) httptransport.ValidateResponse {
	resp := httptransport.ValidateResponse{
		Items: make([]httptransport.ValidationItem, 0, len(results)),
	}
	for _, result := range results {
		item := httptransport.ValidationItem{
			Record: httptransport.ImportRecordDTO{
				Title:          result.Record.Title,
				FirstName:      result.Record.FirstName,
				LastName:       result.Record.LastName,
				StructureLevel: result.Record.StructureLevel,
				KeypadID:       result.Record.KeypadID,
				SeatLabel:      result.Record.SeatLabel,
			},
		}
		for _, err := range result.Errors {
			item.Errors = append(item.Errors, errorCode(err))
		}
		if result.Valid() {
			resp.Valid++
		}
		resp.Items = append(resp.Items, item)
	}
	return resp
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, domainerrors.ErrNameMissing):
		return "name_missing"
	case errors.Is(err, domainerrors.ErrParticipantNotFound):
		return "participant_not_found"
	case errors.Is(err, domainerrors.ErrSeatNotFound):
		return "seat_not_found"
	case errors.Is(err, domainerrors.ErrSeatAlreadyAssigned):
		return "seat_already_assigned"
	case errors.Is(err, domainerrors.ErrKeypadAlreadyExists):
		return "keypad_already_exists"
	default:
		return "invalid"
	}
}
