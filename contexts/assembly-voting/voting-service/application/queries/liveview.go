package queries

import (
	"context"
	"strings"

	"quorum/contexts/assembly-voting/voting-service/domain/entities"
	"quorum/contexts/assembly-voting/voting-service/ports"
)

type LiveViewUseCase struct {
	Votes ports.VoteRepository
}

// Records returns the per-keypad vote records for a target in arrival
// serial order. Works during and after a session; records reclaimed by a
// later session start for the same target are gone.
func (uc LiveViewUseCase) Records(ctx context.Context, target string) ([]entities.VoteRecord, error) {
	return uc.Votes.ListRecordsByTarget(ctx, strings.TrimSpace(target))
}
