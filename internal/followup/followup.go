// Package followup implements the follow-up orchestrator (C8): single-slot
// pending-question bookkeeping around a turn. Reading happens before
// classification; writing happens after the snapshot is built.
package followup

import (
	"github.com/google/uuid"

	"complexity-engine/internal/errs"
	"complexity-engine/internal/storage"
	"complexity-engine/internal/types"
)

// ReadPending loads the pending row, if any, ahead of classification. A
// present pending row forces the turn's effective intent to FOLLOW_UP.
func ReadPending(store storage.PendingFollowUpRepository) (*types.PendingFollowUp, error) {
	pending, err := store.GetPending()
	if err != nil {
		return nil, errs.Wrap(errs.KindStorageError, errs.CodeStorageReadFailed, err)
	}
	return pending, nil
}

// EffectiveIntent forces FOLLOW_UP when a pending question is outstanding,
// otherwise returns the caller-declared intent unchanged.
func EffectiveIntent(declared types.EventIntent, pending *types.PendingFollowUp) types.EventIntent {
	if pending != nil {
		return types.IntentFollowUp
	}
	return declared
}

// Resolve runs the post-snapshot half of the protocol: clear the pending
// row unconditionally, then write a new one when the turn produced a
// follow-up question that isn't superseded by a safety escalation or a
// log-only turn.
func Resolve(store storage.PendingFollowUpRepository, event *types.Event, snap *types.StateSnapshot, missing []*types.MissingInfo) error {
	if err := store.ClearPending(); err != nil {
		return errs.Wrap(errs.KindStorageError, errs.CodeStorageWriteFailed, err)
	}

	if snap.NextActionKind != types.ActionAskFollowup || snap.RiskBand == types.RiskUrgent || event.Intent == types.IntentLogOnly {
		return nil
	}

	var key *string
	if m := selectedMissingInfo(snap, missing); m != nil {
		key = &m.Key
	}

	pending := &types.PendingFollowUp{
		ID:             "pfu_" + uuid.NewString(),
		ParentEventID:  event.ID,
		QuestionText:   derefOr(snap.FollowupQuestion, ""),
		MissingInfoKey: key,
		CreatedAt:      event.CreatedAt,
	}
	if err := store.SetPending(pending); err != nil {
		return errs.Wrap(errs.KindStorageError, errs.CodeStorageWriteFailed, err)
	}
	return nil
}

// selectedMissingInfo recovers which MissingInfo item drove
// snap.FollowupQuestion, matching on question text.
func selectedMissingInfo(snap *types.StateSnapshot, missing []*types.MissingInfo) *types.MissingInfo {
	if snap.FollowupQuestion == nil {
		return nil
	}
	for _, m := range missing {
		if m.Question == *snap.FollowupQuestion {
			return m
		}
	}
	return nil
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
