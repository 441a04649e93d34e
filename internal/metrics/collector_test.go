package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"complexity-engine/internal/types"
)

func TestNewCollectorDefaults(t *testing.T) {
	c := NewCollector()
	snap := c.Snapshot()

	assert.Equal(t, 0, snap.TotalTurns)
	assert.Empty(t, snap.RiskCounts)
	assert.Empty(t, snap.ActionCounts)
}

func TestRecordTurnUpdatesCounts(t *testing.T) {
	c := NewCollector()

	c.RecordTurn(TurnRecord{
		RiskBand:       types.RiskUrgent,
		NextActionKind: types.ActionSafetyEscalation,
		RouterCategory: types.StepUrgentCareED,
		PendingSet:     false,
		PendingConsumed: true,
	})
	c.RecordTurn(TurnRecord{
		RiskBand:       types.RiskLow,
		NextActionKind: types.ActionAskFollowup,
		RouterCategory: types.StepSelfCare,
		PendingSet:     true,
		ExpiredFactors: 2,
	})

	snap := c.Snapshot()
	assert.Equal(t, 2, snap.TotalTurns)
	assert.Equal(t, 1, snap.RiskCounts[types.RiskUrgent])
	assert.Equal(t, 1, snap.RiskCounts[types.RiskLow])
	assert.Equal(t, 1, snap.ActionCounts[types.ActionSafetyEscalation])
	assert.Equal(t, 1, snap.PendingSetCount)
	assert.Equal(t, 1, snap.PendingConsumedCount)
	assert.Equal(t, 2, snap.TotalExpiredFactors)
}

func TestSnapshotIsIndependentCopy(t *testing.T) {
	c := NewCollector()
	c.RecordTurn(TurnRecord{RiskBand: types.RiskMedium, NextActionKind: types.ActionAnswer, RouterCategory: types.StepPharmacist})

	snap := c.Snapshot()
	snap.RiskCounts[types.RiskMedium] = 99

	freshSnap := c.Snapshot()
	assert.Equal(t, 1, freshSnap.RiskCounts[types.RiskMedium])
}
