package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"complexity-engine/internal/storage"
	"complexity-engine/internal/types"
)

func newTestEngine() *Engine {
	return New(storage.NewMemoryStorage(), 0.7)
}

func TestProcessSmartInput_RejectsEmptyInputText(t *testing.T) {
	eng := newTestEngine()
	_, err := eng.ProcessSmartInput(Input{
		InputText: "",
		Intent:    types.IntentAsk,
		SaveMode:  types.SaveModeTransient,
	})
	require.Error(t, err)
}

func TestProcessSmartInput_RejectsInvalidIntent(t *testing.T) {
	eng := newTestEngine()
	_, err := eng.ProcessSmartInput(Input{
		InputText: "I have a headache",
		Intent:    types.EventIntent("NOT_A_REAL_INTENT"),
		SaveMode:  types.SaveModeTransient,
	})
	require.Error(t, err)
}

func TestProcessSmartInput_RejectsInvalidSaveMode(t *testing.T) {
	eng := newTestEngine()
	_, err := eng.ProcessSmartInput(Input{
		InputText: "I have a headache",
		Intent:    types.IntentAsk,
		SaveMode:  types.EventSaveMode("not_a_real_mode"),
	})
	require.Error(t, err)
}

func TestProcessSmartInput_TransientModeDoesNotPersistFactors(t *testing.T) {
	eng := newTestEngine()
	out, err := eng.ProcessSmartInput(Input{
		InputText: "I've had a headache for three days",
		Intent:    types.IntentAsk,
		SaveMode:  types.SaveModeTransient,
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)
	require.NotNil(t, out)

	all, err := eng.store.LoadAllFactors()
	require.NoError(t, err)
	assert.Empty(t, all, "transient turns must not leave factors behind")
}

func TestProcessSmartInput_JournalModePersistsFactors(t *testing.T) {
	eng := newTestEngine()
	out, err := eng.ProcessSmartInput(Input{
		InputText: "I've had a headache for three days",
		Intent:    types.IntentJournal,
		SaveMode:  types.SaveModeSaveJournal,
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)
	require.NotNil(t, out.Event)
	assert.NotEmpty(t, out.Event.ID)
	assert.Regexp(t, "^evt_", out.Event.ID)
}

func TestProcessSmartInput_SuppressedFactorCodeIsDropped(t *testing.T) {
	eng := newTestEngine()

	// Run once to discover what the extractor would normally surface.
	baseline, err := eng.ProcessSmartInput(Input{
		InputText: "I've had a headache for three days",
		Intent:    types.IntentAsk,
		SaveMode:  types.SaveModeTransient,
	})
	require.NoError(t, err)
	require.NotEmpty(t, baseline.Extracted.Factors, "fixture text must extract at least one factor")

	code := baseline.Extracted.Factors[0].Code
	require.NoError(t, eng.SuppressFactorCode(code))

	out, err := eng.ProcessSmartInput(Input{
		InputText: "I've had a headache for three days",
		Intent:    types.IntentAsk,
		SaveMode:  types.SaveModeTransient,
	})
	require.NoError(t, err)
	for _, f := range out.Extracted.Factors {
		assert.NotEqual(t, code, f.Code, "suppressed factor code must not reappear")
	}
}

func TestSuppressUnsuppressFactorCode_RoundTrips(t *testing.T) {
	eng := newTestEngine()
	code := types.FactorCode("DURATION_PATTERN")

	require.NoError(t, eng.SuppressFactorCode(code))
	set, err := eng.GetSuppressedFactorCodes()
	require.NoError(t, err)
	_, ok := set[code]
	assert.True(t, ok)

	require.NoError(t, eng.UnsuppressFactorCode(code))
	set, err = eng.GetSuppressedFactorCodes()
	require.NoError(t, err)
	_, ok = set[code]
	assert.False(t, ok)
}

func TestUseSavedContext_RoundTrips(t *testing.T) {
	eng := newTestEngine()

	v, err := eng.GetUseSavedContext()
	require.NoError(t, err)
	assert.True(t, v, "use_saved_context defaults to true")

	require.NoError(t, eng.SetUseSavedContext(false))
	v, err = eng.GetUseSavedContext()
	require.NoError(t, err)
	assert.False(t, v)
}

func TestSessionUseProfile_DefaultsTrueAndIsProcessLocal(t *testing.T) {
	eng := newTestEngine()
	assert.True(t, eng.GetSessionUseProfile())

	eng.SetSessionUseProfile(false)
	assert.False(t, eng.GetSessionUseProfile())
}

func TestClearSessionContext_ResetsSessionUseProfileAndPending(t *testing.T) {
	eng := newTestEngine()
	eng.SetSessionUseProfile(false)

	require.NoError(t, eng.ClearSessionContext())
	assert.True(t, eng.GetSessionUseProfile(), "ClearSessionContext resets session_use_profile to its default")

	pending, err := eng.GetPendingFollowUp()
	require.NoError(t, err)
	assert.Nil(t, pending)
}

func TestProcessSmartInput_IncludeDebugPopulatesDebugModel(t *testing.T) {
	eng := newTestEngine()
	out, err := eng.ProcessSmartInput(Input{
		InputText:    "I've had a headache for three days",
		Intent:       types.IntentAsk,
		SaveMode:     types.SaveModeTransient,
		IncludeDebug: true,
	})
	require.NoError(t, err)
	require.NotNil(t, out.Debug)
	assert.Equal(t, out.DomainResult, out.Debug.Domains)
}

func TestProcessSmartInput_WithoutDebugOmitsDebugModel(t *testing.T) {
	eng := newTestEngine()
	out, err := eng.ProcessSmartInput(Input{
		InputText: "I've had a headache for three days",
		Intent:    types.IntentAsk,
		SaveMode:  types.SaveModeTransient,
	})
	require.NoError(t, err)
	assert.Nil(t, out.Debug)
}

func TestProcessSmartInput_WithoutSimilarityNeverPopulatesSimilarEntries(t *testing.T) {
	eng := newTestEngine() // no SetSimilarity call
	out, err := eng.ProcessSmartInput(Input{
		InputText:    "I've had a headache for three days",
		Intent:       types.IntentJournal,
		SaveMode:     types.SaveModeSaveJournal,
		IncludeDebug: true,
	})
	require.NoError(t, err)
	require.NotNil(t, out.Debug)
	assert.Nil(t, out.Debug.SimilarPastEntries)
}
