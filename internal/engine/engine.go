// Package engine ties every reasoning component into the single
// processSmartInput operation, plus the supporting control operations
// listed in the external interface: suppression, user controls, and
// pending-follow-up introspection.
//
// Grounded on the teacher's top-level orchestrator (internal/server
// wiring a sequence of mode/validator calls); this engine's orchestration
// is the same "one call, several pure-ish steps, persistence at the
// edges" shape, generalized to the turn pipeline in the component design.
package engine

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"complexity-engine/internal/classifier"
	"complexity-engine/internal/controls"
	"complexity-engine/internal/errs"
	"complexity-engine/internal/extractor"
	"complexity-engine/internal/followup"
	"complexity-engine/internal/metrics"
	"complexity-engine/internal/profile"
	"complexity-engine/internal/response"
	"complexity-engine/internal/router"
	"complexity-engine/internal/similarity"
	"complexity-engine/internal/snapshot"
	"complexity-engine/internal/storage"
	"complexity-engine/internal/types"
)

// Engine bundles a storage backend, process-local session state, and a
// metrics collector behind the single processSmartInput entry point.
type Engine struct {
	store         storage.Storage
	session       *controls.Session
	metrics       *metrics.Collector
	minConfidence float64
	similarity    *similarity.Store
}

// New wires a storage backend into a ready-to-use Engine.
func New(store storage.Storage, minConfidence float64) *Engine {
	if minConfidence == 0 {
		minConfidence = 0.7
	}
	return &Engine{
		store:         store,
		session:       controls.NewSession(),
		metrics:       metrics.NewCollector(),
		minConfidence: minConfidence,
	}
}

// Metrics exposes the engine's turn counters for introspection.
func (e *Engine) Metrics() *metrics.Collector { return e.metrics }

// SetSimilarity enables the debug-only similar-past-entries feature. When
// unset, journaled turns are never embedded and include_debug never
// returns similar_past_entries.
func (e *Engine) SetSimilarity(store *similarity.Store) {
	e.similarity = store
}

// Input is the primary operation's request shape.
type Input struct {
	InputText    string
	Intent       types.EventIntent
	SaveMode     types.EventSaveMode
	EventID      string
	CreatedAt    time.Time
	IncludeDebug bool
}

// DebugModel is the optional introspection payload returned when
// IncludeDebug is set.
type DebugModel struct {
	Domains            *types.DomainResult    `json:"domains"`
	Factors            []*types.Factor        `json:"factors"`
	MissingInfo        []*types.MissingInfo   `json:"missing_info,omitempty"`
	RiskBand           types.RiskBand         `json:"risk_band"`
	FrictionBand       types.FrictionBand     `json:"friction_band"`
	UncertaintyBand    types.UncertaintyBand  `json:"uncertainty_band"`
	NextActionKind     types.NextActionKind   `json:"next_action_kind"`
	RouterCategory     types.NextStepCategory `json:"router_category"`
	UseSavedContext    bool                   `json:"use_saved_context"`
	SessionUseProfile  bool                   `json:"session_use_profile"`
	PendingFollowUp    *types.PendingFollowUp `json:"pending_follow_up,omitempty"`
	SimilarPastEntries []similarity.Entry     `json:"similar_past_entries,omitempty"`
}

// Output is the primary operation's response shape.
type Output struct {
	Event        *types.Event
	DomainResult *types.DomainResult
	Extracted    *types.ExtractionResult
	Profile      *types.ComplexityProfile
	Snapshot     *types.StateSnapshot
	Response     *types.ResponseModel
	Debug        *DebugModel
}

// ProcessSmartInput runs the full turn pipeline: consult pending follow-up,
// classify, extract, filter by suppression, persist if allowed, build
// profile, build snapshot, route, assemble response, set/clear pending
// follow-up.
func (e *Engine) ProcessSmartInput(in Input) (*Output, error) {
	if in.InputText == "" {
		return nil, errs.New(errs.KindInvalidInput, errs.CodeEmptyInputText, "input_text must not be empty")
	}
	if !types.ValidEventIntent(string(in.Intent)) {
		return nil, errs.New(errs.KindInvalidInput, errs.CodeInvalidIntent, "intent is not a recognized EventIntent")
	}
	if !types.ValidEventSaveMode(string(in.SaveMode)) {
		return nil, errs.New(errs.KindInvalidInput, errs.CodeInvalidSaveMode, "save_mode is not a recognized EventSaveMode")
	}

	pending, err := followup.ReadPending(e.store)
	if err != nil {
		return nil, err
	}

	eventID := in.EventID
	if eventID == "" {
		eventID = "evt_" + uuid.NewString()
	}
	createdAt := in.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	effectiveIntent := followup.EffectiveIntent(in.Intent, pending)

	event := &types.Event{
		ID:        eventID,
		CreatedAt: createdAt,
		Intent:    effectiveIntent,
		SaveMode:  in.SaveMode,
	}
	if pending != nil {
		event.ParentEventID = types.Ptr(pending.ParentEventID)
	}
	if in.SaveMode == types.SaveModeSaveJournal {
		event.RawText = types.Ptr(in.InputText)
	}

	var previousQuestion *string
	if pending != nil {
		previousQuestion = types.Ptr(pending.QuestionText)
	}
	domainResult := classifier.Classify(in.InputText, effectiveIntent, previousQuestion)

	extracted := extractor.Extract(in.InputText, domainResult, effectiveIntent, eventID)

	suppressed, err := e.store.SuppressedSet()
	if err != nil {
		return nil, errs.Wrap(errs.KindStorageError, errs.CodeStorageReadFailed, err)
	}
	extracted.Factors = dropSuppressed(extracted.Factors, suppressed)

	for _, f := range extracted.Factors {
		f.CreatedAt = createdAt
	}

	if err := e.store.SaveEventAndFactors(event, extracted.Factors); err != nil {
		return nil, errs.Wrap(errs.KindStorageError, errs.CodeStorageWriteFailed, err)
	}

	if e.similarity != nil && in.SaveMode == types.SaveModeSaveJournal {
		if err := e.similarity.Upsert(context.Background(), event.ID, domainResult.Primary.Domain, in.InputText); err != nil {
			log.Printf("debug: similarity upsert failed for %s: %v", event.ID, err)
		}
	}

	useProfile, err := controls.EffectiveUseProfile(e.store, e.session)
	if err != nil {
		return nil, err
	}

	allFactors := extracted.Factors
	if useProfile {
		persisted, err := e.store.LoadAllFactors()
		if err != nil {
			return nil, errs.Wrap(errs.KindStorageError, errs.CodeStorageReadFailed, err)
		}
		allFactors = mergeFactorSlices(persisted, extracted.Factors)
	}

	prof := profile.Build(allFactors, profile.Options{
		MinConfidence:   e.minConfidence,
		SuppressedCodes: suppressed,
		Now:             createdAt,
	})

	snap := snapshot.Build(event, domainResult, extracted, prof)
	routed := router.Route(snap)

	useSavedContext, err := controls.GetUseSavedContext(e.store)
	if err != nil {
		return nil, err
	}
	controlsView := types.ControlsView{
		UseSavedContext:   useSavedContext,
		SessionUseProfile: e.session.UseProfile(),
	}
	resp := response.Build(snap, routed, controlsView)

	if err := followup.Resolve(e.store, event, snap, extracted.MissingInfo); err != nil {
		return nil, err
	}
	pendingSet := snap.NextActionKind == types.ActionAskFollowup && snap.RiskBand != types.RiskUrgent && event.Intent != types.IntentLogOnly

	e.metrics.RecordTurn(metrics.TurnRecord{
		Timestamp:       createdAt,
		RiskBand:        snap.RiskBand,
		NextActionKind:  snap.NextActionKind,
		RouterCategory:  routed.Category,
		PendingSet:      pendingSet,
		PendingConsumed: pending != nil,
	})

	out := &Output{
		Event:        event,
		DomainResult: domainResult,
		Extracted:    extracted,
		Profile:      prof,
		Snapshot:     snap,
		Response:     resp,
	}

	if in.IncludeDebug {
		newPending, _ := e.store.GetPending()
		debug := &DebugModel{
			Domains:           domainResult,
			Factors:           extracted.Factors,
			MissingInfo:       extracted.MissingInfo,
			RiskBand:          snap.RiskBand,
			FrictionBand:      snap.FrictionBand,
			UncertaintyBand:   snap.UncertaintyBand,
			NextActionKind:    snap.NextActionKind,
			RouterCategory:    routed.Category,
			UseSavedContext:   useSavedContext,
			SessionUseProfile: e.session.UseProfile(),
			PendingFollowUp:   newPending,
		}
		if e.similarity != nil {
			entries, err := e.similarity.TopSimilar(context.Background(), in.InputText, event.ID, 3)
			if err != nil {
				log.Printf("debug: similarity query failed for %s: %v", event.ID, err)
			} else {
				debug.SimilarPastEntries = entries
			}
		}
		out.Debug = debug
	}

	return out, nil
}

func dropSuppressed(factors []*types.Factor, suppressed map[types.FactorCode]struct{}) []*types.Factor {
	out := make([]*types.Factor, 0, len(factors))
	for _, f := range factors {
		if _, ok := suppressed[f.Code]; ok {
			continue
		}
		out = append(out, f)
	}
	return out
}

func mergeFactorSlices(a, b []*types.Factor) []*types.Factor {
	out := make([]*types.Factor, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}

// SuppressFactorCode adds code to the suppression set.
func (e *Engine) SuppressFactorCode(code types.FactorCode) error {
	return e.store.Suppress(code)
}

// UnsuppressFactorCode removes code from the suppression set.
func (e *Engine) UnsuppressFactorCode(code types.FactorCode) error {
	return e.store.Unsuppress(code)
}

// GetSuppressedFactorCodes returns the current suppression set.
func (e *Engine) GetSuppressedFactorCodes() (map[types.FactorCode]struct{}, error) {
	return e.store.SuppressedSet()
}

// SetUseSavedContext persists the use_saved_context flag.
func (e *Engine) SetUseSavedContext(v bool) error {
	return controls.SetUseSavedContext(e.store, v)
}

// GetUseSavedContext reads the persisted use_saved_context flag.
func (e *Engine) GetUseSavedContext() (bool, error) {
	return controls.GetUseSavedContext(e.store)
}

// SetSessionUseProfile sets the process-local flag.
func (e *Engine) SetSessionUseProfile(v bool) {
	e.session.SetUseProfile(v)
}

// GetSessionUseProfile reads the process-local flag.
func (e *Engine) GetSessionUseProfile() bool {
	return e.session.UseProfile()
}

// ClearSessionContext clears the pending follow-up and resets
// session_use_profile to its default.
func (e *Engine) ClearSessionContext() error {
	return controls.ClearSessionContext(e.store, e.session)
}

// GetPendingFollowUp returns the outstanding pending row, if any.
func (e *Engine) GetPendingFollowUp() (*types.PendingFollowUp, error) {
	pending, err := e.store.GetPending()
	if err != nil {
		return nil, errs.Wrap(errs.KindStorageError, errs.CodeStorageReadFailed, err)
	}
	return pending, nil
}
