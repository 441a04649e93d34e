// Package controls implements user controls (C10): the persisted
// use_saved_context flag, the process-local session_use_profile flag, and
// clearSessionContext. The persisted flag lives in the storage-backed
// ControlsRepository; the process-local flag lives here as engine-owned
// in-memory state.
package controls

import (
	"strconv"
	"sync"

	"complexity-engine/internal/errs"
	"complexity-engine/internal/storage"
)

const useSavedContextKey = "use_saved_context"

// Session holds the process-local mutable flag session_use_profile. The
// teacher's equivalent mutable process state is a plain guarded field, not
// a dedicated type; this is the one place in the engine where that pattern
// is still needed, so it gets a small type of its own rather than a bare
// package-level global.
type Session struct {
	mu                sync.Mutex
	sessionUseProfile bool
}

// NewSession returns a Session with session_use_profile at its default, true.
func NewSession() *Session {
	return &Session{sessionUseProfile: true}
}

func (s *Session) SetUseProfile(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionUseProfile = v
}

func (s *Session) UseProfile() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionUseProfile
}

// Reset restores session_use_profile to its default. Part of
// clearSessionContext.
func (s *Session) Reset() {
	s.SetUseProfile(true)
}

// GetUseSavedContext reads the persisted flag, defaulting to true.
func GetUseSavedContext(store storage.ControlsRepository) (bool, error) {
	raw, err := store.GetControl(useSavedContextKey, "true")
	if err != nil {
		return false, errs.Wrap(errs.KindStorageError, errs.CodeStorageReadFailed, err)
	}
	v, parseErr := strconv.ParseBool(raw)
	if parseErr != nil {
		return true, nil
	}
	return v, nil
}

// SetUseSavedContext persists the flag.
func SetUseSavedContext(store storage.ControlsRepository, v bool) error {
	if err := store.SetControl(useSavedContextKey, strconv.FormatBool(v)); err != nil {
		return errs.Wrap(errs.KindStorageError, errs.CodeStorageWriteFailed, err)
	}
	return nil
}

// EffectiveUseProfile is use_saved_context ANDed with session_use_profile:
// the combined gate on whether persisted factors feed this turn's profile.
func EffectiveUseProfile(store storage.ControlsRepository, session *Session) (bool, error) {
	persisted, err := GetUseSavedContext(store)
	if err != nil {
		return false, err
	}
	return persisted && session.UseProfile(), nil
}

// ClearSessionContext clears the pending follow-up and resets
// session_use_profile to its default.
func ClearSessionContext(store storage.PendingFollowUpRepository, session *Session) error {
	if err := store.ClearPending(); err != nil {
		return errs.Wrap(errs.KindStorageError, errs.CodeStorageWriteFailed, err)
	}
	session.Reset()
	return nil
}
