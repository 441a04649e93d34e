package storage

import (
	"database/sql"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"complexity-engine/internal/taxonomy"
	"complexity-engine/internal/types"
	"complexity-engine/pkg/cache"
)

// SQLiteStorage implements Storage on top of a SQLite file, with an
// in-memory MemoryStorage as a write-through cache for the hot paths
// (LoadAllFactors, GetPending, SuppressedSet) and a generic LRU cache
// (pkg/cache) fronting user_controls reads, since those are read at the
// start of nearly every turn but written rarely, matching the teacher's
// sqlite.go db+cache pairing.
type SQLiteStorage struct {
	db    *sql.DB
	cache *MemoryStorage

	mu           sync.Mutex
	controlCache *cache.LRU[string, string]

	stmtInsertEvent      *sql.Stmt
	stmtInsertFactor     *sql.Stmt
	stmtSelectAllFactors *sql.Stmt
	stmtSuppress         *sql.Stmt
	stmtUnsuppress       *sql.Stmt
	stmtSelectSuppressed *sql.Stmt
	stmtDeletePending    *sql.Stmt
	stmtInsertPending    *sql.Stmt
	stmtSelectPending    *sql.Stmt
	stmtUpsertControl    *sql.Stmt
	stmtSelectControl    *sql.Stmt
}

// NewSQLiteStorage opens (creating if necessary) a SQLite database at
// dbPath and prepares it to serve Storage.
func NewSQLiteStorage(dbPath string, timeoutMs int) (*SQLiteStorage, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}

	dsn := dbPath + fmt.Sprintf("?_busy_timeout=%d", timeoutMs)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite tolerates only one writer; the engine's own single-writer
	// assumption makes a single connection the simplest correct choice.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := configureSQLite(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to configure sqlite: %w", err)
	}
	if err := initializeSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	s := &SQLiteStorage{
		db:           db,
		cache:        NewMemoryStorage(),
		controlCache: cache.New[string, string](&cache.Config{MaxEntries: 64, TTL: 10 * time.Minute}),
	}
	if err := s.prepareStatements(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}
	if err := s.warmCache(); err != nil {
		return nil, fmt.Errorf("failed to warm cache: %w", err)
	}
	return s, nil
}

func (s *SQLiteStorage) prepareStatements() error {
	var err error
	prep := func(dst **sql.Stmt, q string) {
		if err != nil {
			return
		}
		*dst, err = s.db.Prepare(q)
	}

	prep(&s.stmtInsertEvent, `
		INSERT INTO events (id, created_at, parent_event_id, intent, save_mode, raw_text)
		VALUES (?, ?, ?, ?, ?, ?)`)
	prep(&s.stmtInsertFactor, `
		INSERT INTO factors (id, event_id, domain, type, code, value_kind, value_json, confidence, time_horizon, modifiability, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	prep(&s.stmtSelectAllFactors, `
		SELECT id, event_id, domain, type, code, value_kind, value_json, confidence, time_horizon, modifiability, created_at
		FROM factors ORDER BY created_at ASC`)
	prep(&s.stmtSuppress, `
		INSERT INTO suppressed_factor_codes (code, suppressed_at) VALUES (?, ?)
		ON CONFLICT(code) DO NOTHING`)
	prep(&s.stmtUnsuppress, `DELETE FROM suppressed_factor_codes WHERE code = ?`)
	prep(&s.stmtSelectSuppressed, `SELECT code FROM suppressed_factor_codes`)
	prep(&s.stmtDeletePending, `DELETE FROM pending_followups`)
	prep(&s.stmtInsertPending, `
		INSERT INTO pending_followups (id, parent_event_id, question_text, missing_info_key, created_at)
		VALUES (?, ?, ?, ?, ?)`)
	prep(&s.stmtSelectPending, `
		SELECT id, parent_event_id, question_text, missing_info_key, created_at
		FROM pending_followups ORDER BY created_at DESC LIMIT 1`)
	prep(&s.stmtUpsertControl, `
		INSERT INTO user_controls (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`)
	prep(&s.stmtSelectControl, `SELECT value FROM user_controls WHERE key = ?`)

	if err != nil {
		return fmt.Errorf("prepare statements: %w", err)
	}
	return nil
}

// warmCache loads suppression, pending, and factor state from disk into the
// in-memory cache once at startup so steady-state reads never touch SQLite.
func (s *SQLiteStorage) warmCache() error {
	factors, err := s.loadAllFactorsFromDB()
	if err != nil {
		return err
	}
	for _, f := range factors {
		if _, ok := s.cache.factors[f.SourceEventID]; !ok {
			s.cache.order = append(s.cache.order, f.SourceEventID)
		}
		s.cache.factors[f.SourceEventID] = append(s.cache.factors[f.SourceEventID], f)
	}

	rows, err := s.stmtSelectSuppressed.Query()
	if err != nil {
		return fmt.Errorf("warm suppressed: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return err
		}
		s.cache.suppressed[types.FactorCode(code)] = struct{}{}
	}

	pending, err := s.readPendingFromDB()
	if err != nil {
		return err
	}
	s.cache.pending = pending
	return nil
}

func (s *SQLiteStorage) loadAllFactorsFromDB() ([]*types.Factor, error) {
	rows, err := s.stmtSelectAllFactors.Query()
	if err != nil {
		return nil, fmt.Errorf("select factors: %w", err)
	}
	defer rows.Close()

	var out []*types.Factor
	for rows.Next() {
		f := &types.Factor{}
		var valueKind, valueJSON string
		var createdAtUnixMilli int64
		if err := rows.Scan(&f.ID, &f.SourceEventID, &f.Domain, &f.Type, &f.Code,
			&valueKind, &valueJSON, &f.Confidence, &f.TimeHorizon, &f.Modifiability, &createdAtUnixMilli); err != nil {
			return nil, fmt.Errorf("scan factor: %w", err)
		}
		if _, ok := taxonomy.Factor(f.Code); !ok {
			log.Printf("debug: skipping factor %s with unknown code %s", f.ID, f.Code)
			continue
		}
		if _, ok := taxonomy.Domain(f.Domain); !ok {
			log.Printf("debug: skipping factor %s with unknown domain %s", f.ID, f.Domain)
			continue
		}
		f.CreatedAt = time.UnixMilli(createdAtUnixMilli).UTC()
		f.Value = decodeFactorValue(types.FactorValueKind(valueKind), valueJSON)
		out = append(out, f)
	}
	return out, rows.Err()
}

func decodeFactorValue(kind types.FactorValueKind, raw string) types.FactorValue {
	switch kind {
	case types.ValueKindBool:
		return types.BoolValue(raw == "true")
	case types.ValueKindInt:
		n, _ := strconv.ParseInt(raw, 10, 64)
		return types.IntValue(n)
	default:
		return types.StrValue(raw)
	}
}

func (s *SQLiteStorage) readPendingFromDB() (*types.PendingFollowUp, error) {
	row := s.stmtSelectPending.QueryRow()
	p := &types.PendingFollowUp{}
	var missingKey sql.NullString
	var createdAtUnixMilli int64
	err := row.Scan(&p.ID, &p.ParentEventID, &p.QuestionText, &missingKey, &createdAtUnixMilli)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select pending: %w", err)
	}
	p.CreatedAt = time.UnixMilli(createdAtUnixMilli).UTC()
	if missingKey.Valid {
		p.MissingInfoKey = types.Ptr(missingKey.String)
	}
	return p, nil
}

func (s *SQLiteStorage) SaveEventAndFactors(event *types.Event, factors []*types.Factor) error {
	if event.SaveMode == types.SaveModeTransient {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var parentID, rawText sql.NullString
	if event.ParentEventID != nil {
		parentID = sql.NullString{String: *event.ParentEventID, Valid: true}
	}
	if event.RawText != nil {
		rawText = sql.NullString{String: *event.RawText, Valid: true}
	}
	if _, err := tx.Stmt(s.stmtInsertEvent).Exec(
		event.ID, event.CreatedAt.UnixMilli(), parentID, string(event.Intent), string(event.SaveMode), rawText,
	); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}

	for _, f := range factors {
		if _, err := tx.Stmt(s.stmtInsertFactor).Exec(
			f.ID, f.SourceEventID, string(f.Domain), string(f.Type), string(f.Code),
			string(f.Value.Kind), f.Value.String(), f.Confidence, string(f.TimeHorizon), string(f.Modifiability),
			f.CreatedAt.UnixMilli(),
		); err != nil {
			return fmt.Errorf("insert factor %s: %w", f.Code, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return s.cache.SaveEventAndFactors(event, factors)
}

func (s *SQLiteStorage) LoadAllFactors() ([]*types.Factor, error) {
	return s.cache.LoadAllFactors()
}

func (s *SQLiteStorage) Suppress(code types.FactorCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.stmtSuppress.Exec(string(code), time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("suppress: %w", err)
	}
	return s.cache.Suppress(code)
}

func (s *SQLiteStorage) Unsuppress(code types.FactorCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.stmtUnsuppress.Exec(string(code)); err != nil {
		return fmt.Errorf("unsuppress: %w", err)
	}
	return s.cache.Unsuppress(code)
}

func (s *SQLiteStorage) SuppressedSet() (map[types.FactorCode]struct{}, error) {
	return s.cache.SuppressedSet()
}

func (s *SQLiteStorage) SetPending(pending *types.PendingFollowUp) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Stmt(s.stmtDeletePending).Exec(); err != nil {
		return fmt.Errorf("clear pending: %w", err)
	}
	var missingKey sql.NullString
	if pending.MissingInfoKey != nil {
		missingKey = sql.NullString{String: *pending.MissingInfoKey, Valid: true}
	}
	if _, err := tx.Stmt(s.stmtInsertPending).Exec(
		pending.ID, pending.ParentEventID, pending.QuestionText, missingKey, pending.CreatedAt.UnixMilli(),
	); err != nil {
		return fmt.Errorf("insert pending: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return s.cache.SetPending(pending)
}

func (s *SQLiteStorage) GetPending() (*types.PendingFollowUp, error) {
	return s.cache.GetPending()
}

func (s *SQLiteStorage) ClearPending() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.stmtDeletePending.Exec(); err != nil {
		return fmt.Errorf("clear pending: %w", err)
	}
	return s.cache.ClearPending()
}

func (s *SQLiteStorage) GetControl(key, defaultValue string) (string, error) {
	if v, ok := s.controlCache.Get(key); ok {
		return v, nil
	}
	row := s.stmtSelectControl.QueryRow(key)
	var value string
	if err := row.Scan(&value); err == sql.ErrNoRows {
		return defaultValue, nil
	} else if err != nil {
		return "", fmt.Errorf("select control %s: %w", key, err)
	}
	s.controlCache.Set(key, value)
	return value, nil
}

func (s *SQLiteStorage) SetControl(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.stmtUpsertControl.Exec(key, value); err != nil {
		return fmt.Errorf("set control %s: %w", key, err)
	}
	s.controlCache.Set(key, value)
	return nil
}

// Close releases the underlying database handle, matching io.Closer so
// CloseStorage's type assertion in factory.go picks it up.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
