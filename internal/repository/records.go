package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joseph-ayodele/po-tracker/internal/common"
	"github.com/joseph-ayodele/po-tracker/internal/record"
)

// DefaultListLimit caps List when the caller passes a non-positive limit.
const DefaultListLimit = 100

// sqliteTime is fixed width so created_at sorts as text.
const sqliteTime = "2006-01-02T15:04:05.000000Z07:00"

// StoredRecord is an assembled record as persisted.
type StoredRecord struct {
	ID        uuid.UUID      `json:"id"`
	Source    string         `json:"source"`
	Record    *record.Record `json:"record"`
	CreatedAt time.Time      `json:"created_at"`
}

type RecordRepository interface {
	Save(ctx context.Context, source string, rec *record.Record) (*StoredRecord, error)
	Get(ctx context.Context, id uuid.UUID) (*StoredRecord, error)
	List(ctx context.Context, limit int) ([]*StoredRecord, error)
	Close() error
}

func newStored(source string, rec *record.Record) (*StoredRecord, []byte, error) {
	if rec == nil {
		return nil, nil, common.NewAppError(common.CodeInput, "record is required", common.ErrInvalidInput)
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return nil, nil, common.WrapError(err, "marshal record")
	}
	return &StoredRecord{
		ID:        uuid.New(),
		Source:    source,
		Record:    rec,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}, payload, nil
}

func decodeStored(id, source string, payload []byte, created time.Time) (*StoredRecord, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, common.WrapError(err, "parse record id")
	}
	var rec record.Record
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, common.WrapError(err, "decode record payload")
	}
	return &StoredRecord{ID: uid, Source: source, Record: &rec, CreatedAt: created.UTC()}, nil
}

func notFound(id uuid.UUID) error {
	return common.NewAppError(common.CodeNotFound, "record "+id.String()+" not found", common.ErrNotFound)
}

func dbError(msg string, err error) error {
	return common.NewAppError(common.CodeDatabase, msg, errors.Join(common.ErrDatabase, err))
}

func listLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}

// sqlRecordRepository stores records through database/sql (SQLite).
type sqlRecordRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

const sqliteSchema = `CREATE TABLE IF NOT EXISTS po_records (
	id               TEXT PRIMARY KEY,
	source           TEXT NOT NULL,
	production_order TEXT,
	part_number      TEXT,
	payload          TEXT NOT NULL,
	created_at       TEXT NOT NULL
)`

// NewSQLRecordRepository creates the schema on db if needed.
func NewSQLRecordRepository(ctx context.Context, db *sql.DB, logger *slog.Logger) (RecordRepository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return nil, dbError("create po_records", err)
	}
	return &sqlRecordRepository{db: db, logger: logger}, nil
}

func (r *sqlRecordRepository) Save(ctx context.Context, source string, rec *record.Record) (*StoredRecord, error) {
	s, payload, err := newStored(source, rec)
	if err != nil {
		return nil, err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO po_records (id, source, production_order, part_number, payload, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		s.ID.String(), source, rec.ProductionOrder, rec.PartNumber, string(payload), s.CreatedAt.Format(sqliteTime))
	if err != nil {
		r.logger.Error("failed to save record", "source", source, "error", err)
		return nil, dbError("insert record", err)
	}
	r.logger.Debug("record saved", "id", s.ID, "source", source)
	return s, nil
}

func (r *sqlRecordRepository) scan(row interface{ Scan(...any) error }) (*StoredRecord, error) {
	var id, source, payload, created string
	if err := row.Scan(&id, &source, &payload, &created); err != nil {
		return nil, err
	}
	ts, err := time.Parse(sqliteTime, created)
	if err != nil {
		return nil, common.WrapError(err, "parse created_at")
	}
	return decodeStored(id, source, []byte(payload), ts)
}

func (r *sqlRecordRepository) Get(ctx context.Context, id uuid.UUID) (*StoredRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, source, payload, created_at FROM po_records WHERE id = ?`, id.String())
	s, err := r.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, dbError("get record", err)
	}
	return s, nil
}

func (r *sqlRecordRepository) List(ctx context.Context, limit int) ([]*StoredRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, source, payload, created_at FROM po_records ORDER BY created_at DESC, id LIMIT ?`, listLimit(limit))
	if err != nil {
		return nil, dbError("list records", err)
	}
	defer rows.Close()

	var out []*StoredRecord
	for rows.Next() {
		s, err := r.scan(rows)
		if err != nil {
			return nil, dbError("scan record", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("list records", err)
	}
	return out, nil
}

func (r *sqlRecordRepository) Close() error { return r.db.Close() }

// pgRecordRepository stores records in Postgres through a pgx pool.
type pgRecordRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

const postgresSchema = `CREATE TABLE IF NOT EXISTS po_records (
	id               UUID PRIMARY KEY,
	source           TEXT NOT NULL,
	production_order TEXT,
	part_number      TEXT,
	payload          JSONB NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL
)`

// NewPostgresRecordRepository creates the schema in the pool's database if needed.
func NewPostgresRecordRepository(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) (RecordRepository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		return nil, dbError("create po_records", err)
	}
	return &pgRecordRepository{pool: pool, logger: logger}, nil
}

func (r *pgRecordRepository) Save(ctx context.Context, source string, rec *record.Record) (*StoredRecord, error) {
	s, payload, err := newStored(source, rec)
	if err != nil {
		return nil, err
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO po_records (id, source, production_order, part_number, payload, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		s.ID.String(), source, rec.ProductionOrder, rec.PartNumber, string(payload), s.CreatedAt)
	if err != nil {
		r.logger.Error("failed to save record", "source", source, "error", err)
		return nil, dbError("insert record", err)
	}
	r.logger.Debug("record saved", "id", s.ID, "source", source)
	return s, nil
}

func (r *pgRecordRepository) Get(ctx context.Context, id uuid.UUID) (*StoredRecord, error) {
	var (
		sid, source string
		payload     []byte
		created     time.Time
	)
	err := r.pool.QueryRow(ctx,
		`SELECT id::text, source, payload, created_at FROM po_records WHERE id = $1`, id.String()).
		Scan(&sid, &source, &payload, &created)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, dbError("get record", err)
	}
	return decodeStored(sid, source, payload, created)
}

func (r *pgRecordRepository) List(ctx context.Context, limit int) ([]*StoredRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id::text, source, payload, created_at FROM po_records ORDER BY created_at DESC, id LIMIT $1`, listLimit(limit))
	if err != nil {
		return nil, dbError("list records", err)
	}
	defer rows.Close()

	var out []*StoredRecord
	for rows.Next() {
		var (
			sid, source string
			payload     []byte
			created     time.Time
		)
		if err := rows.Scan(&sid, &source, &payload, &created); err != nil {
			return nil, dbError("scan record", err)
		}
		s, err := decodeStored(sid, source, payload, created)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("list records", err)
	}
	return out, nil
}

func (r *pgRecordRepository) Close() error {
	r.pool.Close()
	return nil
}
