package casefile

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"meldeflow/internal/domain"
	"meldeflow/pkg/platform/sentinel"
	"meldeflow/pkg/requestcontext"
)

// PostgresStore persists cases as one row each. Per-case serialization comes
// from SELECT ... FOR UPDATE, so concurrent Apply calls on the same case queue
// behind the row lock while distinct cases proceed in parallel.
type PostgresStore struct {
	db     *sql.DB
	mirror AuditMirror
}

const schema = `
CREATE SEQUENCE IF NOT EXISTS cases_seq;
CREATE TABLE IF NOT EXISTS cases (
	id         text PRIMARY KEY,
	seq        bigint NOT NULL,
	payload    jsonb NOT NULL,
	created_at timestamptz NOT NULL
);
`

// NewPostgresStore opens the pool and ensures the schema exists.
func NewPostgresStore(ctx context.Context, url string, mirror AuditMirror) (*PostgresStore, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	if mirror == nil {
		mirror = NopMirror{}
	}
	return &PostgresStore{db: db, mirror: mirror}, nil
}

func (s *PostgresStore) Create(ctx context.Context, intake domain.IntakeData) (domain.Case, error) {
	var seq int64
	if err := s.db.QueryRowContext(ctx, `SELECT nextval('cases_seq')`).Scan(&seq); err != nil {
		return domain.Case{}, fmt.Errorf("allocate case sequence: %w", err)
	}

	now := requestcontext.Now(ctx)
	c := domain.Case{
		ID:        fmt.Sprintf("CASE-%04d", seq),
		Intake:    intake,
		Overrides: make(map[domain.Field]string),
		Working:   make(map[domain.Field]string),
		Status:    domain.StatusCreated,
		CreatedAt: now,
	}
	c.Audit = append(c.Audit, domain.AuditEntry{
		ID:        uuid.New(),
		Timestamp: now,
		Event:     domain.EventCaseCreated,
		Details:   map[string]any{"message": "case created with citizen data"},
	})

	payload, err := json.Marshal(c)
	if err != nil {
		return domain.Case{}, fmt.Errorf("marshal case: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO cases (id, seq, payload, created_at) VALUES ($1, $2, $3, $4)`,
		c.ID, seq, payload, now,
	)
	if err != nil {
		return domain.Case{}, fmt.Errorf("insert case: %w", err)
	}

	s.mirror.Publish(c.ID, c.Audit[0])
	return c, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (domain.Case, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM cases WHERE id = $1`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Case{}, sentinel.ErrNotFound
	}
	if err != nil {
		return domain.Case{}, fmt.Errorf("select case: %w", err)
	}
	return unmarshalCase(payload)
}

func (s *PostgresStore) Apply(ctx context.Context, id string, fn Mutation) (domain.Case, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Case{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var payload []byte
	err = tx.QueryRowContext(ctx, `SELECT payload FROM cases WHERE id = $1 FOR UPDATE`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Case{}, sentinel.ErrNotFound
	}
	if err != nil {
		return domain.Case{}, fmt.Errorf("lock case: %w", err)
	}

	work, err := unmarshalCase(payload)
	if err != nil {
		return domain.Case{}, err
	}

	auditEntry, err := fn(&work)
	if err != nil {
		return domain.Case{}, err
	}
	auditEntry.ID = uuid.New()
	auditEntry.Timestamp = requestcontext.Now(ctx)
	work.Audit = append(work.Audit, auditEntry)

	updated, err := json.Marshal(work)
	if err != nil {
		return domain.Case{}, fmt.Errorf("marshal case: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE cases SET payload = $2 WHERE id = $1`, id, updated); err != nil {
		return domain.Case{}, fmt.Errorf("update case: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Case{}, fmt.Errorf("commit case mutation: %w", err)
	}

	s.mirror.Publish(id, auditEntry)
	return work, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]domain.Case, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM cases ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list cases: %w", err)
	}
	defer rows.Close()

	var out []domain.Case
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan case: %w", err)
		}
		c, err := unmarshalCase(payload)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func unmarshalCase(payload []byte) (domain.Case, error) {
	var c domain.Case
	if err := json.Unmarshal(payload, &c); err != nil {
		return domain.Case{}, fmt.Errorf("unmarshal case: %w", err)
	}
	if c.Overrides == nil {
		c.Overrides = make(map[domain.Field]string)
	}
	if c.Working == nil {
		c.Working = make(map[domain.Field]string)
	}
	return c, nil
}
