// Package pgsink stores proposal payloads in PostgreSQL.
//
// Each submission becomes one row. The location fields are kept as columns
// for querying and the whole payload, attachment included, is kept as jsonb.
package pgsink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JonMunkholm/proposals/internal/core"
)

// DefaultTable is used when no table name is configured.
const DefaultTable = "proposal_submissions"

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Sink inserts payloads into a table.
type Sink struct {
	db    DBTX
	table string
	now   func() time.Time
}

// New returns a Sink writing to table. An empty table uses DefaultTable.
func New(db DBTX, table string) *Sink {
	if table == "" {
		table = DefaultTable
	}
	return &Sink{db: db, table: table, now: time.Now}
}

func (s *Sink) ident() string {
	return pgx.Identifier{s.table}.Sanitize()
}

// EnsureSchema creates the submissions table if it does not exist.
func (s *Sink) EnsureSchema(ctx context.Context) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id          uuid PRIMARY KEY,
	received_at timestamptz NOT NULL,
	district    text NOT NULL,
	dn          text NOT NULL,
	gn          text NOT NULL,
	projects    integer NOT NULL,
	payload     jsonb NOT NULL
)`, s.ident())

	if _, err := s.db.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("create %s: %w", s.table, err)
	}
	return nil
}

// Send implements core.Transmitter.
func (s *Sink) Send(ctx context.Context, p core.Payload) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	query := fmt.Sprintf(
		`INSERT INTO %s (id, received_at, district, dn, gn, projects, payload) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.ident(),
	)
	_, err = s.db.Exec(ctx, query,
		uuid.New(), s.now().UTC(), p.District, p.Division, p.Subdivision, len(p.Projects), doc)
	if err != nil {
		return fmt.Errorf("%w: insert into %s: %v", core.ErrTransmit, s.table, err)
	}
	return nil
}
