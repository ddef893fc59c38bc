package prescription

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Journal tables created by migrations/001_journal.sql.
const (
	PrescriptionTable = "prescription_log"
	RemarkTable       = "remark_log"
)

type execer interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// PGJournal appends lines as rows of an insert-only Postgres table.
type PGJournal struct {
	db    execer
	table string
}

func NewPGJournal(pool *pgxpool.Pool, table string) *PGJournal {
	return &PGJournal{db: pool, table: table}
}

// NewPGJournals builds Postgres-backed journals on the default tables.
func NewPGJournals(pool *pgxpool.Pool) Journals {
	return Journals{
		Prescriptions: NewPGJournal(pool, PrescriptionTable),
		Remarks:       NewPGJournal(pool, RemarkTable),
	}
}

// Table returns the table the journal inserts into.
func (j *PGJournal) Table() string { return j.table }

func (j *PGJournal) Append(ctx context.Context, line string) error {
	_, err := j.db.Exec(ctx, `INSERT INTO `+j.table+` (line) VALUES ($1)`, line)
	if err != nil {
		return fmt.Errorf("insert into %s: %w", j.table, err)
	}
	return nil
}
