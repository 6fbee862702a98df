package course

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// SQLMirror writes course records through to a relational store. It is a
// side-channel only: nothing reads it back, so no read-repair exists if the
// mirror and the memory store diverge.
type SQLMirror struct {
	db *sql.DB
}

func NewSQLMirror(db *sql.DB) *SQLMirror {
	return &SQLMirror{db: db}
}

func (m *SQLMirror) UpsertCourse(ctx context.Context, c Course) error {
	_, err := m.db.ExecContext(ctx, `INSERT INTO courses (id,title,description,is_published,updated_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, description=EXCLUDED.description,
			is_published=EXCLUDED.is_published, updated_at=EXCLUDED.updated_at`,
		c.ID.String(), c.Title, c.Description, c.IsPublished, time.Now().Unix())
	return err
}

func (m *SQLMirror) DeleteCourse(ctx context.Context, id uuid.UUID) error {
	_, err := m.db.ExecContext(ctx, `DELETE FROM courses WHERE id=$1`, id.String())
	return err
}
