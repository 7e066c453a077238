package repository

import (
	"database/sql"

	"go.uber.org/zap"
)

// NewPostgresStores wires every Postgres repository onto one connection pool.
func NewPostgresStores(db *sql.DB, logger *zap.Logger) *Stores {
	return &Stores{
		Dates:       NewPostgresDatesRepository(db, logger),
		Members:     NewPostgresMembersRepository(db, logger),
		Songs:       NewPostgresSongsRepository(db, logger),
		Attendance:  NewPostgresAttendanceRepository(db, logger),
		Assignments: NewPostgresAssignmentsRepository(db, logger),
	}
}

// NewMemoryStores backs every repository with one shared MemoryStore (DB disabled / tests).
func NewMemoryStores() *Stores {
	m := NewMemoryStore()
	return &Stores{
		Dates:       m,
		Members:     m,
		Songs:       m,
		Attendance:  m,
		Assignments: m,
	}
}
