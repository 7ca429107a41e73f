package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// opTimeout bounds every store operation so a slow or locked database
// never stalls the caller.
const opTimeout = time.Second

// SqliteStore implements Store on an SQLite database file. Reads and
// writes use separate connections so a long listing never blocks an
// insert.
type SqliteStore struct {
	dbPath string

	writeDB     *sql.DB
	writeDBOnce sync.Once
	writeDBErr  error

	readDB     *sql.DB
	readDBOnce sync.Once
	readDBErr  error

	closeOnce sync.Once
	closeErr  error
}

// NewSqliteStore creates a store backed by the database at dbPath.
// The schema is initialized lazily on first write.
func NewSqliteStore(dbPath string) *SqliteStore {
	return &SqliteStore{dbPath: dbPath}
}

func runSQLCommand(db *sql.DB, sql string) error {
	_, err := db.Exec(sql)
	return err
}

func (s *SqliteStore) getWriteDB() (*sql.DB, error) {
	s.writeDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "_journal_mode=WAL&_synchronous=NORMAL"))
		if err != nil {
			s.writeDBErr = fmt.Errorf("opening write connection: %w", err)
			return
		}

		if err = runSQLCommand(db, initSchemaSQL); err != nil {
			_ = db.Close()
			s.writeDBErr = fmt.Errorf("initializing schema: %w", err)
			return
		}

		s.writeDB = db
	})

	return s.writeDB, s.writeDBErr
}

func (s *SqliteStore) getReadDB() (*sql.DB, error) {
	// make sure the schema exists before a read-only open
	if _, err := s.getWriteDB(); err != nil {
		return nil, err
	}

	s.readDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "mode=ro"))
		if err != nil {
			s.readDBErr = fmt.Errorf("opening read connection: %w", err)
			return
		}
		s.readDB = db
	})

	return s.readDB, s.readDBErr
}

func (s *SqliteStore) SaveContact(ctx context.Context, c *Contact) (id int64, err error) {
	db, err := s.getWriteDB()
	if err != nil {
		return 0, fmt.Errorf("getting write connection: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	when := c.Time.UTC()

	if c.ID == 0 {
		stmt, err := db.PrepareContext(ctx, insertContactSQL)
		if err != nil {
			return 0, fmt.Errorf("preparing statement: %w", err)
		}
		defer closeWithError(stmt, &err)

		result, err := stmt.ExecContext(ctx, c.Callsign, c.Grid, when, c.Frequency,
			c.Mode, c.RSTSent, c.RSTRcvd, c.Name, c.QTH, c.Notes)
		if err != nil {
			return 0, fmt.Errorf("inserting contact: %w", err)
		}

		id, err = result.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("getting contact ID: %w", err)
		}
		return id, nil
	}

	stmt, err := db.PrepareContext(ctx, updateContactSQL)
	if err != nil {
		return 0, fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	result, err := stmt.ExecContext(ctx, c.Callsign, c.Grid, when, c.Frequency,
		c.Mode, c.RSTSent, c.RSTRcvd, c.Name, c.QTH, c.Notes, c.ID)
	if err != nil {
		return 0, fmt.Errorf("updating contact: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("getting affected rows: %w", err)
	}
	if affected == 0 {
		return 0, ErrNotFound
	}
	return c.ID, nil
}

func (s *SqliteStore) Contact(ctx context.Context, id int64) (contact *Contact, err error) {
	db, err := s.getReadDB()
	if err != nil {
		return nil, fmt.Errorf("getting read connection: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var c Contact
	err = db.QueryRowContext(ctx, selectContactSQL, id).Scan(&c.ID, &c.Callsign, &c.Grid,
		&c.Time, &c.Frequency, &c.Mode, &c.RSTSent, &c.RSTRcvd, &c.Name, &c.QTH, &c.Notes)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying contact: %w", err)
	}

	c.Time = c.Time.UTC()
	return &c, nil
}

func (s *SqliteStore) Contacts(ctx context.Context, opts ...ListOption) (contacts []*Contact, err error) {
	q := listQuery{sort: SortByTime, dir: Descending, limit: -1}
	for _, opt := range opts {
		opt(&q)
	}

	db, err := s.getReadDB()
	if err != nil {
		return nil, fmt.Errorf("getting read connection: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var sb strings.Builder
	sb.WriteString(selectContactsSQL)

	var args []any
	if q.callsign != "" {
		sb.WriteString(" \nWHERE \n    callsign = ?")
		args = append(args, q.callsign)
	}
	fmt.Fprintf(&sb, " \nORDER BY %s %s", q.sort.column(), q.dir.keyword())
	sb.WriteString(" \nLIMIT ? OFFSET ?")
	args = append(args, q.limit, q.offset)

	rows, err := db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying contacts: %w", err)
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var c Contact
		if err = rows.Scan(&c.ID, &c.Callsign, &c.Grid, &c.Time, &c.Frequency,
			&c.Mode, &c.RSTSent, &c.RSTRcvd, &c.Name, &c.QTH, &c.Notes); err != nil {
			return nil, fmt.Errorf("scanning contact: %w", err)
		}
		c.Time = c.Time.UTC()
		contacts = append(contacts, &c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating contacts: %w", err)
	}
	return contacts, nil
}

func (s *SqliteStore) CountContacts(ctx context.Context) (int64, error) {
	db, err := s.getReadDB()
	if err != nil {
		return 0, fmt.Errorf("getting read connection: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var count int64
	if err := db.QueryRowContext(ctx, countContactsSQL).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting contacts: %w", err)
	}
	return count, nil
}

func (s *SqliteStore) DeleteContacts(ctx context.Context, ids ...int64) (err error) {
	if len(ids) == 0 {
		return nil
	}

	db, err := s.getWriteDB()
	if err != nil {
		return fmt.Errorf("getting write connection: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, deleteContactSQL)
	if err != nil {
		defer rollbackWithError(tx, &err)
		return fmt.Errorf("preparing statement: %w", err)
	}

	for _, id := range ids {
		if _, err = stmt.ExecContext(ctx, id); err != nil {
			_ = stmt.Close()
			defer rollbackWithError(tx, &err)
			return fmt.Errorf("deleting contact %d: %w", id, err)
		}
	}

	if err = stmt.Close(); err != nil {
		defer rollbackWithError(tx, &err)
		return fmt.Errorf("closing statement: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (s *SqliteStore) Close() error {
	s.closeOnce.Do(func() {
		var errs []error

		if s.writeDB != nil {
			if err := s.writeDB.Close(); err != nil {
				errs = append(errs, fmt.Errorf("closing write connection: %w", err))
			}
		}
		if s.readDB != nil {
			if err := s.readDB.Close(); err != nil {
				errs = append(errs, fmt.Errorf("closing read connection: %w", err))
			}
		}

		s.closeErr = errors.Join(errs...)
	})

	return s.closeErr
}
