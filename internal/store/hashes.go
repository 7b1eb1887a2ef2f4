package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// HashEntry maps a content checksum to the library path holding that content.
type HashEntry struct {
	Checksum  string
	Path      string
	UpdatedAt string
}

// AddHash records checksum for path, replacing any previous mapping.
func (s *Store) AddHash(ctx context.Context, checksum, path string) error {
	checksum = strings.TrimSpace(checksum)
	if checksum == "" {
		return errors.New("add hash: empty checksum")
	}
	_, err := s.execWithRetry(ctx,
		`INSERT INTO hashes (checksum, path, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(checksum) DO UPDATE SET path = excluded.path, updated_at = excluded.updated_at`,
		checksum, path, timestamp(),
	)
	if err != nil {
		return fmt.Errorf("add hash: %w", err)
	}
	return nil
}

// CheckHash reports the path recorded for checksum, if any.
func (s *Store) CheckHash(ctx context.Context, checksum string) (string, bool, error) {
	ctx = ensureContext(ctx)
	var path string
	err := retryOnBusy(ctx, func() error {
		return s.db.QueryRowContext(ctx, "SELECT path FROM hashes WHERE checksum = ?", checksum).Scan(&path)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("check hash: %w", err)
	}
	return path, true, nil
}

// RemoveHash deletes the mapping for checksum. Missing entries are not an error.
func (s *Store) RemoveHash(ctx context.Context, checksum string) error {
	if _, err := s.execWithRetry(ctx, "DELETE FROM hashes WHERE checksum = ?", checksum); err != nil {
		return fmt.Errorf("remove hash: %w", err)
	}
	return nil
}

// RemoveHashByPath deletes every mapping that points at path.
func (s *Store) RemoveHashByPath(ctx context.Context, path string) (int64, error) {
	res, err := s.execWithRetry(ctx, "DELETE FROM hashes WHERE path = ?", path)
	if err != nil {
		return 0, fmt.Errorf("remove hash by path: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Hashes returns all recorded mappings ordered by path.
func (s *Store) Hashes(ctx context.Context) ([]HashEntry, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, "SELECT checksum, path, updated_at FROM hashes ORDER BY path, checksum")
	if err != nil {
		return nil, fmt.Errorf("list hashes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []HashEntry
	for rows.Next() {
		var e HashEntry
		if err := rows.Scan(&e.Checksum, &e.Path, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan hash: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ResetHashes removes every mapping. Used before regenerating the database.
func (s *Store) ResetHashes(ctx context.Context) error {
	if _, err := s.execWithRetry(ctx, "DELETE FROM hashes"); err != nil {
		return fmt.Errorf("reset hashes: %w", err)
	}
	return nil
}

// ReplaceHashes swaps the whole index for entries in a single transaction.
func (s *Store) ReplaceHashes(ctx context.Context, entries []HashEntry) error {
	ctx = ensureContext(ctx)
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM hashes"); err != nil {
			return err
		}
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO hashes (checksum, path, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT(checksum) DO UPDATE SET path = excluded.path, updated_at = excluded.updated_at`)
		if err != nil {
			return err
		}
		defer func() { _ = stmt.Close() }()
		now := timestamp()
		for _, e := range entries {
			if strings.TrimSpace(e.Checksum) == "" {
				continue
			}
			if _, err := stmt.ExecContext(ctx, e.Checksum, e.Path, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("replace hashes: %w", err)
	}
	return nil
}
