package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PluginEntry is a single queued item owned by a plugin.
type PluginEntry struct {
	Plugin    string
	Key       string
	Value     string
	CreatedAt string
}

// PutPluginEntry queues value under key for plugin, replacing an existing entry.
func (s *Store) PutPluginEntry(ctx context.Context, plugin, key, value string) error {
	if plugin == "" || key == "" {
		return errors.New("put plugin entry: plugin and key are required")
	}
	_, err := s.execWithRetry(ctx,
		`INSERT INTO plugin_entries (plugin, entry_key, value, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(plugin, entry_key) DO UPDATE SET value = excluded.value`,
		plugin, key, value, timestamp(),
	)
	if err != nil {
		return fmt.Errorf("put plugin entry: %w", err)
	}
	return nil
}

// PluginEntries lists the queued entries for plugin in insertion order.
func (s *Store) PluginEntries(ctx context.Context, plugin string) ([]PluginEntry, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		"SELECT plugin, entry_key, value, created_at FROM plugin_entries WHERE plugin = ? ORDER BY created_at, entry_key",
		plugin,
	)
	if err != nil {
		return nil, fmt.Errorf("list plugin entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []PluginEntry
	for rows.Next() {
		var e PluginEntry
		if err := rows.Scan(&e.Plugin, &e.Key, &e.Value, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan plugin entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// TakePluginEntry atomically reads and removes a queued entry. The boolean is
// false when another worker already claimed it.
func (s *Store) TakePluginEntry(ctx context.Context, plugin, key string) (PluginEntry, bool, error) {
	ctx = ensureContext(ctx)
	entry := PluginEntry{Plugin: plugin, Key: key}
	err := retryOnBusy(ctx, func() error {
		return s.db.QueryRowContext(ctx,
			"DELETE FROM plugin_entries WHERE plugin = ? AND entry_key = ? RETURNING value, created_at",
			plugin, key,
		).Scan(&entry.Value, &entry.CreatedAt)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return PluginEntry{}, false, nil
	}
	if err != nil {
		return PluginEntry{}, false, fmt.Errorf("take plugin entry: %w", err)
	}
	return entry, true, nil
}

// DeletePluginEntry removes a queued entry without reading it.
func (s *Store) DeletePluginEntry(ctx context.Context, plugin, key string) error {
	if _, err := s.execWithRetry(ctx,
		"DELETE FROM plugin_entries WHERE plugin = ? AND entry_key = ?", plugin, key,
	); err != nil {
		return fmt.Errorf("delete plugin entry: %w", err)
	}
	return nil
}
