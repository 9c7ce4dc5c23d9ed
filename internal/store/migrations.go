package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/campolibro/campolibro/internal/ledger"
)

func (s *Store) migrate(ctx context.Context) error {
	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		)
	`); err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}

	var version int
	err = tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	if version < 1 {
		if err := migrateV1(ctx, tx); err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}

	return tx.Commit()
}

func migrateV1(ctx context.Context, tx *sql.Tx) error {
	stmts := []string{
		// Chart of accounts
		`CREATE TABLE IF NOT EXISTS accounts (
			code        TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			kind        TEXT NOT NULL CHECK (kind IN ('asset','liability','equity','income','expense')),
			level       INTEGER NOT NULL,
			parent_code TEXT REFERENCES accounts(code),
			postable    INTEGER NOT NULL DEFAULT 0,
			currency    TEXT NOT NULL DEFAULT '',
			created_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_accounts_kind ON accounts(kind)`,
		`CREATE INDEX IF NOT EXISTS idx_accounts_parent ON accounts(parent_code)`,

		// Journal entries
		`CREATE TABLE IF NOT EXISTS journal_entries (
			id          TEXT PRIMARY KEY,
			request_id  TEXT UNIQUE,
			date        TEXT NOT NULL,
			description TEXT NOT NULL,
			status      TEXT NOT NULL CHECK (status IN ('draft','posted','voided')),
			actor       TEXT NOT NULL DEFAULT '',
			created_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_date ON journal_entries(date)`,

		// Journal lines; amounts are decimal strings, summed in Go
		`CREATE TABLE IF NOT EXISTS journal_lines (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			entry_id       TEXT NOT NULL REFERENCES journal_entries(id),
			account_code   TEXT NOT NULL REFERENCES accounts(code),
			direction      TEXT NOT NULL CHECK (direction IN ('debit','credit')),
			amount         TEXT NOT NULL,
			currency       TEXT NOT NULL,
			third_party_id TEXT,
			cost_center    TEXT,
			created_at     TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_lines_entry ON journal_lines(entry_id)`,
		`CREATE INDEX IF NOT EXISTS idx_lines_account ON journal_lines(account_code)`,
		`CREATE INDEX IF NOT EXISTS idx_lines_party ON journal_lines(third_party_id)`,

		// Third parties with running balances
		`CREATE TABLE IF NOT EXISTS third_parties (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			kind       TEXT NOT NULL CHECK (kind IN ('customer','supplier','both')),
			receivable TEXT NOT NULL DEFAULT '0',
			payable    TEXT NOT NULL DEFAULT '0',
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
		)`,

		// Plots and geometry versions
		`CREATE TABLE IF NOT EXISTS plots (
			id         TEXT PRIMARY KEY,
			field_id   TEXT NOT NULL,
			name       TEXT NOT NULL,
			code       TEXT NOT NULL UNIQUE,
			area_ha    REAL NOT NULL,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_plots_field ON plots(field_id)`,

		`CREATE TABLE IF NOT EXISTS plot_versions (
			plot_id    TEXT NOT NULL REFERENCES plots(id),
			version    INTEGER NOT NULL CHECK (version >= 1),
			geometry   TEXT NOT NULL,
			area_ha    REAL NOT NULL,
			changed_at TEXT NOT NULL,
			changed_by TEXT NOT NULL DEFAULT '',
			reason     TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (plot_id, version)
		)`,

		// Trigger: posted entries are immutable — no new lines
		`CREATE TRIGGER IF NOT EXISTS trg_immutable_lines_insert
		BEFORE INSERT ON journal_lines
		WHEN (SELECT status FROM journal_entries WHERE id = NEW.entry_id) IN ('posted','voided')
		BEGIN
			SELECT RAISE(ABORT, 'cannot add lines to a posted entry');
		END`,

		// Trigger: no line deletion once posted
		`CREATE TRIGGER IF NOT EXISTS trg_immutable_lines_delete
		BEFORE DELETE ON journal_lines
		WHEN (SELECT status FROM journal_entries WHERE id = OLD.entry_id) IN ('posted','voided')
		BEGIN
			SELECT RAISE(ABORT, 'cannot remove lines from a posted entry');
		END`,

		// Trigger: no line mutation once posted
		`CREATE TRIGGER IF NOT EXISTS trg_immutable_lines_update
		BEFORE UPDATE ON journal_lines
		WHEN (SELECT status FROM journal_entries WHERE id = OLD.entry_id) IN ('posted','voided')
		BEGIN
			SELECT RAISE(ABORT, 'cannot modify lines of a posted entry');
		END`,

		// Trigger: geometry history is append-only
		`CREATE TRIGGER IF NOT EXISTS trg_immutable_versions_update
		BEFORE UPDATE ON plot_versions
		BEGIN
			SELECT RAISE(ABORT, 'geometry versions are immutable');
		END`,

		`CREATE TRIGGER IF NOT EXISTS trg_immutable_versions_delete
		BEFORE DELETE ON plot_versions
		BEGIN
			SELECT RAISE(ABORT, 'geometry versions are immutable');
		END`,

		`INSERT INTO schema_version (version) VALUES (1)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:60], err)
		}
	}

	// Seed the agricultural chart. Parents come before children in the slice,
	// so the FK on parent_code holds during the insert loop.
	for _, entry := range ledger.PredefinedChart {
		level, parent, err := ledger.ParseCode(entry.Code)
		if err != nil {
			return fmt.Errorf("seed chart %s: %w", entry.Code, err)
		}
		postable := 0
		if level == ledger.PostableLevel {
			postable = 1
		}
		var parentVal any
		if parent != "" {
			parentVal = parent
		}
		_, err = tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO accounts (code, name, kind, level, parent_code, postable) VALUES (?, ?, ?, ?, ?, ?)`,
			entry.Code, entry.Name, string(entry.Kind), level, parentVal, postable,
		)
		if err != nil {
			return fmt.Errorf("seed account %s: %w", entry.Code, err)
		}
	}

	return nil
}
