package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
)

// entrySelect joins every entry with its splits so a whole ledger is read in
// one statement, which SQLite serves from a single snapshot.
const entrySelect = `
SELECT e.id, e.group_id, e.kind, e.payer_id, e.description, e.amount, e.strategy,
       e.created_by, e.created_at, s.user_id, s.amount
FROM entries e
JOIN splits s ON s.entry_id = e.id
`

const entryOrder = ` ORDER BY e.created_at, e.rowid, s.position`

// AppendEntry persists an entry and its splits in one transaction.
func (s *SQLiteStore) AppendEntry(ctx context.Context, entry *models.Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO entries (id, group_id, kind, payer_id, description, amount, strategy, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.GroupID, string(entry.Kind), entry.PayerID, entry.Description,
		entry.Amount, string(entry.Strategy), entry.CreatedBy, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}

	for i, split := range entry.Splits {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO splits (entry_id, position, user_id, amount) VALUES (?, ?, ?, ?)",
			entry.ID, i, split.UserID, split.Amount,
		)
		if err != nil {
			return fmt.Errorf("failed to insert split: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListEntriesByGroup retrieves the group's ledger in append order.
func (s *SQLiteStore) ListEntriesByGroup(ctx context.Context, groupID string) ([]models.Entry, error) {
	rows, err := s.db.QueryContext(ctx, entrySelect+` WHERE e.group_id = ?`+entryOrder, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries by group: %w", err)
	}
	return scanEntries(rows)
}

// ListEntriesByUser retrieves every entry the user paid or holds a split in.
func (s *SQLiteStore) ListEntriesByUser(ctx context.Context, userID string) ([]models.Entry, error) {
	rows, err := s.db.QueryContext(ctx, entrySelect+
		` WHERE e.id IN (
			SELECT id FROM entries WHERE payer_id = ?
			UNION
			SELECT entry_id FROM splits WHERE user_id = ?
		)`+entryOrder,
		userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries by user: %w", err)
	}
	return scanEntries(rows)
}

// scanEntries folds consecutive rows of the same entry into one record.
func scanEntries(rows *sql.Rows) ([]models.Entry, error) {
	defer rows.Close()

	var entries []models.Entry
	for rows.Next() {
		var (
			e           models.Entry
			kind        string
			strategy    string
			splitUserID string
			splitAmount money.Money
		)
		if err := rows.Scan(&e.ID, &e.GroupID, &kind, &e.PayerID, &e.Description, &e.Amount, &strategy,
			&e.CreatedBy, &e.CreatedAt, &splitUserID, &splitAmount); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}

		split := models.Split{UserID: splitUserID, Amount: splitAmount}
		if n := len(entries); n > 0 && entries[n-1].ID == e.ID {
			entries[n-1].Splits = append(entries[n-1].Splits, split)
			continue
		}

		e.Kind = models.EntryKind(kind)
		e.Strategy = models.Strategy(strategy)
		e.Splits = []models.Split{split}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entries: %w", err)
	}
	return entries, nil
}
