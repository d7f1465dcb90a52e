package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pairplay/pairplay/internal/domain/credit"
)

// CreditRepository implements credit.Repository. The ledger table is
// append-only; nothing here updates or deletes entries.
type CreditRepository struct {
	db *DB
}

func NewCreditRepository(db *DB) *CreditRepository {
	return &CreditRepository{db: db}
}

func (r *CreditRepository) InsertEntry(ctx context.Context, e *credit.LedgerEntry) error {
	_, err := r.db.q(ctx).Exec(ctx, `
		INSERT INTO credit_ledger
		(entry_id, user_id, period_id, proposal_id, week_index, entry_type, amount, note, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, e.EntryID, e.UserID, e.PeriodID, e.ProposalID, e.WeekIndex, e.Type, e.Amount, e.Note, e.CreatedAt)
	return err
}

// AddToBalance is additive at the database, so concurrent settlements for
// the same participant serialize on the balance row instead of losing
// updates.
func (r *CreditRepository) AddToBalance(ctx context.Context, userID uuid.UUID, delta int) error {
	_, err := r.db.q(ctx).Exec(ctx, `
		INSERT INTO credit_balances (user_id, balance) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET balance = credit_balances.balance + EXCLUDED.balance
	`, userID, delta)
	return err
}

func (r *CreditRepository) SetBalance(ctx context.Context, userID uuid.UUID, balance int) error {
	_, err := r.db.q(ctx).Exec(ctx, `
		INSERT INTO credit_balances (user_id, balance) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET balance = EXCLUDED.balance
	`, userID, balance)
	return err
}

func (r *CreditRepository) GetBalance(ctx context.Context, userID uuid.UUID) (int, error) {
	row := r.db.q(ctx).QueryRow(ctx, `SELECT balance FROM credit_balances WHERE user_id=$1`, userID)
	var balance int
	if err := row.Scan(&balance); err != nil {
		if err == pgx.ErrNoRows {
			return 0, nil
		}
		return 0, err
	}
	return balance, nil
}

// GetBalanceForUpdate creates the row at zero when absent, then locks it
// for the rest of the enclosing transaction.
func (r *CreditRepository) GetBalanceForUpdate(ctx context.Context, userID uuid.UUID) (int, error) {
	q := r.db.q(ctx)
	if _, err := q.Exec(ctx, `
		INSERT INTO credit_balances (user_id, balance) VALUES ($1, 0)
		ON CONFLICT (user_id) DO NOTHING
	`, userID); err != nil {
		return 0, err
	}
	row := q.QueryRow(ctx, `SELECT balance FROM credit_balances WHERE user_id=$1 FOR UPDATE`, userID)
	var balance int
	if err := row.Scan(&balance); err != nil {
		return 0, err
	}
	return balance, nil
}

func (r *CreditRepository) SumEntries(ctx context.Context, userID uuid.UUID) (int, error) {
	row := r.db.q(ctx).QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0) FROM credit_ledger WHERE user_id=$1`, userID)
	var sum int
	if err := row.Scan(&sum); err != nil {
		return 0, err
	}
	return sum, nil
}

func (r *CreditRepository) ListEntries(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*credit.LedgerEntry, error) {
	rows, err := r.db.q(ctx).Query(ctx, `
		SELECT id, entry_id, user_id, period_id, proposal_id, week_index, entry_type, amount, note, created_at
		FROM credit_ledger
		WHERE user_id=$1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []*credit.LedgerEntry
	for rows.Next() {
		e, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *CreditRepository) CountEntries(ctx context.Context, userID uuid.UUID) (int, error) {
	row := r.db.q(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM credit_ledger WHERE user_id=$1`, userID)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *CreditRepository) HasPeriodGrant(ctx context.Context, userID, periodID uuid.UUID, week int) (bool, error) {
	row := r.db.q(ctx).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM credit_ledger
			WHERE user_id=$1 AND period_id=$2 AND week_index=$3 AND entry_type=$4
		)
	`, userID, periodID, week, credit.EntryPeriodBaseGrant)
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func scanLedgerEntry(row pgx.Row) (*credit.LedgerEntry, error) {
	var e credit.LedgerEntry
	var periodID, proposalID *uuid.UUID
	var weekIndex *int
	var note *string
	if err := row.Scan(&e.ID, &e.EntryID, &e.UserID, &periodID, &proposalID, &weekIndex, &e.Type, &e.Amount, &note, &e.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	e.PeriodID = periodID
	e.ProposalID = proposalID
	e.WeekIndex = weekIndex
	e.Note = note
	return &e, nil
}
