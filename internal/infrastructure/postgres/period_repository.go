package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pairplay/pairplay/internal/domain/period"
)

// PeriodRepository implements period.Repository.
type PeriodRepository struct {
	db *DB
}

func NewPeriodRepository(db *DB) *PeriodRepository {
	return &PeriodRepository{db: db}
}

func (r *PeriodRepository) Create(ctx context.Context, p *period.Period) error {
	_, err := r.db.q(ctx).Exec(ctx, `
		INSERT INTO periods
		(period_id, period_type, status, start_date, end_date, weekly_base_credits, cards_per_week, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, p.PeriodID, p.Type, p.Status, p.StartDate, p.EndDate, p.WeeklyBaseCredits, p.CardsPerWeek, p.CreatedAt)
	return err
}

func (r *PeriodRepository) Update(ctx context.Context, p *period.Period) error {
	_, err := r.db.q(ctx).Exec(ctx, `
		UPDATE periods
		SET period_type=$1, status=$2, start_date=$3, end_date=$4, weekly_base_credits=$5, cards_per_week=$6
		WHERE period_id=$7
	`, p.Type, p.Status, p.StartDate, p.EndDate, p.WeeklyBaseCredits, p.CardsPerWeek, p.PeriodID)
	return err
}

func (r *PeriodRepository) GetByID(ctx context.Context, periodID uuid.UUID) (*period.Period, error) {
	row := r.db.q(ctx).QueryRow(ctx, `
		SELECT id, period_id, period_type, status, start_date, end_date, weekly_base_credits, cards_per_week, created_at
		FROM periods WHERE period_id=$1
	`, periodID)
	return scanPeriod(row)
}

func (r *PeriodRepository) GetActive(ctx context.Context) (*period.Period, error) {
	row := r.db.q(ctx).QueryRow(ctx, `
		SELECT id, period_id, period_type, status, start_date, end_date, weekly_base_credits, cards_per_week, created_at
		FROM periods WHERE status='ACTIVE'
		ORDER BY created_at DESC LIMIT 1
	`)
	return scanPeriod(row)
}

func (r *PeriodRepository) List(ctx context.Context, status *period.Status, limit, offset int) ([]*period.Period, error) {
	query := `SELECT id, period_id, period_type, status, start_date, end_date, weekly_base_credits, cards_per_week, created_at FROM periods`
	args := []interface{}{}
	idx := 1
	if status != nil {
		query += " WHERE status=$" + itoa(idx)
		args = append(args, *status)
		idx++
	}
	query += " ORDER BY created_at DESC LIMIT $" + itoa(idx) + " OFFSET $" + itoa(idx+1)
	args = append(args, limit, offset)

	rows, err := r.db.q(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var periods []*period.Period
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, err
		}
		periods = append(periods, p)
	}
	return periods, rows.Err()
}

func (r *PeriodRepository) Count(ctx context.Context, status *period.Status) (int, error) {
	query := `SELECT COUNT(*) FROM periods`
	args := []interface{}{}
	if status != nil {
		query += " WHERE status=$1"
		args = append(args, *status)
	}
	row := r.db.q(ctx).QueryRow(ctx, query, args...)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func scanPeriod(row pgx.Row) (*period.Period, error) {
	var p period.Period
	if err := row.Scan(&p.ID, &p.PeriodID, &p.Type, &p.Status, &p.StartDate, &p.EndDate, &p.WeeklyBaseCredits, &p.CardsPerWeek, &p.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}
