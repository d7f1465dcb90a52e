package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pairplay/pairplay/internal/domain/card"
)

// CardRepository implements card.Repository.
type CardRepository struct {
	db *DB
}

func NewCardRepository(db *DB) *CardRepository {
	return &CardRepository{db: db}
}

func (r *CardRepository) Create(ctx context.Context, c *card.Card) error {
	_, err := r.db.q(ctx).Exec(ctx, `
		INSERT INTO cards
		(card_id, title, description, enabled, created_by, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, c.CardID, c.Title, c.Description, c.Enabled, c.CreatedBy, c.CreatedAt, c.UpdatedAt)
	return err
}

func (r *CardRepository) Update(ctx context.Context, c *card.Card) error {
	_, err := r.db.q(ctx).Exec(ctx, `
		UPDATE cards
		SET title=$1, description=$2, enabled=$3, updated_at=$4
		WHERE card_id=$5
	`, c.Title, c.Description, c.Enabled, c.UpdatedAt, c.CardID)
	return err
}

func (r *CardRepository) GetByID(ctx context.Context, cardID uuid.UUID) (*card.Card, error) {
	row := r.db.q(ctx).QueryRow(ctx, `
		SELECT id, card_id, title, description, enabled, created_by, created_at, updated_at
		FROM cards WHERE card_id=$1
	`, cardID)
	return scanCard(row)
}

func (r *CardRepository) Delete(ctx context.Context, cardID uuid.UUID) error {
	_, err := r.db.q(ctx).Exec(ctx, `DELETE FROM cards WHERE card_id=$1`, cardID)
	return err
}

func (r *CardRepository) List(ctx context.Context, enabledOnly bool, limit, offset int) ([]*card.Card, error) {
	query := `SELECT id, card_id, title, description, enabled, created_by, created_at, updated_at FROM cards`
	args := []interface{}{}
	idx := 1
	if enabledOnly {
		query += " WHERE enabled=TRUE"
	}
	query += " ORDER BY created_at DESC LIMIT $" + itoa(idx) + " OFFSET $" + itoa(idx+1)
	args = append(args, limit, offset)

	rows, err := r.db.q(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var cards []*card.Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

func (r *CardRepository) Count(ctx context.Context, enabledOnly bool) (int, error) {
	query := `SELECT COUNT(*) FROM cards`
	if enabledOnly {
		query += " WHERE enabled=TRUE"
	}
	row := r.db.q(ctx).QueryRow(ctx, query)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func scanCard(row pgx.Row) (*card.Card, error) {
	var c card.Card
	var createdBy *uuid.UUID
	if err := row.Scan(&c.ID, &c.CardID, &c.Title, &c.Description, &c.Enabled, &createdBy, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	c.CreatedBy = createdBy
	return &c, nil
}
