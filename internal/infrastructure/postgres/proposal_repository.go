package postgres

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pairplay/pairplay/internal/domain/challenge"
)

// ProposalRepository implements challenge.Repository.
type ProposalRepository struct {
	db *DB
}

func NewProposalRepository(db *DB) *ProposalRepository {
	return &ProposalRepository{db: db}
}

const proposalColumns = `id, proposal_id, period_id, week_index, proposer_id, recipient_id, card_id, details, credit_cost, status, created_at, responded_at, completed_requested_at, completed_confirmed_at`

func (r *ProposalRepository) Create(ctx context.Context, p *challenge.Proposal) error {
	details, err := marshalDetails(p.Details)
	if err != nil {
		return err
	}
	_, err = r.db.q(ctx).Exec(ctx, `
		INSERT INTO proposals
		(proposal_id, period_id, week_index, proposer_id, recipient_id, card_id, details, credit_cost, status, created_at, responded_at, completed_requested_at, completed_confirmed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`, p.ProposalID, p.PeriodID, p.WeekIndex, p.ProposerID, p.RecipientID, p.CardID, details, p.CreditCost, p.Status, p.CreatedAt, p.RespondedAt, p.CompletedRequestedAt, p.CompletedConfirmedAt)
	return err
}

func (r *ProposalRepository) Update(ctx context.Context, p *challenge.Proposal) error {
	details, err := marshalDetails(p.Details)
	if err != nil {
		return err
	}
	_, err = r.db.q(ctx).Exec(ctx, `
		UPDATE proposals
		SET details=$1, credit_cost=$2, status=$3, responded_at=$4, completed_requested_at=$5, completed_confirmed_at=$6
		WHERE proposal_id=$7
	`, details, p.CreditCost, p.Status, p.RespondedAt, p.CompletedRequestedAt, p.CompletedConfirmedAt, p.ProposalID)
	return err
}

func (r *ProposalRepository) GetByID(ctx context.Context, proposalID uuid.UUID) (*challenge.Proposal, error) {
	row := r.db.q(ctx).QueryRow(ctx, `
		SELECT `+proposalColumns+` FROM proposals WHERE proposal_id=$1
	`, proposalID)
	return scanProposal(row)
}

// GetByIDForUpdate locks the proposal row for the enclosing transaction, so
// two concurrent transitions on the same proposal serialize.
func (r *ProposalRepository) GetByIDForUpdate(ctx context.Context, proposalID uuid.UUID) (*challenge.Proposal, error) {
	row := r.db.q(ctx).QueryRow(ctx, `
		SELECT `+proposalColumns+` FROM proposals WHERE proposal_id=$1 FOR UPDATE
	`, proposalID)
	return scanProposal(row)
}

func (r *ProposalRepository) Delete(ctx context.Context, proposalID uuid.UUID) error {
	_, err := r.db.q(ctx).Exec(ctx, `DELETE FROM proposals WHERE proposal_id=$1`, proposalID)
	return err
}

func (r *ProposalRepository) List(ctx context.Context, filter challenge.Filter, limit, offset int) ([]*challenge.Proposal, error) {
	query := `SELECT ` + proposalColumns + ` FROM proposals`
	query, args, idx := applyProposalFilter(query, filter)
	query += " ORDER BY created_at DESC LIMIT $" + itoa(idx) + " OFFSET $" + itoa(idx+1)
	args = append(args, limit, offset)

	rows, err := r.db.q(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var proposals []*challenge.Proposal
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, err
		}
		proposals = append(proposals, p)
	}
	return proposals, rows.Err()
}

func (r *ProposalRepository) Count(ctx context.Context, filter challenge.Filter) (int, error) {
	query := `SELECT COUNT(*) FROM proposals`
	query, args, _ := applyProposalFilter(query, filter)
	row := r.db.q(ctx).QueryRow(ctx, query, args...)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func applyProposalFilter(query string, filter challenge.Filter) (string, []interface{}, int) {
	args := []interface{}{}
	idx := 1
	if filter.ProposerID != nil {
		query += addWhere(query) + " proposer_id=$" + itoa(idx)
		args = append(args, *filter.ProposerID)
		idx++
	}
	if filter.RecipientID != nil {
		query += addWhere(query) + " recipient_id=$" + itoa(idx)
		args = append(args, *filter.RecipientID)
		idx++
	}
	if filter.PeriodID != nil {
		query += addWhere(query) + " period_id=$" + itoa(idx)
		args = append(args, *filter.PeriodID)
		idx++
	}
	if filter.Status != nil {
		query += addWhere(query) + " status=$" + itoa(idx)
		args = append(args, *filter.Status)
		idx++
	}
	return query, args, idx
}

func marshalDetails(d *challenge.Details) ([]byte, error) {
	if d == nil {
		return nil, nil
	}
	return json.Marshal(d)
}

func scanProposal(row pgx.Row) (*challenge.Proposal, error) {
	var p challenge.Proposal
	var details json.RawMessage
	if err := row.Scan(&p.ID, &p.ProposalID, &p.PeriodID, &p.WeekIndex, &p.ProposerID, &p.RecipientID, &p.CardID, &details, &p.CreditCost, &p.Status, &p.CreatedAt, &p.RespondedAt, &p.CompletedRequestedAt, &p.CompletedConfirmedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if len(details) > 0 {
		var d challenge.Details
		if err := json.Unmarshal(details, &d); err != nil {
			return nil, err
		}
		p.Details = &d
	}
	return &p, nil
}
