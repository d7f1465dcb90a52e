package negotiation

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appSettlement "github.com/pairplay/pairplay/internal/application/settlement"
	"github.com/pairplay/pairplay/internal/domain/apperror"
	"github.com/pairplay/pairplay/internal/domain/card"
	"github.com/pairplay/pairplay/internal/domain/challenge"
	"github.com/pairplay/pairplay/internal/domain/credit"
)

// fakeTx runs the function directly; atomicity is the database's concern.
type fakeTx struct{}

func (fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memProposalRepo struct {
	proposals map[uuid.UUID]*challenge.Proposal
}

func newMemProposalRepo() *memProposalRepo {
	return &memProposalRepo{proposals: make(map[uuid.UUID]*challenge.Proposal)}
}

func (r *memProposalRepo) Create(ctx context.Context, p *challenge.Proposal) error {
	cp := *p
	r.proposals[p.ProposalID] = &cp
	return nil
}

func (r *memProposalRepo) GetByID(ctx context.Context, id uuid.UUID) (*challenge.Proposal, error) {
	p, ok := r.proposals[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *memProposalRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*challenge.Proposal, error) {
	return r.GetByID(ctx, id)
}

func (r *memProposalRepo) Update(ctx context.Context, p *challenge.Proposal) error {
	cp := *p
	r.proposals[p.ProposalID] = &cp
	return nil
}

func (r *memProposalRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.proposals, id)
	return nil
}

func (r *memProposalRepo) List(ctx context.Context, filter challenge.Filter, limit, offset int) ([]*challenge.Proposal, error) {
	var out []*challenge.Proposal
	for _, p := range r.proposals {
		if filter.ProposerID != nil && p.ProposerID != *filter.ProposerID {
			continue
		}
		if filter.RecipientID != nil && p.RecipientID != *filter.RecipientID {
			continue
		}
		if filter.PeriodID != nil && p.PeriodID != *filter.PeriodID {
			continue
		}
		if filter.Status != nil && p.Status != *filter.Status {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memProposalRepo) Count(ctx context.Context, filter challenge.Filter) (int, error) {
	ps, _ := r.List(ctx, filter, 0, 0)
	return len(ps), nil
}

type memCardRepo struct {
	cards map[uuid.UUID]*card.Card
}

func newMemCardRepo() *memCardRepo {
	return &memCardRepo{cards: make(map[uuid.UUID]*card.Card)}
}

func (r *memCardRepo) Create(ctx context.Context, c *card.Card) error {
	r.cards[c.CardID] = c
	return nil
}

func (r *memCardRepo) Update(ctx context.Context, c *card.Card) error {
	r.cards[c.CardID] = c
	return nil
}

func (r *memCardRepo) GetByID(ctx context.Context, id uuid.UUID) (*card.Card, error) {
	return r.cards[id], nil
}

func (r *memCardRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.cards, id)
	return nil
}

func (r *memCardRepo) List(ctx context.Context, enabledOnly bool, limit, offset int) ([]*card.Card, error) {
	var out []*card.Card
	for _, c := range r.cards {
		if enabledOnly && !c.Enabled {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *memCardRepo) Count(ctx context.Context, enabledOnly bool) (int, error) {
	cs, _ := r.List(ctx, enabledOnly, 0, 0)
	return len(cs), nil
}

type memCreditRepo struct {
	entries  []*credit.LedgerEntry
	balances map[uuid.UUID]int
}

func newMemCreditRepo() *memCreditRepo {
	return &memCreditRepo{balances: make(map[uuid.UUID]int)}
}

func (r *memCreditRepo) InsertEntry(ctx context.Context, e *credit.LedgerEntry) error {
	cp := *e
	r.entries = append(r.entries, &cp)
	return nil
}

func (r *memCreditRepo) AddToBalance(ctx context.Context, userID uuid.UUID, delta int) error {
	r.balances[userID] += delta
	return nil
}

func (r *memCreditRepo) SetBalance(ctx context.Context, userID uuid.UUID, balance int) error {
	r.balances[userID] = balance
	return nil
}

func (r *memCreditRepo) GetBalance(ctx context.Context, userID uuid.UUID) (int, error) {
	return r.balances[userID], nil
}

func (r *memCreditRepo) GetBalanceForUpdate(ctx context.Context, userID uuid.UUID) (int, error) {
	return r.balances[userID], nil
}

func (r *memCreditRepo) HasPeriodGrant(ctx context.Context, userID, periodID uuid.UUID, week int) (bool, error) {
	for _, e := range r.entries {
		if e.UserID == userID && e.Type == credit.EntryPeriodBaseGrant &&
			e.PeriodID != nil && *e.PeriodID == periodID &&
			e.WeekIndex != nil && *e.WeekIndex == week {
			return true, nil
		}
	}
	return false, nil
}

func (r *memCreditRepo) SumEntries(ctx context.Context, userID uuid.UUID) (int, error) {
	sum := 0
	for _, e := range r.entries {
		if e.UserID == userID {
			sum += e.Amount
		}
	}
	return sum, nil
}

func (r *memCreditRepo) ListEntries(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*credit.LedgerEntry, error) {
	var out []*credit.LedgerEntry
	for _, e := range r.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memCreditRepo) CountEntries(ctx context.Context, userID uuid.UUID) (int, error) {
	es, _ := r.ListEntries(ctx, userID, 0, 0)
	return len(es), nil
}

type fixture struct {
	svc       *Service
	proposals *memProposalRepo
	cards     *memCardRepo
	credits   *memCreditRepo
	proposer  uuid.UUID
	recipient uuid.UUID
	periodID  uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	proposals := newMemProposalRepo()
	cards := newMemCardRepo()
	credits := newMemCreditRepo()
	logger := zerolog.Nop()
	settlementSvc := appSettlement.NewService(credits, fakeTx{}, logger)
	svc := NewService(proposals, cards, settlementSvc, fakeTx{}, logger)
	return &fixture{
		svc:       svc,
		proposals: proposals,
		cards:     cards,
		credits:   credits,
		proposer:  uuid.New(),
		recipient: uuid.New(),
		periodID:  uuid.New(),
	}
}

func (f *fixture) propose(t *testing.T) *challenge.Proposal {
	t.Helper()
	details, err := challenge.NewSimpleDetails("cook dinner together", nil)
	require.NoError(t, err)
	p, err := f.svc.Create(context.Background(), CreateInput{
		ProposerID:  f.proposer,
		RecipientID: f.recipient,
		PeriodID:    f.periodID,
		WeekIndex:   1,
		Details:     details,
	})
	require.NoError(t, err)
	return p
}

func TestFullLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.credits.balances[f.proposer] = 5

	p := f.propose(t)
	assert.Equal(t, challenge.StatusProposed, p.Status)
	assert.Nil(t, p.CreditCost)

	cost := 3
	p, err := f.svc.Respond(ctx, p.ProposalID, f.recipient, challenge.StatusAccepted, &cost)
	require.NoError(t, err)
	assert.Equal(t, challenge.StatusAccepted, p.Status)
	require.NotNil(t, p.CreditCost)
	assert.Equal(t, 3, *p.CreditCost)
	assert.NotNil(t, p.RespondedAt)

	balance, _ := f.credits.GetBalance(ctx, f.proposer)
	assert.Equal(t, 2, balance)

	p, err = f.svc.MarkCompleted(ctx, p.ProposalID, f.recipient)
	require.NoError(t, err)
	assert.Equal(t, challenge.StatusCompletedPending, p.Status)

	p, err = f.svc.ConfirmCompletion(ctx, p.ProposalID, f.proposer)
	require.NoError(t, err)
	assert.Equal(t, challenge.StatusCompletedConfirmed, p.Status)

	recipientBalance, _ := f.credits.GetBalance(ctx, f.recipient)
	assert.Equal(t, 3, recipientBalance)

	// ledger and cache agree for both parties
	sum, _ := f.credits.SumEntries(ctx, f.proposer)
	assert.Equal(t, -3, sum)
	sum, _ = f.credits.SumEntries(ctx, f.recipient)
	assert.Equal(t, 3, sum)
}

func TestAcceptInsufficientFundsLeavesStateUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.credits.balances[f.proposer] = 2

	p := f.propose(t)
	cost := 3
	_, err := f.svc.Respond(ctx, p.ProposalID, f.recipient, challenge.StatusAccepted, &cost)

	var funds *credit.InsufficientFundsError
	require.ErrorAs(t, err, &funds)
	assert.Equal(t, 3, funds.Required)
	assert.Equal(t, 2, funds.Available)

	stored, _ := f.proposals.GetByID(ctx, p.ProposalID)
	assert.Equal(t, challenge.StatusProposed, stored.Status)
	assert.Nil(t, stored.CreditCost)

	balance, _ := f.credits.GetBalance(ctx, f.proposer)
	assert.Equal(t, 2, balance)
	assert.Empty(t, f.credits.entries)
}

func TestRespondRequiresRecipient(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.propose(t)
	cost := 2
	_, err := f.svc.Respond(ctx, p.ProposalID, f.proposer, challenge.StatusAccepted, &cost)

	var authz *apperror.AuthorizationError
	assert.ErrorAs(t, err, &authz)
}

func TestAcceptCostBounds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.credits.balances[f.proposer] = 100

	var validation *apperror.ValidationError

	p := f.propose(t)
	_, err := f.svc.Respond(ctx, p.ProposalID, f.recipient, challenge.StatusAccepted, nil)
	assert.ErrorAs(t, err, &validation)

	zero := 0
	_, err = f.svc.Respond(ctx, p.ProposalID, f.recipient, challenge.StatusAccepted, &zero)
	assert.ErrorAs(t, err, &validation)

	eight := 8
	_, err = f.svc.Respond(ctx, p.ProposalID, f.recipient, challenge.StatusAccepted, &eight)
	assert.ErrorAs(t, err, &validation)
}

func TestRespondOnTerminalStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.propose(t)
	_, err := f.svc.Respond(ctx, p.ProposalID, f.recipient, challenge.StatusRejected, nil)
	require.NoError(t, err)

	cost := 2
	_, err = f.svc.Respond(ctx, p.ProposalID, f.recipient, challenge.StatusAccepted, &cost)

	var transition *challenge.InvalidTransitionError
	require.ErrorAs(t, err, &transition)
	assert.Equal(t, challenge.StatusRejected, transition.From)
	assert.Equal(t, challenge.StatusAccepted, transition.To)
}

func TestConfirmRequiresProposer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.credits.balances[f.proposer] = 5

	p := f.propose(t)
	cost := 1
	_, err := f.svc.Respond(ctx, p.ProposalID, f.recipient, challenge.StatusAccepted, &cost)
	require.NoError(t, err)
	_, err = f.svc.MarkCompleted(ctx, p.ProposalID, f.recipient)
	require.NoError(t, err)

	_, err = f.svc.ConfirmCompletion(ctx, p.ProposalID, f.recipient)
	var authz *apperror.AuthorizationError
	assert.ErrorAs(t, err, &authz)
}

func TestCompleteBeforeAccept(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.propose(t)
	_, err := f.svc.MarkCompleted(ctx, p.ProposalID, f.recipient)

	var transition *challenge.InvalidTransitionError
	assert.ErrorAs(t, err, &transition)
}

func TestCreateRequiresCardOrDetails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	var validation *apperror.ValidationError

	_, err := f.svc.Create(ctx, CreateInput{
		ProposerID:  f.proposer,
		RecipientID: f.recipient,
		PeriodID:    f.periodID,
		WeekIndex:   1,
	})
	assert.ErrorAs(t, err, &validation)

	details, _ := challenge.NewSimpleDetails("walk", nil)
	cardID := uuid.New()
	_, err = f.svc.Create(ctx, CreateInput{
		ProposerID:  f.proposer,
		RecipientID: f.recipient,
		PeriodID:    f.periodID,
		WeekIndex:   1,
		CardID:      &cardID,
		Details:     details,
	})
	assert.ErrorAs(t, err, &validation)
}

func TestCreateRejectsSelfProposal(t *testing.T) {
	f := newFixture(t)
	details, _ := challenge.NewSimpleDetails("solo hike", nil)
	_, err := f.svc.Create(context.Background(), CreateInput{
		ProposerID:  f.proposer,
		RecipientID: f.proposer,
		PeriodID:    f.periodID,
		WeekIndex:   1,
		Details:     details,
	})
	var validation *apperror.ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestCreateRejectsDisabledCard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := &card.Card{CardID: uuid.New(), Title: "picnic", Enabled: false}
	require.NoError(t, f.cards.Create(ctx, c))

	_, err := f.svc.Create(ctx, CreateInput{
		ProposerID:  f.proposer,
		RecipientID: f.recipient,
		PeriodID:    f.periodID,
		WeekIndex:   1,
		CardID:      &c.CardID,
	})
	var notFound *apperror.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestUpdateOnlyCustomEditable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.credits.balances[f.proposer] = 5

	p := f.propose(t)
	details, _ := challenge.NewSimpleDetails("revised plan", nil)

	// recipient may not edit
	_, err := f.svc.UpdateDetails(ctx, p.ProposalID, f.recipient, details)
	var authz *apperror.AuthorizationError
	assert.ErrorAs(t, err, &authz)

	// proposer may edit while PROPOSED
	updated, err := f.svc.UpdateDetails(ctx, p.ProposalID, f.proposer, details)
	require.NoError(t, err)
	assert.Equal(t, "revised plan", updated.Details.Title)

	// edits stop at acceptance
	cost := 2
	_, err = f.svc.Respond(ctx, p.ProposalID, f.recipient, challenge.StatusAccepted, &cost)
	require.NoError(t, err)
	_, err = f.svc.UpdateDetails(ctx, p.ProposalID, f.proposer, details)
	var transition *challenge.InvalidTransitionError
	assert.ErrorAs(t, err, &transition)
}

func TestDeleteEditableOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.propose(t)
	_, err := f.svc.Respond(ctx, p.ProposalID, f.recipient, challenge.StatusMaybeLater, nil)
	require.NoError(t, err)

	// MAYBE_LATER proposals stay deletable by the proposer
	require.NoError(t, f.svc.Delete(ctx, p.ProposalID, f.proposer))
	_, err = f.svc.Get(ctx, p.ProposalID)
	var notFound *apperror.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}
