package transaction

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallyup/tallyup/internal/balance"
	"github.com/tallyup/tallyup/internal/transaction/split"
)

// Common errors
var (
	ErrTransactionNotFound  = errors.New("transaction not found")
	ErrNotPayer             = errors.New("only the payer can modify this transaction")
	ErrPayerNotContributing = errors.New("contributions must include the payer")
	ErrContributionMismatch = errors.New("contributions must sum to the transaction amount")
	ErrNegativeContribution = errors.New("contributions must be positive")
)

// contributionTolerance is the allowed drift between the sum of joint
// payments and the transaction amount.
var contributionTolerance = decimal.New(1, -2)

// UserSource resolves user IDs to display names and currency preferences.
// Implemented by the user service.
type UserSource interface {
	UsernamesByIDs(ctx context.Context, ids []int64) (map[int64]string, error)
	DefaultCurrencyByID(ctx context.Context, id int64) (string, error)
}

// GroupSource resolves a group's default currency. Implemented by the group
// repository.
type GroupSource interface {
	DefaultCurrency(ctx context.Context, groupID int64) (string, error)
}

// Service handles transaction business logic
type Service struct {
	repo         *Repository
	users        UserSource
	groups       GroupSource
	splitFactory *split.Factory
}

// NewService creates a new transaction service with dependencies injected
func NewService(repo *Repository, users UserSource, groups GroupSource, splitFactory *split.Factory) *Service {
	return &Service{
		repo:         repo,
		users:        users,
		groups:       groups,
		splitFactory: splitFactory,
	}
}

// Create validates the split, calculates every participant's share, and
// stores the transaction with its contributions and splits atomically
func (s *Service) Create(ctx context.Context, payerID int64, req *CreateTransactionRequest) (*TransactionWithDetails, error) {
	strategy, err := s.splitFactory.CreateFromString(req.SplitMethod)
	if err != nil {
		return nil, err
	}

	inputs, usernames, err := s.splitInputs(ctx, req.Participants)
	if err != nil {
		return nil, err
	}

	if err := strategy.Validate(req.Amount, inputs); err != nil {
		return nil, err
	}
	details, err := strategy.Calculate(req.Amount, payerID, inputs)
	if err != nil {
		return nil, err
	}

	contributions, err := buildContributions(payerID, req.Amount, req.Contributions)
	if err != nil {
		return nil, err
	}

	occurredOn, err := parseOccurredOn(req.OccurredOn)
	if err != nil {
		return nil, err
	}

	currency, err := s.resolveCurrency(ctx, payerID, req)
	if err != nil {
		return nil, err
	}

	t := &Transaction{
		GroupID:      req.GroupID,
		Description:  req.Description,
		Amount:       req.Amount,
		CurrencyCode: currency,
		SplitMethod:  strategy.Type(),
		OccurredOn:   occurredOn,
	}

	result, err := s.repo.CreateWithSplits(ctx, payerID, t, contributions, toParticipantSplits(details))
	if err != nil {
		return nil, err
	}

	fillUsernames(result, usernames)
	return result, nil
}

// Preview calculates shares without persisting. Calculate is best-effort for
// partially entered inputs, so the response carries the shares alongside the
// validation verdict instead of failing outright.
func (s *Service) Preview(ctx context.Context, currentUserID int64, req *PreviewSplitRequest) (*PreviewSplitResponse, error) {
	strategy, err := s.splitFactory.CreateFromString(req.SplitMethod)
	if err != nil {
		return nil, err
	}

	inputs, usernames, err := s.splitInputs(ctx, req.Participants)
	if err != nil {
		return nil, err
	}

	resp := &PreviewSplitResponse{
		Amount:      req.Amount,
		SplitMethod: strategy.Type(),
		Valid:       true,
	}
	if verr := strategy.Validate(req.Amount, inputs); verr != nil {
		resp.Valid = false
		resp.Error = verr.Error()
	}

	details, err := strategy.Calculate(req.Amount, currentUserID, inputs)
	if err != nil {
		return nil, err
	}

	resp.Splits = make([]*SplitResponse, len(details))
	for i, d := range details {
		resp.Splits[i] = &SplitResponse{
			UserID:     d.UserID,
			Username:   usernames[d.UserID],
			Amount:     d.Amount,
			Percentage: d.Percentage,
			Shares:     d.Shares,
			Adjustment: d.Adjustment,
		}
	}

	return resp, nil
}

// GetByID retrieves a transaction with its contributions and splits
func (s *Service) GetByID(ctx context.Context, id int64) (*TransactionWithDetails, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrTransactionNotFound
	}

	contributions, err := s.repo.GetContributions(ctx, id)
	if err != nil {
		return nil, err
	}
	splits, err := s.repo.GetSplits(ctx, id)
	if err != nil {
		return nil, err
	}

	return &TransactionWithDetails{
		Transaction:   t,
		Contributions: contributions,
		Splits:        splits,
	}, nil
}

// ListByGroupID retrieves transactions for a group with pagination
func (s *Service) ListByGroupID(ctx context.Context, groupID int64, page, perPage int) ([]*Transaction, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.ListByGroupID(ctx, groupID, perPage, offset)
}

// ListBetweenUsers retrieves the shared history between two users, oldest
// first, with contributions and splits attached
func (s *Service) ListBetweenUsers(ctx context.Context, userID, otherUserID int64) ([]*TransactionWithDetails, error) {
	transactions, err := s.repo.ListMutual(ctx, userID, otherUserID)
	if err != nil {
		return nil, err
	}
	return s.repo.AttachDetails(ctx, transactions)
}

// Update lets the payer edit a transaction. Description and date edits keep
// the stored splits; changing the amount, method, or participants recomputes
// and replaces them.
func (s *Service) Update(ctx context.Context, id, userID int64, req *UpdateTransactionRequest) (*TransactionWithDetails, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrTransactionNotFound
	}
	if existing.PayerID != userID {
		return nil, ErrNotPayer
	}

	if req.Amount == nil && req.SplitMethod == nil && len(req.Participants) == 0 {
		t, err := s.repo.UpdateMeta(ctx, id, req.Description, req.OccurredOn)
		if err != nil {
			return nil, err
		}
		return s.GetByID(ctx, t.ID)
	}

	// Resplit: fall back to the stored values for anything not supplied
	amount := existing.Amount
	if req.Amount != nil {
		amount = *req.Amount
	}
	method := string(existing.SplitMethod)
	if req.SplitMethod != nil {
		method = *req.SplitMethod
	}
	if len(req.Participants) == 0 {
		return nil, split.ErrNoParticipants
	}

	strategy, err := s.splitFactory.CreateFromString(method)
	if err != nil {
		return nil, err
	}

	inputs, usernames, err := s.splitInputs(ctx, req.Participants)
	if err != nil {
		return nil, err
	}

	if err := strategy.Validate(amount, inputs); err != nil {
		return nil, err
	}
	details, err := strategy.Calculate(amount, existing.PayerID, inputs)
	if err != nil {
		return nil, err
	}

	contributions, err := buildContributions(existing.PayerID, amount, req.Contributions)
	if err != nil {
		return nil, err
	}

	t := &Transaction{
		ID:           existing.ID,
		GroupID:      existing.GroupID,
		PayerID:      existing.PayerID,
		CurrencyCode: existing.CurrencyCode,
		CreatedAt:    existing.CreatedAt,
		Amount:       amount,
		SplitMethod:  strategy.Type(),
		Description:  existing.Description,
		OccurredOn:   existing.OccurredOn,
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.OccurredOn != nil {
		occurredOn, err := parseOccurredOn(*req.OccurredOn)
		if err != nil {
			return nil, err
		}
		t.OccurredOn = occurredOn
	}

	result, err := s.repo.UpdateWithSplits(ctx, t, contributions, toParticipantSplits(details))
	if err != nil {
		return nil, err
	}

	fillUsernames(result, usernames)
	return result, nil
}

// Delete removes a transaction; only the payer may do this
func (s *Service) Delete(ctx context.Context, id, userID int64) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrTransactionNotFound
	}
	if existing.PayerID != userID {
		return ErrNotPayer
	}

	return s.repo.Delete(ctx, id)
}

// GroupBalanceRecords returns a group's full transaction history as balance
// records. Satisfies the group package's TransactionSource.
func (s *Service) GroupBalanceRecords(ctx context.Context, groupID int64) ([]balance.Transaction, error) {
	transactions, err := s.repo.ListGroupTransactions(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return s.toBalanceRecords(ctx, transactions)
}

// MutualBalanceRecords returns the shared history between two users as
// balance records. Satisfies the settlement package's TransactionSource.
func (s *Service) MutualBalanceRecords(ctx context.Context, userID, otherUserID int64) ([]balance.Transaction, error) {
	transactions, err := s.repo.ListMutual(ctx, userID, otherUserID)
	if err != nil {
		return nil, err
	}
	return s.toBalanceRecords(ctx, transactions)
}

func (s *Service) toBalanceRecords(ctx context.Context, transactions []*Transaction) ([]balance.Transaction, error) {
	detailed, err := s.repo.AttachDetails(ctx, transactions)
	if err != nil {
		return nil, err
	}

	records := make([]balance.Transaction, len(detailed))
	for i, td := range detailed {
		records[i] = td.BalanceRecord()
	}
	return records, nil
}

// splitInputs resolves participant usernames and converts the request shapes
// into split inputs. Usernames feed the deterministic remainder ordering, so
// they are looked up before calculation rather than after.
func (s *Service) splitInputs(ctx context.Context, participants []*SplitParticipant) ([]split.Input, map[int64]string, error) {
	ids := make([]int64, len(participants))
	for i, p := range participants {
		ids[i] = p.UserID
	}

	usernames, err := s.users.UsernamesByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}

	inputs := make([]split.Input, len(participants))
	for i, p := range participants {
		inputs[i] = p.ToSplitInput(usernames[p.UserID])
	}
	return inputs, usernames, nil
}

// resolveCurrency fills in an omitted currency code: group transactions take
// the group's default, personal ones the payer's.
func (s *Service) resolveCurrency(ctx context.Context, payerID int64, req *CreateTransactionRequest) (string, error) {
	if req.CurrencyCode != "" {
		return req.CurrencyCode, nil
	}

	if req.GroupID != nil {
		currency, err := s.groups.DefaultCurrency(ctx, *req.GroupID)
		if err != nil {
			return "", err
		}
		if currency != "" {
			return currency, nil
		}
	}

	currency, err := s.users.DefaultCurrencyByID(ctx, payerID)
	if err != nil {
		return "", err
	}
	if currency == "" {
		currency = "USD"
	}
	return currency, nil
}

func buildContributions(payerID int64, amount decimal.Decimal, inputs []*ContributionInput) ([]*PayerContribution, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	sum := decimal.Zero
	payerIncluded := false
	contributions := make([]*PayerContribution, len(inputs))
	for i, in := range inputs {
		if !in.Amount.IsPositive() {
			return nil, ErrNegativeContribution
		}
		if in.UserID == payerID {
			payerIncluded = true
		}
		sum = sum.Add(in.Amount)
		contributions[i] = &PayerContribution{
			UserID: in.UserID,
			Amount: in.Amount,
		}
	}

	if !payerIncluded {
		return nil, ErrPayerNotContributing
	}
	if sum.Sub(amount).Abs().GreaterThanOrEqual(contributionTolerance) {
		return nil, ErrContributionMismatch
	}

	return contributions, nil
}

func toParticipantSplits(details []split.Detail) []*ParticipantSplit {
	splits := make([]*ParticipantSplit, len(details))
	for i, d := range details {
		splits[i] = &ParticipantSplit{
			UserID:     d.UserID,
			Amount:     d.Amount,
			Percentage: d.Percentage,
			Shares:     d.Shares,
			Adjustment: d.Adjustment,
		}
	}
	return splits
}

func fillUsernames(t *TransactionWithDetails, usernames map[int64]string) {
	t.Transaction.PayerUsername = usernames[t.Transaction.PayerID]
	for _, c := range t.Contributions {
		c.Username = usernames[c.UserID]
	}
	for _, s := range t.Splits {
		s.Username = usernames[s.UserID]
	}
}

func parseOccurredOn(value string) (time.Time, error) {
	if value == "" {
		return time.Now().UTC().Truncate(24 * time.Hour), nil
	}
	return time.Parse("2006-01-02", value)
}
