package settlement

import (
	"context"
	"errors"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tallyup/tallyup/internal/balance"
)

// Common errors
var (
	ErrSettlementNotFound = errors.New("settlement not found")
	ErrCannotSettleSelf   = errors.New("cannot record a settlement with yourself")
	ErrNonPositiveAmount  = errors.New("settlement amount must be positive")
	ErrUserNotFound       = errors.New("user not found")
)

// balanceConcurrency caps the parallel per-counterpart balance computations
// in Balances.
const balanceConcurrency = 8

// TransactionSource supplies the shared transaction history a pairwise
// balance is computed from. Implemented by the transaction service.
type TransactionSource interface {
	MutualBalanceRecords(ctx context.Context, userID, otherUserID int64) ([]balance.Transaction, error)
}

// UserSource resolves counterpart display names. Implemented by the user
// service.
type UserSource interface {
	UsernamesByIDs(ctx context.Context, ids []int64) (map[int64]string, error)
}

// Service handles settlement business logic
type Service struct {
	repo  *Repository
	txs   TransactionSource
	users UserSource
}

// NewService creates a new settlement service with dependencies injected
func NewService(repo *Repository, txs TransactionSource, users UserSource) *Service {
	return &Service{repo: repo, txs: txs, users: users}
}

// Create records a payment from the authenticated user to another user.
// Overpaying is allowed: the surplus simply flips the direction of the debt.
func (s *Service) Create(ctx context.Context, fromUserID int64, req *CreateSettlementRequest) (*Settlement, error) {
	if req.ToUserID == fromUserID {
		return nil, ErrCannotSettleSelf
	}
	if !req.Amount.IsPositive() {
		return nil, ErrNonPositiveAmount
	}

	settledOn := time.Now().UTC().Truncate(24 * time.Hour)
	if req.SettledOn != "" {
		parsed, err := time.Parse("2006-01-02", req.SettledOn)
		if err != nil {
			return nil, err
		}
		settledOn = parsed
	}

	names, err := s.users.UsernamesByIDs(ctx, []int64{fromUserID, req.ToUserID})
	if err != nil {
		return nil, err
	}
	if _, ok := names[req.ToUserID]; !ok {
		return nil, ErrUserNotFound
	}

	created, err := s.repo.Create(ctx, fromUserID, req.ToUserID, req.Amount, req.CurrencyCode, settledOn, req.Note)
	if err != nil {
		return nil, err
	}
	created.FromUsername = names[fromUserID]
	created.ToUsername = names[req.ToUserID]

	return created, nil
}

// GetByID retrieves a settlement by its ID
func (s *Service) GetByID(ctx context.Context, id int64) (*Settlement, error) {
	settlement, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if settlement == nil {
		return nil, ErrSettlementNotFound
	}
	return settlement, nil
}

// ListByUserID retrieves settlements the user sent or received with pagination
func (s *Service) ListByUserID(ctx context.Context, userID int64, page, perPage int) ([]*Settlement, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.ListByUserID(ctx, userID, perPage, offset)
}

// ListBetweenUsers retrieves every settlement between two users, oldest first
func (s *Service) ListBetweenUsers(ctx context.Context, userID, otherUserID int64) ([]*Settlement, error) {
	return s.repo.ListBetween(ctx, userID, otherUserID)
}

// BalanceWith computes the user's net position against one other user from
// their full shared history
func (s *Service) BalanceWith(ctx context.Context, userID, otherUserID int64) (*balance.MemberBalance, error) {
	names, err := s.users.UsernamesByIDs(ctx, []int64{otherUserID})
	if err != nil {
		return nil, err
	}
	username, ok := names[otherUserID]
	if !ok {
		return nil, ErrUserNotFound
	}

	bal, err := s.balanceWith(ctx, userID, otherUserID)
	if err != nil {
		return nil, err
	}

	return &balance.MemberBalance{
		UserID:   otherUserID,
		Username: username,
		Balance:  bal,
	}, nil
}

// Balances computes the user's net position against every counterpart. Each
// counterpart's history is independent, so they are computed concurrently.
func (s *Service) Balances(ctx context.Context, userID int64) ([]balance.MemberBalance, error) {
	counterparts, err := s.repo.Counterparts(ctx, userID)
	if err != nil {
		return nil, err
	}

	results := make([]balance.MemberBalance, len(counterparts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(balanceConcurrency)

	for i, cp := range counterparts {
		i, cp := i, cp
		g.Go(func() error {
			bal, err := s.balanceWith(gctx, userID, cp.UserID)
			if err != nil {
				return err
			}
			results[i] = balance.MemberBalance{
				UserID:   cp.UserID,
				Username: cp.Username,
				Balance:  bal,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Username != results[j].Username {
			return results[i].Username < results[j].Username
		}
		return results[i].UserID < results[j].UserID
	})

	return results, nil
}

func (s *Service) balanceWith(ctx context.Context, userID, otherUserID int64) (balance.CurrencyBalance, error) {
	txRecords, err := s.txs.MutualBalanceRecords(ctx, userID, otherUserID)
	if err != nil {
		return nil, err
	}

	settlements, err := s.repo.ListBetween(ctx, userID, otherUserID)
	if err != nil {
		return nil, err
	}

	settlementRecords := make([]balance.Settlement, len(settlements))
	for i, st := range settlements {
		settlementRecords[i] = st.BalanceRecord()
	}

	return balance.BetweenUsers(userID, otherUserID, txRecords, settlementRecords), nil
}
