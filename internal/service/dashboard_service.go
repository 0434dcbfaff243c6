package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"query-desk/internal/domain"
	"query-desk/internal/repository"
)

// DashboardService serves the combined users + queries view.
type DashboardService interface {
	Overview(ctx context.Context) (*domain.Overview, error)
}

type dashboardService struct {
	accounts repository.AccountRepository
	queries  repository.QueryRepository
}

func NewDashboardService(accounts repository.AccountRepository, queries repository.QueryRepository) DashboardService {
	return &dashboardService{
		accounts: accounts,
		queries:  queries,
	}
}

// Overview loads both lists concurrently. The lists are returned side by side; queries carry
// no account reference, so nothing links a query to a user.
func (s *dashboardService) Overview(ctx context.Context) (*domain.Overview, error) {
	var (
		users   []domain.Account
		queries []domain.QueryMessage
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := s.accounts.List(gctx)
		if err != nil {
			return storeError("list accounts", err)
		}
		users = sanitizeAccounts(list)
		return nil
	})
	g.Go(func() error {
		list, err := s.queries.List(gctx)
		if err != nil {
			return storeError("list queries", err)
		}
		queries = list
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &domain.Overview{Users: users, Queries: queries}, nil
}
