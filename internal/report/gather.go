package report

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/tw-accounting/twacc/pkg/domain"
)

// Source lists the records a report is built from.
type Source interface {
	ListAccounts(ctx context.Context) ([]domain.Account, error)
	ListTransactions(ctx context.Context, f domain.TransactionFilter) ([]domain.Transaction, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	ListProjects(ctx context.Context) ([]domain.Project, error)
}

// Gather fetches the four collections concurrently. The first failure
// cancels the rest.
func Gather(ctx context.Context, src Source) (Input, error) {
	var in Input
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		in.Accounts, err = src.ListAccounts(ctx)
		return err
	})
	g.Go(func() (err error) {
		in.Transactions, err = src.ListTransactions(ctx, domain.TransactionFilter{})
		return err
	})
	g.Go(func() (err error) {
		in.Categories, err = src.ListCategories(ctx)
		return err
	})
	g.Go(func() (err error) {
		in.Projects, err = src.ListProjects(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Input{}, fmt.Errorf("report.Gather: %w", err)
	}
	return in, nil
}
