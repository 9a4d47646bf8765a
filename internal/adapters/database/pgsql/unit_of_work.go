package pgsql

import (
	"context"
	"log/slog"

	portsrepo "github.com/SscSPs/erp_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/erp_ledger/internal/platform/logging"
)

// unitOfWork binds fresh repositories to one database transaction per call.
type unitOfWork struct {
	tm portsrepo.TransactionManager
}

func newUnitOfWork(tm portsrepo.TransactionManager) portsrepo.UnitOfWork {
	return &unitOfWork{tm: tm}
}

func (u *unitOfWork) Do(ctx context.Context, fn func(ctx context.Context, stores portsrepo.Stores) error) error {
	tx, err := u.tm.Begin(ctx)
	if err != nil {
		return err
	}
	// Will be ignored if transaction is committed successfully
	defer func() {
		if rbErr := u.tm.Rollback(context.WithoutCancel(ctx), tx); rbErr != nil {
			logging.FromContext(ctx).Warn("Rollback failed", slog.String("error", rbErr.Error()))
		}
	}()

	stores := portsrepo.Stores{
		Journals:  newPgxJournalRepository(tx),
		Ledger:    newPgxLedgerRepository(tx),
		Templates: newPgxRecurringRepository(tx),
		Outbox:    newPgxOutboxRepository(tx),
	}
	if err := fn(ctx, stores); err != nil {
		return err
	}
	return u.tm.Commit(ctx, tx)
}
