package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/K1T3K1/msfin/internal/amqp"
	"github.com/K1T3K1/msfin/internal/export"
	"github.com/K1T3K1/msfin/internal/storage"
)

// ExportWorker backs up created transactions to an external appender as
// ledger events arrive.
type ExportWorker struct {
	store    storage.Store
	appender export.TransactionAppender
}

func NewExportWorker(store storage.Store, appender export.TransactionAppender) *ExportWorker {
	return &ExportWorker{
		store:    store,
		appender: appender,
	}
}

// HandleEvent processes one ledger event. Only transaction.created is
// exported; updates and deletes leave the backup append-only.
func (w *ExportWorker) HandleEvent(ctx context.Context, event *amqp.LedgerEvent) error {
	if event.Type != amqp.EventTransactionCreated {
		slog.DebugContext(ctx, "skipping non-create event", "type", event.Type)
		return nil
	}

	entry, err := w.store.GetEntry(ctx, event.TransactionID)
	if err != nil {
		return fmt.Errorf("load transaction %s: %w", event.TransactionID, err)
	}

	if err := w.appender.AppendTransaction(ctx, entry); err != nil {
		return fmt.Errorf("export transaction %s: %w", event.TransactionID, err)
	}

	slog.InfoContext(ctx, "transaction exported",
		"transaction_id", event.TransactionID,
		"account", entry.AccountName)
	return nil
}
