package export

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/K1T3K1/msfin/internal/core"
)

// TransactionAppender records a ledger entry in an external backup.
type TransactionAppender interface {
	AppendTransaction(ctx context.Context, entry core.LedgerEntry) error
}

// SheetsExporter appends transaction rows to a Google spreadsheet.
type SheetsExporter struct {
	service       *sheets.Service
	spreadsheetID string
	sheetName     string
}

// Config selects the target spreadsheet and the service-account
// credentials, either as a file path or inline JSON.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsFile string
	CredentialsJSON string
}

func NewSheetsExporter(ctx context.Context, cfg Config) (*SheetsExporter, error) {
	var opts []option.ClientOption
	switch {
	case cfg.CredentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	default:
		return nil, fmt.Errorf("no Google credentials configured")
	}

	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &SheetsExporter{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     cfg.SheetName,
	}, nil
}

// AppendTransaction writes one row: id, timestamp, value, account, name,
// category.
func (e *SheetsExporter) AppendTransaction(ctx context.Context, entry core.LedgerEntry) error {
	row := []any{
		entry.ID.String(),
		entry.Timestamp.Format(time.RFC3339),
		core.FormatValue(entry.Value),
		entry.AccountName,
		entry.Name,
		entry.CategoryName,
	}

	values := &sheets.ValueRange{Values: [][]any{row}}
	_, err := e.service.Spreadsheets.Values.
		Append(e.spreadsheetID, e.sheetName, values).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append row to sheet: %w", err)
	}
	return nil
}
