package persistence

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"

	"github.com/alonebown/crewdesk/internal/config"
)

// Sheets wraps the Google Sheets service for the configured spreadsheet.
type Sheets struct {
	Service       *sheets.Service
	SpreadsheetID string
}

// NewSheets builds an authorized Sheets client from a service account file.
func NewSheets(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*Sheets, error) {
	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("SHEETS_SPREADSHEET_ID is required")
	}

	opts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	logger.Info("sheets client initialized", zap.String("spreadsheet_id", cfg.SpreadsheetID))

	return &Sheets{
		Service:       service,
		SpreadsheetID: cfg.SpreadsheetID,
	}, nil
}
