package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"

	sheets "google.golang.org/api/sheets/v4"

	"github.com/alonebown/crewdesk/internal/persistence"
)

// ErrRowNotFound is returned when a value scan finds no matching row.
var ErrRowNotFound = errors.New("ledger row not found")

// Ledger is the tabular persistence backend: one row per record, row order
// is creation order and the only ordering guarantee in the system. Columns
// are 1-based and limited to 26 (single-letter A1 references); both bound
// worksheets stay well under that.
type Ledger interface {
	AppendRow(ctx context.Context, row []string) error
	// FindRow scans the given 1-based column for an exact value and returns
	// the 1-based row number, or ErrRowNotFound.
	FindRow(ctx context.Context, column int, value string) (int, error)
	Row(ctx context.Context, row int) ([]string, error)
	UpdateCells(ctx context.Context, row, startColumn int, values []string) error
	// ReadRows returns up to limit rows starting at the given 0-based offset.
	ReadRows(ctx context.Context, offset, limit int) ([][]string, error)
}

type sheetsLedger struct {
	client    *persistence.Sheets
	worksheet string
	width     int
}

// NewSheetsLedger binds a ledger to one worksheet of the spreadsheet.
func NewSheetsLedger(client *persistence.Sheets, worksheet string, width int) Ledger {
	return &sheetsLedger{client: client, worksheet: worksheet, width: width}
}

// NewTicketLedger binds the ticket worksheet at its full column width.
func NewTicketLedger(client *persistence.Sheets, worksheet string) Ledger {
	return NewSheetsLedger(client, worksheet, ledgerWidth)
}

// NewRosterLedger binds the roster worksheet at its full column width.
func NewRosterLedger(client *persistence.Sheets, worksheet string) Ledger {
	return NewSheetsLedger(client, worksheet, rosterWidth)
}

func (l *sheetsLedger) AppendRow(ctx context.Context, row []string) error {
	values := make([]interface{}, len(row))
	for i, cell := range row {
		values[i] = cell
	}
	rangeRef := fmt.Sprintf("%s!A:%s", l.worksheet, columnLetter(l.width))
	_, err := l.client.Service.Spreadsheets.Values.
		Append(l.client.SpreadsheetID, rangeRef, &sheets.ValueRange{Values: [][]interface{}{values}}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}

func (l *sheetsLedger) FindRow(ctx context.Context, column int, value string) (int, error) {
	letter := columnLetter(column)
	rangeRef := fmt.Sprintf("%s!%s:%s", l.worksheet, letter, letter)
	resp, err := l.client.Service.Spreadsheets.Values.
		Get(l.client.SpreadsheetID, rangeRef).
		Context(ctx).
		Do()
	if err != nil {
		return 0, err
	}
	for i, row := range resp.Values {
		if len(row) > 0 && fmt.Sprint(row[0]) == value {
			return i + 1, nil
		}
	}
	return 0, ErrRowNotFound
}

func (l *sheetsLedger) Row(ctx context.Context, row int) ([]string, error) {
	rangeRef := fmt.Sprintf("%s!A%d:%s%d", l.worksheet, row, columnLetter(l.width), row)
	resp, err := l.client.Service.Spreadsheets.Values.
		Get(l.client.SpreadsheetID, rangeRef).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	if len(resp.Values) == 0 {
		return nil, ErrRowNotFound
	}
	return stringCells(resp.Values[0], l.width), nil
}

func (l *sheetsLedger) UpdateCells(ctx context.Context, row, startColumn int, values []string) error {
	cells := make([]interface{}, len(values))
	for i, cell := range values {
		cells[i] = cell
	}
	rangeRef := fmt.Sprintf("%s!%s%d:%s%d",
		l.worksheet, columnLetter(startColumn), row, columnLetter(startColumn+len(values)-1), row)
	_, err := l.client.Service.Spreadsheets.Values.
		Update(l.client.SpreadsheetID, rangeRef, &sheets.ValueRange{Values: [][]interface{}{cells}}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}

func (l *sheetsLedger) ReadRows(ctx context.Context, offset, limit int) ([][]string, error) {
	if limit <= 0 {
		return nil, nil
	}
	rangeRef := fmt.Sprintf("%s!A%d:%s%d",
		l.worksheet, offset+1, columnLetter(l.width), offset+limit)
	resp, err := l.client.Service.Spreadsheets.Values.
		Get(l.client.SpreadsheetID, rangeRef).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		rows = append(rows, stringCells(raw, l.width))
	}
	return rows, nil
}

func stringCells(raw []interface{}, width int) []string {
	row := make([]string, width)
	for i := 0; i < width && i < len(raw); i++ {
		row[i] = fmt.Sprint(raw[i])
	}
	return row
}

// columnLetter maps a 1-based column to its A1 letter. Columns outside the
// supported 1..26 range clamp to "A" rather than producing a multi-letter
// reference; the Ledger interface caps widths at 26.
func columnLetter(column int) string {
	if column < 1 || column > 26 {
		return "A"
	}
	return string(rune('A' + column - 1))
}

// MemoryLedger is an in-process Ledger used by tests and local development.
type MemoryLedger struct {
	mu   sync.Mutex
	rows [][]string
}

// NewMemoryLedger creates an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{}
}

func (l *MemoryLedger) AppendRow(ctx context.Context, row []string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	copied := make([]string, len(row))
	copy(copied, row)
	l.rows = append(l.rows, copied)
	return nil
}

func (l *MemoryLedger) FindRow(ctx context.Context, column int, value string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, row := range l.rows {
		if column <= len(row) && row[column-1] == value {
			return i + 1, nil
		}
	}
	return 0, ErrRowNotFound
}

func (l *MemoryLedger) Row(ctx context.Context, row int) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if row < 1 || row > len(l.rows) {
		return nil, ErrRowNotFound
	}
	copied := make([]string, len(l.rows[row-1]))
	copy(copied, l.rows[row-1])
	return copied, nil
}

func (l *MemoryLedger) UpdateCells(ctx context.Context, row, startColumn int, values []string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if row < 1 || row > len(l.rows) {
		return ErrRowNotFound
	}
	target := l.rows[row-1]
	for i, value := range values {
		col := startColumn - 1 + i
		for col >= len(target) {
			target = append(target, "")
		}
		target[col] = value
	}
	l.rows[row-1] = target
	return nil
}

func (l *MemoryLedger) ReadRows(ctx context.Context, offset, limit int) ([][]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if offset >= len(l.rows) || limit <= 0 {
		return nil, nil
	}
	end := offset + limit
	if end > len(l.rows) {
		end = len(l.rows)
	}
	out := make([][]string, 0, end-offset)
	for _, row := range l.rows[offset:end] {
		copied := make([]string, len(row))
		copy(copied, row)
		out = append(out, copied)
	}
	return out, nil
}
