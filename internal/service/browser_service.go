package service

import (
	"context"

	"github.com/alonebown/crewdesk/internal/domain"
	"github.com/alonebown/crewdesk/internal/repository"
)

// listChunkSize bounds each ledger read while walking the full sheet.
const listChunkSize = 100

// Page is one window of the admin ticket browser.
type Page struct {
	Items   []domain.Summary
	Index   int
	HasPrev bool
	HasNext bool
}

// Paginate windows a pre-fetched ordered sequence. The page index is clamped
// to the valid range; an empty input yields an empty first page.
func Paginate(items []domain.Summary, pageIndex, pageSize int) Page {
	if pageSize <= 0 {
		pageSize = 10
	}
	lastPage := 0
	if len(items) > 0 {
		lastPage = (len(items) - 1) / pageSize
	}
	if pageIndex < 0 {
		pageIndex = 0
	}
	if pageIndex > lastPage {
		pageIndex = lastPage
	}
	start := pageIndex * pageSize
	end := start + pageSize
	if start > len(items) {
		start = len(items)
	}
	if end > len(items) {
		end = len(items)
	}
	return Page{
		Items:   items[start:end],
		Index:   pageIndex,
		HasPrev: pageIndex > 0,
		HasNext: end < len(items),
	}
}

// BrowserService lists tickets for the admin panel and opens the detail view.
type BrowserService struct {
	tickets  repository.TicketRepository
	pageSize int
}

// NewBrowserService creates the service.
func NewBrowserService(tickets repository.TicketRepository, pageSize int) *BrowserService {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &BrowserService{tickets: tickets, pageSize: pageSize}
}

// PageSize returns the configured page size.
func (s *BrowserService) PageSize() int {
	return s.pageSize
}

// OpenTickets returns every non-closed ticket in ledger row order.
func (s *BrowserService) OpenTickets(ctx context.Context) ([]domain.Summary, error) {
	var open []domain.Summary
	for offset := 0; ; offset += listChunkSize {
		chunk, err := s.tickets.List(ctx, offset, listChunkSize)
		if err != nil {
			return nil, err
		}
		for _, summary := range chunk {
			if summary.Open == domain.TicketClosed {
				continue
			}
			open = append(open, summary)
		}
		if len(chunk) < listChunkSize {
			return open, nil
		}
	}
}

// Page fetches open tickets and windows them.
func (s *BrowserService) Page(ctx context.Context, pageIndex int) (Page, error) {
	open, err := s.OpenTickets(ctx)
	if err != nil {
		return Page{}, err
	}
	return Paginate(open, pageIndex, s.pageSize), nil
}

// Detail loads the full record for the administrative detail view.
func (s *BrowserService) Detail(ctx context.Context, id string) (*domain.Ticket, error) {
	return s.tickets.Find(ctx, id)
}
