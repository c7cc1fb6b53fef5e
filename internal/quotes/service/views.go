package service

import (
	"context"
	"strings"
	"unicode"

	"orcamento_backend/internal/quotes/repository"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Stats summarizes the active quotes.
type Stats struct {
	Count                int
	TotalFinalPriceCents int64
	CreatedThisMonth     int
}

// SearchQuotes filters the cached listing by client name, quote name or
// quote number. Matching ignores case and accents. A blank term returns
// the whole listing.
func (s *Service) SearchQuotes(ctx context.Context, term string) ([]repository.QuoteWithRelations, error) {
	items, err := s.quotes.Get(ctx)
	if err != nil {
		return nil, err
	}
	needle := fold(term)
	if needle == "" {
		return items, nil
	}

	matched := make([]repository.QuoteWithRelations, 0, len(items))
	for _, item := range items {
		if strings.Contains(fold(DisplayClientName(item)), needle) ||
			strings.Contains(fold(item.QuoteName), needle) ||
			strings.Contains(fold(item.QuoteNumber), needle) {
			matched = append(matched, item)
		}
	}
	return matched, nil
}

// QuoteStats computes totals over the cached listing.
func (s *Service) QuoteStats(ctx context.Context) (Stats, error) {
	items, err := s.quotes.Get(ctx)
	if err != nil {
		return Stats{}, err
	}
	now := s.now()
	stats := Stats{Count: len(items)}
	for _, item := range items {
		stats.TotalFinalPriceCents += item.FinalPriceCents
		created := item.CreatedAt.In(now.Location())
		if created.Year() == now.Year() && created.Month() == now.Month() {
			stats.CreatedThisMonth++
		}
	}
	return stats, nil
}

// DisplayClientName prefers the resolved client's name over the free-text
// name typed into the form.
func DisplayClientName(q repository.QuoteWithRelations) string {
	if q.Client != nil && q.Client.Name != "" {
		return q.Client.Name
	}
	return q.ClientName
}

func fold(value string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.TrimSpace(value))
	if err != nil {
		folded = strings.TrimSpace(value)
	}
	return strings.ToLower(folded)
}
