package app

import (
	"context"
	"sort"

	"tableflip.dev/readlog/pkg/book"
)

// ReportSection groups the books that share a rating.
type ReportSection struct {
	Rating int
	Books  []*book.Book
}

// ReportResult summarizes the library.
type ReportResult struct {
	Total    int
	Average  float64
	Sections []ReportSection
}

// Report groups saved books by rating, best rated first. Books inside a
// section keep id order.
func (s *Service) Report(ctx context.Context) (ReportResult, error) {
	all, err := s.Books(ctx)
	if err != nil {
		return ReportResult{}, err
	}
	if len(all) == 0 {
		return ReportResult{}, nil
	}

	grouped := make(map[int][]*book.Book)
	sum := 0
	for _, b := range all {
		if b == nil {
			continue
		}
		r := book.ClampRating(b.Rating)
		grouped[r] = append(grouped[r], b)
		sum += r
	}

	ratings := make([]int, 0, len(grouped))
	for r := range grouped {
		ratings = append(ratings, r)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ratings)))

	sections := make([]ReportSection, 0, len(ratings))
	total := 0
	for _, r := range ratings {
		books := grouped[r]
		sort.Slice(books, func(i, j int) bool { return books[i].ID < books[j].ID })
		sections = append(sections, ReportSection{Rating: r, Books: books})
		total += len(books)
	}

	return ReportResult{
		Total:    total,
		Average:  float64(sum) / float64(total),
		Sections: sections,
	}, nil
}
