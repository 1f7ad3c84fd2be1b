// Package book holds the reading-log data model shared by the store, the
// catalog client and the controllers.
package book

import (
	"fmt"
	"strings"
)

const (
	MinRating = 0
	MaxRating = 10

	// PlaceholderTitle is shown for catalog items that carry no title.
	PlaceholderTitle = "No Title"
)

// Book is a saved record: a (title, rating) pair with a store-assigned id.
type Book struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Rating int    `json:"rating"`
}

func New(title string, rating int) *Book {
	return &Book{
		Title:  title,
		Rating: rating,
	}
}

func (b *Book) Row() (string, string, string) {
	return fmt.Sprintf("%d", b.ID), b.Title, RatingString(b.Rating)
}

func (b *Book) String() string {
	return fmt.Sprintf("%s  %s", b.Title, RatingString(b.Rating))
}

// Candidate is a transient search result from the catalog. It is never
// persisted; only DisplayTitle is carried over when a book is saved.
type Candidate struct {
	ExternalID   string   `json:"id"`
	DisplayTitle string   `json:"title"`
	Authors      []string `json:"authors"`
	Description  string   `json:"description,omitempty"`
}

// NewCandidate applies the catalog defaults for absent fields.
func NewCandidate(id, title string, authors []string, description string) Candidate {
	if strings.TrimSpace(title) == "" {
		title = PlaceholderTitle
	}
	if authors == nil {
		authors = []string{}
	}
	return Candidate{
		ExternalID:   id,
		DisplayTitle: title,
		Authors:      authors,
		Description:  description,
	}
}

func (c Candidate) AuthorLine() string {
	return strings.Join(c.Authors, ", ")
}

// RatingSelection pairs a chosen candidate or saved book with the rating the
// user is picking. It lives only until commit or cancel.
type RatingSelection struct {
	Candidate *Candidate
	Book      *Book
	Rating    int
}

// Title returns the title the selection would be saved or shown under.
func (s *RatingSelection) Title() string {
	switch {
	case s == nil:
		return ""
	case s.Candidate != nil:
		return s.Candidate.DisplayTitle
	case s.Book != nil:
		return s.Book.Title
	}
	return ""
}

// ClampRating forces r into [MinRating, MaxRating]. The store does not
// validate ratings, so every writer goes through this first.
func ClampRating(r int) int {
	if r < MinRating {
		return MinRating
	}
	if r > MaxRating {
		return MaxRating
	}
	return r
}

func RatingString(r int) string {
	return fmt.Sprintf("%d/%d", r, MaxRating)
}
