package options

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"tableflip.dev/readlog/pkg/book"
)

// RatingOptions
type RatingOptions struct {
	Rating int
	Pick   int
}

func AddRatingArgs(cmd *cobra.Command, o *RatingOptions) {
	cmd.Flags().IntVarP(&o.Rating, "rating", "r", 0,
		fmt.Sprintf("Rating from %d to %d.", book.MinRating, book.MaxRating))
}

func AddPickArgs(cmd *cobra.Command, o *RatingOptions) {
	cmd.Flags().IntVarP(&o.Pick, "pick", "p", 1,
		"Which search result to save, counting from 1.")
}

// ParseRating reads a rating argument. Out of range values are rejected
// rather than clamped so typos do not get saved.
func (o *RatingOptions) ParseRating(arg string) error {
	r, err := strconv.Atoi(arg)
	if err != nil {
		return fmt.Errorf("invalid rating %q", arg)
	}
	o.Rating = r
	return o.Validate()
}

func (o *RatingOptions) Validate() error {
	if o.Rating < book.MinRating || o.Rating > book.MaxRating {
		return fmt.Errorf("rating %d out of range %d-%d", o.Rating, book.MinRating, book.MaxRating)
	}
	if o.Pick < 1 {
		return fmt.Errorf("pick must be 1 or more, got %d", o.Pick)
	}
	return nil
}
