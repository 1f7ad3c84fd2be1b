package options

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// IDOptions
type IDOptions struct {
	ShowID bool
	ID     int64
}

func AddShowIDArgs(cmd *cobra.Command, o *IDOptions) {
	cmd.Flags().BoolVarP(&o.ShowID, "show-id", "k", false,
		"Show the id of each book.")
}

// ParseID reads a book id argument.
func (o *IDOptions) ParseID(arg string) error {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid book id %q", arg)
	}
	o.ID = id
	return nil
}
