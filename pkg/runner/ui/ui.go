package ui

import (
	"context"

	"tableflip.dev/readlog/pkg/app"
	teaui "tableflip.dev/readlog/pkg/tui/app"
)

// UI runs the interactive terminal interface.
type UI struct {
	Service *app.Service
}

func (d *UI) Do(_ context.Context) error {
	if d.Service == nil || d.Service.Persistence == nil {
		return app.ErrNoPersistence
	}
	return teaui.Run(d.Service)
}
