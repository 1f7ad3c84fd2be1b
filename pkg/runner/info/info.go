package info

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/readlog/pkg/app"
	"tableflip.dev/readlog/pkg/config"
	"tableflip.dev/readlog/pkg/printers"
	"tableflip.dev/readlog/pkg/store"
)

type Info struct {
	Config      *config.Config
	Persistence store.Persistence
	Out         io.Writer
}

func (n *Info) Do(ctx context.Context) error {
	out := n.Out
	if out == nil {
		out = color.Output
	}

	if override := os.Getenv(config.PathEnv); override != "" {
		_, _ = fmt.Fprintln(out, config.PathEnv+" found on env, using", override)
	} else {
		_, _ = fmt.Fprintln(out, config.PathEnv+" env var not set")
	}

	if n.Config == nil {
		var err error
		n.Config, err = config.Load()
		if err != nil {
			return err
		}
	}

	file := n.Config.File
	if file == "" {
		file = "none"
	}
	faint := color.New(color.Faint)
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(faint.Sprint("config file"), file)
	tbl.AddRow(faint.Sprint("store"), n.Config.BasePath())
	tbl.AddRow(faint.Sprint("driver"), n.Config.Driver())
	tbl.AddRow(faint.Sprint("catalog"), n.Config.Catalog.URL)
	tbl.AddRow(faint.Sprint("language"), n.Config.Catalog.Lang)
	tbl.AddRow(faint.Sprint("debounce"), n.Config.Search.Debounce.String())
	_, _ = fmt.Fprintln(out, tbl)
	_, _ = fmt.Fprintln(out, "")

	if n.Persistence == nil {
		return fmt.Errorf("failed to create persistence object")
	}

	svc := &app.Service{Persistence: n.Persistence}
	res, err := svc.Report(ctx)
	if err != nil {
		return err
	}
	pp := printers.PrettyPrint{Out: out}
	pp.Report(res)
	return nil
}
