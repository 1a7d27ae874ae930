package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/dailycode/internal/config"
	"github.com/julianstephens/dailycode/internal/storage"
	"github.com/julianstephens/dailycode/internal/tracker"
)

type InitCmd struct {
	WriteConfig bool `help:"Also write the effective configuration to config.yaml if none exists." default:"true" negatable:""`
}

func (c *InitCmd) Run(ctx *Context) error {
	if err := ctx.Store.Init(); err != nil {
		return err
	}

	if _, err := storage.EnsureDefaults(ctx.Store, tracker.Today(ctx.Now())); err != nil {
		return fmt.Errorf("failed to write default records: %w", err)
	}
	fmt.Fprintf(ctx.Out, "Initialized dailycode storage at: %s\n", ctx.Store.GetConfigPath())

	if !c.WriteConfig {
		return nil
	}
	path := config.Path(ctx.Home)
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to stat config: %w", err)
	}
	if err := config.Write(ctx.Home, ctx.Config); err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "Wrote config: %s\n", path)
	return nil
}
