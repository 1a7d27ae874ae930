package cli

import (
	"fmt"

	"github.com/julianstephens/dailycode/internal/storage"
)

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *Context) error {
	// Init applies pending migrations on an existing store
	if err := ctx.Store.Init(); err != nil {
		return err
	}

	runner := storage.SchemaRunner(ctx.Store)
	if runner == nil {
		fmt.Fprintf(ctx.Out, "Store %s has no schema to migrate.\n", ctx.Store.GetConfigPath())
		return nil
	}

	version, err := runner.GetCurrentVersion()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	fmt.Fprintf(ctx.Out, "✓ Database schema is up to date (version %d)\n", version)
	return nil
}
