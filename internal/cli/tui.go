package cli

import (
	"fmt"

	"github.com/julianstephens/dailycode/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *Context) error {
	sender, err := ctx.Sender()
	if err != nil {
		return err
	}
	if err := tui.Run(sender); err != nil {
		return fmt.Errorf("tui exited with error: %w", err)
	}
	return nil
}
