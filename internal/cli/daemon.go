package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/julianstephens/dailycode/internal/daemon"
	"github.com/julianstephens/dailycode/internal/logger"
	"github.com/julianstephens/dailycode/internal/opener"
)

type DaemonCmd struct {
	DryRun bool `help:"Log pages instead of opening them in the browser." name:"dry-run"`
}

func (c *DaemonCmd) Run(ctx *Context) error {
	if ctx.Client != nil && ctx.Client.Running() {
		return fmt.Errorf("a dailycode daemon is already running")
	}

	o := ctx.Opener
	if c.DryRun || ctx.Config.DryRun {
		o = opener.LogOpener{}
	}

	d := daemon.New(daemon.Config{
		Home:         ctx.Home,
		ListenAddr:   ctx.Config.ListenAddr,
		StartupDelay: ctx.Config.StartupDelay,
		Clock:        ctx.Now,
	}, ctx.Store, o)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		select {
		case <-d.Ready():
			fmt.Fprintf(ctx.Out, "dailycode daemon listening on %s (store %s)\n", d.Addr(), ctx.Store.GetConfigPath())
		case <-d.Done():
		}
	}()

	err := d.Run(runCtx)
	logger.Info("Daemon exited", "error", err)
	return err
}
