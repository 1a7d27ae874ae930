package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/julianstephens/dailycode/internal/client"
	"github.com/julianstephens/dailycode/internal/config"
	"github.com/julianstephens/dailycode/internal/constants"
	"github.com/julianstephens/dailycode/internal/daemon"
	"github.com/julianstephens/dailycode/internal/dispatch"
	"github.com/julianstephens/dailycode/internal/opener"
	"github.com/julianstephens/dailycode/internal/protocol"
	"github.com/julianstephens/dailycode/internal/storage"
)

// Sender delivers a protocol message to the reminder core.
type Sender interface {
	Send(ctx context.Context, msg protocol.Message) (protocol.Response, error)
}

var _ Sender = (*client.Client)(nil)

type Context struct {
	Home   string
	Config *config.Config
	Store  storage.Provider
	Opener opener.Opener
	Client *client.Client
	In     io.Reader
	Out    io.Writer
	Now    func() time.Time
}

// NewContext wires the default collaborators for a command run.
func NewContext(home string, cfg *config.Config, store storage.Provider) *Context {
	var o opener.Opener = opener.NewBrowserOpener()
	if cfg.DryRun {
		o = opener.LogOpener{}
	}
	return &Context{
		Home:   home,
		Config: cfg,
		Store:  store,
		Opener: o,
		Client: client.New(home),
		In:     os.Stdin,
		Out:    os.Stdout,
		Now:    time.Now,
	}
}

// localSender serves messages in-process under the dispatcher's own identity.
type localSender struct {
	d *dispatch.Dispatcher
}

func (l localSender) Send(ctx context.Context, msg protocol.Message) (protocol.Response, error) {
	return l.d.Handle(ctx, l.d.Self(), msg)
}

// Sender returns the running daemon's client, or an in-process dispatcher
// over the local store when no daemon is running.
func (c *Context) Sender() (Sender, error) {
	if c.Client != nil && c.Client.Running() {
		return c.Client, nil
	}
	if err := c.Store.Load(); err != nil {
		return nil, err
	}
	return localSender{d: daemon.Local(c.Store, c.Opener, dispatch.WithClock(c.Now))}, nil
}

// send delivers msg and turns an error response into a Go error.
func (c *Context) send(msg protocol.Message) (protocol.Response, error) {
	sender, err := c.Sender()
	if err != nil {
		return protocol.Response{}, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), constants.ClientTimeout)
	defer cancel()

	resp, err := sender.Send(ctx, msg)
	if err != nil {
		return resp, err
	}
	if resp.Error != "" {
		return resp, errors.New(resp.Error)
	}
	return resp, nil
}
