// Package client sends protocol messages to a running daemon.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"

	"github.com/julianstephens/dailycode/internal/constants"
	"github.com/julianstephens/dailycode/internal/lockfile"
	"github.com/julianstephens/dailycode/internal/protocol"
)

var (
	// ErrDaemonNotRunning is returned when no live daemon could be found.
	ErrDaemonNotRunning = errors.New("dailycode daemon is not running")
	// ErrRemoteStorage is returned when the daemon reports a storage failure.
	ErrRemoteStorage = errors.New("daemon storage error")
)

type Client struct {
	home   string
	http   *http.Client
	verify func(lockfile.Lock) error
}

type Option func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

// WithVerifier overrides the lockfile process check.
func WithVerifier(fn func(lockfile.Lock) error) Option {
	return func(cl *Client) { cl.verify = fn }
}

func New(home string, opts ...Option) *Client {
	c := &Client{
		home:   home,
		http:   &http.Client{Timeout: constants.ClientTimeout},
		verify: lockfile.Verify,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Locate returns the lock of a live daemon.
func (c *Client) Locate() (lockfile.Lock, error) {
	l, err := lockfile.Find(c.home, c.verify)
	if err != nil {
		return lockfile.Lock{}, fmt.Errorf("%w: %v", ErrDaemonNotRunning, err)
	}
	return l, nil
}

// Running reports whether a live daemon is reachable through the lockfile.
func (c *Client) Running() bool {
	_, err := c.Locate()
	return err == nil
}

// Send delivers msg to the daemon and returns its response. Protocol errors
// (unauthorized, invalid input) are returned in the response; transport and
// storage failures are returned as errors.
func (c *Client) Send(ctx context.Context, msg protocol.Message) (protocol.Response, error) {
	l, err := c.Locate()
	if err != nil {
		return protocol.Response{}, err
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return protocol.Response{}, fmt.Errorf("failed to encode message: %w", err)
	}

	url := "http://" + net.JoinHostPort(constants.DaemonHost, strconv.Itoa(l.Port)) + constants.MessagePath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return protocol.Response{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(constants.SenderHeader, l.Secret)

	res, err := c.http.Do(req)
	if err != nil {
		return protocol.Response{}, fmt.Errorf("%w: %v", ErrDaemonNotRunning, err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return protocol.Response{}, fmt.Errorf("failed to read response: %w", err)
	}

	var resp protocol.Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return protocol.Response{}, fmt.Errorf("daemon returned status %d: %s", res.StatusCode, string(data))
	}

	if res.StatusCode >= http.StatusInternalServerError {
		return protocol.Response{}, fmt.Errorf("%w: %s", ErrRemoteStorage, resp.Error)
	}

	return resp, nil
}
