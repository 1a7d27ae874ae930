// Package opener opens the practice pages for each platform. Callers name a
// platform; the URL always comes from the fixed allowlist here.
package opener

import (
	"fmt"

	"github.com/pkg/browser"

	"github.com/julianstephens/dailycode/internal/logger"
	"github.com/julianstephens/dailycode/internal/models"
)

var allowlist = map[models.Platform]string{
	models.PlatformLeetcode:   "https://leetcode.com/problemset/",
	models.PlatformCodeforces: "https://codeforces.com/problemset",
}

// URLFor returns the allowlisted page for p.
func URLFor(p models.Platform) (string, bool) {
	u, ok := allowlist[p]
	return u, ok
}

type Opener interface {
	Open(p models.Platform) error
}

// BrowserOpener opens pages in the system browser.
type BrowserOpener struct {
	openURL func(string) error
}

func NewBrowserOpener() *BrowserOpener {
	return &BrowserOpener{openURL: browser.OpenURL}
}

func (o *BrowserOpener) Open(p models.Platform) error {
	u, ok := URLFor(p)
	if !ok {
		return fmt.Errorf("no page for platform %q", p)
	}
	if err := o.openURL(u); err != nil {
		return fmt.Errorf("failed to open %s: %w", p.DisplayName(), err)
	}
	logger.Info("Opened practice page", "platform", p, "url", u)
	return nil
}

// LogOpener only logs what would be opened.
type LogOpener struct{}

func (LogOpener) Open(p models.Platform) error {
	u, ok := URLFor(p)
	if !ok {
		return fmt.Errorf("no page for platform %q", p)
	}
	logger.Info("Dry run: would open practice page", "platform", p, "url", u)
	return nil
}
