package cli

import (
	"fmt"

	"github.com/julianstephens/dailycode/internal/models"
	"github.com/julianstephens/dailycode/internal/protocol"
)

// SettingsCmd prints or updates the reminder settings. Unset flags keep
// their current values.
type SettingsCmd struct {
	List       bool  `help:"List current settings." short:"l"`
	Interval   *int  `help:"Minutes between reminders (15-120)."`
	QuietStart *int  `help:"First quiet hour (0-23)." name:"quiet-start"`
	QuietEnd   *int  `help:"Hour reminders resume (0-23)." name:"quiet-end"`
	Leetcode   *bool `help:"Enable LeetCode reminders (--leetcode=false to disable)."`
	Codeforces *bool `help:"Enable Codeforces reminders (--codeforces=false to disable)."`
}

func (c *SettingsCmd) changed() bool {
	return c.Interval != nil || c.QuietStart != nil || c.QuietEnd != nil || c.Leetcode != nil || c.Codeforces != nil
}

// apply overlays the set flags on current.
func (c *SettingsCmd) apply(current models.Settings) models.Settings {
	next := current
	if c.Interval != nil {
		next.ReminderInterval = *c.Interval
	}
	if c.QuietStart != nil {
		next.QuietHoursStart = *c.QuietStart
	}
	if c.QuietEnd != nil {
		next.QuietHoursEnd = *c.QuietEnd
	}
	if c.Leetcode != nil {
		next.LeetcodeEnabled = *c.Leetcode
	}
	if c.Codeforces != nil {
		next.CodeforcesEnabled = *c.Codeforces
	}
	return next
}

func (c *SettingsCmd) Run(ctx *Context) error {
	resp, err := ctx.send(protocol.GetStatus())
	if err != nil {
		return err
	}
	current := models.WithDefaultSettings(resp.Settings)

	if c.List || !c.changed() {
		printSettings(ctx, current)
		return nil
	}

	next := c.apply(current)
	if _, err := ctx.send(protocol.UpdateSettings(next)); err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}

	// Out-of-range numbers are replaced with defaults by the core
	resp, err = ctx.send(protocol.GetStatus())
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.Out, "✓ Settings updated")
	printSettings(ctx, models.WithDefaultSettings(resp.Settings))
	return nil
}

func printSettings(ctx *Context, s models.Settings) {
	fmt.Fprintf(ctx.Out, "%-20s %d min\n", "reminderInterval", s.ReminderInterval)
	fmt.Fprintf(ctx.Out, "%-20s %d\n", "quietHoursStart", s.QuietHoursStart)
	fmt.Fprintf(ctx.Out, "%-20s %d\n", "quietHoursEnd", s.QuietHoursEnd)
	fmt.Fprintf(ctx.Out, "%-20s %t\n", "leetcodeEnabled", s.LeetcodeEnabled)
	fmt.Fprintf(ctx.Out, "%-20s %t\n", "codeforcesEnabled", s.CodeforcesEnabled)
}
