package cli

import (
	"fmt"

	"github.com/julianstephens/dailycode/internal/constants"
	"github.com/julianstephens/dailycode/internal/models"
	"github.com/julianstephens/dailycode/internal/protocol"
)

type StatusCmd struct{}

func (c *StatusCmd) Run(ctx *Context) error {
	resp, err := ctx.send(protocol.GetStatus())
	if err != nil {
		return err
	}

	tasks := models.WithDefaultTasks(resp.Tasks, "")
	stats := models.WithDefaultStats(resp.Stats)
	settings := models.WithDefaultSettings(resp.Settings)

	if tasks.LastReset != "" {
		fmt.Fprintf(ctx.Out, "Today (%s)\n\n", tasks.LastReset)
	}
	for _, p := range models.Platforms {
		mark := "✗"
		label := "Not completed"
		if tasks.Done(p) {
			mark = "✓"
			label = "Completed! ✓"
		}
		line := fmt.Sprintf("  %s %-11s %-14s streak %s, %d days total", mark, p.DisplayName(), label, streakText(stats.Streak(p)), stats.TotalDays(p))
		if !settings.Enabled(p) {
			line += " (reminders off)"
		}
		fmt.Fprintln(ctx.Out, line)
	}
	return nil
}

func streakText(n int) string {
	if n >= constants.StreakFireThreshold {
		return fmt.Sprintf("%d 🔥", n)
	}
	return fmt.Sprintf("%d", n)
}

type DoneCmd struct {
	Platform string `arg:"" enum:"leetcode,codeforces" help:"Platform to mark complete (leetcode, codeforces)."`
}

func (c *DoneCmd) Run(ctx *Context) error {
	return setTask(ctx, c.Platform, true)
}

type UndoCmd struct {
	Platform string `arg:"" enum:"leetcode,codeforces" help:"Platform to mark incomplete (leetcode, codeforces)."`
}

func (c *UndoCmd) Run(ctx *Context) error {
	return setTask(ctx, c.Platform, false)
}

func setTask(ctx *Context, name string, done bool) error {
	p, ok := models.ParsePlatform(name)
	if !ok {
		return fmt.Errorf("unknown platform %q", name)
	}
	if _, err := ctx.send(protocol.SetTask(p, done)); err != nil {
		return err
	}
	if done {
		fmt.Fprintf(ctx.Out, "✓ %s marked complete for today\n", p.DisplayName())
	} else {
		fmt.Fprintf(ctx.Out, "%s marked not completed\n", p.DisplayName())
	}
	return nil
}

type CheckCmd struct{}

func (c *CheckCmd) Run(ctx *Context) error {
	if _, err := ctx.send(protocol.TriggerCheck()); err != nil {
		return err
	}
	fmt.Fprintln(ctx.Out, "✓ Reminder check done")
	return nil
}

type HistoryCmd struct {
	Limit int `help:"Number of most recent days to show." default:"30"`
}

func (c *HistoryCmd) Run(ctx *Context) error {
	resp, err := ctx.send(protocol.GetStatus())
	if err != nil {
		return err
	}
	history := models.WithDefaultStats(resp.Stats).History

	if len(history) == 0 {
		fmt.Fprintln(ctx.Out, "No history yet.")
		return nil
	}
	if c.Limit > 0 && len(history) > c.Limit {
		history = history[len(history)-c.Limit:]
	}

	fmt.Fprintf(ctx.Out, "%-12s %-9s %-10s\n", "Date", "LeetCode", "Codeforces")
	for i := len(history) - 1; i >= 0; i-- {
		h := history[i]
		fmt.Fprintf(ctx.Out, "%-12s %-9s %-10s\n", h.Date, yesNo(h.Leetcode), yesNo(h.Codeforces))
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "✓"
	}
	return "✗"
}
