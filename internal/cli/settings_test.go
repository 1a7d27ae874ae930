package cli

import (
	"strings"
	"testing"

	"github.com/julianstephens/dailycode/internal/models"
)

func intPtr(n int) *int    { return &n }
func boolPtr(b bool) *bool { return &b }

func TestSettingsCmdList(t *testing.T) {
	ctx, out := setupTestContext(t, seededStore())

	if err := (&SettingsCmd{List: true}).Run(ctx); err != nil {
		t.Fatalf("settings --list failed: %v", err)
	}
	for _, want := range []string{"reminderInterval", "30 min", "quietHoursStart", "23", "codeforcesEnabled"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestSettingsCmdUpdate(t *testing.T) {
	store := seededStore()
	ctx, _ := setupTestContext(t, store)

	cmd := &SettingsCmd{Interval: intPtr(45), Codeforces: boolPtr(false)}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("settings update failed: %v", err)
	}

	snap, _ := store.GetAll()
	want := models.DefaultSettings()
	want.ReminderInterval = 45
	want.CodeforcesEnabled = false
	if *snap.Settings != want {
		t.Errorf("settings = %+v, want %+v", *snap.Settings, want)
	}
	if !snap.Tasks.Leetcode {
		t.Error("settings update must not touch completion")
	}
}

func TestSettingsCmdOutOfRangeFallsBack(t *testing.T) {
	store := seededStore()
	ctx, out := setupTestContext(t, store)

	if err := (&SettingsCmd{Interval: intPtr(5)}).Run(ctx); err != nil {
		t.Fatalf("settings update failed: %v", err)
	}
	snap, _ := store.GetAll()
	if snap.Settings.ReminderInterval != 30 {
		t.Errorf("expected default interval, got %d", snap.Settings.ReminderInterval)
	}
	if !strings.Contains(out.String(), "30 min") {
		t.Errorf("expected stored value echoed:\n%s", out.String())
	}
}

func TestSettingsCmdApply(t *testing.T) {
	current := models.DefaultSettings()
	tests := []struct {
		name string
		cmd  SettingsCmd
		want func(models.Settings) models.Settings
	}{
		{"nothing set", SettingsCmd{}, func(s models.Settings) models.Settings { return s }},
		{"quiet window", SettingsCmd{QuietStart: intPtr(22), QuietEnd: intPtr(0)}, func(s models.Settings) models.Settings {
			s.QuietHoursStart = 22
			s.QuietHoursEnd = 0
			return s
		}},
		{"disable leetcode", SettingsCmd{Leetcode: boolPtr(false)}, func(s models.Settings) models.Settings {
			s.LeetcodeEnabled = false
			return s
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cmd.apply(current); got != tt.want(current) {
				t.Errorf("apply() = %+v, want %+v", got, tt.want(current))
			}
		})
	}
}
