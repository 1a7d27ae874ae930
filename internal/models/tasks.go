package models

// DailyTasks holds today's completion flags
type DailyTasks struct {
	Leetcode   bool   `json:"leetcode"`
	Codeforces bool   `json:"codeforces"`
	LastReset  string `json:"lastReset"` // YYYY-MM-DD, empty before the first rollover
}

// Done reports whether the task for p is marked complete.
func (t DailyTasks) Done(p Platform) bool {
	switch p {
	case PlatformLeetcode:
		return t.Leetcode
	case PlatformCodeforces:
		return t.Codeforces
	default:
		return false
	}
}

// WithDone returns a copy of t with the flag for p set to done.
func (t DailyTasks) WithDone(p Platform, done bool) DailyTasks {
	switch p {
	case PlatformLeetcode:
		t.Leetcode = done
	case PlatformCodeforces:
		t.Codeforces = done
	}
	return t
}

// WithDefaultTasks returns a complete tasks record. A missing record starts
// the given day with nothing done.
func WithDefaultTasks(t *DailyTasks, today string) DailyTasks {
	if t == nil {
		return DailyTasks{LastReset: today}
	}
	return *t
}
