package models

// HistoryEntry records the outcome of one closed-out day
type HistoryEntry struct {
	Date       string `json:"date"` // YYYY-MM-DD format
	Leetcode   bool   `json:"leetcode"`
	Codeforces bool   `json:"codeforces"`
}

// Stats holds cumulative streak statistics
type Stats struct {
	LeetcodeStreak      int            `json:"leetcodeStreak"`
	CodeforcesStreak    int            `json:"codeforcesStreak"`
	LeetcodeTotalDays   int            `json:"leetcodeTotalDays"`
	CodeforcesTotalDays int            `json:"codeforcesTotalDays"`
	History             []HistoryEntry `json:"history"` // most recent last
}

// Streak returns the current streak for p.
func (s Stats) Streak(p Platform) int {
	switch p {
	case PlatformLeetcode:
		return s.LeetcodeStreak
	case PlatformCodeforces:
		return s.CodeforcesStreak
	default:
		return 0
	}
}

// TotalDays returns the number of completed days recorded for p.
func (s Stats) TotalDays(p Platform) int {
	switch p {
	case PlatformLeetcode:
		return s.LeetcodeTotalDays
	case PlatformCodeforces:
		return s.CodeforcesTotalDays
	default:
		return 0
	}
}

// WithDefaultStats returns a complete stats record: negative counters are
// clamped to zero and history is never nil.
func WithDefaultStats(s *Stats) Stats {
	if s == nil {
		return Stats{History: []HistoryEntry{}}
	}
	out := *s
	out.LeetcodeStreak = max(out.LeetcodeStreak, 0)
	out.CodeforcesStreak = max(out.CodeforcesStreak, 0)
	out.LeetcodeTotalDays = max(out.LeetcodeTotalDays, 0)
	out.CodeforcesTotalDays = max(out.CodeforcesTotalDays, 0)
	if out.History == nil {
		out.History = []HistoryEntry{}
	}
	return out
}
