package models

// Platform names one of the two practice sites tracked each day.
type Platform string

const (
	PlatformLeetcode   Platform = "leetcode"
	PlatformCodeforces Platform = "codeforces"
)

// Platforms lists every known platform in display order.
var Platforms = []Platform{PlatformLeetcode, PlatformCodeforces}

// DisplayName returns the human readable platform name.
func (p Platform) DisplayName() string {
	switch p {
	case PlatformLeetcode:
		return "LeetCode"
	case PlatformCodeforces:
		return "Codeforces"
	default:
		return string(p)
	}
}

// ParsePlatform returns the platform for an exact name match.
func ParsePlatform(s string) (Platform, bool) {
	for _, p := range Platforms {
		if string(p) == s {
			return p, true
		}
	}
	return "", false
}
