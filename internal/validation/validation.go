package validation

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/julianstephens/dailycode/internal/constants"
	"github.com/julianstephens/dailycode/internal/models"
	"github.com/julianstephens/dailycode/internal/protocol"
)

// ErrInvalidSettings is returned when a settings payload is not an object.
var ErrInvalidSettings = errors.New("invalid settings")

// IsValidPlatform reports whether v is exactly one of the known platform names.
func IsValidPlatform(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	_, ok = models.ParsePlatform(s)
	return ok
}

// IsValidMessageType reports whether v is exactly one of the accepted message types.
func IsValidMessageType(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	for _, t := range protocol.MessageTypes {
		if string(t) == s {
			return true
		}
	}
	return false
}

// ValidateSettings turns an untrusted payload into a complete settings record.
// Only the top-level shape can fail: each field falls back to its own default
// when it is missing, malformed or out of range.
func ValidateSettings(raw any) (models.Settings, error) {
	fields, err := asObject(raw)
	if err != nil {
		return models.Settings{}, err
	}

	return models.Settings{
		ReminderInterval: SanitizeNumber(fields[constants.SettingReminderInterval],
			constants.MinReminderInterval, constants.MaxReminderInterval, constants.DefaultReminderInterval),
		QuietHoursStart: SanitizeNumber(fields[constants.SettingQuietHoursStart],
			constants.MinHour, constants.MaxHour, constants.DefaultQuietHoursStart),
		QuietHoursEnd: SanitizeNumber(fields[constants.SettingQuietHoursEnd],
			constants.MinHour, constants.MaxHour, constants.DefaultQuietHoursEnd),
		LeetcodeEnabled:   sanitizeBool(fields[constants.SettingLeetcodeEnabled], constants.DefaultLeetcodeEnabled),
		CodeforcesEnabled: sanitizeBool(fields[constants.SettingCodeforcesEnabled], constants.DefaultCodeforcesEnabled),
	}, nil
}

func asObject(raw any) (map[string]any, error) {
	switch v := raw.(type) {
	case map[string]any:
		if v == nil {
			return nil, ErrInvalidSettings
		}
		return v, nil
	case json.RawMessage:
		return decodeObject(v)
	case []byte:
		return decodeObject(v)
	default:
		return nil, ErrInvalidSettings
	}
}

func decodeObject(data []byte) (map[string]any, error) {
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, ErrInvalidSettings
	}
	obj, ok := decoded.(map[string]any)
	if !ok || obj == nil {
		return nil, ErrInvalidSettings
	}
	return obj, nil
}

// SanitizeNumber parses value as a base-10 integer and returns def when it
// does not parse or falls outside [min, max]. Numbers are truncated toward
// zero; strings contribute their leading signed digits ("45min" -> 45).
func SanitizeNumber(value any, min, max, def int) int {
	n, ok := parseInt(value)
	if !ok || n < int64(min) || n > int64(max) {
		return def
	}
	return int(n)
}

func parseInt(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case float32:
		return truncate(float64(v))
	case float64:
		return truncate(v)
	case json.Number:
		return parseLeadingInt(string(v))
	case string:
		return parseLeadingInt(v)
	default:
		return 0, false
	}
}

func truncate(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int64(f), true
}

func parseLeadingInt(s string) (int64, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0, false
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func sanitizeBool(value any, def bool) bool {
	if b, ok := value.(bool); ok {
		return b
	}
	return def
}
