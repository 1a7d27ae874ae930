// Package protocol defines the request/response messages exchanged between
// the presentation surfaces and the reminder core.
package protocol

import "github.com/julianstephens/dailycode/internal/models"

// MessageType names one operation of the closed message set
type MessageType string

const (
	TypeGetStatus      MessageType = "GET_STATUS"
	TypeMarkComplete   MessageType = "MARK_COMPLETE"
	TypeMarkIncomplete MessageType = "MARK_INCOMPLETE"
	TypeUpdateSettings MessageType = "UPDATE_SETTINGS"
	TypeTriggerCheck   MessageType = "TRIGGER_CHECK"
)

// MessageTypes lists every accepted message type.
var MessageTypes = []MessageType{
	TypeGetStatus,
	TypeMarkComplete,
	TypeMarkIncomplete,
	TypeUpdateSettings,
	TypeTriggerCheck,
}

// Error strings returned in Response.Error
const (
	ErrUnauthorized       = "Unauthorized"
	ErrInvalidMessageType = "Invalid message type"
	ErrInvalidPlatform    = "Invalid platform"
	ErrInvalidSettings    = "Invalid settings"
	ErrStorage            = "Storage error"
)

// Message is an inbound request. Type, Platform and Settings are kept
// loosely typed because they arrive from outside the process and are
// validated by the dispatcher.
type Message struct {
	Type     any `json:"type"`
	Platform any `json:"platform,omitempty"`
	Settings any `json:"settings,omitempty"`
}

// Sender identifies the context a message came from
type Sender struct {
	ID string
}

// Response is either a status snapshot, a success marker or an error.
type Response struct {
	Success  bool               `json:"success,omitempty"`
	Error    string             `json:"error,omitempty"`
	Tasks    *models.DailyTasks `json:"tasks,omitempty"`
	Stats    *models.Stats      `json:"stats,omitempty"`
	Settings *models.Settings   `json:"settings,omitempty"`
}

// OK is the success response for mutating operations.
func OK() Response {
	return Response{Success: true}
}

// Fail builds an error response.
func Fail(msg string) Response {
	return Response{Error: msg}
}

// GetStatus builds a status request.
func GetStatus() Message {
	return Message{Type: string(TypeGetStatus)}
}

// SetTask builds a MARK_COMPLETE or MARK_INCOMPLETE request.
func SetTask(p models.Platform, done bool) Message {
	t := TypeMarkIncomplete
	if done {
		t = TypeMarkComplete
	}
	return Message{Type: string(t), Platform: string(p)}
}

// UpdateSettings builds a settings update request from a typed record.
func UpdateSettings(s models.Settings) Message {
	return Message{
		Type: string(TypeUpdateSettings),
		Settings: map[string]any{
			"reminderInterval":  s.ReminderInterval,
			"quietHoursStart":   s.QuietHoursStart,
			"quietHoursEnd":     s.QuietHoursEnd,
			"leetcodeEnabled":   s.LeetcodeEnabled,
			"codeforcesEnabled": s.CodeforcesEnabled,
		},
	}
}

// TriggerCheck builds a request for an immediate check.
func TriggerCheck() Message {
	return Message{Type: string(TypeTriggerCheck)}
}
