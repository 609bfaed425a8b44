package models

import (
	"time"

	"gorm.io/gorm"

	"rpascribe/internal/action"
)

type BaseModel struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

type User struct {
	BaseModel
	Username string `json:"username" gorm:"uniqueIndex;size:100;not null"`
	Email    string `json:"email" gorm:"uniqueIndex;size:100;not null"`
	Password string `json:"-" gorm:"size:255;not null"`
	Avatar   string `json:"avatar" gorm:"size:255"`
	Status   int    `json:"status" gorm:"default:1"` // 1:active, 0:inactive
}

// RecordingSession persists one recording lifetime: the target URL, the
// final status and a JSON snapshot of the action log taken when the
// session stops.
type RecordingSession struct {
	BaseModel
	SessionID   string `json:"session_id" gorm:"uniqueIndex;size:64;not null"`
	Name        string `json:"name" gorm:"size:200"`
	TargetURL   string `json:"target_url" gorm:"size:500;not null"`
	Status      string `json:"status" gorm:"size:20"`        // recording, completed, failed
	Actions     string `json:"actions" gorm:"type:longtext"` // JSON action array
	ActionCount int    `json:"action_count"`
	UserID      uint   `json:"user_id" gorm:"not null"`
	User        User   `json:"user" gorm:"foreignKey:UserID"`
}

// GetActions decodes the persisted action log snapshot.
func (rs *RecordingSession) GetActions() ([]action.Action, error) {
	return action.UnmarshalLog(rs.Actions)
}

// ExportRecord keeps the transcoded target script produced for a session.
// Export itself is a pure function of the action log; this row only exists
// so past exports can be listed and re-downloaded.
type ExportRecord struct {
	BaseModel
	SessionID   string           `json:"session_id" gorm:"index;size:64;not null"`
	Session     RecordingSession `json:"session" gorm:"foreignKey:SessionID;references:SessionID"`
	Script      string           `json:"script" gorm:"type:longtext"` // JSON target action array
	ActionCount int              `json:"action_count"`                // source actions
	TargetCount int              `json:"target_count"`                // target actions incl. synthetic waits
	UserID      uint             `json:"user_id" gorm:"not null"`
	User        User             `json:"user" gorm:"foreignKey:UserID"`
}
