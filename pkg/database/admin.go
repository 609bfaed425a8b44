package database

import (
	"rpascribe/internal/models"
)

// IsAdmin checks if the user with given ID is an admin user
func IsAdmin(userID uint) bool {
	var user models.User
	err := DB.First(&user, userID).Error
	if err != nil {
		return false
	}
	return user.Username == "admin"
}

// HasPermissionOnSession checks if user owns the recording session or is
// an admin.
func HasPermissionOnSession(userID uint, sessionID string) bool {
	if IsAdmin(userID) {
		return true
	}

	var sess models.RecordingSession
	err := DB.Where("session_id = ? AND user_id = ?", sessionID, userID).First(&sess).Error
	return err == nil
}
