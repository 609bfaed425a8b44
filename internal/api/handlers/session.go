package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"rpascribe/internal/action"
	"rpascribe/internal/models"
	"rpascribe/internal/recorder"
	"rpascribe/internal/session"
	"rpascribe/internal/transcoder"
	"rpascribe/pkg/database"
	"rpascribe/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Browser startup occasionally races the first status poll from the UI.
// Callers hitting a not-yet-registered session get a retryable failure
// after a few short attempts instead of a hard 404.
const (
	lookupRetries    = 3
	lookupRetryDelay = 200 * time.Millisecond
)

func lookupRecorder(sessionID string) (*recorder.Recorder, bool) {
	for i := 0; i < lookupRetries; i++ {
		if rec, ok := recorder.Default.Get(sessionID); ok {
			return rec, true
		}
		time.Sleep(lookupRetryDelay)
	}
	return nil, false
}

func StartSession(c *gin.Context) {
	var req struct {
		TargetURL string `json:"target_url" binding:"required,url"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
		UserAgent string `json:"user_agent"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	sessionID := uuid.New().String()

	vp := recorder.Viewport{
		Width:     req.Width,
		Height:    req.Height,
		UserAgent: req.UserAgent,
	}

	if _, err := recorder.Default.StartSession(sessionID, req.TargetURL, vp); err != nil {
		response.InternalServerError(c, "failed to start recording: "+err.Error())
		return
	}

	response.SuccessWithMessage(c, "recording started", gin.H{
		"session_id": sessionID,
	})
}

func StopSession(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		response.Unauthorized(c, "not logged in")
		return
	}

	var req struct {
		SessionID string `json:"session_id" binding:"required"`
		Name      string `json:"name" binding:"max=200"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	rec, ok := lookupRecorder(req.SessionID)
	if !ok {
		response.Retryable(c, "recording session not ready")
		return
	}

	if err := rec.Stop(); err != nil {
		response.InternalServerError(c, "failed to stop recording: "+err.Error())
		return
	}

	sess := rec.Session()
	actions := sess.Snapshot()
	actionsJSON, err := action.MarshalLog(actions)
	if err != nil {
		response.InternalServerError(c, "failed to encode action log")
		return
	}

	record := models.RecordingSession{
		SessionID:   sess.ID,
		Name:        req.Name,
		TargetURL:   sess.TargetURL,
		Status:      string(session.StateCompleted),
		Actions:     actionsJSON,
		ActionCount: len(actions),
		UserID:      userID.(uint),
	}
	if err := database.DB.Create(&record).Error; err != nil {
		response.InternalServerError(c, "failed to save recording")
		return
	}

	response.SuccessWithMessage(c, "recording stopped", gin.H{
		"session_id":   sess.ID,
		"action_count": len(actions),
		"suppressed":   sess.Suppressed(),
	})
}

func PauseSession(c *gin.Context) {
	var req struct {
		SessionID string `json:"session_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	rec, ok := lookupRecorder(req.SessionID)
	if !ok {
		response.Retryable(c, "recording session not ready")
		return
	}

	if err := rec.Session().Pause(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.SuccessWithMessage(c, "recording paused", nil)
}

func ResumeSession(c *gin.Context) {
	var req struct {
		SessionID string `json:"session_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	rec, ok := lookupRecorder(req.SessionID)
	if !ok {
		response.Retryable(c, "recording session not ready")
		return
	}

	if err := rec.Session().Resume(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.SuccessWithMessage(c, "recording resumed", nil)
}

// RestartSession throws away the current log and starts a fresh take
// against the same target URL.
func RestartSession(c *gin.Context) {
	var req struct {
		SessionID string `json:"session_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	rec, ok := lookupRecorder(req.SessionID)
	if !ok {
		response.Retryable(c, "recording session not ready")
		return
	}

	if err := rec.Restart(); err != nil {
		response.InternalServerError(c, "failed to restart recording: "+err.Error())
		return
	}
	response.SuccessWithMessage(c, "recording restarted", nil)
}

func GetSessionStatus(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		response.BadRequest(c, "session_id is required")
		return
	}

	rec, ok := lookupRecorder(sessionID)
	if !ok {
		response.Retryable(c, "recording session not ready")
		return
	}

	sess := rec.Session()
	actions := sess.Snapshot()
	if actions == nil {
		actions = make([]action.Action, 0)
	}

	response.Success(c, gin.H{
		"session_id":   sess.ID,
		"target_url":   sess.TargetURL,
		"state":        sess.State(),
		"substate":     sess.SubState(),
		"action_count": len(actions),
		"suppressed":   sess.Suppressed(),
		"actions":      actions,
	})
}

// GetSessions lists saved recordings, newest first.
func GetSessions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 10
	}

	var sessions []models.RecordingSession
	var total int64

	query := database.DB.Model(&models.RecordingSession{})
	if name := c.Query("name"); name != "" {
		query = query.Where("name LIKE ?", "%"+name+"%")
	}
	query.Count(&total)

	offset := (page - 1) * pageSize
	err := query.Preload("User").
		Omit("actions").
		Order("created_at DESC").
		Offset(offset).Limit(pageSize).
		Find(&sessions).Error
	if err != nil {
		response.InternalServerError(c, "failed to list recordings")
		return
	}

	for i := range sessions {
		sessions[i].User.Password = ""
	}

	response.Page(c, sessions, total, page, pageSize)
}

// GetSession returns one saved recording including its action log.
func GetSession(c *gin.Context) {
	sessionID := c.Param("id")

	var record models.RecordingSession
	err := database.DB.Preload("User").Where("session_id = ?", sessionID).First(&record).Error
	if err != nil {
		response.NotFound(c, "recording not found")
		return
	}
	record.User.Password = ""

	actions, err := record.GetActions()
	if err != nil {
		response.InternalServerError(c, "failed to decode action log")
		return
	}
	if actions == nil {
		actions = make([]action.Action, 0)
	}

	response.Success(c, gin.H{
		"session": record,
		"actions": actions,
	})
}

// ExportSession transcodes a session's action log into the target RPA
// script. Live sessions export their current log; finished ones export the
// persisted snapshot.
func ExportSession(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		response.Unauthorized(c, "not logged in")
		return
	}

	var req struct {
		SessionID  string `json:"session_id" binding:"required"`
		SmartWaits bool   `json:"smart_waits"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	actions, err := sessionActions(req.SessionID)
	if err != nil {
		response.NotFound(c, err.Error())
		return
	}

	t := transcoder.New()
	targets := t.Transcode(actions)
	if req.SmartWaits {
		targets = t.InsertSmartWaits(targets)
	}

	if len(actions) == 0 {
		response.SuccessWithMessage(c, "nothing to export", gin.H{
			"session_id": req.SessionID,
			"script":     targets,
		})
		return
	}

	scriptJSON, err := json.Marshal(targets)
	if err != nil {
		response.InternalServerError(c, "failed to encode script")
		return
	}

	record := models.ExportRecord{
		SessionID:   req.SessionID,
		Script:      string(scriptJSON),
		ActionCount: len(actions),
		TargetCount: len(targets),
		UserID:      userID.(uint),
	}
	if err := database.DB.Create(&record).Error; err != nil {
		log.Printf("export record save failed for session %s: %v", req.SessionID, err)
	}

	response.SuccessWithMessage(c, "export complete", gin.H{
		"session_id":   req.SessionID,
		"action_count": len(actions),
		"target_count": len(targets),
		"script":       targets,
	})
}

// sessionActions resolves the action log for a session, preferring the live
// recorder over the persisted snapshot.
func sessionActions(sessionID string) ([]action.Action, error) {
	if rec, ok := recorder.Default.Get(sessionID); ok {
		return rec.Session().Snapshot(), nil
	}

	var record models.RecordingSession
	err := database.DB.Where("session_id = ?", sessionID).First(&record).Error
	if err != nil {
		return nil, fmt.Errorf("recording session %s not found", sessionID)
	}
	return record.GetActions()
}

// GetExports lists past exports for a session.
func GetExports(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		response.Unauthorized(c, "not logged in")
		return
	}

	sessionID := c.Query("session_id")
	if sessionID == "" {
		response.BadRequest(c, "session_id is required")
		return
	}
	if !database.HasPermissionOnSession(userID.(uint), sessionID) {
		response.Forbidden(c, "no permission on this recording")
		return
	}

	var exports []models.ExportRecord
	err := database.DB.Where("session_id = ?", sessionID).
		Omit("script").
		Order("created_at DESC").
		Find(&exports).Error
	if err != nil {
		response.InternalServerError(c, "failed to list exports")
		return
	}

	response.Success(c, exports)
}

// SessionWebSocket streams every logged action to the client as it is
// appended, so the UI can render the recording live.
func SessionWebSocket(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id is required"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	rec, ok := lookupRecorder(sessionID)
	if !ok {
		conn.WriteJSON(gin.H{"error": "recording session not found"})
		return
	}

	sess := rec.Session()
	feed, cancel := sess.Subscribe()
	defer cancel()

	// Send the backlog first so late joiners see the full log.
	for _, a := range sess.Snapshot() {
		if err := conn.WriteJSON(a); err != nil {
			return
		}
	}

	// Drain client reads so pings and close frames are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	for a := range feed {
		if err := conn.WriteJSON(a); err != nil {
			return
		}
	}
}
