package http

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// savedSession lets a browser find its way back into a room after a reload.
type savedSession struct {
	RoomID   string `json:"roomId" binding:"required,numeric,len=6"`
	PlayerID string `json:"playerId" binding:"required,max=36"`
	Username string `json:"username" binding:"max=36"`
}

const (
	keyRoomID   = "room_id"
	keyPlayerID = "player_id"
	keyUsername = "username"
)

func getSession(c *gin.Context) {
	s := sessions.Default(c)
	roomID, _ := s.Get(keyRoomID).(string)
	playerID, _ := s.Get(keyPlayerID).(string)
	if roomID == "" || playerID == "" {
		c.JSON(http.StatusNotFound, gin.H{"ok": false})
		return
	}
	username, _ := s.Get(keyUsername).(string)
	c.JSON(http.StatusOK, gin.H{"ok": true, "session": savedSession{RoomID: roomID, PlayerID: playerID, Username: username}})
}

func saveSession(c *gin.Context) {
	var in savedSession
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "reason": "invalid_request"})
		return
	}
	s := sessions.Default(c)
	s.Set(keyRoomID, in.RoomID)
	s.Set(keyPlayerID, in.PlayerID)
	s.Set(keyUsername, in.Username)
	if err := s.Save(); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("save session")
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "reason": "internal"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func clearSession(c *gin.Context) {
	s := sessions.Default(c)
	s.Clear()
	s.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := s.Save(); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("clear session")
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "reason": "internal"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
