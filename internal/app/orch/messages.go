package orch

import (
	"encoding/json"

	"github.com/dkeye/Lobby/internal/core"
	"github.com/dkeye/Lobby/internal/domain"
)

// Outbound message types.
const (
	TypeRoomCreated         = "room-created"
	TypeRoomJoined          = "room-joined"
	TypePlayerJoined        = "player-joined"
	TypePlayerReconnected   = "player-reconnected"
	TypeGameStarted         = "game-started"
	TypeStartGameResult     = "start-game-result"
	TypePlayerMoved         = "player-moved"
	TypePlayerSpeaking      = "player-speaking"
	TypePlayerRenamed       = "player-renamed"
	TypePlayerLeft          = "player-left"
	TypeHostChanged         = "host-changed"
	TypeRoomClosed          = "room-closed"
	TypeRoomEnded           = "room-ended"
	TypeLeft                = "left"
	TypeScreenshareStarting = "screenshare-starting"
	TypeScreenshareStopped  = "screenshare-stopped"
)

type joinedMsg struct {
	Type string `json:"type"`
	core.JoinAck
}

type playerJoinedMsg struct {
	Type   string         `json:"type"`
	RoomID domain.RoomID  `json:"roomId"`
	Player core.PlayerDTO `json:"player"`
}

type playerMsg struct {
	Type     string               `json:"type"`
	RoomID   domain.RoomID        `json:"roomId,omitempty"`
	PlayerID domain.ParticipantID `json:"playerId"`
	Username string               `json:"username,omitempty"`
}

type roomMsg struct {
	Type   string             `json:"type"`
	RoomID domain.RoomID      `json:"roomId"`
	Reason domain.CloseReason `json:"reason,omitempty"`
	OK     bool               `json:"ok,omitempty"`
}

type hostChangedMsg struct {
	Type     string               `json:"type"`
	RoomID   domain.RoomID        `json:"roomId"`
	HostID   domain.ParticipantID `json:"hostId"`
	PlayerID domain.ParticipantID `json:"playerId"`
}

type movedMsg struct {
	Type     string               `json:"type"`
	PlayerID domain.ParticipantID `json:"playerId"`
	X        float64              `json:"x"`
	Y        float64              `json:"y"`
	Anim     string               `json:"anim,omitempty"`
}

type speakingMsg struct {
	Type     string               `json:"type"`
	PlayerID domain.ParticipantID `json:"playerId"`
	Speaking bool                 `json:"speaking"`
}

type screenshareMsg struct {
	Type   string               `json:"type"`
	HostID domain.ParticipantID `json:"hostId"`
}

type relayMsg struct {
	Type    string               `json:"type"`
	From    domain.ParticipantID `json:"from"`
	Payload json.RawMessage      `json:"payload,omitempty"`
}
