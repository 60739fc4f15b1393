package signal

import (
	"context"
	"encoding/json"

	"github.com/dkeye/Lobby/internal/app/orch"
	"github.com/dkeye/Lobby/internal/domain"
)

// relayPayload accepts both the game client and the screen-share client
// field names.
type relayPayload struct {
	RoomID       string          `json:"roomId" validate:"omitempty,numeric,len=6"`
	From         string          `json:"from" validate:"max=36"`
	FromPlayerID string          `json:"fromPlayerId" validate:"max=36"`
	To           string          `json:"to" validate:"required_without=ToPlayerID,max=36"`
	ToPlayerID   string          `json:"toPlayerId" validate:"required_without=To,max=36"`
	Payload      json.RawMessage `json:"payload"`
	Offer        json.RawMessage `json:"offer"`
	Answer       json.RawMessage `json:"answer"`
	Candidate    json.RawMessage `json:"candidate"`
}

func (p relayPayload) from() domain.ParticipantID {
	if p.From != "" {
		return domain.ParticipantID(p.From)
	}
	return domain.ParticipantID(p.FromPlayerID)
}

func (p relayPayload) to() domain.ParticipantID {
	if p.To != "" {
		return domain.ParticipantID(p.To)
	}
	return domain.ParticipantID(p.ToPlayerID)
}

func (p relayPayload) body() json.RawMessage {
	for _, b := range []json.RawMessage{p.Payload, p.Offer, p.Answer, p.Candidate} {
		if len(b) > 0 {
			return b
		}
	}
	return nil
}

func isRelay(kind string) bool { return orch.IsRelayKind(kind) }

// handleRelay forwards negotiation payloads as-is; undeliverable ones vanish.
func (ctl *SignalWSController) handleRelay(ctx context.Context, s *wsSession, kind string, data []byte) {
	p, err := decode[relayPayload](ctl, data)
	if err != nil {
		ctl.sendError(s, kind, err)
		return
	}
	if err := ctl.Orch.Relay(ctx, s.id, domain.RoomID(p.RoomID), p.from(), p.to(), kind, p.body()); err != nil {
		ctl.sendError(s, kind, err)
	}
}
