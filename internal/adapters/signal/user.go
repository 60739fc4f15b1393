package signal

import (
	"context"

	"github.com/dkeye/Lobby/internal/app/orch"
	"github.com/rs/zerolog/log"
)

type renamePayload struct {
	Username string `json:"username" validate:"required,max=256"`
}

func (ctl *SignalWSController) handleRename(ctx context.Context, s *wsSession, data []byte) {
	const request = "rename"
	p, err := decode[renamePayload](ctl, data)
	if err != nil {
		ctl.sendError(s, request, err)
		return
	}
	log.Info().Str("module", "signal").Str("conn", string(s.id)).Str("name", p.Username).Msg("rename")
	if err := ctl.Orch.Rename(ctx, s.id, p.Username); err != nil {
		ctl.sendError(s, request, err)
		return
	}
	ctl.handleWhoAmI(ctx, s)
}

func (ctl *SignalWSController) handleWhoAmI(ctx context.Context, s *wsSession) {
	id, err := ctl.Orch.WhoAmI(ctx, s.id)
	if err != nil {
		ctl.sendError(s, "whoami", err)
		return
	}
	ctl.sendJSON(s, struct {
		Type string `json:"type"`
		orch.Identity
	}{"whoami", id})
}
