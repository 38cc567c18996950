package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/alonebown/crewdesk/internal/chat"
	"github.com/alonebown/crewdesk/pkg/util"
)

func (r *Router) handleRollIn(ctx context.Context, cmd chat.Command) {
	nickname := strings.TrimSpace(cmd.Args)
	if nickname == "" {
		r.reply(ctx, cmd.ChatID, "Usage: /rollin <game nickname>")
		return
	}
	entry, err := r.roster.RollIn(ctx, cmd.From, nickname)
	if err != nil {
		r.reply(ctx, cmd.ChatID, util.ToDomainError(err).Message)
		return
	}
	r.reply(ctx, cmd.ChatID, fmt.Sprintf("You have successfully entered as %s, role %s.", entry.GameNickname, entry.Role))
}

func (r *Router) handleStats(ctx context.Context, cmd chat.Command) {
	entry, err := r.roster.Stats(ctx, cmd.From)
	if err != nil {
		r.reply(ctx, cmd.ChatID, util.ToDomainError(err).Message)
		return
	}
	r.reply(ctx, cmd.ChatID, fmt.Sprintf("Name: %s\nNickname: %s\nRole: %s", entry.UserName, entry.GameNickname, entry.Role))
}
