package telegram

import (
	"context"

	"aura-vcf-bot/internal/infra/logging"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"
)

// IsMemberOfAll checks every required channel concurrently. A channel whose
// lookup fails counts as not joined.
func (r *RealTelegramBotAdapter) IsMemberOfAll(ctx context.Context, userID int64) (bool, error) {
	channels := r.cfg.RequiredChannels
	joined := make([]bool, len(channels))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, ch := range channels {
		i, ch := i, ch
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			member, err := r.bot.GetChatMember(tgbotapi.GetChatMemberConfig{
				ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
					SuperGroupUsername: ch.Username,
					UserID:             userID,
				},
			})
			if err != nil {
				logging.With(ctx, r.log).Warn().Err(err).Str("channel", ch.Username).Msg("get chat member")
				return nil
			}
			joined[i] = isJoinedStatus(member.Status)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return false, err
	}

	for _, ok := range joined {
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func isJoinedStatus(status string) bool {
	switch status {
	case "member", "administrator", "creator":
		return true
	}
	return false
}
