package sched

import (
	"context"

	"aura-vcf-bot/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Pinger is anything that can prove the Telegram API is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KeepAlive pings the bot API on every scheduler tick. In silent mode
// successful pings are logged at debug level only; it never messages users.
type KeepAlive struct {
	pinger Pinger
	silent bool
	log    *zerolog.Logger
}

func NewKeepAlive(pinger Pinger, silent bool, logger *zerolog.Logger) *KeepAlive {
	l := logger.With().Str("component", "KeepAlive").Logger()
	return &KeepAlive{pinger: pinger, silent: silent, log: &l}
}

func (k *KeepAlive) Name() string { return "keepalive" }

func (k *KeepAlive) Run(ctx context.Context) error {
	if err := k.pinger.Ping(ctx); err != nil {
		metrics.IncKeepAlive(false)
		return err
	}
	metrics.IncKeepAlive(true)
	if k.silent {
		k.log.Debug().Msg("keep-alive ping ok")
	} else {
		k.log.Info().Msg("keep-alive ping ok")
	}
	return nil
}
