// Package discord delivers notifications to a Discord channel through a
// bot session. Send-only: the watcher never reads the channel.
package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/bnema/dipwatch/internal/ports"
)

type Sink struct {
	session   *discordgo.Session
	channelID string
}

var _ ports.Deliverer = (*Sink)(nil)

func NewSink(token, channelID string) (*Sink, error) {
	if token == "" {
		return nil, fmt.Errorf("discord bot token is required")
	}
	if channelID == "" {
		return nil, fmt.Errorf("discord channel id is required")
	}

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discordgo session: %w", err)
	}

	return &Sink{session: session, channelID: channelID}, nil
}

func (s *Sink) Name() string { return "discord" }

func (s *Sink) Deliver(ctx context.Context, category string, recipients []string, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := s.session.ChannelMessageSend(s.channelID, text); err != nil {
		return fmt.Errorf("send to Discord: %w", err)
	}

	return nil
}

func (s *Sink) Close() error {
	return s.session.Close()
}
