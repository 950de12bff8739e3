package life

import (
	"context"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/intrntsrfr/life/usercache"
)

type Color int

const (
	ColorRed    Color = 0xff0000
	ColorGreen  Color = 0x00ff00
	ColorBlue   Color = 0x61d1ed
	ColorGold   Color = 0xf1c40f
	ColorOrange Color = 0xf57f54
)

// xpPerMessage is what every non-bot, non-blacklisted message earns.
const xpPerMessage = 25

const editTimeout = 10 * time.Second

func readyHandler(b *Bot) func(*discordgo.Session, *discordgo.Ready) {
	return func(s *discordgo.Session, r *discordgo.Ready) {
		b.logger.Info("logged in", "user", r.User.String())
		b.signalReady()
	}
}

func disconnectHandler(b *Bot) func(*discordgo.Session, *discordgo.Disconnect) {
	return func(s *discordgo.Session, d *discordgo.Disconnect) {
		b.logger.Info("disconnected")
	}
}

// messageCreateHandler awards xp for guild messages. The edit only touches
// memory unless the user has no row yet; the flush loop persists it later.
func messageCreateHandler(b *Bot) func(*discordgo.Session, *discordgo.MessageCreate) {
	return func(s *discordgo.Session, d *discordgo.MessageCreate) {
		if d.Author == nil || d.Author.Bot || d.GuildID == "" {
			return
		}

		userID, err := strconv.ParseInt(d.Author.ID, 10, 64)
		if err != nil {
			return
		}

		if b.users.Get(userID).Blacklisted() {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), editTimeout)
		defer cancel()
		if _, err := b.users.Edit(ctx, userID, usercache.XPEdit{Op: usercache.OpAdd, Value: xpPerMessage}); err != nil {
			b.logger.Error("failed to award xp", "userID", userID, "error", err)
		}
	}
}
