package life

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"runtime"
	"sort"
	"strings"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/bwmarrin/discordgo"
	"github.com/intrntsrfr/life/timecard"
	"github.com/intrntsrfr/life/usercache"
	"github.com/intrntsrfr/meido/pkg/mio"
	"github.com/intrntsrfr/meido/pkg/mio/bot"
	"github.com/intrntsrfr/meido/pkg/mio/discord"
	"github.com/intrntsrfr/meido/pkg/utils/builders"
)

type module struct {
	*bot.ModuleBase
	b         *Bot
	log       mio.Logger
	startTime time.Time
}

func NewModule(b *Bot, logger mio.Logger) *module {
	logger = logger.Named("profile")
	return &module{
		ModuleBase: bot.NewModule(b.Bot, "profile", logger),
		b:          b,
		log:        logger,
		startTime:  time.Now(),
	}
}

func (m *module) Hook() error {
	if err := m.RegisterCommands(); err != nil {
		return err
	}
	if err := m.RegisterApplicationCommands(
		newInfoSlash(m),
		newHelpSlash(m),
		newXpSlash(m),
		newLeaderboardSlash(m),
		newSettingsSlash(m),
		newBlacklistSlash(m),
		newTimecardSlash(m),
	); err != nil {
		return err
	}

	return nil
}

func editContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), editTimeout)
}

func newHelpSlash(m *module) *bot.ModuleApplicationCommand {
	cmd := bot.NewModuleApplicationCommandBuilder(m, "help").
		Type(discordgo.ChatApplicationCommand).
		Description("Get help on how to use the bot")

	run := func(d *discord.DiscordApplicationCommand) {
		text := strings.Builder{}
		text.WriteString("Every message you send earns you xp, and every so often you level up.\n")
		text.WriteString("\n")
		text.WriteString("To see your xp, level and rank, use the `/xp` command\n")
		text.WriteString("To see the server leaderboard, use the `/leaderboard` command\n")
		text.WriteString("To set your embed colour or timezone, use the `/settings` command\n")
		text.WriteString("To see what time it is for everyone, use the `/timecard` command\n")
		text.WriteString("\n")

		embed := builders.NewEmbedBuilder().
			WithTitle("Help").
			WithOkColor().
			WithDescription(text.String())
		d.RespondEmbed(embed.Build())
	}

	return cmd.Execute(run).Build()
}

func newInfoSlash(m *module) *bot.ModuleApplicationCommand {
	cmd := bot.NewModuleApplicationCommandBuilder(m, "info").
		Type(discordgo.ChatApplicationCommand).
		Description("Get information about the bot")

	run := func(d *discord.DiscordApplicationCommand) {
		embed := builders.NewEmbedBuilder().
			WithTitle("Info").
			WithOkColor().
			AddField("Golang version", runtime.Version(), false).
			AddField("Running since", fmt.Sprintf("<t:%v:R>", m.startTime.Unix()), false).
			AddField("Total guilds", fmt.Sprintf("%v", d.Discord.GuildCount()), false)
		d.RespondEmbed(embed.Build())
	}

	return cmd.Execute(run).Build()
}

func newXpSlash(m *module) *bot.ModuleApplicationCommand {
	cmd := bot.NewModuleApplicationCommandBuilder(m, "xp").
		Type(discordgo.ChatApplicationCommand).
		NoDM().
		Description("See your xp, level and server rank")

	run := func(d *discord.DiscordApplicationCommand) {
		userID, err := parseUserID(d.AuthorID())
		if err != nil {
			d.Respond("Something went wrong.")
			return
		}

		uc := m.b.users.Get(userID)
		if uc.UserID() == 0 {
			d.Respond("You do not have a profile yet. Send a message first!")
			return
		}

		embed := builders.NewEmbedBuilder().
			WithTitle("Profile").
			WithColor(uc.Colour()).
			AddField("XP", fmt.Sprint(uc.XP()), true).
			AddField("Level", fmt.Sprint(uc.Level()), true)

		g, err := m.b.Bot.Discord.Guild(d.GuildID())
		if err == nil {
			if rank, err := m.b.users.Rank(guildMemberIDs(g), userID); err == nil {
				embed.AddField("Rank", fmt.Sprintf("%v / %v", rank, g.MemberCount), true)
			}
		}

		d.RespondEmbed(embed.Build())
	}

	return cmd.Execute(run).Build()
}

func newLeaderboardSlash(m *module) *bot.ModuleApplicationCommand {
	cmd := bot.NewModuleApplicationCommandBuilder(m, "leaderboard").
		Type(discordgo.ChatApplicationCommand).
		NoDM().
		Description("See the server leaderboard").
		AddSubcommand(&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "xp",
			Description: "Sort the leaderboard by xp",
		}).
		AddSubcommand(&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "level",
			Description: "Sort the leaderboard by level",
		})

	run := func(d *discord.DiscordApplicationCommand) {
		g, err := m.b.Bot.Discord.Guild(d.GuildID())
		if err != nil {
			d.Respond("Guild with that id not found.")
			return
		}

		by := usercache.SortXP
		if _, ok := d.Options("level"); ok {
			by = usercache.SortLevel
		}

		configs, err := m.b.users.Leaderboard(guildMemberIDs(g), by)
		if err != nil {
			d.Respond("No one in this server has a profile yet.")
			return
		}
		if len(configs) > 10 {
			configs = configs[:10]
		}

		text := strings.Builder{}
		for i, uc := range configs {
			text.WriteString(fmt.Sprintf("**%v.** <@%v> - level %v (%v xp)\n", i+1, uc.UserID(), uc.Level(), uc.XP()))
		}

		embed := builders.NewEmbedBuilder().
			WithTitle(fmt.Sprintf("Leaderboard - %v", g.Name)).
			WithOkColor().
			WithDescription(text.String())
		d.RespondEmbed(embed.Build())
	}

	return cmd.Execute(run).Build()
}

func newSettingsSlash(m *module) *bot.ModuleApplicationCommand {
	cmd := bot.NewModuleApplicationCommandBuilder(m, "settings").
		Type(discordgo.ChatApplicationCommand).
		Description("View or change your profile settings").
		AddSubcommand(&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "view",
			Description: "View your current settings",
		}).
		AddSubcommand(&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "colour",
			Description: "Set your embed colour, or reset it by leaving the value out",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "hex",
					Description: "A hex colour, like #61D1ED",
				},
			},
		}).
		AddSubcommand(&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "timezone",
			Description: "Set your timezone, or reset it by leaving the value out",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "zone",
					Description: "An IANA timezone name, like Europe/Oslo",
				},
			},
		}).
		AddSubcommand(&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "privacy",
			Description: "Hide or show your timezone on timecards",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "hidden",
					Description: "Whether to hide your timezone",
					Required:    true,
				},
			},
		})

	run := func(d *discord.DiscordApplicationCommand) {
		userID, err := parseUserID(d.AuthorID())
		if err != nil {
			d.Respond("Something went wrong.")
			return
		}

		ctx, cancel := editContext()
		defer cancel()

		if _, ok := d.Options("view"); ok {
			uc := m.b.users.Get(userID)
			d.RespondEmbed(generateSettingsEmbed(uc))
			return
		} else if _, ok := d.Options("colour"); ok {
			edit := usercache.ColourEdit{Op: usercache.OpReset}
			if opt, ok := d.Options("colour:hex"); ok {
				colour, err := parseHexColour(opt.StringValue())
				if err != nil {
					d.Respond("That does not look like a hex colour. Try something like `#61D1ED`.")
					return
				}
				edit = usercache.ColourEdit{Op: usercache.OpSet, Colour: colour}
			}
			uc, err := m.b.users.Edit(ctx, userID, edit)
			if err != nil {
				d.Respond("Failed to update your colour.")
				return
			}
			d.RespondEmbed(generateSettingsEmbed(uc))
			return
		} else if _, ok := d.Options("timezone"); ok {
			edit := usercache.TimezoneEdit{Op: usercache.OpReset}
			if opt, ok := d.Options("timezone:zone"); ok {
				zone := opt.StringValue()
				if _, err := time.LoadLocation(zone); err != nil {
					d.Respond("Unknown timezone. Try an IANA name like `Europe/Oslo` or `America/New_York`.")
					return
				}
				edit = usercache.TimezoneEdit{Op: usercache.OpSet, Timezone: zone}
			}
			uc, err := m.b.users.Edit(ctx, userID, edit)
			if err != nil {
				d.Respond("Failed to update your timezone.")
				return
			}
			d.RespondEmbed(generateSettingsEmbed(uc))
			return
		} else if _, ok := d.Options("privacy"); ok {
			opt, ok := d.Options("privacy:hidden")
			if !ok {
				d.Respond("Something went wrong.")
				return
			}
			edit := usercache.TimezonePrivateEdit{Op: usercache.OpReset}
			if opt.BoolValue() {
				edit = usercache.TimezonePrivateEdit{Op: usercache.OpSet}
			}
			uc, err := m.b.users.Edit(ctx, userID, edit)
			if err != nil {
				d.Respond("Failed to update your timezone privacy.")
				return
			}
			d.RespondEmbed(generateSettingsEmbed(uc))
			return
		}
	}

	return cmd.Execute(run).Build()
}

func generateSettingsEmbed(uc *usercache.UserConfig) *discordgo.MessageEmbed {
	privacy := "Visible"
	if uc.TimezonePrivate() {
		privacy = "Hidden"
	}

	embed := builders.NewEmbedBuilder().
		WithTitle("Settings").
		WithColor(uc.Colour()).
		AddField("Colour", fmt.Sprintf("#%06X", uc.Colour()), true).
		AddField("Timezone", uc.Timezone(), true).
		AddField("Timezone on timecards", privacy, true)

	return embed.Build()
}

func newBlacklistSlash(m *module) *bot.ModuleApplicationCommand {
	cmd := bot.NewModuleApplicationCommandBuilder(m, "blacklist").
		Type(discordgo.ChatApplicationCommand).
		NoDM().
		Permissions(discordgo.PermissionAdministrator).
		Description("Stop a user from earning xp").
		AddSubcommand(&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "add",
			Description: "Blacklist a user",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "The user to blacklist",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "reason",
					Description: "Why the user is blacklisted",
				},
			},
		}).
		AddSubcommand(&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "remove",
			Description: "Remove a user from the blacklist",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "The user to remove",
					Required:    true,
				},
			},
		})

	run := func(d *discord.DiscordApplicationCommand) {
		ctx, cancel := editContext()
		defer cancel()

		if _, ok := d.Options("add"); ok {
			opt, ok := d.Options("add:user")
			if !ok {
				d.Respond("User not found")
				return
			}
			target := opt.UserValue(d.Sess.Real())
			userID, err := parseUserID(target.ID)
			if err != nil {
				d.Respond("User not found")
				return
			}

			reason := "None"
			if opt, ok := d.Options("add:reason"); ok {
				reason = opt.StringValue()
			}

			if _, err := m.b.users.Edit(ctx, userID, usercache.BlacklistEdit{Op: usercache.OpSet, Reason: reason}); err != nil {
				d.Respond("Failed to blacklist the user.")
				return
			}
			d.Respond(fmt.Sprintf("Blacklisted %v.", target.String()))
			return
		} else if _, ok := d.Options("remove"); ok {
			opt, ok := d.Options("remove:user")
			if !ok {
				d.Respond("User not found")
				return
			}
			target := opt.UserValue(d.Sess.Real())
			userID, err := parseUserID(target.ID)
			if err != nil {
				d.Respond("User not found")
				return
			}

			if _, err := m.b.users.Edit(ctx, userID, usercache.BlacklistEdit{Op: usercache.OpReset}); err != nil {
				d.Respond("Failed to remove the user from the blacklist.")
				return
			}
			d.Respond(fmt.Sprintf("Removed %v from the blacklist.", target.String()))
			return
		}
	}

	return cmd.Execute(run).Build()
}

func newTimecardSlash(m *module) *bot.ModuleApplicationCommand {
	cmd := bot.NewModuleApplicationCommandBuilder(m, "timecard").
		Type(discordgo.ChatApplicationCommand).
		NoDM().
		Description("See what time it is for everyone in the server")

	run := func(d *discord.DiscordApplicationCommand) {
		g, err := m.b.Bot.Discord.Guild(d.GuildID())
		if err != nil {
			d.Respond("Guild with that id not found.")
			return
		}

		groups := m.collectTimezoneGroups(g)
		if len(groups) == 0 {
			d.Respond("There are no users with timezones set in this server.")
			return
		}

		data, err := timecard.Render(groups)
		if err != nil {
			d.Respond("Failed to render the timecard.")
			return
		}

		resp := &discordgo.InteractionResponseData{
			Files: []*discordgo.File{
				{
					Name:        "timecard.png",
					ContentType: "image/png",
					Reader:      bytes.NewReader(data),
				},
			},
		}
		d.RespondComplex(resp, discordgo.InteractionResponseChannelMessageWithSource)
	}

	return cmd.Execute(run).Build()
}

type timezoneGroup struct {
	timecard.Group
	offset int
}

// collectTimezoneGroups buckets the guild's members by their current local
// time. Users who hid their timezone or never left the UTC default are
// skipped, like users whose avatar cannot be fetched.
func (m *module) collectTimezoneGroups(g *discordgo.Guild) []timecard.Group {
	configs := m.b.users.Snapshot(guildMemberIDs(g))

	byLabel := make(map[string]*timezoneGroup)
	var order []*timezoneGroup
	for _, uc := range configs {
		if uc.TimezonePrivate() || uc.Timezone() == "UTC" {
			continue
		}
		loc, err := time.LoadLocation(uc.Timezone())
		if err != nil {
			continue
		}

		mem := findMember(g, uc.UserID())
		if mem == nil {
			continue
		}

		data, err := m.b.store.FetchAvatar(mem.User.ID, mem.User.Avatar, mem.User.AvatarURL("256"))
		if err != nil {
			m.log.Error("failed to fetch avatar", "userID", mem.User.ID, "error", err)
			continue
		}
		avatar, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			continue
		}

		now := time.Now().In(loc)
		label := now.Format("15:04 (-07:00)")
		group, ok := byLabel[label]
		if !ok {
			_, offset := now.Zone()
			group = &timezoneGroup{Group: timecard.Group{Label: label}, offset: offset}
			byLabel[label] = group
			order = append(order, group)
		}
		group.Avatars = append(group.Avatars, avatar)
	}

	sort.SliceStable(order, func(i, j int) bool {
		return order[i].offset < order[j].offset
	})

	groups := make([]timecard.Group, 0, len(order))
	for _, tg := range order {
		groups = append(groups, tg.Group)
	}
	return groups
}
