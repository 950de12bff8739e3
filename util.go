package life

import (
	"errors"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
)

var errBadColour = errors.New("not a hex colour")

func parseUserID(id string) (int64, error) {
	return strconv.ParseInt(id, 10, 64)
}

// parseHexColour accepts "#61D1ED", "0x61D1ED" or bare "61D1ED".
func parseHexColour(s string) (int, error) {
	s = strings.TrimPrefix(s, "#")
	s = strings.TrimPrefix(strings.ToLower(s), "0x")

	n, err := strconv.ParseInt(s, 16, 64)
	if err != nil || n < 0 || n > 0xFFFFFF {
		return 0, errBadColour
	}
	return int(n), nil
}

func guildMemberIDs(g *discordgo.Guild) []int64 {
	ids := make([]int64, 0, len(g.Members))
	for _, mem := range g.Members {
		id, err := parseUserID(mem.User.ID)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func findMember(g *discordgo.Guild, userID int64) *discordgo.Member {
	id := strconv.FormatInt(userID, 10)
	for _, mem := range g.Members {
		if mem.User.ID == id {
			return mem
		}
	}
	return nil
}
