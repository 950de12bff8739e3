package life

import (
	"reflect"
	"testing"

	"github.com/bwmarrin/discordgo"
)

func TestParseHexColour(t *testing.T) {
	type args struct {
		s string
	}
	tests := []struct {
		name    string
		args    args
		want    int
		wantErr bool
	}{
		{name: "with hash", args: args{"#61D1ED"}, want: 0x61D1ED},
		{name: "with 0x", args: args{"0x61D1ED"}, want: 0x61D1ED},
		{name: "bare", args: args{"61d1ed"}, want: 0x61D1ED},
		{name: "out of range", args: args{"1000000"}, wantErr: true},
		{name: "not hex", args: args{"pumpkin"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseHexColour(tt.args.s)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseHexColour() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("parseHexColour() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGuildMemberIDs(t *testing.T) {
	g := &discordgo.Guild{
		Members: []*discordgo.Member{
			{User: &discordgo.User{ID: "123"}},
			{User: &discordgo.User{ID: "456"}},
			{User: &discordgo.User{ID: "not a snowflake"}},
		},
	}

	want := []int64{123, 456}
	if got := guildMemberIDs(g); !reflect.DeepEqual(got, want) {
		t.Errorf("guildMemberIDs() = %v, want %v", got, want)
	}
}

func TestFindMember(t *testing.T) {
	g := &discordgo.Guild{
		Members: []*discordgo.Member{
			{User: &discordgo.User{ID: "123"}},
			{User: &discordgo.User{ID: "456"}},
		},
	}

	if mem := findMember(g, 456); mem == nil || mem.User.ID != "456" {
		t.Errorf("findMember() = %v, want member 456", mem)
	}
	if mem := findMember(g, 789); mem != nil {
		t.Errorf("findMember() = %v, want nil", mem)
	}
}
