package commands

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

func (d *Dispatcher) help(msg *discordgo.MessageCreate) {
	prefix := d.prefix(msg.GuildID)
	embed := &discordgo.MessageEmbed{
		Title:       "Commands list",
		Description: fmt.Sprintf("**Notice:** You must own the voice channel you're currently in to perform most of these actions (except for `%[1]s claim`).\nHere are all the commands you can use:", prefix),
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:  fmt.Sprintf("%s name <channel_name>", prefix),
				Value: "Rename your channel.",
			},
			{
				Name:  fmt.Sprintf("%s lock", prefix),
				Value: fmt.Sprintf("Lock your channel; nobody can join you unless you explicitly allow them to do so with `%s permit`.", prefix),
			},
			{
				Name:  fmt.Sprintf("%s permit <@someone/@role/username>", prefix),
				Value: "Allow the given user or role to join your locked channel.",
			},
			{
				Name:  fmt.Sprintf("%s unlock", prefix),
				Value: "Open your locked channel to everyone.",
			},
			{
				Name:  fmt.Sprintf("%s reject <@someone/username>", prefix),
				Value: "Kick a user out of your channel.",
			},
			{
				Name:  fmt.Sprintf("%s claim", prefix),
				Value: "Request ownership of the voice channel you're currently into. Only works if the previous owner left.",
			},
			{
				Name:  fmt.Sprintf("%s limit <0-99>", prefix),
				Value: "Set a user limit on your channel (0 means **unlimited**).",
			},
			{
				Name:  fmt.Sprintf("%s bitrate <number>", prefix),
				Value: "Set the channel's bitrate.",
			},
		},
		Color: 6465260,
	}
	if _, err := d.client.SendEmbed(msg.ChannelID, embed); err != nil {
		log.Errorf("Failed to send the help embed: %v", err)
	}
}
