package discord

import (
	"github.com/bwmarrin/discordgo"
	"github.com/google/logger"
)

// Discord sends notifications about batches to a Discord channel
type Discord struct {
	Token     string `long:"discord.token" description:"Discord authentication token; notifications are disabled if not set" toml:"token"`
	ChannelID string `long:"discord.channelid" description:"ID of the channel to which messages should be sent" toml:"channelid"`
	Prefix    string `long:"discord.prefix" description:"Prefix for every message" toml:"prefix"`

	api *discordgo.Session
}

// Enabled returns whether enough options are set to send messages
func (discord *Discord) Enabled() bool {
	return discord.Token != "" && discord.ChannelID != ""
}

// Init opens the connection to Discord
func (discord *Discord) Init() (err error) {
	if !discord.Enabled() {
		return nil
	}

	discord.api, err = discordgo.New("Bot " + discord.Token)

	if err != nil {
		return err
	}

	return discord.api.Open()
}

// SendMessage sends a message to the Discord channel. Failures are only logged
func (discord *Discord) SendMessage(message string) {
	if discord.api == nil {
		return
	}

	message = discord.format(message)

	_, err := discord.api.ChannelMessageSend(discord.ChannelID, message)

	if err != nil {
		logger.Warningf("Could not send (%v) to Discord: %v", message, err)
	}
}

// Close closes the connection to Discord
func (discord *Discord) Close() {
	if discord.api == nil {
		return
	}

	if err := discord.api.Close(); err != nil {
		logger.Warning("Could not close Discord connection: " + err.Error())
	}
}

func (discord *Discord) format(message string) string {
	if discord.Prefix != "" {
		return discord.Prefix + ": " + message
	}

	return message
}
