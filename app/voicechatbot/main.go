package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Halocrea/voice-chat-bot/channels"
	"github.com/Halocrea/voice-chat-bot/commands"
	"github.com/Halocrea/voice-chat-bot/database"
	"github.com/Halocrea/voice-chat-bot/discord"
	"github.com/Halocrea/voice-chat-bot/logging"
	"github.com/Halocrea/voice-chat-bot/moderation"
	"github.com/Halocrea/voice-chat-bot/setup"
	"github.com/Halocrea/voice-chat-bot/stores"
	"github.com/bwmarrin/discordgo"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var log *zap.SugaredLogger

func main() {
	log = logging.InitLogger()
	initConfig()

	db, err := database.Init(viper.GetString("database_path"))
	if err != nil {
		log.Fatalf("Failed to open the database: %v", err)
	}

	dg, err := discordgo.New("Bot " + viper.GetString("token"))
	if err != nil {
		log.Fatalf("Error creating discord session: %v", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentMessageContent

	client := discord.NewSession(dg)
	guildStore := stores.NewGuildSetupStore(db)
	router := &router{
		guilds:        guildStore,
		defaultPrefix: viper.GetString("cmd_prefix"),
		lifecycle: channels.NewManager(
			client,
			stores.NewOwnershipStore(db),
			stores.NewPreferenceStore(db),
			guildStore,
		),
		dispatcher: commands.NewDispatcher(
			client,
			stores.NewOwnershipStore(db),
			stores.NewPreferenceStore(db),
			stores.NewPermitHistoryStore(db),
			guildStore,
			viper.GetString("cmd_prefix"),
		),
		setup:      setup.NewHandler(client, guildStore, viper.GetString("cmd_prefix")),
		moderation: moderation.NewHandler(client, stores.NewModerationStore(db)),
	}

	log.Info("Adding handlers")
	dg.AddHandler(router.lifecycle.VCUpdate)
	dg.AddHandler(router.messageCreate)

	log.Info("Opening Websocket connection")
	if err := dg.Open(); err != nil {
		log.Fatalf("Could not open Websocket connection: %v", err)
	}
	defer dg.Close()

	if err := dg.UpdateListeningStatus(viper.GetString("bot_status")); err != nil {
		log.Error(err)
	}

	log.Info("Bot is now running. Press CTRL-C to exit.")
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc
}

func initConfig() {
	viper.SetDefault("token", "")
	viper.SetDefault("bot_status", "your voice channels")
	viper.SetDefault("cmd_prefix", "!voice")
	viper.SetDefault("database_path", "voice-chat-bot.db")
	viper.SetConfigName("config")
	viper.AddConfigPath(".")
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
	viper.OnConfigChange(func(e fsnotify.Event) {
		fmt.Println("Config file changed:", e.Name)
	})
	viper.WatchConfig()
}
