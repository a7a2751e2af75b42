package commands

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Halocrea/voice-chat-bot/discord"
	"github.com/Halocrea/voice-chat-bot/models"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type connectCall struct {
	channelID string
	principal discord.Principal
	allow     bool
}

type editCall struct {
	channelID string
	edit      *discordgo.ChannelEdit
}

type limitCall struct {
	channelID string
	limit     int
}

type fakeClient struct {
	discord.Client

	mu sync.Mutex

	voice       map[string]string
	members     map[string][]string
	guild       *discordgo.Guild
	memberNames map[string]*discordgo.Member
	roleNames   map[string]*discordgo.Role
	roles       map[string]*discordgo.Role

	reaction    string
	reactionErr error

	messages     []string
	embeds       []*discordgo.MessageEmbed
	connectCalls []connectCall
	edits        []editCall
	limits       []limitCall
	disconnected []string
	bulkDeleted  []string
	deletedMsgs  []string
	reacted      []string
}

func newCommandFakeClient() *fakeClient {
	return &fakeClient{
		voice:       make(map[string]string),
		members:     make(map[string][]string),
		guild:       &discordgo.Guild{ID: "guild"},
		memberNames: make(map[string]*discordgo.Member),
		roleNames:   make(map[string]*discordgo.Role),
		roles:       make(map[string]*discordgo.Role),
	}
}

func (c *fakeClient) BotUserID() string { return "bot" }

func (c *fakeClient) MemberVoiceChannel(guildID, userID string) string { return c.voice[userID] }

func (c *fakeClient) ChannelMembers(guildID, channelID string) ([]string, error) {
	return c.members[channelID], nil
}

func (c *fakeClient) Guild(guildID string) (*discordgo.Guild, error) { return c.guild, nil }

func (c *fakeClient) Member(guildID, userID string) (*discordgo.Member, error) {
	for _, member := range c.memberNames {
		if member.User.ID == userID {
			return member, nil
		}
	}
	return &discordgo.Member{User: &discordgo.User{ID: userID, Username: userID}}, nil
}

func (c *fakeClient) MemberByName(guildID, name string) (*discordgo.Member, error) {
	if member, ok := c.memberNames[name]; ok {
		return member, nil
	}
	return nil, errors.New("no such member")
}

func (c *fakeClient) RoleByName(guildID, name string) (*discordgo.Role, error) {
	if role, ok := c.roleNames[name]; ok {
		return role, nil
	}
	return nil, errors.New("no such role")
}

func (c *fakeClient) Role(guildID, roleID string) (*discordgo.Role, error) {
	if role, ok := c.roles[roleID]; ok {
		return role, nil
	}
	return nil, errors.New("no such role")
}

func (c *fakeClient) SendMessage(channelID, content string) (*discordgo.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, content)
	return &discordgo.Message{ID: "sent", ChannelID: channelID}, nil
}

func (c *fakeClient) SendEmbed(channelID string, embed *discordgo.MessageEmbed) (*discordgo.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.embeds = append(c.embeds, embed)
	return &discordgo.Message{ID: "embed", ChannelID: channelID}, nil
}

func (c *fakeClient) SetConnect(channelID string, p discord.Principal, allow bool, reason string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connectCalls = append(c.connectCalls, connectCall{channelID: channelID, principal: p, allow: allow})
	return nil
}

func (c *fakeClient) EditChannel(channelID string, edit *discordgo.ChannelEdit, reason string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.edits = append(c.edits, editCall{channelID: channelID, edit: edit})
	return nil
}

func (c *fakeClient) SetUserLimit(channelID string, limit int, reason string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.limits = append(c.limits, limitCall{channelID: channelID, limit: limit})
	return nil
}

func (c *fakeClient) Disconnect(guildID, userID, reason string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disconnected = append(c.disconnected, userID)
	return nil
}

func (c *fakeClient) React(channelID, messageID, emoji string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reacted = append(c.reacted, emoji)
	return nil
}

func (c *fakeClient) DeleteMessage(channelID, messageID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deletedMsgs = append(c.deletedMsgs, messageID)
	return nil
}

func (c *fakeClient) BulkDeleteRecent(channelID string, count int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bulkDeleted = append(c.bulkDeleted, channelID)
	return nil
}

func (c *fakeClient) AwaitReaction(channelID, messageID, userID string, emojis []string, timeout time.Duration) (string, error) {
	return c.reaction, c.reactionErr
}

func (c *fakeClient) lastMessage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.messages) == 0 {
		return ""
	}
	return c.messages[len(c.messages)-1]
}

type fakeOwnership struct {
	owners map[string]string
}

func (s *fakeOwnership) Owner(channelID string) (string, error) { return s.owners[channelID], nil }

func (s *fakeOwnership) Create(channelID, userID, guildID string) error {
	s.owners[channelID] = userID
	return nil
}

func (s *fakeOwnership) SetOwner(channelID, userID string) error {
	s.owners[channelID] = userID
	return nil
}

func (s *fakeOwnership) Delete(channelID string) error {
	delete(s.owners, channelID)
	return nil
}

type fakePreferences struct {
	prefs map[string]*models.Preference
}

func (s *fakePreferences) Get(userID string) (*models.Preference, error) { return s.prefs[userID], nil }

func (s *fakePreferences) SetName(userID, name string) error {
	if s.prefs[userID] == nil {
		s.prefs[userID] = &models.Preference{UserID: userID}
	}
	s.prefs[userID].ChannelName = name
	return nil
}

func (s *fakePreferences) SetLimit(userID string, limit int) error {
	if s.prefs[userID] == nil {
		s.prefs[userID] = &models.Preference{UserID: userID}
	}
	s.prefs[userID].UserLimit = limit
	return nil
}

type fakePermits struct {
	mu     sync.Mutex
	grants map[string][]models.PermitGrant
}

func (s *fakePermits) All(userID string) ([]models.PermitGrant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grants[userID], nil
}

func (s *fakePermits) Add(userID, principalID, principalKind string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grants[userID] = append(s.grants[userID], models.PermitGrant{UserID: userID, PrincipalID: principalID, PrincipalKind: principalKind})
	return nil
}

func (s *fakePermits) Clear(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.grants, userID)
	return nil
}

func (s *fakePermits) count(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.grants[userID])
}

type fakeGuilds struct {
	setups map[string]*models.GuildSetup
}

func (s *fakeGuilds) Get(guildID string) (*models.GuildSetup, error) { return s.setups[guildID], nil }

func (s *fakeGuilds) Save(setup *models.GuildSetup) error {
	s.setups[setup.GuildID] = setup
	return nil
}

func (s *fakeGuilds) SetPrefix(guildID, prefix string) error             { return nil }
func (s *fakeGuilds) SetCategory(guildID, categoryID string) error       { return nil }
func (s *fakeGuilds) SetLobbyChannel(guildID, channelID string) error    { return nil }
func (s *fakeGuilds) SetCommandsChannel(guildID, channelID string) error { return nil }
func (s *fakeGuilds) Delete(guildID string) error                        { return nil }

type fixture struct {
	client      *fakeClient
	ownership   *fakeOwnership
	preferences *fakePreferences
	permits     *fakePermits
	dispatcher  *Dispatcher
}

func newFixture() *fixture {
	client := newCommandFakeClient()
	ownership := &fakeOwnership{owners: map[string]string{"channel": "alice"}}
	preferences := &fakePreferences{prefs: make(map[string]*models.Preference)}
	permits := &fakePermits{grants: make(map[string][]models.PermitGrant)}
	guilds := &fakeGuilds{setups: map[string]*models.GuildSetup{
		"guild": {GuildID: "guild", Prefix: "!voice", CategoryID: "category", LobbyChannelID: "lobby", CommandsChannelID: "commands"},
	}}
	client.voice["alice"] = "channel"
	client.members["channel"] = []string{"alice"}

	dispatcher := NewDispatcher(client, ownership, preferences, permits, guilds, "!voice")
	dispatcher.cleanupDelay = 0
	return &fixture{
		client:      client,
		ownership:   ownership,
		preferences: preferences,
		permits:     permits,
		dispatcher:  dispatcher,
	}
}

func message(author string) *discordgo.MessageCreate {
	return &discordgo.MessageCreate{Message: &discordgo.Message{
		ID:        "msg",
		GuildID:   "guild",
		ChannelID: "commands",
		Author:    &discordgo.User{ID: author, Username: author},
	}}
}

func TestCommandRequiresVoiceChannel(t *testing.T) {
	f := newFixture()

	f.dispatcher.Handle(message("bob"), "name", "whatever")

	assert.Equal(t, "You have to be in a voice channel to run this kind of commands.", f.client.lastMessage())
	assert.Empty(t, f.client.edits)
}

func TestHelpAnswersOutsideVoice(t *testing.T) {
	f := newFixture()

	f.dispatcher.Handle(message("bob"), "help", "")

	require.Len(t, f.client.embeds, 1)
	assert.Equal(t, "Commands list", f.client.embeds[0].Title)
}

func TestNonOwnerIsRejected(t *testing.T) {
	f := newFixture()
	f.client.voice["bob"] = "channel"

	f.dispatcher.Handle(message("bob"), "name", "bob's lair")

	assert.Contains(t, f.client.lastMessage(), "You do not own the channel")
	assert.Empty(t, f.client.edits)
	assert.Nil(t, f.preferences.prefs["bob"])
}

func TestUnknownCommandForOwner(t *testing.T) {
	f := newFixture()

	f.dispatcher.Handle(message("alice"), "explode", "")

	assert.Contains(t, f.client.lastMessage(), "Unknown command")
}

func TestClaimSucceedsWhenOwnerLeft(t *testing.T) {
	f := newFixture()
	f.client.voice["bob"] = "channel"
	f.client.members["channel"] = []string{"bob"}

	f.dispatcher.Handle(message("bob"), "claim", "")

	assert.Equal(t, "bob", f.ownership.owners["channel"])
	assert.Equal(t, "💪 You now **own** this channel!", f.client.lastMessage())
}

func TestClaimFailsWhileOwnerPresent(t *testing.T) {
	f := newFixture()
	f.client.voice["bob"] = "channel"
	f.client.members["channel"] = []string{"alice", "bob"}

	f.dispatcher.Handle(message("bob"), "claim", "")

	assert.Equal(t, "alice", f.ownership.owners["channel"])
	assert.Equal(t, "You can't own this channel right now.", f.client.lastMessage())
}

func TestClaimByOwnerIsANoOp(t *testing.T) {
	f := newFixture()

	f.dispatcher.Handle(message("alice"), "claim", "")

	assert.Equal(t, "alice", f.ownership.owners["channel"])
	assert.Equal(t, "You already own this channel 🤔", f.client.lastMessage())
}

func TestClaimOnUnmanagedChannel(t *testing.T) {
	f := newFixture()
	f.client.voice["bob"] = "wild-channel"
	f.client.members["wild-channel"] = []string{"bob"}

	f.dispatcher.Handle(message("bob"), "claim", "")

	assert.Empty(t, f.ownership.owners["wild-channel"])
	assert.Equal(t, "You can't own this channel right now.", f.client.lastMessage())
}
