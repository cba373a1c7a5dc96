package bot

import (
	"context"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/zulandar/trestle/internal/db"
	"github.com/zulandar/trestle/internal/store"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// mockSession implements session in memory, recording everything sent.
type mockSession struct {
	channels    map[string]*discordgo.Channel
	members     map[string]*discordgo.Member
	guildRoles  []*discordgo.Role
	responses   []*discordgo.InteractionResponse
	followups   []*discordgo.WebhookParams
	edits       []*discordgo.WebhookEdit
	responseMsg *discordgo.Message
	commands    []*discordgo.ApplicationCommand
}

func newMockSession() *mockSession {
	return &mockSession{
		channels:    make(map[string]*discordgo.Channel),
		members:     make(map[string]*discordgo.Member),
		responseMsg: &discordgo.Message{ID: "contract-msg"},
	}
}

func (m *mockSession) Open() error                             { return nil }
func (m *mockSession) Close() error                            { return nil }
func (m *mockSession) AddHandler(handler interface{}) func()   { return func() {} }
func (m *mockSession) ApplicationCommandBulkOverwrite(appID, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	m.commands = commands
	return commands, nil
}
func (m *mockSession) InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error {
	m.responses = append(m.responses, resp)
	return nil
}
func (m *mockSession) InteractionResponse(interaction *discordgo.Interaction, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	return m.responseMsg, nil
}
func (m *mockSession) InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.edits = append(m.edits, newresp)
	return nil, nil
}
func (m *mockSession) FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.followups = append(m.followups, data)
	return nil, nil
}
func (m *mockSession) Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error) {
	if ch, ok := m.channels[channelID]; ok {
		return ch, nil
	}
	return &discordgo.Channel{ID: channelID, Type: discordgo.ChannelTypeGuildText}, nil
}
func (m *mockSession) GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error) {
	if member, ok := m.members[userID]; ok {
		return member, nil
	}
	return &discordgo.Member{User: &discordgo.User{ID: userID}}, nil
}
func (m *mockSession) GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error) {
	return m.guildRoles, nil
}
func (m *mockSession) GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error {
	return nil
}
func (m *mockSession) GuildMemberRoleRemove(guildID, userID, roleID string, options ...discordgo.RequestOption) error {
	return nil
}

// lastResponse returns the most recent interaction response.
func (m *mockSession) lastResponse(t *testing.T) *discordgo.InteractionResponse {
	t.Helper()
	if len(m.responses) == 0 {
		t.Fatal("no interaction response recorded")
	}
	return m.responses[len(m.responses)-1]
}

type botEnv struct {
	bot         *Bot
	sess        *mockSession
	users       *store.Users
	threads     *store.Threads
	threadUsers *store.ThreadUsers
	settings    *store.Settings
}

func newBotEnv(t *testing.T) *botEnv {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(gdb); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	if err := db.SeedSettings(gdb); err != nil {
		t.Fatalf("seed settings: %v", err)
	}

	env := &botEnv{
		sess:        newMockSession(),
		users:       store.NewUsers(gdb),
		threads:     store.NewThreads(gdb),
		threadUsers: store.NewThreadUsers(gdb),
		settings:    store.NewSettings(gdb),
	}

	// A forum thread "t1" under the registered feedback channel, tagged open.
	env.sess.channels["t1"] = &discordgo.Channel{
		ID:          "t1",
		Type:        discordgo.ChannelTypeGuildPublicThread,
		ParentID:    "forum",
		OwnerID:     "owner",
		AppliedTags: []string{"open-tag"},
	}
	if _, err := env.settings.AddFeedbackChannel("forum"); err != nil {
		t.Fatalf("add channel: %v", err)
	}
	if _, err := env.settings.AddFeedbackTag("open-tag"); err != nil {
		t.Fatalf("add tag: %v", err)
	}

	b, err := New(Opts{
		GuildID:     "guild",
		Users:       env.users,
		Threads:     env.threads,
		ThreadUsers: env.threadUsers,
		Settings:    env.settings,
		SyncReports: store.NewSyncReports(gdb),
		Session:     env.sess,
	})
	if err != nil {
		t.Fatalf("new bot: %v", err)
	}
	env.bot = b
	return env
}

func commandInteraction(channelID, userID, command, sub string, opts ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		ID:        "interaction-1",
		Type:      discordgo.InteractionApplicationCommand,
		ChannelID: channelID,
		Member:    &discordgo.Member{User: &discordgo.User{ID: userID}},
		Data: discordgo.ApplicationCommandInteractionData{
			Name: command,
			Options: []*discordgo.ApplicationCommandInteractionDataOption{{
				Name:    sub,
				Type:    discordgo.ApplicationCommandOptionSubCommand,
				Options: opts,
			}},
		},
	}}
}

func componentInteraction(channelID, userID, messageID, customID string, values ...string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		ID:        "interaction-2",
		Type:      discordgo.InteractionMessageComponent,
		ChannelID: channelID,
		Member:    &discordgo.Member{User: &discordgo.User{ID: userID}},
		Message:   &discordgo.Message{ID: messageID},
		Data: discordgo.MessageComponentInteractionData{
			CustomID: customID,
			Values:   values,
		},
	}}
}

func responseEmbedText(t *testing.T, resp *discordgo.InteractionResponse) string {
	t.Helper()
	if resp.Data == nil || len(resp.Data.Embeds) == 0 {
		t.Fatalf("response has no embeds: %+v", resp)
	}
	return resp.Data.Embeds[0].Description
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(Opts{}); err == nil {
		t.Error("expected error for missing token and session")
	}
	if _, err := New(Opts{Token: "x"}); err == nil {
		t.Error("expected error for missing guild id")
	}
}

func TestCreate_WrongChannelReply(t *testing.T) {
	env := newBotEnv(t)

	env.bot.handleInteraction(context.Background(), commandInteraction("general", "u1", "contract", "create"))

	resp := env.sess.lastResponse(t)
	if resp.Data.Flags&discordgo.MessageFlagsEphemeral == 0 {
		t.Error("refusal should be ephemeral")
	}
	if text := responseEmbedText(t, resp); !strings.Contains(text, "feedback thread") {
		t.Errorf("refusal text = %q", text)
	}
}

func TestCreate_PostsContractAndAttaches(t *testing.T) {
	env := newBotEnv(t)
	if err := env.users.SetRulesAccepted("u1"); err != nil {
		t.Fatalf("accept rules: %v", err)
	}

	env.bot.handleInteraction(context.Background(), commandInteraction("t1", "u1", "contract", "create"))

	resp := env.sess.lastResponse(t)
	if resp.Data.Flags&discordgo.MessageFlagsEphemeral != 0 {
		t.Error("contract message must be public")
	}
	if len(resp.Data.Components) != 2 {
		t.Fatalf("components = %d, want select + button rows", len(resp.Data.Components))
	}
	if !strings.Contains(resp.Data.Content, "<@owner>") {
		t.Errorf("content = %q, want owner ping", resp.Data.Content)
	}

	// The durable pointer now references the posted message.
	id, err := env.threadUsers.ActiveContractMessageID("t1", "u1")
	if err != nil {
		t.Fatalf("active contract: %v", err)
	}
	if id != "contract-msg" {
		t.Errorf("pointer = %q, want contract-msg", id)
	}
}

func TestCreate_ShowsRulesPromptFirst(t *testing.T) {
	env := newBotEnv(t)

	env.bot.handleInteraction(context.Background(), commandInteraction("t1", "u1", "contract", "create"))

	resp := env.sess.lastResponse(t)
	if resp.Data.Flags&discordgo.MessageFlagsEphemeral == 0 {
		t.Error("rules prompt should be ephemeral")
	}
	if len(resp.Data.Components) == 0 {
		t.Fatal("rules prompt is missing its accept button")
	}

	// Click accept, then the flag persists.
	env.bot.handleInteraction(context.Background(),
		componentInteraction("t1", "u1", "prompt-msg", rulesAcceptPrefix+"interaction-1"))

	accepted, err := env.users.RulesAccepted("u1")
	if err != nil {
		t.Fatalf("rules accepted: %v", err)
	}
	if !accepted {
		t.Error("accept button did not persist rules acceptance")
	}
}

func TestRulesAccept_WrongUserRejected(t *testing.T) {
	env := newBotEnv(t)

	env.bot.handleInteraction(context.Background(), commandInteraction("t1", "u1", "contract", "create"))
	env.bot.handleInteraction(context.Background(),
		componentInteraction("t1", "intruder", "prompt-msg", rulesAcceptPrefix+"interaction-1"))

	accepted, _ := env.users.RulesAccepted("intruder")
	if accepted {
		t.Error("another user's click must not accept the rules")
	}
}

func TestRatingSelectAndConfirm_FullCycle(t *testing.T) {
	env := newBotEnv(t)
	if err := env.users.SetRulesAccepted("u1"); err != nil {
		t.Fatalf("accept rules: %v", err)
	}
	env.bot.handleInteraction(context.Background(), commandInteraction("t1", "u1", "contract", "create"))

	// Owner picks three stars.
	env.bot.handleInteraction(context.Background(),
		componentInteraction("t1", "owner", "contract-msg", ratingSelectID, "stars-3"))
	resp := env.sess.lastResponse(t)
	if resp.Type != discordgo.InteractionResponseUpdateMessage {
		t.Fatalf("response type = %d, want update", resp.Type)
	}
	if text := responseEmbedText(t, resp); !strings.Contains(text, "3 STARS") {
		t.Errorf("embed = %q, want selected rating shown", text)
	}

	// Owner confirms: contract locks and the creator is notified.
	env.bot.handleInteraction(context.Background(),
		componentInteraction("t1", "owner", "contract-msg", confirmButtonID))
	resp = env.sess.lastResponse(t)
	if resp.Type != discordgo.InteractionResponseUpdateMessage {
		t.Fatalf("response type = %d, want update", resp.Type)
	}
	if len(resp.Data.Components) != 0 {
		t.Error("locked contract must drop its components")
	}
	if text := responseEmbedText(t, resp); !strings.Contains(text, "3 feedback points") {
		t.Errorf("locked embed = %q", text)
	}

	points, _ := env.users.Points("u1")
	if points != 3 {
		t.Errorf("points = %d, want 3", points)
	}
	if len(env.sess.followups) != 1 || !strings.Contains(env.sess.followups[0].Content, "<@u1>") {
		t.Errorf("followups = %+v, want creator notification", env.sess.followups)
	}
}

func TestRatingSelect_NonBuilderRejected(t *testing.T) {
	env := newBotEnv(t)
	if err := env.users.SetRulesAccepted("u1"); err != nil {
		t.Fatalf("accept rules: %v", err)
	}
	env.bot.handleInteraction(context.Background(), commandInteraction("t1", "u1", "contract", "create"))

	env.bot.handleInteraction(context.Background(),
		componentInteraction("t1", "stranger", "contract-msg", ratingSelectID, "stars-2"))

	resp := env.sess.lastResponse(t)
	if resp.Type != discordgo.InteractionResponseChannelMessageWithSource {
		t.Fatalf("response type = %d, want ephemeral refusal", resp.Type)
	}
	if text := responseEmbedText(t, resp); !strings.Contains(text, "builders") {
		t.Errorf("refusal = %q", text)
	}
}

func TestConfirm_StaleIsQuietAck(t *testing.T) {
	env := newBotEnv(t)

	env.bot.handleInteraction(context.Background(),
		componentInteraction("t1", "owner", "long-gone-msg", confirmButtonID))

	resp := env.sess.lastResponse(t)
	if resp.Type != discordgo.InteractionResponseDeferredMessageUpdate {
		t.Errorf("response type = %d, want deferred update", resp.Type)
	}
}

func TestAddBuilder_OwnerOnly(t *testing.T) {
	env := newBotEnv(t)

	userOpt := &discordgo.ApplicationCommandInteractionDataOption{
		Name: "user", Type: discordgo.ApplicationCommandOptionUser, Value: "b1",
	}
	env.bot.handleInteraction(context.Background(),
		commandInteraction("t1", "not-owner", "contract", "addbuilder", userOpt))
	if text := responseEmbedText(t, env.sess.lastResponse(t)); !strings.Contains(text, "owner") {
		t.Errorf("refusal = %q", text)
	}

	env.bot.handleInteraction(context.Background(),
		commandInteraction("t1", "owner", "contract", "addbuilder", userOpt))
	isBuilder, err := env.threads.IsCollaborator("t1", "owner", "b1")
	if err != nil {
		t.Fatalf("is collaborator: %v", err)
	}
	if !isBuilder {
		t.Error("owner's addbuilder did not add the collaborator")
	}
}

func TestAdminSettings_Display(t *testing.T) {
	env := newBotEnv(t)

	env.bot.handleInteraction(context.Background(), commandInteraction("anywhere", "admin", "admin", "settings"))

	text := responseEmbedText(t, env.sess.lastResponse(t))
	if !strings.Contains(text, "Admin Settings") || !strings.Contains(text, "<#forum>") {
		t.Errorf("settings text = %q", text)
	}
}

func TestModBlock_StaffProtected(t *testing.T) {
	env := newBotEnv(t)
	env.sess.guildRoles = []*discordgo.Role{
		{ID: "staff-role", Permissions: discordgo.PermissionModerateMembers},
	}
	env.sess.members["staffer"] = &discordgo.Member{
		User:  &discordgo.User{ID: "staffer"},
		Roles: []string{"staff-role"},
	}

	userOpt := &discordgo.ApplicationCommandInteractionDataOption{
		Name: "user", Type: discordgo.ApplicationCommandOptionUser, Value: "staffer",
	}
	env.bot.handleInteraction(context.Background(), commandInteraction("anywhere", "mod", "mod", "block", userOpt))

	if text := responseEmbedText(t, env.sess.lastResponse(t)); !strings.Contains(text, "protected") {
		t.Errorf("refusal = %q", text)
	}
	blocked, _ := env.users.IsBlocked("staffer")
	if blocked {
		t.Error("protected staffer was blocked")
	}

	// With protection off, the block goes through.
	if err := env.settings.SetStaffIsProtected(false); err != nil {
		t.Fatalf("set protection: %v", err)
	}
	env.bot.handleInteraction(context.Background(), commandInteraction("anywhere", "mod", "mod", "block", userOpt))
	blocked, _ = env.users.IsBlocked("staffer")
	if !blocked {
		t.Error("block failed with protection disabled")
	}
}

func TestModSetPoints_Reconciles(t *testing.T) {
	env := newBotEnv(t)
	if err := env.settings.SetStaffIsProtected(false); err != nil {
		t.Fatalf("set protection: %v", err)
	}

	opts := []*discordgo.ApplicationCommandInteractionDataOption{
		{Name: "user", Type: discordgo.ApplicationCommandOptionUser, Value: "u1"},
		{Name: "points", Type: discordgo.ApplicationCommandOptionInteger, Value: float64(5)},
	}
	env.bot.handleInteraction(context.Background(), commandInteraction("anywhere", "mod", "mod", "setpoints", opts...))

	points, err := env.users.Points("u1")
	if err != nil {
		t.Fatalf("points: %v", err)
	}
	if points != 5 {
		t.Errorf("points = %d, want 5", points)
	}
}

func TestModSetPoints_RejectsNegative(t *testing.T) {
	env := newBotEnv(t)
	if err := env.settings.SetStaffIsProtected(false); err != nil {
		t.Fatalf("set protection: %v", err)
	}
	if err := env.users.SetPoints("u1", 4); err != nil {
		t.Fatalf("seed points: %v", err)
	}

	opts := []*discordgo.ApplicationCommandInteractionDataOption{
		{Name: "user", Type: discordgo.ApplicationCommandOptionUser, Value: "u1"},
		{Name: "points", Type: discordgo.ApplicationCommandOptionInteger, Value: float64(-5)},
	}
	env.bot.handleInteraction(context.Background(), commandInteraction("anywhere", "mod", "mod", "setpoints", opts...))

	if text := responseEmbedText(t, env.sess.lastResponse(t)); !strings.Contains(text, "negative") {
		t.Errorf("refusal = %q", text)
	}
	points, _ := env.users.Points("u1")
	if points != 4 {
		t.Errorf("points = %d, want 4 untouched", points)
	}
}

func TestCommandDefinitions_Shape(t *testing.T) {
	defs := commandDefinitions()
	if len(defs) != 3 {
		t.Fatalf("commands = %d, want contract/admin/mod", len(defs))
	}
	names := map[string]bool{}
	for _, d := range defs {
		names[d.Name] = true
	}
	for _, want := range []string{"contract", "admin", "mod"} {
		if !names[want] {
			t.Errorf("missing command %q", want)
		}
	}
}
