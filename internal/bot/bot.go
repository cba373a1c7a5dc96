package bot

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/zulandar/trestle/internal/contract"
	"github.com/zulandar/trestle/internal/rolesync"
	"github.com/zulandar/trestle/internal/store"
)

const genericFailureMessage = "Something went wrong while handling this command. Please try again later."

// Bot owns the Discord session and routes slash commands and message
// components into the lifecycle engine and the role syncer.
type Bot struct {
	sess     session
	token    string
	guildID  string
	engine   *contract.Engine
	syncer   *rolesync.Syncer
	platform *discordPlatform
	users    *store.Users
	threads  *store.Threads
	settings *store.Settings
	rules    *contract.RulesPrompts

	mu    sync.Mutex
	appID string
}

// Opts holds parameters for creating a Bot.
type Opts struct {
	Token       string // Discord bot token
	GuildID     string
	Users       *store.Users
	Threads     *store.Threads
	ThreadUsers *store.ThreadUsers
	Settings    *store.Settings
	SyncReports *store.SyncReports
	Notifier    rolesync.Notifier // optional
	RulesTimeout time.Duration    // 0 uses the default bounded wait
	// For testing: inject a mock session instead of real Discord API.
	Session session
}

// New creates a Bot and wires the lifecycle engine and role syncer over its
// session.
func New(opts Opts) (*Bot, error) {
	if opts.Session == nil && opts.Token == "" {
		return nil, fmt.Errorf("bot: token is required")
	}
	if opts.GuildID == "" {
		return nil, fmt.Errorf("bot: guild id is required")
	}

	sess := opts.Session
	if sess == nil {
		dg, err := discordgo.New("Bot " + opts.Token)
		if err != nil {
			return nil, fmt.Errorf("bot: create session: %w", err)
		}
		dg.Identify.Intents = discordgo.IntentsGuilds
		sess = &realSession{s: dg}
	}

	platform := &discordPlatform{sess: sess}
	syncer, err := rolesync.NewSyncer(rolesync.SyncerOpts{
		Users:    opts.Users,
		Settings: opts.Settings,
		Reports:  opts.SyncReports,
		Roles:    &guildRoleAPI{sess: sess, guildID: opts.GuildID},
		Notifier: opts.Notifier,
	})
	if err != nil {
		return nil, err
	}

	engine, err := contract.NewEngine(contract.EngineOpts{
		Users:       opts.Users,
		Threads:     opts.Threads,
		ThreadUsers: opts.ThreadUsers,
		Settings:    opts.Settings,
		Platform:    platform,
		Reconciler:  syncer,
	})
	if err != nil {
		return nil, err
	}

	return &Bot{
		sess:     sess,
		token:    opts.Token,
		guildID:  opts.GuildID,
		engine:   engine,
		syncer:   syncer,
		platform: platform,
		users:    opts.Users,
		threads:  opts.Threads,
		settings: opts.Settings,
		rules:    contract.NewRulesPrompts(opts.RulesTimeout),
	}, nil
}

// Syncer returns the role syncer bound to this bot's session, for the
// scheduler and the resync command.
func (b *Bot) Syncer() *rolesync.Syncer {
	return b.syncer
}

// Start registers handlers, opens the gateway connection, and overwrites
// the guild's slash commands.
func (b *Bot) Start(ctx context.Context) error {
	b.sess.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		b.mu.Lock()
		b.appID = r.User.ID
		b.mu.Unlock()
		log.Printf("bot: connected as %s (ID: %s)", r.User.Username, r.User.ID)
		if err := b.registerCommands(); err != nil {
			log.Printf("bot: register commands: %v", err)
		}
	})
	b.sess.AddHandler(func(_ *discordgo.Session, i *discordgo.InteractionCreate) {
		b.handleInteraction(ctx, i)
	})

	if err := b.sess.Open(); err != nil {
		return fmt.Errorf("bot: open gateway: %w", err)
	}
	return nil
}

// Close shuts down the gateway connection.
func (b *Bot) Close() error {
	return b.sess.Close()
}

// registerCommands bulk-overwrites the guild's slash commands.
func (b *Bot) registerCommands() error {
	b.mu.Lock()
	appID := b.appID
	b.mu.Unlock()

	defs := commandDefinitions()
	if _, err := b.sess.ApplicationCommandBulkOverwrite(appID, b.guildID, defs); err != nil {
		return fmt.Errorf("bot: overwrite commands: %w", err)
	}
	log.Printf("bot: registered %d command(s) for guild %s", len(defs), b.guildID)
	return nil
}

// handleInteraction is the top-level dispatcher. Unexpected handler errors
// become a generic ephemeral failure; the underlying error is logged, never
// shown.
func (b *Bot) handleInteraction(ctx context.Context, i *discordgo.InteractionCreate) {
	var err error
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		data := i.ApplicationCommandData()
		switch data.Name {
		case "contract":
			err = b.handleContract(ctx, i)
		case "admin":
			err = b.handleAdmin(ctx, i)
		case "mod":
			err = b.handleMod(ctx, i)
		default:
			log.Printf("bot: unknown command %q", data.Name)
		}
	case discordgo.InteractionMessageComponent:
		customID := i.MessageComponentData().CustomID
		switch {
		case customID == ratingSelectID:
			err = b.handleRatingSelect(ctx, i)
		case customID == confirmButtonID:
			err = b.handleConfirm(ctx, i)
		case strings.HasPrefix(customID, rulesAcceptPrefix):
			err = b.handleRulesAccept(ctx, i)
		default:
			log.Printf("bot: unknown component %q", customID)
		}
	}
	if err != nil {
		log.Printf("bot: interaction %s: %v", i.ID, err)
		b.replyFailure(i.Interaction)
	}
}

// replyFailure sends the generic failure reply, falling back to a follow-up
// if the interaction was already acknowledged.
func (b *Bot) replyFailure(i *discordgo.Interaction) {
	err := b.sess.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: genericFailureMessage,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err == nil {
		return
	}
	_, err = b.sess.FollowupMessageCreate(i, false, &discordgo.WebhookParams{
		Content: genericFailureMessage,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		log.Printf("bot: failure reply: %v", err)
	}
}

// respond sends an initial interaction response.
func (b *Bot) respond(i *discordgo.Interaction, data *discordgo.InteractionResponseData) error {
	return b.sess.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
}

// respondEmbed sends a single-embed response.
func (b *Bot) respondEmbed(i *discordgo.Interaction, embed *discordgo.MessageEmbed, ephemeral bool) error {
	data := &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{embed}}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return b.respond(i, data)
}

// respondError sends an ephemeral red error embed. Used for expected
// refusals, not failures.
func (b *Bot) respondError(i *discordgo.Interaction, text string) error {
	return b.respondEmbed(i, simpleEmbed(text, colorRed), true)
}

// updateMessage edits the message the component interaction came from.
func (b *Bot) updateMessage(i *discordgo.Interaction, content string, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) error {
	if components == nil {
		components = []discordgo.MessageComponent{}
	}
	return b.sess.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    content,
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: components,
		},
	})
}

// ackComponent acknowledges a component interaction without changing the
// message. Used for stale interactions that should vanish quietly.
func (b *Bot) ackComponent(i *discordgo.Interaction) error {
	return b.sess.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
}

// interactionUser returns the invoking user for a guild interaction.
func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil {
		return i.Member.User
	}
	return i.User
}

// subcommand splits an application command interaction into its subcommand
// name and an option map.
func subcommand(i *discordgo.InteractionCreate) (string, map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		return "", nil
	}
	sub := data.Options[0]
	opts := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(sub.Options))
	for _, o := range sub.Options {
		opts[o.Name] = o
	}
	return sub.Name, opts
}

// isStaff reports whether the user holds a role with moderation-level
// permissions.
func (b *Bot) isStaff(userID string) (bool, error) {
	member, err := b.sess.GuildMember(b.guildID, userID)
	if err != nil {
		return false, fmt.Errorf("bot: fetch member %s: %w", userID, err)
	}
	roles, err := b.sess.GuildRoles(b.guildID)
	if err != nil {
		return false, fmt.Errorf("bot: fetch roles: %w", err)
	}
	staffPerms := int64(discordgo.PermissionAdministrator | discordgo.PermissionManageServer | discordgo.PermissionModerateMembers)
	staffRoles := make(map[string]bool, len(roles))
	for _, r := range roles {
		if r.Permissions&staffPerms != 0 {
			staffRoles[r.ID] = true
		}
	}
	for _, id := range member.Roles {
		if staffRoles[id] {
			return true, nil
		}
	}
	return false, nil
}
