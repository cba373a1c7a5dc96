package bot

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/zulandar/trestle/internal/contract"
	"github.com/zulandar/trestle/internal/store"
)

const wrongChannelMessage = "Feedback contracts can only be created inside a feedback thread."

// handleContract dispatches the /contract subcommands.
func (b *Bot) handleContract(ctx context.Context, i *discordgo.InteractionCreate) error {
	sub, opts := subcommand(i)
	switch sub {
	case "create":
		return b.handleContractCreate(ctx, i)
	case "getinfo":
		return b.handleContractGetInfo(ctx, i)
	case "allowpings":
		return b.handleContractAllowPings(i, opts)
	case "addbuilder":
		return b.handleContractAddBuilder(ctx, i, opts)
	case "removebuilder":
		return b.handleContractRemoveBuilder(ctx, i, opts)
	}
	return fmt.Errorf("bot: unknown contract subcommand %q", sub)
}

func (b *Bot) handleContractCreate(ctx context.Context, i *discordgo.InteractionCreate) error {
	user := interactionUser(i)
	out, err := b.engine.Create(ctx, i.ChannelID, user.ID)
	if err != nil {
		return err
	}

	if out.NeedsRules {
		return b.showRulesPrompt(i, user.ID)
	}
	if out.Rejected != "" {
		text := out.Rejected
		if out.ExistingContractID != "" {
			text += "\n" + messageLink(b.guildID, i.ChannelID, out.ExistingContractID)
		}
		return b.respondError(i.Interaction, text)
	}

	err = b.respond(i.Interaction, &discordgo.InteractionResponseData{
		Content:    pingContent(out.View.PingUserIDs),
		Embeds:     []*discordgo.MessageEmbed{openContractEmbed(out.View)},
		Components: openContractComponents(nil),
	})
	if err != nil {
		return err
	}

	// Fetch the posted message to learn its ID, then bind the contract to it.
	msg, err := b.sess.InteractionResponse(i.Interaction)
	if err != nil {
		return fmt.Errorf("bot: fetch contract message: %w", err)
	}
	return b.engine.Attach(i.ChannelID, user.ID, msg.ID)
}

// showRulesPrompt replies with the ephemeral rules embed and starts the
// bounded wait for its accept button.
func (b *Bot) showRulesPrompt(i *discordgo.InteractionCreate, userID string) error {
	key := i.ID
	if err := b.respond(i.Interaction, rulesPromptResponse(key)); err != nil {
		return err
	}

	interaction := i.Interaction
	b.rules.Begin(key, userID, func() {
		expired := simpleEmbed("This rules prompt has expired. Run `/contract create` again when you are ready.", colorRed)
		embeds := []*discordgo.MessageEmbed{expired}
		components := []discordgo.MessageComponent{}
		_, err := b.sess.InteractionResponseEdit(interaction, &discordgo.WebhookEdit{
			Embeds:     &embeds,
			Components: &components,
		})
		if err != nil {
			log.Printf("bot: expire rules prompt: %v", err)
		}
	})
	return nil
}

func (b *Bot) handleRulesAccept(_ context.Context, i *discordgo.InteractionCreate) error {
	key := strings.TrimPrefix(i.MessageComponentData().CustomID, rulesAcceptPrefix)
	user := interactionUser(i)

	if !b.rules.Accept(key, user.ID) {
		return b.respondError(i.Interaction, "This rules prompt has expired. Run `/contract create` again when you are ready.")
	}
	if err := b.users.SetRulesAccepted(user.ID); err != nil {
		return err
	}

	accepted := simpleEmbed("You have accepted the rules. Run `/contract create` again to post your contract.", colorGreen)
	return b.updateMessage(i.Interaction, "", accepted, nil)
}

func (b *Bot) handleRatingSelect(ctx context.Context, i *discordgo.InteractionCreate) error {
	user := interactionUser(i)
	values := i.MessageComponentData().Values
	if len(values) == 0 {
		return fmt.Errorf("bot: rating select without a value")
	}

	out, err := b.engine.SelectRating(ctx, i.ChannelID, i.Message.ID, user.ID, values[0])
	if err != nil {
		return err
	}
	if out.Stale {
		return b.ackComponent(i.Interaction)
	}
	if out.Rejected != "" {
		return b.respondError(i.Interaction, out.Rejected)
	}

	// Keep the original ping content across re-renders.
	return b.updateMessage(i.Interaction, i.Message.Content,
		openContractEmbed(out.View), openContractComponents(out.View.Selected))
}

func (b *Bot) handleConfirm(ctx context.Context, i *discordgo.InteractionCreate) error {
	user := interactionUser(i)
	out, err := b.engine.Confirm(ctx, i.ChannelID, i.Message.ID, user.ID)
	if err != nil {
		return err
	}
	if out.Stale {
		return b.ackComponent(i.Interaction)
	}
	if out.Rejected != "" {
		return b.respondError(i.Interaction, out.Rejected)
	}

	err = b.updateMessage(i.Interaction, i.Message.Content, lockedContractEmbed(out.View), nil)
	if err != nil {
		return err
	}

	if out.View.NotifyCreator {
		_, err = b.sess.FollowupMessageCreate(i.Interaction, false, &discordgo.WebhookParams{
			Content: acceptedFollowUp(out.View),
		})
		if err != nil {
			log.Printf("bot: accepted follow-up: %v", err)
		}
	}
	return nil
}

func (b *Bot) handleContractGetInfo(ctx context.Context, i *discordgo.InteractionCreate) error {
	thread, err := b.feedbackThread(ctx, i.ChannelID)
	if err != nil {
		return err
	}
	if thread == nil {
		return b.respondError(i.Interaction, wrongChannelMessage)
	}

	enabled, err := b.isOpenForFeedback(thread)
	if err != nil {
		return err
	}
	collaborators, err := b.threads.Collaborators(thread.ThreadID, thread.OwnerID, true)
	if err != nil {
		return err
	}
	collaboratorsText := "No other users added!"
	if len(collaborators) > 0 {
		mentions := make([]string, len(collaborators))
		for idx, id := range collaborators {
			mentions[idx] = mention(id)
		}
		collaboratorsText = strings.Join(mentions, ", ")
	}

	embed := simpleEmbed(fmt.Sprintf(
		"Builder: %s\nFeedback Enabled: **%t**\nCollaborators: %s",
		mention(thread.OwnerID), enabled, collaboratorsText), colorBlue)
	return b.respondEmbed(i.Interaction, embed, false)
}

func (b *Bot) handleContractAllowPings(i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) error {
	user := interactionUser(i)
	allow := opts["ping"].BoolValue()
	if err := b.users.SetAllowPings(user.ID, allow); err != nil {
		return err
	}

	text := "You will no longer receive pings for contract related actions."
	color := colorRed
	if allow {
		text = "You will now receive pings for contract related actions."
		color = colorGreen
	}
	return b.respondEmbed(i.Interaction, simpleEmbed(text, color), true)
}

func (b *Bot) handleContractAddBuilder(ctx context.Context, i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) error {
	thread, err := b.feedbackThread(ctx, i.ChannelID)
	if err != nil {
		return err
	}
	if thread == nil {
		return b.respondError(i.Interaction, wrongChannelMessage)
	}

	user := interactionUser(i)
	if user.ID != thread.OwnerID {
		return b.respondError(i.Interaction, "Only the owner of this thread is allowed to add builders.")
	}

	count, err := b.threads.CollaboratorCount(thread.ThreadID, thread.OwnerID)
	if err != nil {
		return err
	}
	if count >= store.MaxCollaborators {
		return b.respondError(i.Interaction,
			fmt.Sprintf("This thread has reached the builder limit of %d.", store.MaxCollaborators))
	}

	target := opts["user"].UserValue(nil)
	added, err := b.threads.AddCollaborator(thread.ThreadID, thread.OwnerID, target.ID)
	if err != nil {
		return err
	}
	if !added {
		return b.respondError(i.Interaction,
			fmt.Sprintf("%s is already a builder in this thread.", mention(target.ID)))
	}
	return b.respondEmbed(i.Interaction,
		simpleEmbed(fmt.Sprintf("%s has been added as a builder to this thread.", mention(target.ID)), colorGreen), false)
}

func (b *Bot) handleContractRemoveBuilder(ctx context.Context, i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) error {
	thread, err := b.feedbackThread(ctx, i.ChannelID)
	if err != nil {
		return err
	}
	if thread == nil {
		return b.respondError(i.Interaction, wrongChannelMessage)
	}

	user := interactionUser(i)
	if user.ID != thread.OwnerID {
		return b.respondError(i.Interaction, "Only the owner of this thread is allowed to remove builders.")
	}

	target := opts["user"].UserValue(nil)
	if target.ID == thread.OwnerID {
		return b.respondError(i.Interaction, "The owner of this thread cannot be removed as a builder.")
	}

	removed, err := b.threads.RemoveCollaborator(thread.ThreadID, thread.OwnerID, target.ID)
	if err != nil {
		return err
	}
	if !removed {
		return b.respondError(i.Interaction,
			fmt.Sprintf("%s is not a builder for this thread.", mention(target.ID)))
	}
	return b.respondEmbed(i.Interaction,
		simpleEmbed(fmt.Sprintf("%s has been removed as a builder for this thread.", mention(target.ID)), colorGreen), false)
}

// feedbackThread resolves channelID to a thread under a registered feedback
// channel, or nil.
func (b *Bot) feedbackThread(ctx context.Context, channelID string) (*contract.ThreadInfo, error) {
	thread, err := b.platform.ResolveThread(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if thread == nil {
		return nil, nil
	}
	isFeedback, err := b.settings.IsFeedbackChannel(thread.ParentChannelID)
	if err != nil {
		return nil, err
	}
	if !isFeedback {
		return nil, nil
	}
	return thread, nil
}

// isOpenForFeedback reports whether the thread carries a registered
// open-for-feedback tag.
func (b *Bot) isOpenForFeedback(thread *contract.ThreadInfo) (bool, error) {
	openTags, err := b.settings.FeedbackTagIDs()
	if err != nil {
		return false, err
	}
	for _, tagID := range thread.TagIDs {
		for _, open := range openTags {
			if tagID == open {
				return true, nil
			}
		}
	}
	return false, nil
}
