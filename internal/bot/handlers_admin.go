package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/zulandar/trestle/internal/contract"
)

// handleAdmin dispatches the /admin subcommands.
func (b *Bot) handleAdmin(_ context.Context, i *discordgo.InteractionCreate) error {
	sub, opts := subcommand(i)
	switch sub {
	case "addchannel":
		channel := opts["feedbackchannel"].ChannelValue(nil)
		added, err := b.settings.AddFeedbackChannel(channel.ID)
		if err != nil {
			return err
		}
		if !added {
			return b.respondError(i.Interaction,
				fmt.Sprintf("<#%s> is already registered as a feedback channel.", channel.ID))
		}
		return b.respondEmbed(i.Interaction,
			simpleEmbed(fmt.Sprintf("<#%s> has been registered as a feedback channel.", channel.ID), colorGreen), true)

	case "removechannel":
		channel := opts["feedbackchannel"].ChannelValue(nil)
		removed, err := b.settings.RemoveFeedbackChannel(channel.ID)
		if err != nil {
			return err
		}
		if !removed {
			return b.respondError(i.Interaction,
				fmt.Sprintf("<#%s> is not registered as a feedback channel.", channel.ID))
		}
		return b.respondEmbed(i.Interaction,
			simpleEmbed(fmt.Sprintf("<#%s> is no longer a feedback channel.", channel.ID), colorGreen), true)

	case "addtag":
		tagID := opts["forumtag"].StringValue()
		added, err := b.settings.AddFeedbackTag(tagID)
		if err != nil {
			return err
		}
		if !added {
			return b.respondError(i.Interaction,
				fmt.Sprintf("`%s` is already registered as an \"open for feedback\" tag.", tagID))
		}
		return b.respondEmbed(i.Interaction,
			simpleEmbed(fmt.Sprintf("`%s` has been registered as an \"open for feedback\" tag.", tagID), colorGreen), true)

	case "removetag":
		tagID := opts["forumtag"].StringValue()
		removed, err := b.settings.RemoveFeedbackTag(tagID)
		if err != nil {
			return err
		}
		if !removed {
			return b.respondError(i.Interaction,
				fmt.Sprintf("`%s` is not a registered \"open for feedback\" tag.", tagID))
		}
		return b.respondEmbed(i.Interaction,
			simpleEmbed(fmt.Sprintf("`%s` is no longer an \"open for feedback\" tag.", tagID), colorGreen), true)

	case "setcooldown":
		seconds := int(opts["seconds"].IntValue())
		if seconds < 0 {
			return b.respondError(i.Interaction, "The cooldown cannot be negative.")
		}
		if err := b.settings.SetContractCooldownSec(seconds); err != nil {
			return err
		}
		return b.respondEmbed(i.Interaction,
			simpleEmbed(fmt.Sprintf("The contract cooldown has been set to `%s`.", contract.TimeDisplay(seconds)), colorGreen), true)

	case "setrole":
		roleType := opts["roletype"].StringValue()
		role := opts["role"].RoleValue(nil, "")
		if err := b.settings.SetRoleID(roleType, role.ID); err != nil {
			return err
		}
		return b.respondEmbed(i.Interaction,
			simpleEmbed(fmt.Sprintf("The %s feedbacker role has been set to %s.", roleType, roleMention(role.ID)), colorGreen), true)

	case "setrequirement":
		roleType := opts["roletype"].StringValue()
		requirement := int(opts["requirement"].IntValue())
		if err := b.settings.SetRoleRequirement(roleType, requirement); err != nil {
			return err
		}
		return b.respondEmbed(i.Interaction,
			simpleEmbed(fmt.Sprintf("The requirement for the %s feedbacker role has been set to %s.",
				roleType, contract.Pluralize(requirement, "point")), colorGreen), true)

	case "staffprotect":
		protected := opts["protected"].BoolValue()
		if err := b.settings.SetStaffIsProtected(protected); err != nil {
			return err
		}
		text := "Staff members are no longer protected from moderation commands."
		if protected {
			text = "Staff members are now protected from moderation commands."
		}
		return b.respondEmbed(i.Interaction, simpleEmbed(text, colorGreen), true)

	case "settings":
		return b.handleAdminSettings(i)
	}
	return fmt.Errorf("bot: unknown admin subcommand %q", sub)
}

// handleAdminSettings renders the current deployment settings.
func (b *Bot) handleAdminSettings(i *discordgo.InteractionCreate) error {
	channels, err := b.settings.FeedbackChannelIDs()
	if err != nil {
		return err
	}
	tags, err := b.settings.FeedbackTagIDs()
	if err != nil {
		return err
	}
	cooldown, err := b.settings.ContractCooldownSec()
	if err != nil {
		return err
	}
	protected, err := b.settings.StaffIsProtected()
	if err != nil {
		return err
	}
	roles, err := b.settings.Roles()
	if err != nil {
		return err
	}

	channelsText := "None"
	if len(channels) > 0 {
		refs := make([]string, len(channels))
		for idx, id := range channels {
			refs[idx] = fmt.Sprintf("<#%s>", id)
		}
		channelsText = strings.Join(refs, ", ")
	}
	tagsText := "None"
	if len(tags) > 0 {
		tagsText = "`" + strings.Join(tags, "`, `") + "`"
	}
	rolesText := "None"
	if len(roles) > 0 {
		var lines []string
		for _, r := range roles {
			roleRef := "unset"
			if r.RoleID != "" {
				roleRef = roleMention(r.RoleID)
			}
			lines = append(lines, fmt.Sprintf("%s (%s) - %s", roleRef, r.RoleType, contract.Pluralize(r.Requirement, "point")))
		}
		rolesText = "\n" + strings.Join(lines, "\n")
	}

	embed := simpleEmbed(fmt.Sprintf(
		"## Admin Settings\nFeedback Channels: %s\nFeedback Tags: %s\nContract Cooldown: `%s`\nStaff Protected: **%t**\nFeedbacker Roles: %s",
		channelsText, tagsText, contract.TimeDisplay(cooldown), protected, rolesText), colorPink)
	return b.respondEmbed(i.Interaction, embed, true)
}
