package bot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/zulandar/trestle/internal/contract"
)

const staffProtectedMessage = "Staff members are protected from this command."

// handleMod dispatches the /mod subcommands.
func (b *Bot) handleMod(ctx context.Context, i *discordgo.InteractionCreate) error {
	sub, opts := subcommand(i)
	switch sub {
	case "block":
		return b.handleModBlock(i, opts, true)
	case "unblock":
		return b.handleModBlock(i, opts, false)
	case "setpoints":
		return b.handleModSetPoints(ctx, i, opts)
	case "updateroles":
		return b.handleModUpdateRoles(ctx, i, opts)
	}
	return fmt.Errorf("bot: unknown mod subcommand %q", sub)
}

// targetIsProtected reports whether the staff protection setting shields
// the target from data-modifying moderation.
func (b *Bot) targetIsProtected(userID string) (bool, error) {
	protected, err := b.settings.StaffIsProtected()
	if err != nil {
		return false, err
	}
	if !protected {
		return false, nil
	}
	return b.isStaff(userID)
}

func (b *Bot) handleModBlock(i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption, block bool) error {
	target := opts["user"].UserValue(nil)

	if block {
		shielded, err := b.targetIsProtected(target.ID)
		if err != nil {
			return err
		}
		if shielded {
			return b.respondError(i.Interaction, staffProtectedMessage)
		}
	}

	if err := b.users.SetBlocked(target.ID, block); err != nil {
		return err
	}
	if block {
		return b.respondEmbed(i.Interaction,
			simpleEmbed(fmt.Sprintf("%s has been blocked from creating feedback contracts.", mention(target.ID)), colorGreen), false)
	}
	return b.respondEmbed(i.Interaction,
		simpleEmbed(fmt.Sprintf("%s has been unblocked and can now create feedback contracts.", mention(target.ID)), colorGreen), false)
}

func (b *Bot) handleModSetPoints(ctx context.Context, i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) error {
	target := opts["user"].UserValue(nil)
	points := int(opts["points"].IntValue())
	if points < 0 {
		return b.respondError(i.Interaction, "Feedback points cannot be negative.")
	}

	shielded, err := b.targetIsProtected(target.ID)
	if err != nil {
		return err
	}
	if shielded {
		return b.respondError(i.Interaction, staffProtectedMessage)
	}

	oldPoints, err := b.users.Points(target.ID)
	if err != nil {
		return err
	}
	if err := b.users.SetPoints(target.ID, points); err != nil {
		return err
	}
	if _, err := b.syncer.Reconcile(ctx, target.ID, oldPoints, points); err != nil {
		return err
	}

	return b.respondEmbed(i.Interaction,
		simpleEmbed(fmt.Sprintf("%s now has %s.", mention(target.ID), contract.Pluralize(points, "feedback point")), colorGreen), false)
}

func (b *Bot) handleModUpdateRoles(ctx context.Context, i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) error {
	target := opts["user"].UserValue(nil)

	points, err := b.users.Points(target.ID)
	if err != nil {
		return err
	}
	if _, err := b.syncer.Reconcile(ctx, target.ID, points, points); err != nil {
		return err
	}

	return b.respondEmbed(i.Interaction,
		simpleEmbed(fmt.Sprintf("%s's roles have been reconciled against their %s.",
			mention(target.ID), contract.Pluralize(points, "feedback point")), colorGreen), false)
}
