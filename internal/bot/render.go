package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/zulandar/trestle/internal/contract"
)

// Component custom IDs. The rules accept button carries the prompt key after
// the colon.
const (
	ratingSelectID    = "contract-rating-select"
	confirmButtonID   = "contract-confirm"
	rulesAcceptPrefix = "contract-rules-accept:"
)

// Embed colors, matching Discord's standard palette.
const (
	colorGreen  = 0x57F287
	colorBlue   = 0x3498DB
	colorRed    = 0xED4245
	colorOrange = 0xE67E22
	colorPink   = 0xAD1457
)

const contractEmbedTitle = "Feedback Contract"

const rulesText = "## Rules\n" +
	"This bot is a powerful tool for giving and receiving feedback and as such, we have the power to punish those who misuse it. Along with common sense, here is a list of DONTS:\n" +
	"- DONT submit empty feedback\n" +
	"- DONT be unfair/biased when feedbacking\n" +
	"- DONT offer bribes (robux, feedback, etc) in return for positive feedback\n" +
	"**If you are found to be breaking these rules or abusing the bot in any other way, we will block you from using the bot, denying your ability to make feedback contracts and receive feedback points.**\n\n" +
	"*Happy feedbacking!*"

// mention formats a user mention.
func mention(userID string) string {
	return fmt.Sprintf("<@%s>", userID)
}

// roleMention formats a role mention.
func roleMention(roleID string) string {
	return fmt.Sprintf("<@&%s>", roleID)
}

// messageLink builds a jump link to a message inside a thread.
func messageLink(guildID, threadID, messageID string) string {
	return fmt.Sprintf("https://discord.com/channels/%s/%s/%s", guildID, threadID, messageID)
}

// ratingHeading formats the selected rating as "⭐⭐ 2 STARS".
func ratingHeading(r *contract.Rating) string {
	plural := "S"
	if r.Points == 1 {
		plural = ""
	}
	return fmt.Sprintf("%s %d STAR%s", r.Label, r.Points, plural)
}

// openContractEmbed renders the green open-state embed, including the
// currently selected rating if any.
func openContractEmbed(view *contract.ContractView) *discordgo.MessageEmbed {
	desc := fmt.Sprintf(
		"%s has completed their feedback! Please use the dropdown menu to rate their feedback's quality, and click \"Confirm\" to submit.",
		mention(view.CreatorID))
	if view.Selected != nil {
		desc += fmt.Sprintf("\n\n# %s\n> %s", ratingHeading(view.Selected), view.Selected.FullDescription)
	}
	return &discordgo.MessageEmbed{
		Title:       contractEmbedTitle,
		Description: desc,
		Color:       colorGreen,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
}

// openContractComponents renders the star dropdown and the confirm button.
// The button stays disabled until a rating is selected.
func openContractComponents(selected *contract.Rating) []discordgo.MessageComponent {
	placeholder := "Select one..."
	if selected != nil {
		placeholder = selected.Label
	}
	options := make([]discordgo.SelectMenuOption, len(contract.Ratings))
	for i, r := range contract.Ratings {
		options[i] = discordgo.SelectMenuOption{
			Label:       r.Label,
			Value:       r.Value,
			Description: r.MenuDescription,
		}
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{
				CustomID:    ratingSelectID,
				Placeholder: placeholder,
				Options:     options,
			},
		}},
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{
				CustomID: confirmButtonID,
				Label:    "Confirm",
				Style:    discordgo.SuccessButton,
				Disabled: selected == nil,
			},
		}},
	}
}

// pingContent renders the collaborator ping lines for a fresh contract.
func pingContent(userIDs []string) string {
	mentions := make([]string, len(userIDs))
	for i, id := range userIDs {
		mentions[i] = mention(id)
	}
	return strings.Join(mentions, "\n")
}

// lockedContractEmbed renders the blue locked-state embed.
func lockedContractEmbed(view *contract.LockedView) *discordgo.MessageEmbed {
	desc := fmt.Sprintf(
		"This feedback contract has been accepted and rated %s by %s.\n%s has earned %s",
		ratingHeading(&view.Rating), mention(view.RaterID), mention(view.CreatorID),
		contract.Pluralize(view.AwardedPoints, "feedback point"))
	if view.AwardedPoints != 0 {
		desc += fmt.Sprintf(" and they now have %s", contract.Pluralize(view.NewTotalPoints, "point"))
	}
	desc += "."
	return &discordgo.MessageEmbed{
		Title:       contractEmbedTitle,
		Description: desc,
		Color:       colorBlue,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
}

// acceptedFollowUp renders the post-confirm notification to the contract
// creator, including any newly earned roles.
func acceptedFollowUp(view *contract.LockedView) string {
	msg := fmt.Sprintf("%s Your feedback contract has been accepted.", mention(view.CreatorID))
	if len(view.GainedRoleIDs) > 0 {
		mentions := make([]string, len(view.GainedRoleIDs))
		for i, id := range view.GainedRoleIDs {
			mentions[i] = roleMention(id)
		}
		msg += fmt.Sprintf(" You have earned new roles: %s", strings.Join(mentions, ", "))
	}
	return msg
}

// rulesPromptResponse renders the ephemeral rules prompt with its accept
// button. key ties the button back to the pending prompt.
func rulesPromptResponse(key string) *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{{
			Description: rulesText,
			Color:       colorOrange,
		}},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{
					CustomID: rulesAcceptPrefix + key,
					Label:    "Accept",
					Style:    discordgo.SuccessButton,
				},
			}},
		},
		Flags: discordgo.MessageFlagsEphemeral,
	}
}

// simpleEmbed renders a one-line colored embed.
func simpleEmbed(description string, color int) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Description: description,
		Color:       color,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
}
