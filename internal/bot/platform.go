package bot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/zulandar/trestle/internal/contract"
)

// discordPlatform adapts the Discord session to the thread surface the
// lifecycle engine consults.
type discordPlatform struct {
	sess session
}

func (p *discordPlatform) ResolveThread(_ context.Context, channelID string) (*contract.ThreadInfo, error) {
	ch, err := p.sess.Channel(channelID)
	if err != nil {
		if restErr, ok := err.(*discordgo.RESTError); ok && restErr.Response != nil && restErr.Response.StatusCode == 404 {
			return nil, nil
		}
		return nil, fmt.Errorf("bot: resolve channel %s: %w", channelID, err)
	}
	if !ch.IsThread() {
		return nil, nil
	}
	return &contract.ThreadInfo{
		ThreadID:        ch.ID,
		ParentChannelID: ch.ParentID,
		OwnerID:         ch.OwnerID,
		TagIDs:          ch.AppliedTags,
	}, nil
}

// guildRoleAPI adapts the Discord session to the role surface the syncer
// drives.
type guildRoleAPI struct {
	sess    session
	guildID string
}

func (g *guildRoleAPI) MemberRoleIDs(_ context.Context, userID string) ([]string, error) {
	member, err := g.sess.GuildMember(g.guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("bot: fetch member %s: %w", userID, err)
	}
	return member.Roles, nil
}

func (g *guildRoleAPI) AddRole(_ context.Context, userID, roleID string) error {
	if err := g.sess.GuildMemberRoleAdd(g.guildID, userID, roleID); err != nil {
		return fmt.Errorf("bot: add role %s to %s: %w", roleID, userID, err)
	}
	return nil
}

func (g *guildRoleAPI) RemoveRole(_ context.Context, userID, roleID string) error {
	if err := g.sess.GuildMemberRoleRemove(g.guildID, userID, roleID); err != nil {
		return fmt.Errorf("bot: remove role %s from %s: %w", roleID, userID, err)
	}
	return nil
}
