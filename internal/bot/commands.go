package bot

import "github.com/bwmarrin/discordgo"

var (
	adminPermissions int64 = discordgo.PermissionManageServer
	modPermissions   int64 = discordgo.PermissionModerateMembers
)

// commandDefinitions returns the guild slash commands registered at startup.
func commandDefinitions() []*discordgo.ApplicationCommand {
	minRequirement := float64(1)
	minPoints := float64(0)
	roleTypeChoices := []*discordgo.ApplicationCommandOptionChoice{
		{Name: "regular", Value: "regular"},
		{Name: "veteran", Value: "veteran"},
	}
	return []*discordgo.ApplicationCommand{
		{
			Name:        "contract",
			Description: "Feedback contract commands",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "create",
					Description: "Creates a feedback contract",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "getinfo",
					Description: "Displays info about the current feedback thread",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "allowpings",
					Description: "Change whether you will receive pings for contract related actions",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionBoolean,
							Name:        "ping",
							Description: "If true, you will be pinged for contract related actions",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "addbuilder",
					Description: "Adds a user as a builder to this thread, allowing them to complete feedback contracts",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "user",
							Description: "The user to add as a builder",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "removebuilder",
					Description: "Removes a user's builder status in this thread",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "user",
							Description: "The user to remove as a builder",
							Required:    true,
						},
					},
				},
			},
		},
		{
			Name:                     "admin",
			Description:              "Administrator commands",
			DefaultMemberPermissions: &adminPermissions,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "addchannel",
					Description: "Registers a forum channel as a feedback channel",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:         discordgo.ApplicationCommandOptionChannel,
							Name:         "feedbackchannel",
							Description:  "The forum channel to register",
							Required:     true,
							ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildForum},
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "removechannel",
					Description: "Unregisters a feedback channel",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:         discordgo.ApplicationCommandOptionChannel,
							Name:         "feedbackchannel",
							Description:  "The forum channel to unregister",
							Required:     true,
							ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildForum},
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "addtag",
					Description: "Registers a forum tag as an \"open for feedback\" tag",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "forumtag",
							Description: "The ID of the forum tag to register",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "removetag",
					Description: "Unregisters an \"open for feedback\" tag",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "forumtag",
							Description: "The ID of the forum tag to unregister",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "setcooldown",
					Description: "Sets the per-thread contract cooldown in seconds",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "seconds",
							Description: "Minimum seconds between a user's contracts in one thread",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "setrole",
					Description: "Sets the role that is obtained for reaching specific feedback point requirements",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "roletype",
							Description: "The role type to set",
							Required:    true,
							Choices:     roleTypeChoices,
						},
						{
							Type:        discordgo.ApplicationCommandOptionRole,
							Name:        "role",
							Description: "The role to use for the point requirement",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "setrequirement",
					Description: "Sets the feedback point requirement to obtain a specific role",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "roletype",
							Description: "The role type to set requirement of",
							Required:    true,
							Choices:     roleTypeChoices,
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "requirement",
							Description: "The new requirement for the role",
							Required:    true,
							MinValue:    &minRequirement,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "staffprotect",
					Description: "Sets whether staff members are protected from moderation commands",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionBoolean,
							Name:        "protected",
							Description: "If true, staff members cannot be targeted",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "settings",
					Description: "Show the current settings",
				},
			},
		},
		{
			Name:                     "mod",
			Description:              "Moderator commands",
			DefaultMemberPermissions: &modPermissions,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "block",
					Description: "Blocks a user from creating feedback contracts",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "user",
							Description: "The user to block",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "unblock",
					Description: "Unblocks a user, allowing them to create feedback contracts",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "user",
							Description: "The user to unblock",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "setpoints",
					Description: "Sets a user's feedback points",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "user",
							Description: "The user to modify",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "points",
							Description: "The new point total",
							Required:    true,
							MinValue:    &minPoints,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "updateroles",
					Description: "Reconciles a user's roles against their feedback points",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "user",
							Description: "The user to reconcile",
							Required:    true,
						},
					},
				},
			},
		},
	}
}
