package main

import (
	"errors"
	"fmt"

	"cocoa/db"
	"cocoa/lastfm"
	sess "cocoa/session"

	"github.com/bwmarrin/discordgo"
)

// commands builds the full slash-command table. Every handler receives the
// invoking user's record via the invocation and reports failures by
// returning the error unchanged; presentation happens in renderError.
func commands(users *db.Users, client *lastfm.Client) []sess.Command {
	cmds := []sess.Command{
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "link",
				Description: "Links a last.fm account to your profile.",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "username",
						Description: "The last.fm profile to link.",
						Required:    true,
					},
				},
			},
			Handler: func(inv *sess.Invocation) (*sess.Reply, error) {
				username := inv.StringOption("username")

				// Linking an account that last.fm doesn't know about helps nobody.
				if _, err := client.Fetch(inv.Ctx, lastfm.Query{Method: lastfm.UserInfo, User: username}); err != nil {
					return nil, err
				}

				if err := users.SetUsername(inv.User.ID, username); err != nil {
					return nil, err
				}

				return &sess.Reply{Content: "Success! last.fm linked."}, nil
			},
		},
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "unlink",
				Description: "Unlinks your last.fm account.",
			},
			Handler: func(inv *sess.Invocation) (*sess.Reply, error) {
				if err := users.ClearUsername(inv.User.ID); err != nil {
					return nil, err
				}

				return &sess.Reply{Content: "last.fm account unlinked."}, nil
			},
		},
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "profile",
				Description: "Shows your last.fm listening profile.",
			},
			Handler: func(inv *sess.Invocation) (*sess.Reply, error) {
				username, err := users.GetUsername(inv.User.ID)
				if err != nil {
					return nil, err
				}

				doc, err := client.Fetch(inv.Ctx, lastfm.Query{Method: lastfm.UserInfo, User: username})
				if err != nil {
					return nil, err
				}

				return embedReply("profile", lastfm.RenderProfile(doc, username)), nil
			},
		},
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "nowplaying",
				Description: "Shows the track you are currently playing.",
			},
			Handler: func(inv *sess.Invocation) (*sess.Reply, error) {
				username, err := users.GetUsername(inv.User.ID)
				if err != nil {
					return nil, err
				}

				coarse, err := client.Fetch(inv.Ctx, lastfm.Query{Method: lastfm.RecentTracks, User: username, Limit: 1})
				if err != nil {
					return nil, err
				}

				artist := coarse.Get(`recenttracks.track.0.artist.\#text`).String()
				track := coarse.Get("recenttracks.track.0.name").String()
				if artist == "" || track == "" {
					return nil, errors.New("no recent tracks found")
				}

				detail, err := client.Fetch(inv.Ctx, lastfm.Query{Method: lastfm.TrackInfo, User: username, Artist: artist, Track: track})
				if err != nil {
					return nil, err
				}

				return embedReply("nowplaying", lastfm.RenderTrack(detail, username)), nil
			},
		},
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "stats",
				Description: "Shows your engagement stats.",
			},
			Handler: func(inv *sess.Invocation) (*sess.Reply, error) {
				embed := cocoaEmbed("stats")
				embed.Description = fmt.Sprintf(
					"**%d** commands!\n**%d** pieces!\n**level %d**!",
					inv.User.CommandCount,
					inv.User.Currency,
					inv.User.Experience,
				)
				embed.Footer = &discordgo.MessageEmbedFooter{Text: "this is a placeholder command more or less"}

				return &sess.Reply{Embed: embed}, nil
			},
		},
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "ping",
				Description: "pong!",
			},
			Handler: func(inv *sess.Invocation) (*sess.Reply, error) {
				return &sess.Reply{Content: "pong!"}, nil
			},
		},
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "pong",
				Description: "ping!",
			},
			Handler: func(inv *sess.Invocation) (*sess.Reply, error) {
				return &sess.Reply{Content: "ping!"}, nil
			},
		},
	}

	cmds = append(cmds,
		listCommand(users, client, "recent", "Shows your most recent scrobbles.", lastfm.RecentTracks, "%s has listened to..."),
		listCommand(users, client, "topartists", "Shows your most played artists.", lastfm.TopArtists, "%s's top artists"),
		listCommand(users, client, "toptracks", "Shows your most played tracks.", lastfm.TopTracks, "%s's top tracks"),
		listCommand(users, client, "topalbums", "Shows your most played albums.", lastfm.TopAlbums, "%s's top albums"),
	)

	return cmds
}

// listCommand builds a command that fetches one of the list-shaped API
// methods and renders it as a ranked list.
func listCommand(users *db.Users, client *lastfm.Client, name string, desc string, method lastfm.Method, authorFmt string) sess.Command {
	var minCount float64 = 1

	return sess.Command{
		Definition: &discordgo.ApplicationCommand{
			Name:        name,
			Description: desc,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "count",
					Description: "Number of entries to show.",
					MinValue:    &minCount,
					MaxValue:    50,
				},
			},
		},
		Handler: func(inv *sess.Invocation) (*sess.Reply, error) {
			username, err := users.GetUsername(inv.User.ID)
			if err != nil {
				return nil, err
			}

			limit := inv.IntOption("count", lastfm.DefaultLimit)

			doc, err := client.Fetch(inv.Ctx, lastfm.Query{Method: method, User: username, Limit: limit})
			if err != nil {
				return nil, err
			}

			view, err := lastfm.RenderList(doc, method, limit)
			if err != nil {
				return nil, err
			}
			view.Author = fmt.Sprintf(authorFmt, username)

			return embedReply(name, view), nil
		},
	}
}
