package main

import (
	"errors"

	"cocoa/lastfm"
	sess "cocoa/session"

	"github.com/bwmarrin/discordgo"
	"github.com/charmbracelet/log"
)

// Accent colour shared by all embeds.
var ACCENT = 0xFFA6F8

// cocoaEmbed is the shared embed skeleton for all replies.
func cocoaEmbed(cmd string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Color:  ACCENT,
		Author: &discordgo.MessageEmbedAuthor{Name: cmd + "!"},
	}
}

// embedReply places a rendered view into the shared embed skeleton.
func embedReply(cmd string, view *lastfm.View) *sess.Reply {
	embed := cocoaEmbed(cmd)

	if view.Author != "" {
		embed.Author.Name = view.Author
	}
	embed.Title = view.Title
	embed.Description = view.Description
	if view.Footer != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: view.Footer}
	}
	if view.Thumbnail != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: view.Thumbnail}
	}

	return &sess.Reply{Embed: embed}
}

// renderError is the single place user-facing error text is produced. Schema
// errors are an operator concern and get a generic message; everything else
// is shown as-is.
func renderError(cmd string, err error) *sess.Reply {
	msg := err.Error()
	if errors.Is(err, lastfm.ErrMalformed) || errors.Is(err, lastfm.ErrListNotFound) {
		log.Error("Last.fm schema assumption violated", "cmd", cmd, "err", err)
		msg = "last.fm sent something unexpected, try again later"
	}

	embed := cocoaEmbed(cmd)
	embed.Description = msg
	return &sess.Reply{Embed: embed}
}
