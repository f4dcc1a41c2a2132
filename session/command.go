package session

import (
	"context"

	"cocoa/models"

	"github.com/bwmarrin/discordgo"
)

// Reply is the user-visible result of a command. Embeds take precedence over
// plain content when both are set.
type Reply struct {
	Content string
	Embed   *discordgo.MessageEmbed
}

// Invocation carries the per-invocation state handed to command handlers.
// User is the invoking user's record, resolved before the handler runs.
type Invocation struct {
	Ctx         context.Context
	User        *models.User
	Interaction *discordgo.Interaction
}

// StringOption returns the named string option of the invoked command, or ""
// if absent.
func (inv *Invocation) StringOption(name string) string {
	if opt := inv.option(name); opt != nil {
		return opt.StringValue()
	}

	return ""
}

// IntOption returns the named integer option of the invoked command, or
// fallback if absent.
func (inv *Invocation) IntOption(name string, fallback int) int {
	if opt := inv.option(name); opt != nil {
		return int(opt.IntValue())
	}

	return fallback
}

func (inv *Invocation) option(name string) *discordgo.ApplicationCommandInteractionDataOption {
	if inv.Interaction == nil {
		return nil
	}

	for _, opt := range inv.Interaction.ApplicationCommandData().Options {
		if opt.Name == name {
			return opt
		}
	}

	return nil
}

// Handler runs the body of a slash-command for one invocation.
type Handler func(inv *Invocation) (*Reply, error)

// Command wraps a [*discordgo.ApplicationCommand], containing both the
// command definition itself and the handler executed on invocation.
type Command struct {
	Definition *discordgo.ApplicationCommand
	Handler    Handler
}
