package session

import (
	"context"

	"cocoa/models"

	"github.com/charmbracelet/log"
)

// UserStore is the slice of the persistence layer the invocation lifecycle
// needs: resolving the invoking user's record and counting completed
// commands.
type UserStore interface {
	GetOrCreate(id string) (*models.User, error)
	IncrementCommandCount(id string) error
}

// Invoker drives one command invocation from user resolution to reply
// delivery. Every invocation passes the same stations in order: the user
// record is resolved (created on first use) before the handler runs, the
// reply is delivered, and only then is the command counted. A failure at any
// station renders through RenderError instead, leaving the counter untouched.
type Invoker struct {
	Users UserStore

	// RenderError turns a command failure into the user-visible reply. All
	// error presentation goes through here; handlers never format their own.
	// When nil, the error text is sent as plain content.
	RenderError func(cmd string, err error) *Reply
}

// Run executes one invocation of the named command for the given user,
// delivering the resulting reply via respond.
func (iv *Invoker) Run(cmd string, userID string, inv *Invocation, handler Handler, respond func(*Reply) error) error {
	if inv.Ctx == nil {
		inv.Ctx = context.Background()
	}

	user, err := iv.Users.GetOrCreate(userID)
	if err != nil {
		log.Error("User resolution failed", "cmd", cmd, "uID", userID, "err", err)
		return respond(iv.renderError(cmd, err))
	}
	inv.User = user

	reply, err := handler(inv)
	if err != nil {
		log.Warn("Command failed", "cmd", cmd, "uID", userID, "err", err)
		return respond(iv.renderError(cmd, err))
	}

	if err := respond(reply); err != nil {
		log.Error("Reply delivery failed", "cmd", cmd, "uID", userID, "err", err)
		return err
	}

	// Counted last, strictly after delivery. An invocation whose output the
	// user never received is not a completed command.
	if err := iv.Users.IncrementCommandCount(userID); err != nil {
		log.Error("Failed to count command", "cmd", cmd, "uID", userID, "err", err)
	}

	log.Debug("Invocation complete", "cmd", cmd, "uID", userID)
	return nil
}

func (iv *Invoker) renderError(cmd string, err error) *Reply {
	if iv.RenderError != nil {
		return iv.RenderError(cmd, err)
	}

	return &Reply{Content: err.Error()}
}
