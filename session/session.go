package session

import (
	"fmt"
	"reflect"
	"slices"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/charmbracelet/log"
)

// Session is a connection to a [*discordgo.Session] with additional metadata
// as well as all registered event handlers (see [discordgo.EventHandler]) and
// slash-commands (see [discordgo.ApplicationCommand]).
type Session struct {
	// The underlying session.
	dcs *discordgo.Session

	// Application ID associated with the bot.
	AppID string

	// Server ID the session is connected to (see [discordgo.Guild]).
	ServerID string

	// Maps registered event handler names to their cancellation callbacks (see
	// [discordgo.Session.AddHandler]).
	Handlers map[string]func()

	// Maps registered command names to their handler functions.
	Commands map[string]Handler

	// Drives the lifecycle of every command invocation.
	invoker *Invoker
}

// NewSession creates a new session, connecting the application to the given
// server. All command invocations are routed through the given invoker.
func NewSession(token string, sID string, invoker *Invoker) *Session {
	dcs, err := discordgo.New("Bot " + token)
	if err != nil {
		log.Fatal("Failed to create session", "sID", sID, "err", err)
	}

	return &Session{dcs, "", sID, make(map[string]func()), make(map[string]Handler), invoker}
}

// Open configures the underlying session and registers the given commands.
func (s *Session) Open(cmds []Command) error {
	if err := s.awaitReady(); err != nil {
		return err
	}

	// Register generic handler for all slash-commands. Each invocation runs
	// through the invoker, which resolves the user's record before the command
	// handler executes and finalizes the invocation afterwards.
	s.HandlerAdd("handle-command", func(dcs *discordgo.Session, i *discordgo.InteractionCreate) {
		name := i.ApplicationCommandData().Name
		handler, ok := s.Commands[name]
		if !ok {
			return
		}

		uID := interactionUserID(i.Interaction)
		if uID == "" {
			log.Warn("Interaction without a user", "name", name)
			return
		}

		log.Info("Executing command", "name", name, "uID", uID)

		inv := &Invocation{Interaction: i.Interaction}
		respond := func(r *Reply) error {
			return dcs.InteractionRespond(i.Interaction, interactionResponse(r))
		}

		if err := s.invoker.Run(name, uID, inv, handler, respond); err != nil {
			log.Error("Execution failed", "name", name, "err", err)
		}
	})

	// Unregister left-over commands. Application commands are registered on
	// the server itself. Deprecations or changes to command names leave behind
	// "ghost"-commands that don't work and simply produce an error.
	appCmds, err := s.dcs.ApplicationCommands(s.AppID, s.ServerID)
	if err != nil {
		return err
	}

	for _, c := range appCmds {
		if slices.ContainsFunc(cmds, func(c2 Command) bool { return c.Name == c2.Definition.Name }) {
			continue
		}

		log.Debug("Unregistering left-over command", "id", c.ID, "name", c.Name)
		s.dcs.ApplicationCommandDelete(s.AppID, s.ServerID, c.ID)
	}

	// Register commands.
	for _, c := range cmds {
		if err := s.CommandAdd(c); err != nil {
			return err
		}
	}

	return nil
}

// Close shuts down the underlying session.
func (s *Session) Close() {
	s.dcs.Close()
}

// awaitReady starts initialization of the underlying session and
// synchronously waits for the initialization to finish.
func (s *Session) awaitReady() error {
	var rdy sync.WaitGroup
	rdy.Add(1)

	// Register handler to await session initialization. This ensures that
	// AppID is available.
	s.HandlerAdd("session-ready", func(dcs *discordgo.Session, r *discordgo.Ready) {
		s.AppID = dcs.State.User.ID
		log.Info("Session ready", "id", s.AppID)
		rdy.Done()
	})

	if err := s.dcs.Open(); err != nil {
		return err
	}

	log.Info("Awaiting session ready")
	rdy.Wait()
	s.HandlerRemove("session-ready")

	return nil
}

// CommandAdd adds a new slash-command (see [discordgo.ApplicationCommand])
// from a [Command].
func (s *Session) CommandAdd(cmd Command) error {
	if _, ok := s.Commands[cmd.Definition.Name]; ok {
		return fmt.Errorf("command with name `%s` already exists", cmd.Definition.Name)
	}

	if _, err := s.dcs.ApplicationCommandCreate(s.AppID, s.ServerID, cmd.Definition); err != nil {
		return fmt.Errorf("command creation `%s` failed: %v", cmd.Definition.Name, err)
	}

	log.Info("Command registered", "name", cmd.Definition.Name)
	s.Commands[cmd.Definition.Name] = cmd.Handler
	return nil
}

// HandlerAdd adds an event handler and associates it with the given name.
// Names must be unique to allow deleting them at a later point in time.
// Errors if a handler for the given name already exists.
func (s *Session) HandlerAdd(name string, handler any) error {
	if _, ok := s.Handlers[name]; ok {
		return fmt.Errorf("handler for name `%s` already exists", name)
	}

	rv := reflect.ValueOf(handler)
	rt := rv.Type()

	// Wrap handler to allow generic logging for all handlers.
	fn := reflect.MakeFunc(rt, func(in []reflect.Value) []reflect.Value {
		log.Debug("Executing handler", "name", name)
		rv.Call(in)
		return nil
	}).Interface()

	log.Info("Handler registered", "name", name)
	s.Handlers[name] = s.dcs.AddHandler(fn)
	return nil
}

// HandlerRemove removes the event handler for the given name. Results in a
// noop if no handler exists for the name.
func (s *Session) HandlerRemove(name string) {
	if h, ok := s.Handlers[name]; ok {
		log.Debug("Handler removed", "name", name)
		h()
	}
}

// interactionUserID resolves the invoking user for both guild and DM
// interactions.
func interactionUserID(i *discordgo.Interaction) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}

	return ""
}

// interactionResponse converts a [*Reply] into the wire response shape.
func interactionResponse(r *Reply) *discordgo.InteractionResponse {
	data := &discordgo.InteractionResponseData{Content: r.Content}
	if r.Embed != nil {
		data.Embeds = []*discordgo.MessageEmbed{r.Embed}
	}

	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	}
}
