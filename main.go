package main

import (
	"cocoa/db"
	"cocoa/lastfm"
	sess "cocoa/session"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file loaded", "err", err)
	}

	env := NewEnv()
	if !env.IsProd {
		log.SetLevel(log.DebugLevel)
	}

	database, err := db.NewDB(env.DBPath)
	if err != nil {
		log.Fatal("Failed to open database", "path", env.DBPath, "err", err)
	}
	defer database.Close()

	users := db.NewUsers(database)
	client := lastfm.NewClient(env.LastfmKey)

	invoker := &sess.Invoker{Users: users, RenderError: renderError}
	session := sess.NewSession(env.Token, env.ServerID, invoker)

	if err := session.Open(commands(users, client)); err != nil {
		log.Fatal("Failed to open session", "err", err)
	}
	defer session.Close()

	log.Info("Bot is running")
	select {}
}
