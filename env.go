package main

import (
	"os"

	"github.com/charmbracelet/log"
)

type Env struct {
	IsProd   bool
	Token    string
	ServerID string

	LastfmKey string
	DBPath    string
}

func NewEnv() *Env {
	log.Info("Setting up environment")

	env := &Env{
		DBPath: "cocoa.sqlite",
	}

	if v, ok := os.LookupEnv("PROD"); ok && v == "1" {
		env.IsProd = true
	}

	if v, ok := os.LookupEnv("DISCORD_BOT_TOKEN"); ok {
		env.Token = v
	} else {
		log.Fatal("DISCORD_BOT_TOKEN not set")
	}
	if v, ok := os.LookupEnv("SERVER_ID"); ok {
		env.ServerID = v
	} else {
		log.Fatal("SERVER_ID not set")
	}
	if v, ok := os.LookupEnv("LASTFM_API_KEY"); ok {
		env.LastfmKey = v
	} else {
		log.Fatal("LASTFM_API_KEY not set")
	}

	if v, ok := os.LookupEnv("DB_PATH"); ok {
		env.DBPath = v
	}

	return env
}
