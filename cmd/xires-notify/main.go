// Command xires-notify is a terminal client for Axotl Xires
// notifications: it signs a user in, keeps their notification feed
// fresh in the background, and lets them read and follow notifications
// without leaving the terminal.
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/raccoon129/xires-notify/internal/api"
	"github.com/raccoon129/xires-notify/internal/app"
	"github.com/raccoon129/xires-notify/internal/credential"
	"github.com/raccoon129/xires-notify/internal/model"
	"github.com/raccoon129/xires-notify/internal/notify"
	"github.com/raccoon129/xires-notify/internal/session"
	"github.com/raccoon129/xires-notify/internal/store"
	"github.com/raccoon129/xires-notify/internal/ui/login"
)

func main() {
	configPath := flag.String(
		"config", model.DefaultConfigPath(), "path to the config file",
	)
	flag.Parse()

	cfg, err := model.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	cachePath := cfg.Cache.Path
	if cachePath == "" {
		cachePath = model.DefaultCachePath()
	}
	if err := os.MkdirAll(filepath.Dir(cachePath), 0o755); err != nil {
		log.Fatalf("creating cache directory: %v", err)
	}

	cache, err := store.NewSQLiteStore(cachePath)
	if err != nil {
		log.Fatalf("opening cache: %v", err)
	}
	defer cache.Close()

	creds := credential.NewKeyringStore()
	resolver := session.NewResolver(creds)
	client := api.NewClient(cfg.API.BaseURL, resolver.Token)
	notifications := notify.NewStore(client, cache)

	root := app.New(app.Options{
		Session:      resolver,
		Store:        notifications,
		Login:        login.New(client, resolver, 80, 24),
		PollInterval: time.Duration(cfg.API.PollIntervalSec) * time.Second,
		SummaryLimit: cfg.Display.SummaryLimit,
	})

	program := tea.NewProgram(root, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		log.Fatalf("running program: %v", err)
	}
}
