// Command feedtail shows the live post feed in the terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"socialfeed/client"
	"socialfeed/feed"
	"socialfeed/notifier"
	"socialfeed/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	server := flag.String("server", envOr("FEED_SERVER", "http://localhost:8080"), "feed server base URL")
	page := flag.Int("page", 1, "page to open")
	token := flag.String("token", os.Getenv("FEED_TOKEN"), "bearer token (optional)")
	pageSize := flag.Int("page-size", feed.DefaultPageSize, "posts per page, must match the server")
	flag.Parse()

	c := client.New(*server, *token)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var events <-chan notifier.Event
	stream, err := c.Subscribe(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "live updates unavailable: %v\n", err)
	} else {
		defer stream.Close()
		events = stream.Events()
	}

	p := tea.NewProgram(tui.New(c, events, *pageSize, *page), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "feedtail: %v\n", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
