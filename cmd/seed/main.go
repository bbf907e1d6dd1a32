// Package main provides a tool to seed the database with demo trading data.
//
// It creates a handful of users with listings across categories so the swipe
// engine, offers, and search have something to chew on during development.
//
// Usage:
//
//	DATA_PATH=~/Barterly/data go run ./cmd/seed
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/barterly/barterly-server/internal/domain"
	"github.com/barterly/barterly-server/internal/id"
	"github.com/barterly/barterly-server/internal/search"
	"github.com/barterly/barterly-server/internal/store"
)

var skipIndex = flag.Bool("skip-index", false, "Skip rebuilding the search index")

type seedUser struct {
	id       string
	name     string
	location string
}

type seedItem struct {
	owner       string
	title       string
	description string
	category    string
	condition   string
}

var users = []seedUser{
	{"user-dana", "Dana", "Portland, OR"},
	{"user-riley", "Riley", "Austin, TX"},
	{"user-sam", "Sam", "Chicago, IL"},
	{"user-alex", "Alex", "Denver, CO"},
}

var items = []seedItem{
	{"user-dana", "Vintage Polaroid Camera", "SX-70 in working order, recently cleaned", "electronics", "good"},
	{"user-dana", "Cast Iron Skillet", "12 inch, well seasoned", "kitchen", "good"},
	{"user-riley", "Acoustic Guitar", "Yamaha FG800, minor scratches", "music", "fair"},
	{"user-riley", "Record Player", "Audio-Technica turntable with new stylus", "music", "excellent"},
	{"user-riley", "Espresso Machine", "Gaggia Classic, descaled last month", "kitchen", "good"},
	{"user-sam", "Mountain Bike", "Hardtail 29er, medium frame", "outdoors", "fair"},
	{"user-sam", "Camping Stove", "Two burner propane stove", "outdoors", "good"},
	{"user-alex", "Mechanical Keyboard", "87 key, brown switches", "electronics", "excellent"},
	{"user-alex", "Board Game Collection", "Catan, Wingspan, and Azul bundle", "games", "good"},
	{"user-alex", "Ski Poles", "Adjustable, 110-135cm", "outdoors", "fair"},
}

func main() {
	flag.Parse()

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/Barterly/data")
	}

	dbPath := filepath.Join(dataPath, "store")
	fmt.Printf("Opening document store at: %s\n", dbPath)

	s, err := store.New(dbPath, nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	for _, u := range users {
		user := domain.NewUser(u.id, u.name)
		user.Location = u.location

		if err := s.CreateUser(ctx, user); err != nil {
			fmt.Printf("  user %s already exists, skipping\n", u.id)
			continue
		}
		fmt.Printf("  created user %s (%s)\n", u.name, u.id)
	}

	created := make([]*domain.Item, 0, len(items))
	for _, it := range items {
		itemID, err := id.Generate("item")
		if err != nil {
			log.Fatalf("Failed to generate item id: %v", err)
		}

		item := domain.NewItem(itemID, it.owner, it.title)
		item.Description = it.description
		item.Category = it.category
		item.Condition = it.condition

		if err := s.CreateItem(ctx, item); err != nil {
			log.Fatalf("Failed to create item %q: %v", it.title, err)
		}
		created = append(created, item)
		fmt.Printf("  created item %q for %s\n", it.title, it.owner)
	}

	if !*skipIndex {
		indexPath := filepath.Join(dataPath, "search")
		fmt.Printf("Indexing %d items at: %s\n", len(created), indexPath)

		index, err := search.NewItemIndex(search.Options{DataPath: indexPath})
		if err != nil {
			log.Fatalf("Failed to open search index: %v", err)
		}
		defer index.Close()

		if err := index.IndexItems(created); err != nil {
			log.Fatalf("Failed to index items: %v", err)
		}
	}

	fmt.Printf("\nSeeded %d users and %d items\n", len(users), len(items))
}
