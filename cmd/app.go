// Package cmd implements the CLI application to track a personal
// portfolio through valuation snapshots.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"

	"github.com/msoler/patrimonio"
)

// Register the subcommands. A main package calls Register() and then
// Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&captureCmd{}, "snapshots")
	c.Register(&editCmd{}, "snapshots")
	c.Register(&deleteCmd{}, "snapshots")
	c.Register(&historyCmd{}, "snapshots")
	c.Register(&viewCmd{}, "snapshots")
	c.Register(&copyCmd{}, "snapshots")
	c.Register(&holdingsCmd{}, "snapshots")

	c.Register(&summaryCmd{}, "reports")
	c.Register(&analyticsCmd{}, "reports")
	c.Register(&opportunitiesCmd{}, "reports")
	c.Register(&compositionCmd{}, "reports")

	c.Register(&targetsCmd{}, "targets")
	c.Register(&autoBalanceCmd{}, "targets")

	c.Register(&exportCmd{}, "data")
	c.Register(&importCmd{}, "data")
	c.Register(&categoryCmd{}, "data")
	c.Register(&pullCmd{}, "sync")
	c.Register(&pushCmd{}, "sync")
}

// As a CLI application it has a very short lived lifecycle, so it is ok
// to use global variables.

var stateDir = flag.String("state-dir", defaultStateDir(), "Path to the state directory holding the portfolio data")
var syncURL = flag.String("sync-url", os.Getenv("PAT_SYNC_URL"), "Base URL of the sync service (empty disables sync)")

func defaultStateDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir + "/patrimonio"
	}
	return ".patrimonio"
}

// OpenStorage opens the state directory backend.
func OpenStorage() (*patrimonio.DirStorage, error) {
	return patrimonio.NewDirStorage(*stateDir)
}

// OpenStore opens storage and loads the snapshot store. A corrupt history
// is reported on stderr and the store comes back empty but usable, like
// the stored data was reset.
func OpenStore() (*patrimonio.Store, *patrimonio.DirStorage, error) {
	storage, err := OpenStorage()
	if err != nil {
		return nil, nil, err
	}
	store := patrimonio.NewStore(storage)
	if err := store.Load(); err != nil {
		var corrupt *patrimonio.CorruptError
		if !errors.As(err, &corrupt) {
			return nil, nil, err
		}
		fmt.Fprintf(os.Stderr, "Warning: %v\n", corrupt)
	}
	if *syncURL != "" {
		client := patrimonio.NewSyncClient(*syncURL, storage)
		store.OnPersist(func() { pushQuietly(client) })
	}
	return store, storage, nil
}

// pushQuietly uploads after a save. A failed push never fails the save,
// it only warns.
func pushQuietly(client *patrimonio.SyncClient) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if _, err := client.Push(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
}

// SelectedCategory resolves the category filter: the flag wins, "all"
// clears, otherwise the persisted selection applies.
func SelectedCategory(storage *patrimonio.DirStorage, flagValue string) string {
	if flagValue == "all" {
		return ""
	}
	if flagValue != "" {
		return flagValue
	}
	data, ok, err := storage.Read(patrimonio.KeySelectedCategory)
	if err != nil || !ok {
		return ""
	}
	return string(data)
}

// printMarkdown renders markdown for the terminal.
func printMarkdown(markdown string) {
	out, err := glamour.Render(markdown, "auto")
	if err != nil {
		fmt.Print(markdown)
		return
	}
	fmt.Print(out)
}
