package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/msoler/patrimonio"
)

func syncClient() (*patrimonio.SyncClient, subcommands.ExitStatus) {
	if *syncURL == "" {
		fmt.Fprintln(os.Stderr, "no sync service configured, set -sync-url or PAT_SYNC_URL")
		return nil, subcommands.ExitUsageError
	}
	storage, err := OpenStorage()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening storage: %v\n", err)
		return nil, subcommands.ExitFailure
	}
	return patrimonio.NewSyncClient(*syncURL, storage), subcommands.ExitSuccess
}

type pullCmd struct{}

func (*pullCmd) Name() string     { return "pull" }
func (*pullCmd) Synopsis() string { return "download state from the sync service" }
func (*pullCmd) Usage() string {
	return `pat pull

  Downloads snapshots, targets and settings from the sync service,
  overwriting the local copies of every key the service has.
`
}

func (*pullCmd) SetFlags(*flag.FlagSet) {}

func (c *pullCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	client, status := syncClient()
	if client == nil {
		return status
	}
	payload, err := client.Pull(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if payload.LastModified != "" {
		fmt.Printf("Pulled state, last modified %s\n", payload.LastModified)
	} else {
		fmt.Println("Pulled state, nothing stored remotely yet")
	}
	return subcommands.ExitSuccess
}

type pushCmd struct{}

func (*pushCmd) Name() string     { return "push" }
func (*pushCmd) Synopsis() string { return "upload state to the sync service" }
func (*pushCmd) Usage() string {
	return `pat push

  Uploads the local snapshots, targets and settings, overwriting the
  remote copies. Last write wins.
`
}

func (*pushCmd) SetFlags(*flag.FlagSet) {}

func (c *pushCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	client, status := syncClient()
	if client == nil {
		return status
	}
	stamp, err := client.Push(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Pushed state at %s\n", stamp)
	return subcommands.ExitSuccess
}
