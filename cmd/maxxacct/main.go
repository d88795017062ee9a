package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/zarlcorp/core/pkg/zapp"

	"github.com/maxxenergy/maxxacct/internal/api"
	"github.com/maxxenergy/maxxacct/internal/cli"
	"github.com/maxxenergy/maxxacct/internal/tui"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	app := zapp.New(zapp.WithName("maxxacct"))

	ctx, cancel := zapp.SignalContext(context.Background())
	defer cancel()

	if len(os.Args) > 1 {
		runCLI(ctx, os.Args[1])
		_ = app.Close()
		return
	}

	if err := runTUI(); err != nil {
		slog.Error("tui", "err", err)
		_ = app.Close()
		os.Exit(1)
	}

	if err := app.Close(); err != nil {
		slog.Error("shutdown", "err", err)
		os.Exit(1)
	}
}

func runCLI(ctx context.Context, cmd string) {
	args := os.Args[2:]

	switch cmd {
	case "version":
		fmt.Printf("maxxacct %s\n", version)
	case "signup":
		cli.CmdSignup(ctx, args)
	case "login":
		cli.CmdLogin(ctx, args)
	case "logout":
		cli.CmdLogout()
	case "whoami":
		cli.CmdWhoami()
	case "profile":
		cli.CmdProfile(ctx, args)
	case "update":
		cli.CmdUpdate(ctx, args)
	default:
		fmt.Fprintf(os.Stderr, "maxxacct: unknown command %q\n", cmd)
		os.Exit(1)
	}
}

func runTUI() error {
	store, err := cli.OpenStore()
	if err != nil {
		return err
	}
	client := api.NewClient(api.Config{BaseURL: api.BaseURLFromEnv()})

	m := tui.New(version, store, client)
	p := tea.NewProgram(m)
	_, err = p.Run()
	return err
}
