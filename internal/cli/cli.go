// Package cli implements maxxacct's command-line subcommands.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zarlcorp/core/pkg/zfilesystem"

	"github.com/maxxenergy/maxxacct/internal/api"
	"github.com/maxxenergy/maxxacct/internal/profile"
	"github.com/maxxenergy/maxxacct/internal/session"
	"github.com/maxxenergy/maxxacct/internal/validate"
)

// DataDir returns the default data directory for maxxacct.
func DataDir() string {
	if d := os.Getenv("XDG_DATA_HOME"); d != "" {
		return d + "/maxxacct"
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".maxxacct"
	}
	return home + "/.local/share/maxxacct"
}

// OpenStore opens the identity store in the default data directory.
func OpenStore() (*session.Store, error) {
	dir := DataDir()
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return session.NewStore(zfilesystem.NewOSFileSystem(dir)), nil
}

func newClient() *api.Client {
	return api.NewClient(api.Config{BaseURL: api.BaseURLFromEnv()})
}

// CmdLogin authenticates by first name and email.
// Usage: maxxacct login <first-name> <email> [--remember]
func CmdLogin(ctx context.Context, args []string) {
	pos := positional(args)
	if len(pos) < 2 {
		fmt.Fprintln(os.Stderr, "usage: maxxacct login <first-name> <email> [--remember]")
		os.Exit(1)
	}

	store, err := OpenStore()
	if err != nil {
		fail(err)
	}

	id, err := session.Login(ctx, store, newClient(), pos[0], pos[1], hasFlag(args, "--remember"))
	if err != nil {
		var verr *session.ValidationError
		switch {
		case errors.As(err, &verr):
			fmt.Fprintf(os.Stderr, "maxxacct: %s\n", verr.Error())
		case errors.Is(err, api.ErrNotFound):
			fmt.Fprintln(os.Stderr, "maxxacct: no user found with that first name and email")
		default:
			fmt.Fprintf(os.Stderr, "maxxacct: login: %v\n", err)
		}
		os.Exit(1)
	}

	fmt.Printf("logged in as %s\n", id)
}

// CmdLogout clears the identity from both tiers.
func CmdLogout() {
	store, err := OpenStore()
	if err != nil {
		fail(err)
	}

	if err := store.Clear(); err != nil {
		fail(err)
	}
	fmt.Println("logged out")
}

// CmdWhoami prints the stored account id, if any.
func CmdWhoami() {
	store, err := OpenStore()
	if err != nil {
		fail(err)
	}

	id, ok := store.Get()
	if !ok {
		fmt.Fprintln(os.Stderr, "maxxacct: not logged in")
		os.Exit(1)
	}
	fmt.Println(id)
}

// CmdProfile fetches and prints the profile record.
// Usage: maxxacct profile [--json]
func CmdProfile(ctx context.Context, args []string) {
	rec := resolveOrExit(ctx)

	if hasFlag(args, "--json") {
		printJSON(map[string]string{
			"id":        rec.ID,
			"firstName": rec.FirstName,
			"lastName":  rec.LastName,
			"email":     rec.Email,
		})
		return
	}

	fmt.Printf("  id:          %s\n", rec.ID)
	fmt.Printf("  first name:  %s\n", rec.FirstName)
	fmt.Printf("  last name:   %s\n", rec.LastName)
	fmt.Printf("  email:       %s\n", rec.Email)
}

// CmdUpdate edits the profile record.
// Usage: maxxacct update [--first=..] [--last=..] [--email=..]
func CmdUpdate(ctx context.Context, args []string) {
	rec := resolveOrExit(ctx)

	sess := profile.NewSession(rec)
	sess.StartEdit()

	touched := false
	if v, ok := flagValue(args, "--first"); ok {
		sess.SetField(validate.FieldFirstName, v)
		touched = true
	}
	if v, ok := flagValue(args, "--last"); ok {
		sess.SetField(validate.FieldLastName, v)
		touched = true
	}
	if v, ok := flagValue(args, "--email"); ok {
		sess.SetField(validate.FieldEmail, v)
		touched = true
	}

	if !touched {
		fmt.Fprintln(os.Stderr, "usage: maxxacct update [--first=..] [--last=..] [--email=..]")
		os.Exit(1)
	}

	payload, seq, ok := sess.BeginSave()
	if !ok {
		for _, msg := range sess.Errors() {
			fmt.Fprintf(os.Stderr, "maxxacct: %s\n", msg)
		}
		os.Exit(1)
	}

	client := newClient()
	if err := client.Update(ctx, payload.ID, payload.FirstName, payload.LastName, payload.Email); err != nil {
		sess.ApplySaveErr(seq)
		fmt.Fprintf(os.Stderr, "maxxacct: update: %v\n", err)
		os.Exit(1)
	}
	sess.ApplySaveOK(seq, payload)

	updated := sess.Committed()
	fmt.Printf("updated %s %s <%s>\n", updated.FirstName, updated.LastName, updated.Email)
}

// CmdSignup creates an account. The user logs in separately afterwards.
// Usage: maxxacct signup <first-name> <last-name> <email>
func CmdSignup(ctx context.Context, args []string) {
	pos := positional(args)
	if len(pos) < 3 {
		fmt.Fprintln(os.Stderr, "usage: maxxacct signup <first-name> <last-name> <email>")
		os.Exit(1)
	}

	err := session.Signup(ctx, newClient(), pos[0], pos[1], pos[2], pos[2])
	if err != nil {
		var verr *session.ValidationError
		switch {
		case errors.As(err, &verr):
			fmt.Fprintf(os.Stderr, "maxxacct: %s\n", verr.Error())
		case errors.Is(err, api.ErrConflict):
			fmt.Fprintln(os.Stderr, "maxxacct: that email is already registered")
		default:
			fmt.Fprintf(os.Stderr, "maxxacct: signup: %v\n", err)
		}
		os.Exit(1)
	}

	fmt.Println("account created; run `maxxacct login` to sign in")
}

func resolveOrExit(ctx context.Context) profile.Record {
	store, err := OpenStore()
	if err != nil {
		fail(err)
	}

	rec, err := session.NewResolver(store, newClient()).Resolve(ctx)
	if err != nil {
		if errors.Is(err, session.ErrNoIdentity) {
			fmt.Fprintln(os.Stderr, "maxxacct: not logged in")
			os.Exit(1)
		}
		fail(err)
	}
	return rec
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "maxxacct: %v\n", err)
	os.Exit(1)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fail(fmt.Errorf("encode json: %w", err))
	}
}

func hasFlag(args []string, flag string) bool {
	for _, a := range args {
		if strings.EqualFold(a, flag) {
			return true
		}
	}
	return false
}

// flagValue returns the value of a --flag=value argument.
func flagValue(args []string, flag string) (string, bool) {
	for _, a := range args {
		if v, ok := strings.CutPrefix(a, flag+"="); ok {
			return v, true
		}
	}
	return "", false
}

// positional returns args that are not flags.
func positional(args []string) []string {
	var out []string
	for _, a := range args {
		if !strings.HasPrefix(a, "--") {
			out = append(out, a)
		}
	}
	return out
}
