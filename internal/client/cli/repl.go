package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/streamdesk/internal/common"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

const sessionExpiredNotice = "session expired, please log in"

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	// sessionExpired reports, once, that the session was dropped because
	// the refresh token was rejected.
	sessionExpired() bool

	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error

	Movies(ctx context.Context, page int) error
	Search(ctx context.Context, term string) error
	Show(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Genres(ctx context.Context) error
	Casts(ctx context.Context) error
	Assets(ctx context.Context, movieID string) error
	Upload(ctx context.Context) error
}

const (
	helpLoggedOut = "Available commands: register, login, exit"
	helpLoggedIn  = "Available commands: movies [page], search <q>, show <id>, delete <id>, " +
		"genres, casts, assets <movieID>, upload, whoami, logout, exit"
)

// runREPL starts a simple read-eval-print loop for the streamdesk CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Unknown commands are reported back to the
// user. The loop exits on EOF or when the user types "exit" or "quit".
//
// Prompt & Commands
//
//	Not logged in:
//	  - help           : show available commands
//	  - register       : create an account
//	  - login          : authenticate
//	  - exit | quit    : leave the program
//
//	Logged in, additionally:
//	  - movies [page]  : list the catalog
//	  - search <q>     : search movies by title
//	  - show <id>      : show one movie
//	  - delete <id>    : delete a movie
//	  - genres, casts  : list genres or cast members
//	  - assets <id>    : list video assets of a movie
//	  - upload         : upload a movie file (interactive)
//	  - whoami         : show the logged-in account
//	  - logout         : log out
//
// Command errors are printed and the loop continues. When a command ends
// with the session cleared by a failed token refresh, the user is told to
// log in again and the prompt drops back to the logged-out command set.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("sd %s> ", statusFn()))

		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if cmd == "exit" || cmd == "quit" {
			printlnFn("Bye!")
			return
		}

		if err := dispatch(ctx, a, cmd, args); err != nil {
			reportError(err)
		}

		if a.sessionExpired() {
			printlnFn(sessionExpiredNotice)
		}
	}
}

func dispatch(ctx context.Context, a execIface, cmd string, args []string) error {
	switch cmd {
	case "help":
		if a.isLoggedIn() {
			printlnFn(helpLoggedIn)
		} else {
			printlnFn(helpLoggedOut)
		}
		return nil
	case "register":
		return a.Register(ctx)
	case "login":
		return a.Login(ctx)
	}

	if !isCatalogCommand(cmd) && cmd != "logout" && cmd != "whoami" {
		printlnFn("Unknown command:", cmd)
		return nil
	}
	if !a.isLoggedIn() {
		return common.ErrNotAuthenticated
	}

	switch cmd {
	case "logout":
		return a.Logout(ctx)
	case "whoami":
		return a.WhoAmI(ctx)
	case "movies", "l", "list":
		page := 1
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 1 {
				printlnFn("Usage: movies [page]")
				return nil
			}
			page = n
		}
		return a.Movies(ctx, page)
	case "search":
		if len(args) == 0 {
			printlnFn("Usage: search <q>")
			return nil
		}
		return a.Search(ctx, strings.Join(args, " "))
	case "show":
		if len(args) == 0 {
			printlnFn("Usage: show <id>")
			return nil
		}
		return a.Show(ctx, args[0])
	case "delete":
		if len(args) == 0 {
			printlnFn("Usage: delete <id>")
			return nil
		}
		return a.Delete(ctx, args[0])
	case "genres":
		return a.Genres(ctx)
	case "casts":
		return a.Casts(ctx)
	case "assets":
		if len(args) == 0 {
			printlnFn("Usage: assets <movieID>")
			return nil
		}
		return a.Assets(ctx, args[0])
	case "upload":
		return a.Upload(ctx)
	}
	return nil
}

func isCatalogCommand(cmd string) bool {
	switch cmd {
	case "movies", "l", "list", "search", "show", "delete", "genres", "casts", "assets", "upload":
		return true
	}
	return false
}

func reportError(err error) {
	switch {
	case errors.Is(err, common.ErrNotAuthenticated):
		printlnFn("Please log in first.")
	case errors.Is(err, common.ErrValidation):
		printlnFn("Invalid input:", err)
	default:
		printlnFn("Error:", err)
	}
}
