package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isRegistered() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Promote(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	List(ctx context.Context, args []string) error
	Add(ctx context.Context, args []string) error
	SetDone(ctx context.Context, args []string, done bool) error
	Edit(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Cleanup(ctx context.Context) error
}

const (
	helpGuest = "Available commands: (l)ist [period], add [period] [text], done <n>, undone <n>, " +
		"edit <n> [text], delete <n>, cleanup, register, login, promote, whoami, exit"
	helpUser = "Available commands: (l)ist [period], add [period] [text], done <n>, undone <n>, " +
		"edit <n> [text], delete <n>, cleanup, whoami, logout, exit"
)

// runREPL reads a line from scanner, takes the first token as the command
// and dispatches to a. The loop exits on scanner EOF or on "exit" / "quit".
//
// Goal references <n> are list positions from the last "list", id prefixes
// or full ids. Errors returned by handlers are ignored here; handlers print
// their own.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("gk %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isRegistered() {
				printlnFn(helpUser)
			} else {
				printlnFn(helpGuest)
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "promote":
			_ = a.Promote(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "l", "list":
			_ = a.List(ctx, args)

		case "add":
			_ = a.Add(ctx, args)

		case "done":
			_ = a.SetDone(ctx, args, true)

		case "undone":
			_ = a.SetDone(ctx, args, false)

		case "edit":
			_ = a.Edit(ctx, args)

		case "delete", "rm":
			_ = a.Delete(ctx, args)

		case "cleanup":
			_ = a.Cleanup(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
