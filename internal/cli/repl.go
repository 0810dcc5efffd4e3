package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/waterkeeper/internal/common"
)

// printlnFn is a test seam for user-facing REPL output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. App satisfies it;
// tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	isAdmin() bool

	Register(ctx context.Context) error
	Login(ctx context.Context) error
	AdminLogin(ctx context.Context) error
	Recover(ctx context.Context) error
	Logout(ctx context.Context) error

	Drink(ctx context.Context, args []string) error
	Dashboard(ctx context.Context) error
	Rankings(ctx context.Context, args []string) error
	AllUsers(ctx context.Context) error
	Edit(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error

	Users(ctx context.Context) error
	Export(ctx context.Context, args []string) error
	Import(ctx context.Context, args []string) error
}

const (
	helpLoggedOut = "Available commands: register, login, admin, recover, all, exit"
	helpUser      = "Available commands: drink [liters], me, rankings [daily|weekly|lifetime], all, edit, delete, logout, exit"
	helpAdmin     = "Available commands: users, edit <id>, delete <id>, export <file>, import <file>, all, logout, exit"
)

// describe turns a command error into the line shown to the user.
func describe(err error) string {
	if errors.Is(err, common.ErrSessionInvalidated) {
		return "Your account no longer exists. You have been logged out."
	}
	return "Error: " + err.Error()
}

// runREPL reads commands line by line from reader and dispatches them to a.
// It returns on EOF or when the user types "exit" or "quit". Command errors
// are reported and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("water%s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := strings.ToLower(parts[0]), parts[1:]

		var cmdErr error
		switch cmd {
		case "help", "?":
			switch {
			case a.isAdmin():
				printlnFn(helpAdmin)
			case a.isLoggedIn():
				printlnFn(helpUser)
			default:
				printlnFn(helpLoggedOut)
			}

		case "register":
			cmdErr = a.Register(ctx)
		case "login":
			cmdErr = a.Login(ctx)
		case "admin":
			cmdErr = a.AdminLogin(ctx)
		case "recover":
			cmdErr = a.Recover(ctx)
		case "logout":
			cmdErr = a.Logout(ctx)

		case "drink", "d":
			cmdErr = a.Drink(ctx, args)
		case "me", "dashboard":
			cmdErr = a.Dashboard(ctx)
		case "rankings", "top":
			cmdErr = a.Rankings(ctx, args)
		case "all":
			cmdErr = a.AllUsers(ctx)
		case "edit":
			cmdErr = a.Edit(ctx, args)
		case "delete":
			cmdErr = a.Delete(ctx, args)

		case "users":
			cmdErr = a.Users(ctx)
		case "export":
			cmdErr = a.Export(ctx, args)
		case "import":
			cmdErr = a.Import(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn(describe(cmdErr))
		}
		if err != nil {
			return
		}
	}
}
