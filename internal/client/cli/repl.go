package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the minimal command surface the REPL needs. *App satisfies
// it; tests use a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Register(ctx context.Context) error
	GuestLogin(ctx context.Context) error
	Logout(ctx context.Context) error
	List(ctx context.Context) error
	Restaurants(ctx context.Context) error
	AddMenu(ctx context.Context) error
	DeleteMenu(ctx context.Context, args []string) error
	Decide(ctx context.Context) error
	History(ctx context.Context) error
	Reload(ctx context.Context) error
	Server(ctx context.Context, args []string) error
}

// runREPL reads a line, dispatches the first token as the command, and
// loops until EOF or exit/quit. Handler errors are already rendered as
// controller state by the services layer, so they are ignored here.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("wte %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: (l)ist, restaurants, add, del <id>, decide, history, reload, server [set|reset], logout, exit")
			} else {
				printlnFn("Available commands: login, register, guest, server [set|reset], exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "register":
			_ = a.Register(ctx)

		case "guest":
			_ = a.GuestLogin(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "restaurants":
			_ = a.Restaurants(ctx)

		case "add":
			_ = a.AddMenu(ctx)

		case "del", "delete":
			_ = a.DeleteMenu(ctx, args)

		case "decide":
			_ = a.Decide(ctx)

		case "history":
			_ = a.History(ctx)

		case "reload":
			_ = a.Reload(ctx)

		case "server":
			_ = a.Server(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
