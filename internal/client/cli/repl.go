package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. The real App
// satisfies it; tests provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Summarize(ctx context.Context) error
	Save(ctx context.Context) error
	List(ctx context.Context, query string, mine bool) error
	Star(ctx context.Context, id string) error
	Share(ctx context.Context, id string) error
	Show(ctx context.Context, slug string) error
	Delete(ctx context.Context, id string) error
	Export(ctx context.Context, id, format string) error
}

const (
	helpLoggedOut = "Available commands: register, login, list [query], show <slug>, star <id>, share <id>, exit"
	helpLoggedIn  = "Available commands: summarize, save, (l)ist [query], mine [query], star <id>, share <id>, " +
		"show <slug>, delete <id>, export <id> [md|txt|html], logout, exit"
)

// runREPL reads commands line by line from reader and dispatches them to a.
// The first word is the command, the rest are its arguments. The loop exits
// on EOF, on "exit" or "quit", or when ctx is done. Command errors are
// reported and the loop goes on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for ctx.Err() == nil {
		printlnFn(fmt.Sprintf("notesum %s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
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
			report(err)
		}
	}
}

func arg(args []string, usage string) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("usage: %s", usage)
	}
	return args[0], nil
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
	case "logout":
		return a.Logout(ctx)
	case "summarize":
		return a.Summarize(ctx)
	case "save":
		return a.Save(ctx)
	case "l", "list":
		return a.List(ctx, strings.Join(args, " "), false)
	case "mine":
		return a.List(ctx, strings.Join(args, " "), true)

	case "star":
		id, err := arg(args, "star <id>")
		if err != nil {
			return err
		}
		return a.Star(ctx, id)

	case "share":
		id, err := arg(args, "share <id>")
		if err != nil {
			return err
		}
		return a.Share(ctx, id)

	case "show":
		slug, err := arg(args, "show <slug>")
		if err != nil {
			return err
		}
		return a.Show(ctx, slug)

	case "delete":
		id, err := arg(args, "delete <id>")
		if err != nil {
			return err
		}
		return a.Delete(ctx, id)

	case "export":
		id, err := arg(args, "export <id> [md|txt|html]")
		if err != nil {
			return err
		}
		format := ""
		if len(args) > 1 {
			format = args[1]
		}
		return a.Export(ctx, id, format)

	default:
		printlnFn("Unknown command:", cmd)
		return nil
	}
}

func report(err error) {
	log.Printf("Error: %s", err.Error())
}
