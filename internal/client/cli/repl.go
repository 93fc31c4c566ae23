package cli

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"

	"github.com/journeyconnect/journeyconnect/internal/server/models"
)

// command is one REPL verb. allowed gates it by the signed-in user; a nil
// allowed means any signed-in user. anonymous commands work signed out.
type command struct {
	name      string
	usage     string
	help      string
	anonymous bool
	allowed   func(u models.User) bool
	run       func(ctx context.Context, args []string) error
}

// available reports whether c is offered to the current session.
func (c command) available(u models.User, signedIn bool) bool {
	if c.anonymous {
		return true
	}
	if !signedIn {
		return false
	}
	return c.allowed == nil || c.allowed(u)
}

// runREPL reads commands from a.in until EOF or exit. Handler errors are
// reported and the loop continues.
func runREPL(ctx context.Context, a *App) {
	cmds := a.commands()
	index := make(map[string]command, len(cmds))
	for _, c := range cmds {
		index[c.name] = c
	}

	for {
		a.printf("jc %s> ", a.status())
		line, err := readLine(a.in)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				a.log.Warn(ctx, "read input", "error", err)
			}
			a.println()
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		name, args := parts[0], parts[1:]
		switch name {
		case "exit", "quit":
			a.println("Bye!")
			return
		case "help":
			a.printHelp(cmds)
			continue
		}

		c, ok := index[name]
		if !ok {
			a.println("Unknown command:", name)
			continue
		}
		u, signedIn := a.user()
		if !c.available(u, signedIn) {
			if !signedIn {
				a.println("Please 'login' first.")
			} else {
				a.printf("'%s' is not available to the %s role.\n", name, u.Role)
			}
			continue
		}
		if err := c.run(ctx, args); err != nil {
			a.printError(err)
		}
	}
}

func (a *App) printHelp(cmds []command) {
	u, signedIn := a.user()
	var lines []string
	for _, c := range cmds {
		if !c.available(u, signedIn) {
			continue
		}
		usage := c.name
		if c.usage != "" {
			usage += " " + c.usage
		}
		lines = append(lines, "  "+padRight(usage, 28)+c.help)
	}
	sort.Strings(lines)
	a.println("Available commands:")
	for _, l := range lines {
		a.println(l)
	}
	a.println("  " + padRight("exit", 28) + "leave the program")
}

func padRight(s string, n int) string {
	if len(s) >= n {
		return s + " "
	}
	return s + strings.Repeat(" ", n-len(s))
}
