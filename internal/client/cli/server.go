package cli

import (
	"context"
	"strings"
)

// Server shows or changes the server address. With no arguments it prints
// the current address; "set" prompts for a new one and probes it before
// saving; "reset" restores the built-in default and probes it the same way.
func (a *App) Server(ctx context.Context, args []string) error {
	if err := a.server.Load(ctx); err != nil {
		printlnFn(a.server.State().Err)
		return err
	}

	if len(args) == 0 {
		printlnFn("Server address:", a.server.State().Candidate)
		return nil
	}

	switch strings.ToLower(args[0]) {
	case "set":
		addr, err := getSimpleText(a.reader, "Enter server address (http://host:port)", a.out)
		if err != nil {
			return err
		}
		a.server.SetCandidate(addr)

	case "reset":
		a.server.ResetToDefault()

	default:
		printlnFn("Usage: server [set|reset]")
		return nil
	}

	if err := a.server.Save(ctx); err != nil {
		printlnFn(a.server.State().Err)
		return err
	}
	printlnFn("Server address saved:", a.server.State().Candidate)
	return nil
}
