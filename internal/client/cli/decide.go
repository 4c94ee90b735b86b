package cli

import (
	"context"
	"fmt"
)

// Decide runs one decision, streaming the reveal frames to the terminal
// until the blocking call returns with the server's pick.
func (a *App) Decide(ctx context.Context) error {
	frames, cancel := a.decision.Subscribe()
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- a.decision.Decide(ctx) }()

	last := ""
	for {
		select {
		case st := <-frames:
			if st.Deciding && st.Display != "" && st.Display != last {
				last = st.Display
				printlnFn("  " + st.Display)
			}
		case err := <-errCh:
			if err != nil {
				printlnFn(a.decision.State().Err)
				return err
			}
			st := a.decision.State()
			if st.Result != nil {
				printlnFn("Tonight you eat: " + st.Result.Label)
				if st.Result.Message != "" {
					printlnFn(st.Result.Message)
				}
			}
			return nil
		}
	}
}

// History prints the cached decision history, newest first.
func (a *App) History(ctx context.Context) error {
	st := a.decision.State()
	if len(st.History) == 0 {
		printlnFn("No decisions yet")
		return nil
	}
	for _, rec := range st.History {
		label := "unknown"
		if rec.Menu != nil {
			label = rec.Menu.DisplayLabel()
		}
		printlnFn(fmt.Sprintf("%s  %s", rec.DecidedAt.Local().Format("2006-01-02 15:04"), label))
	}
	printlnFn(fmt.Sprintf("Total: %d", st.HistoryTotal))
	return nil
}
