package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"
)

type fakeExec struct {
	loggedIn bool

	calls []string
	args  [][]string
}

func (f *fakeExec) record(name string, args ...string) {
	f.calls = append(f.calls, name)
	f.args = append(f.args, args)
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Login(ctx context.Context) error {
	f.record("login")
	f.loggedIn = true
	return nil
}
func (f *fakeExec) Register(ctx context.Context) error {
	f.record("register")
	f.loggedIn = true
	return nil
}
func (f *fakeExec) GuestLogin(ctx context.Context) error {
	f.record("guest")
	f.loggedIn = true
	return nil
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.record("logout")
	f.loggedIn = false
	return nil
}
func (f *fakeExec) List(ctx context.Context) error        { f.record("list"); return nil }
func (f *fakeExec) Restaurants(ctx context.Context) error { f.record("restaurants"); return nil }
func (f *fakeExec) AddMenu(ctx context.Context) error     { f.record("add"); return nil }
func (f *fakeExec) DeleteMenu(ctx context.Context, args []string) error {
	f.record("delete", args...)
	return nil
}
func (f *fakeExec) Decide(ctx context.Context) error  { f.record("decide"); return nil }
func (f *fakeExec) History(ctx context.Context) error { f.record("history"); return nil }
func (f *fakeExec) Reload(ctx context.Context) error  { f.record("reload"); return nil }
func (f *fakeExec) Server(ctx context.Context, args []string) error {
	f.record("server", args...)
	return nil
}

func silencePrintln(t *testing.T) {
	t.Helper()
	orig := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = orig })
}

func TestRunREPL_DispatchOrder(t *testing.T) {
	silencePrintln(t)

	input := strings.NewReader(strings.Join([]string{
		"help",
		"guest",
		"list",
		"l",
		"restaurants",
		"add",
		"decide",
		"history",
		"reload",
		"logout",
		"exit",
	}, "\n"))

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewScanner(input))

	want := []string{"guest", "list", "list", "restaurants", "add", "decide", "history", "reload", "logout"}
	if len(exec.calls) != len(want) {
		t.Fatalf("calls mismatch: got %v, want %v", exec.calls, want)
	}
	for i, c := range exec.calls {
		if c != want[i] {
			t.Fatalf("calls order mismatch: got %v, want %v", exec.calls, want)
		}
	}
}

func TestRunREPL_ArgsPassedThrough(t *testing.T) {
	silencePrintln(t)

	input := strings.NewReader("del 42\nserver set\nquit\n")
	exec := &fakeExec{loggedIn: true}
	runREPL(context.Background(), exec, func() string { return "s" }, bufio.NewScanner(input))

	if len(exec.calls) != 2 {
		t.Fatalf("unexpected calls: %v", exec.calls)
	}
	if exec.calls[0] != "delete" || len(exec.args[0]) != 1 || exec.args[0][0] != "42" {
		t.Fatalf("delete args mismatch: %v", exec.args[0])
	}
	if exec.calls[1] != "server" || len(exec.args[1]) != 1 || exec.args[1][0] != "set" {
		t.Fatalf("server args mismatch: %v", exec.args[1])
	}
}

func TestRunREPL_UnknownAndBlankLines(t *testing.T) {
	silencePrintln(t)

	input := strings.NewReader("\n   \nfoobar\nexit\n")
	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewScanner(input))

	if len(exec.calls) != 0 {
		t.Fatalf("unexpected calls: %v", exec.calls)
	}
}

func TestRunREPL_EOFTerminates(t *testing.T) {
	silencePrintln(t)

	input := strings.NewReader("list\n")
	exec := &fakeExec{loggedIn: true}
	runREPL(context.Background(), exec, func() string { return "s" }, bufio.NewScanner(input))

	if len(exec.calls) != 1 || exec.calls[0] != "list" {
		t.Fatalf("unexpected calls: %v", exec.calls)
	}
}
