package cli

import (
	"context"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

func (a *App) Login(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}

	if err := a.session.Login(ctx, username, password); err != nil {
		printlnFn(a.session.State().Err)
		return err
	}

	printlnFn("Logged in as " + a.session.State().Username)
	a.decision.Load(ctx)
	return nil
}

func (a *App) Register(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}

	if err := a.session.Register(ctx, username, password); err != nil {
		printlnFn(a.session.State().Err)
		return err
	}

	printlnFn("Registered and logged in as " + a.session.State().Username)
	a.decision.Load(ctx)
	return nil
}

func (a *App) GuestLogin(ctx context.Context) error {
	if err := a.session.GuestLogin(ctx); err != nil {
		printlnFn(a.session.State().Err)
		return err
	}
	printlnFn("Continuing as guest")
	a.decision.Load(ctx)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.session.Logout(ctx); err != nil {
		printlnFn(a.session.State().Err)
		return err
	}
	printlnFn("Logged out")
	return nil
}
