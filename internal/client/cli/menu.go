package cli

import (
	"context"
	"fmt"
	"strconv"
)

// List prints the cached candidate menus.
func (a *App) List(ctx context.Context) error {
	st := a.decision.State()
	if len(st.Menus) == 0 {
		printlnFn("No menus yet, use 'add' to create one")
		return nil
	}
	for _, m := range st.Menus {
		printlnFn(fmt.Sprintf("%d: %s", m.ID, m.DisplayLabel()))
	}
	return nil
}

// Restaurants prints the cached restaurant list.
func (a *App) Restaurants(ctx context.Context) error {
	st := a.decision.State()
	if len(st.Restaurants) == 0 {
		printlnFn("No restaurants yet")
		return nil
	}
	for _, r := range st.Restaurants {
		printlnFn(fmt.Sprintf("%d: %s", r.ID, r.Name))
	}
	return nil
}

// AddMenu prompts for a restaurant name and dish name and creates the menu.
func (a *App) AddMenu(ctx context.Context) error {
	restaurant, err := getSimpleText(a.reader, "Enter restaurant name", a.out)
	if err != nil {
		return err
	}
	dish, err := getSimpleText(a.reader, "Enter dish name", a.out)
	if err != nil {
		return err
	}

	if err := a.decision.AddMenu(ctx, restaurant, dish); err != nil {
		printlnFn(a.decision.State().Err)
		return err
	}
	printlnFn("Added")
	return nil
}

// DeleteMenu deletes the menu whose id is given as the command argument.
func (a *App) DeleteMenu(ctx context.Context, args []string) error {
	if len(args) != 1 {
		printlnFn("Usage: del <id>")
		return nil
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		printlnFn("Invalid id:", args[0])
		return nil
	}

	if err := a.decision.DeleteMenu(ctx, id); err != nil {
		printlnFn(a.decision.State().Err)
		return err
	}
	printlnFn("Deleted")
	return nil
}

// Reload refreshes the menu, restaurant and history caches.
func (a *App) Reload(ctx context.Context) error {
	a.decision.Load(ctx)
	if msg := a.decision.State().Err; msg != "" {
		printlnFn(msg)
	} else {
		printlnFn("Reloaded")
	}
	return nil
}
