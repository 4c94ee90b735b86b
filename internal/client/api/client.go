package api

import "context"

// Client is the remote gateway: one method per operation of the
// what-to-eat service. Implementations map every failure onto the closed
// error taxonomy of this package and never retry.
type Client interface {
	// Health reports whether the currently configured server is alive.
	Health(ctx context.Context) error

	Register(ctx context.Context, username, password string) (*User, error)
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	GuestLogin(ctx context.Context) (*LoginResult, error)

	ListMenus(ctx context.Context) ([]Menu, error)
	CreateMenu(ctx context.Context, restaurantName, dishName string) (*CreateMenuResult, error)
	DeleteMenu(ctx context.Context, id int64) error

	ListRestaurants(ctx context.Context) ([]Restaurant, error)

	// Decide asks the server to pick among the given menus; nil or empty
	// means the server picks from all of them.
	Decide(ctx context.Context, menuIDs []int64) (*Decision, error)

	// History never fails: an unavailable or malformed history degrades to
	// an empty page.
	History(ctx context.Context) (*HistoryPage, error)
}
