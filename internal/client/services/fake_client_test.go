package services

import (
	"context"
	"sync"
	"time"

	"github.com/what-to-eat/client/internal/client/api"
)

// fakeClient implements api.Client for controller unit tests. Return values
// and errors are configured per method; Calls counts invocations so tests
// can assert that guards short-circuit before any network traffic.
type fakeClient struct {
	mu    sync.Mutex
	Calls map[string]int

	HealthErr error

	RegisterRet *api.User
	RegisterErr error

	LoginRet *api.LoginResult
	LoginErr error

	GuestRet *api.LoginResult
	GuestErr error

	MenusRet []api.Menu
	MenusErr error

	RestaurantsRet []api.Restaurant
	RestaurantsErr error

	CreateRet *api.CreateMenuResult
	CreateErr error
	// CreateAppends makes CreateMenu append the created menu to MenusRet,
	// emulating the server-side state for reload tests.
	CreateAppends bool

	DeleteErr error

	DecideRet *api.Decision
	DecideErr error
	// DecideBlock, when non-nil, makes Decide wait until the channel is
	// closed, so tests can hold a run open.
	DecideBlock chan struct{}
	DecideDelay time.Duration

	HistoryRet *api.HistoryPage

	LastLoginUser string
	LastLoginPass string
}

var _ api.Client = (*fakeClient)(nil)

func (f *fakeClient) count(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Calls == nil {
		f.Calls = make(map[string]int)
	}
	f.Calls[name]++
}

func (f *fakeClient) calls(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls[name]
}

func (f *fakeClient) Health(ctx context.Context) error {
	f.count("health")
	return f.HealthErr
}

func (f *fakeClient) Register(ctx context.Context, username, password string) (*api.User, error) {
	f.count("register")
	return f.RegisterRet, f.RegisterErr
}

func (f *fakeClient) Login(ctx context.Context, username, password string) (*api.LoginResult, error) {
	f.count("login")
	f.mu.Lock()
	f.LastLoginUser, f.LastLoginPass = username, password
	f.mu.Unlock()
	return f.LoginRet, f.LoginErr
}

func (f *fakeClient) GuestLogin(ctx context.Context) (*api.LoginResult, error) {
	f.count("guest")
	return f.GuestRet, f.GuestErr
}

func (f *fakeClient) ListMenus(ctx context.Context) ([]api.Menu, error) {
	f.count("listMenus")
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]api.Menu(nil), f.MenusRet...), f.MenusErr
}

func (f *fakeClient) CreateMenu(ctx context.Context, restaurantName, dishName string) (*api.CreateMenuResult, error) {
	f.count("createMenu")
	if f.CreateErr != nil {
		return nil, f.CreateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	res := f.CreateRet
	if res == nil {
		res = &api.CreateMenuResult{
			Menu: api.Menu{
				ID:       int64(len(f.MenusRet) + 1),
				DishName: dishName,
				Restaurant: &api.Restaurant{
					Name: restaurantName,
				},
			},
			IsNewRestaurant: true,
		}
	}
	if f.CreateAppends {
		f.MenusRet = append(f.MenusRet, res.Menu)
	}
	return res, nil
}

func (f *fakeClient) DeleteMenu(ctx context.Context, id int64) error {
	f.count("deleteMenu")
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.MenusRet[:0]
	for _, m := range f.MenusRet {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	f.MenusRet = kept
	return nil
}

func (f *fakeClient) ListRestaurants(ctx context.Context) ([]api.Restaurant, error) {
	f.count("listRestaurants")
	return append([]api.Restaurant(nil), f.RestaurantsRet...), f.RestaurantsErr
}

func (f *fakeClient) Decide(ctx context.Context, menuIDs []int64) (*api.Decision, error) {
	f.count("decide")
	if f.DecideBlock != nil {
		<-f.DecideBlock
	}
	if f.DecideDelay > 0 {
		time.Sleep(f.DecideDelay)
	}
	return f.DecideRet, f.DecideErr
}

func (f *fakeClient) History(ctx context.Context) (*api.HistoryPage, error) {
	f.count("history")
	if f.HistoryRet != nil {
		return f.HistoryRet, nil
	}
	return &api.HistoryPage{Records: []api.DecisionRecord{}}, nil
}
