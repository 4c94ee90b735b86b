package services

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/what-to-eat/client/internal/client/api"
	"github.com/what-to-eat/client/internal/logging"
)

// Reveal loop shape: 20 frames, the delay after frame i is 50+10*i ms, so
// the spin visibly decelerates. Purely cosmetic; the frames carry no
// information about the eventual answer.
const (
	revealSteps     = 20
	revealBaseDelay = 50 * time.Millisecond
	revealStepDelay = 10 * time.Millisecond
)

// idleIcons are the placeholder glyphs shown when no decision is displayed.
var idleIcons = []string{"🍜", "🍕", "🍔", "🍣", "🍱", "🍛", "🍝", "🍲", "🥘", "🥡", "🍙", "🍚"}

// DecisionOutcome is the final result of one decide run.
type DecisionOutcome struct {
	Menu    api.Menu
	Label   string
	Message string
}

// DecisionState is the observable state of the decision controller: the
// three caches feeding the decide flow plus the ephemeral run itself.
type DecisionState struct {
	Loading      bool
	Menus        []api.Menu
	Restaurants  []api.Restaurant
	History      []api.DecisionRecord
	HistoryTotal int64

	Deciding bool
	Display  string
	Result   *DecisionOutcome

	Err string
}

// DecisionService orchestrates a decide request alongside the client-driven
// reveal sequence and owns the menu/restaurant/history caches.
type DecisionService struct {
	client api.Client
	log    logging.Logger

	mu    sync.Mutex
	state DecisionState
	rng   *rand.Rand
	watch *notifier[DecisionState]

	// test seams: the production values come from the constants above
	steps     int
	baseDelay time.Duration
	stepDelay time.Duration
}

func NewDecisionService(client api.Client, log logging.Logger) *DecisionService {
	return &DecisionService{
		client:    client,
		log:       log.With("component", "decision"),
		state:     DecisionState{Display: idleIcons[0]},
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		watch:     newNotifier[DecisionState](),
		steps:     revealSteps,
		baseDelay: revealBaseDelay,
		stepDelay: revealStepDelay,
	}
}

// State returns a snapshot of the current controller state.
func (d *DecisionService) State() DecisionState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *DecisionService) Subscribe() (<-chan DecisionState, func()) {
	return d.watch.Subscribe()
}

func (d *DecisionService) setState(mutate func(*DecisionState)) {
	d.mu.Lock()
	mutate(&d.state)
	snapshot := d.state
	d.mu.Unlock()
	d.watch.publish(snapshot)
}

// Load refreshes the three caches with independent gateway calls. A failing
// facet degrades to an empty cache without touching the other two; the
// loading flag clears only once all three calls have finished.
func (d *DecisionService) Load(ctx context.Context) {
	d.setState(func(st *DecisionState) {
		st.Loading = true
		st.Err = ""
	})

	var (
		wg          sync.WaitGroup
		menus       []api.Menu
		restaurants []api.Restaurant
		history     *api.HistoryPage
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		res, err := d.client.ListMenus(ctx)
		if err != nil {
			d.log.Warn(ctx, "menu load failed", "err", err)
			res = []api.Menu{}
		}
		menus = res
	}()
	go func() {
		defer wg.Done()
		res, err := d.client.ListRestaurants(ctx)
		if err != nil {
			d.log.Warn(ctx, "restaurant load failed", "err", err)
			res = []api.Restaurant{}
		}
		restaurants = res
	}()
	go func() {
		defer wg.Done()
		// History never fails by contract; the gateway degrades it.
		history, _ = d.client.History(ctx)
	}()
	wg.Wait()

	d.setState(func(st *DecisionState) {
		st.Loading = false
		st.Menus = menus
		st.Restaurants = restaurants
		if history != nil {
			st.History = history.Records
			st.HistoryTotal = history.Total
		}
	})
}

// Decide runs one decision: start the reveal loop, issue the decide call,
// stop the loop, and show the server's choice. The network result always
// wins over reveal frames. Guards reject an empty menu cache and an
// already-running decision locally, before any network traffic.
func (d *DecisionService) Decide(ctx context.Context) error {
	d.mu.Lock()
	if d.state.Deciding {
		d.mu.Unlock()
		return d.fail(validationErr("A decision is already running"))
	}
	if len(d.state.Menus) == 0 {
		d.mu.Unlock()
		return d.fail(validationErr("Please add a menu first"))
	}
	labels := make([]string, len(d.state.Menus))
	for i, m := range d.state.Menus {
		labels[i] = m.DisplayLabel()
	}
	d.state.Deciding = true
	d.state.Result = nil
	d.state.Err = ""
	snapshot := d.state
	d.mu.Unlock()
	d.watch.publish(snapshot)

	stop := make(chan struct{})
	done := make(chan struct{})
	go d.runReveal(labels, stop, done)

	decision, err := d.client.Decide(ctx, nil)

	close(stop)
	<-done

	if err != nil {
		d.setState(func(st *DecisionState) { st.Deciding = false })
		return d.fail(err)
	}

	label := decision.Menu.DisplayLabel()
	d.setState(func(st *DecisionState) {
		st.Deciding = false
		st.Display = label
		st.Result = &DecisionOutcome{Menu: decision.Menu, Label: label, Message: decision.Message}
	})
	d.log.Info(ctx, "decision made", "menu_id", decision.Menu.ID)

	d.refreshHistory(ctx)
	return nil
}

// runReveal cycles random candidate labels until stopped. A frame is only
// shown while no result is present, so a result that has already arrived
// can never be overwritten by a late frame.
func (d *DecisionService) runReveal(labels []string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for i := 0; i < d.steps; i++ {
		select {
		case <-stop:
			return
		default:
		}

		d.mu.Lock()
		if d.state.Result == nil {
			d.state.Display = labels[d.rng.Intn(len(labels))]
		}
		snapshot := d.state
		d.mu.Unlock()
		d.watch.publish(snapshot)

		delay := d.baseDelay + time.Duration(i)*d.stepDelay
		select {
		case <-stop:
			return
		case <-time.After(delay):
		}
	}
}

// Dismiss clears a shown result and resets the display to a random idle
// placeholder. Presentational state only, nothing is persisted.
func (d *DecisionService) Dismiss() {
	d.mu.Lock()
	d.state.Result = nil
	d.state.Display = idleIcons[d.rng.Intn(len(idleIcons))]
	snapshot := d.state
	d.mu.Unlock()
	d.watch.publish(snapshot)
}

// AddMenu creates a menu entry and reloads all caches on success. There is
// no incremental patching: the server owns ordering and joins.
func (d *DecisionService) AddMenu(ctx context.Context, restaurantName, dishName string) error {
	if restaurantName == "" || dishName == "" {
		return d.fail(validationErr("Please enter restaurant and dish names"))
	}

	res, err := d.client.CreateMenu(ctx, restaurantName, dishName)
	if err != nil {
		return d.fail(err)
	}
	d.log.Info(ctx, "menu created", "menu_id", res.Menu.ID, "new_restaurant", res.IsNewRestaurant)

	d.Load(ctx)
	return nil
}

// DeleteMenu removes a menu entry and reloads all caches on success.
func (d *DecisionService) DeleteMenu(ctx context.Context, id int64) error {
	if err := d.client.DeleteMenu(ctx, id); err != nil {
		return d.fail(err)
	}
	d.Load(ctx)
	return nil
}

func (d *DecisionService) refreshHistory(ctx context.Context) {
	page, _ := d.client.History(ctx)
	if page == nil {
		return
	}
	d.setState(func(st *DecisionState) {
		st.History = page.Records
		st.HistoryTotal = page.Total
	})
}

func (d *DecisionService) fail(err error) error {
	msg := displayMessage(err)
	d.setState(func(st *DecisionState) { st.Err = msg })
	return err
}
