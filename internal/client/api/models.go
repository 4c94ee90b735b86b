package api

import "time"

// Wire models for the what-to-eat service. Field names follow the server's
// snake_case JSON contract.

// User is the payload returned by register.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// LoginResult is returned by login and guest login.
type LoginResult struct {
	Token    string `json:"token"`
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

// Restaurant groups menus; identity is ID.
type Restaurant struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Menu is a candidate dish belonging to one restaurant. The restaurant
// field is a denormalized join supplied by the server and may be absent.
type Menu struct {
	ID           int64       `json:"id"`
	RestaurantID int64       `json:"restaurant_id"`
	DishName     string      `json:"dish_name"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
	Restaurant   *Restaurant `json:"restaurant,omitempty"`
}

// DisplayLabel renders the menu as "restaurant - dish" for user-facing text.
func (m Menu) DisplayLabel() string {
	name := "unknown"
	if m.Restaurant != nil && m.Restaurant.Name != "" {
		name = m.Restaurant.Name
	}
	return name + " - " + m.DishName
}

// DecisionRecord is one past selection; append-only, produced server-side.
type DecisionRecord struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	MenuID    int64     `json:"menu_id"`
	DecidedAt time.Time `json:"decided_at"`
	Menu      *Menu     `json:"menu,omitempty"`
}

// Decision is the outcome of a decide call.
type Decision struct {
	Menu    Menu   `json:"menu"`
	Message string `json:"message"`
}

// CreateMenuResult reports the created menu and whether a new restaurant
// was created as a side effect.
type CreateMenuResult struct {
	Menu            Menu `json:"menu"`
	IsNewRestaurant bool `json:"is_new_restaurant"`
}

// HistoryPage is the paginated decision history.
type HistoryPage struct {
	Records []DecisionRecord `json:"records"`
	Total   int64            `json:"total"`
}

// Request bodies.

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type createMenuRequest struct {
	RestaurantName string `json:"restaurant_name"`
	DishName       string `json:"dish_name"`
}

type decideRequest struct {
	MenuIDs []int64 `json:"menu_ids"`
}

type healthResponse struct {
	Status string `json:"status"`
}
