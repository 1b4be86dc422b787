package domain

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusAccepted  Status = "ACCEPTED"
	StatusPreparing Status = "PREPARING"
	StatusReady     Status = "READY"
	StatusPickedUp  Status = "PICKED_UP"
	StatusOnWay     Status = "ON_WAY"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

var AllStatuses = []Status{
	StatusPending, StatusAccepted, StatusPreparing, StatusReady,
	StatusPickedUp, StatusOnWay, StatusDelivered, StatusCancelled,
}

func (s Status) Valid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Active orders are the ones still shown on dashboards.
func (s Status) Active() bool {
	return s.Valid() && !s.Terminal()
}

type Role string

const (
	RoleCustomer   Role = "CUSTOMER"
	RoleRestaurant Role = "RESTAURANT"
	RoleCourier    Role = "COURIER"
)

func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleRestaurant || r == RoleCourier
}

type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	Role Role   `json:"role"`
}

type edge struct {
	from, to Status
}

var restaurantSteps = map[edge]bool{
	{StatusPending, StatusAccepted}:   true,
	{StatusAccepted, StatusPreparing}: true,
	{StatusPreparing, StatusReady}:    true,
}

var courierSteps = map[edge]bool{
	{StatusReady, StatusPickedUp}:  true,
	{StatusPickedUp, StatusOnWay}:  true,
	{StatusOnWay, StatusDelivered}: true,
}

func cancellable(s Status) bool {
	switch s {
	case StatusPending, StatusAccepted, StatusPreparing, StatusReady:
		return true
	}
	return false
}

// CanTransition reports whether actor may move order from its current status to next.
// READY -> PICKED_UP is open to any courier while the order is unassigned; every later
// courier step belongs to the courier holding the order.
func CanTransition(order Order, next Status, actor Actor) bool {
	if actor.ID == "" || order.Status.Terminal() {
		return false
	}
	step := edge{order.Status, next}

	switch actor.Role {
	case RoleRestaurant:
		if order.RestaurantID != actor.ID {
			return false
		}
		return restaurantSteps[step] || (next == StatusCancelled && cancellable(order.Status))
	case RoleCustomer:
		return order.UserID == actor.ID && next == StatusCancelled && cancellable(order.Status)
	case RoleCourier:
		if !courierSteps[step] {
			return false
		}
		if order.Status == StatusReady {
			return order.CourierID == ""
		}
		return order.CourierID == actor.ID
	}
	return false
}

// VisibleTo is the role-scoped view filter applied to every order listing.
func VisibleTo(order Order, actor Actor) bool {
	switch actor.Role {
	case RoleCustomer:
		return order.UserID == actor.ID
	case RoleRestaurant:
		return order.RestaurantID == actor.ID
	case RoleCourier:
		return order.CourierID == actor.ID || Available(order)
	}
	return false
}

// Available orders make up the courier pool.
func Available(order Order) bool {
	return order.Status == StatusReady && order.CourierID == ""
}

// InferRole picks the role an actor holds with respect to order when the caller sent none.
func InferRole(order Order, actorID string) Role {
	switch actorID {
	case order.RestaurantID:
		return RoleRestaurant
	case order.UserID:
		return RoleCustomer
	}
	return RoleCourier
}
