package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/tugrulsicakyuz/mobile-delivy/apperr"
	"github.com/tugrulsicakyuz/mobile-delivy/order-svc/internal/domain"
	"github.com/tugrulsicakyuz/mobile-delivy/order-svc/internal/service"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	Orders      service.OrderServiceInterface
	Restaurants service.RestaurantServiceInterface
	Dashboard   service.DashboardServiceInterface
	UploadDir   string
}

func NewHandler(orderSvc service.OrderServiceInterface, restSvc service.RestaurantServiceInterface, dashSvc service.DashboardServiceInterface, uploadDir string) *Handler {
	return &Handler{
		Orders:      orderSvc,
		Restaurants: restSvc,
		Dashboard:   dashSvc,
		UploadDir:   uploadDir,
	}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.healthCheck).Methods("GET")

	r.HandleFunc("/orders/available", h.listAvailable).Methods("GET")
	r.HandleFunc("/orders/detail/{orderId}", h.getOrder).Methods("GET")
	r.HandleFunc("/orders/{orderId}/status", h.updateStatus).Methods("PUT")
	r.HandleFunc("/orders/{orderId}/claim", h.claimOrder).Methods("POST")
	r.HandleFunc("/orders/{orderId}/qrcode", h.getOrderQRCode).Methods("GET")
	r.HandleFunc("/orders/{userId}", h.createOrders).Methods("POST")
	r.HandleFunc("/orders/{userId}", h.listOrders).Methods("GET")

	r.HandleFunc("/restaurants", h.listRestaurants).Methods("GET")
	r.HandleFunc("/restaurants", h.upsertRestaurant).Methods("POST")
	r.HandleFunc("/restaurants/{id}", h.getRestaurant).Methods("GET")
	r.HandleFunc("/restaurants/{id}", h.deleteRestaurant).Methods("DELETE")
	r.HandleFunc("/restaurants/{id}/active", h.setRestaurantActive).Methods("PUT")
	r.HandleFunc("/restaurants/{id}/cover", h.uploadCover).Methods("POST")
	r.HandleFunc("/restaurants/{id}/dashboard", h.getDashboard).Methods("GET")

	r.HandleFunc("/menus/{restaurantId}", h.getMenu).Methods("GET")
	r.HandleFunc("/menus/{restaurantId}", h.createMenuItem).Methods("POST")
	r.HandleFunc("/menus/{restaurantId}/{itemId}", h.updateMenuItem).Methods("PUT")
	r.HandleFunc("/menus/{restaurantId}/{itemId}", h.deleteMenuItem).Methods("DELETE")
	r.HandleFunc("/menus/{restaurantId}/{itemId}/availability", h.setAvailability).Methods("PUT")
	r.HandleFunc("/menus/{restaurantId}/{itemId}/image", h.uploadMenuImage).Methods("POST")

	if h.UploadDir != "" {
		r.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", http.FileServer(http.Dir(h.UploadDir))))
	}
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   "order-svc",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

type submittedOrder struct {
	RestaurantID   string             `json:"restaurantId"`
	RestaurantName string             `json:"restaurantName"`
	CustomerName   string             `json:"customerName"`
	OrderItems     []domain.OrderItem `json:"orderItems"`
}

type createOrdersRequest struct {
	Orders []submittedOrder `json:"orders"`
}

// POST /orders/{userId} accepts the {orders: [...]} envelope holding a single order; totals are recomputed from the lines.
func (h *Handler) createOrders(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	var req createOrdersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON format: "+err.Error(), http.StatusBadRequest)
		return
	}
	switch {
	case len(req.Orders) == 0:
		writeError(w, apperr.Validation("createOrder", "cart is empty"))
		return
	case len(req.Orders) > 1:
		// orders commit one transaction each; a batch could be half stored
		writeError(w, apperr.Validation("createOrder", "one order per request, got %d", len(req.Orders)))
		return
	}

	submitted := req.Orders[0]
	cart := make([]domain.CartLine, 0, len(submitted.OrderItems))
	for _, item := range submitted.OrderItems {
		cart = append(cart, domain.CartLine{
			ItemID:         item.MenuItemID,
			Name:           item.Name,
			Price:          item.Price,
			Quantity:       item.Quantity,
			RestaurantID:   submitted.RestaurantID,
			RestaurantName: submitted.RestaurantName,
		})
	}
	customer := domain.Actor{ID: userID, Name: submitted.CustomerName, Role: domain.RoleCustomer}
	order, err := h.Orders.CreateOrder(r.Context(), customer, cart)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, []*domain.Order{order})
}

// GET /orders/{userId}?type=customer|restaurant|courier&active=true
func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	role := domain.Role(strings.ToUpper(r.URL.Query().Get("type")))
	if role == "" {
		role = domain.RoleCustomer
	}
	actor := domain.Actor{ID: mux.Vars(r)["userId"], Role: role}
	filter := domain.Filter{ActiveOnly: r.URL.Query().Get("active") == "true"}

	orders, err := h.Orders.ListOrders(r.Context(), actor, filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) listAvailable(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Orders.ListAvailable(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.Orders.GetOrder(r.Context(), mux.Vars(r)["orderId"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

type statusRequest struct {
	Status      domain.Status `json:"status"`
	UserID      string        `json:"userId"`
	CourierID   string        `json:"courierId"`
	CourierName string        `json:"courierName"`
	Role        domain.Role   `json:"role"`
}

func (r statusRequest) actor() domain.Actor {
	if r.CourierID != "" {
		return domain.Actor{ID: r.CourierID, Name: r.CourierName, Role: domain.RoleCourier}
	}
	return domain.Actor{ID: r.UserID, Role: domain.Role(strings.ToUpper(string(r.Role)))}
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	order, err := h.Orders.UpdateStatus(r.Context(), mux.Vars(r)["orderId"], req.Status, req.actor())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) claimOrder(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	courier := domain.Actor{ID: req.CourierID, Name: req.CourierName, Role: domain.RoleCourier}
	order, err := h.Orders.Claim(r.Context(), mux.Vars(r)["orderId"], courier)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) getOrderQRCode(w http.ResponseWriter, r *http.Request) {
	qr, err := h.Orders.QRCode(r.Context(), mux.Vars(r)["orderId"])
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(qr)
}

func (h *Handler) getDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Dashboard.Stats(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := apperr.HTTPStatus(err)
	if code >= http.StatusInternalServerError {
		log.Errorf("[order-svc] %v", err)
	}
	http.Error(w, err.Error(), code)
}
