package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/tugrulsicakyuz/mobile-delivy/apperr"
	"github.com/tugrulsicakyuz/mobile-delivy/chat-svc/internal/domain"
	"github.com/tugrulsicakyuz/mobile-delivy/chat-svc/internal/service"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	Messages service.MessageServiceInterface
	WS       http.Handler
}

func NewHandler(messages service.MessageServiceInterface, ws http.Handler) *Handler {
	return &Handler{
		Messages: messages,
		WS:       ws,
	}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.healthCheck).Methods("GET")
	r.HandleFunc("/messages/{orderId}", h.getMessages).Methods("GET")
	r.HandleFunc("/messages/{orderId}", h.sendMessage).Methods("POST")
	if h.WS != nil {
		r.Handle("/ws", h.WS).Methods("GET")
	}
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   "chat-svc",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// GET /messages/{orderId}?type=RESTAURANT_CHAT|COURIER_CHAT; no type returns every chat.
func (h *Handler) getMessages(w http.ResponseWriter, r *http.Request) {
	chatType := domain.ChatType(strings.ToUpper(r.URL.Query().Get("type")))
	msgs, err := h.Messages.History(r.Context(), mux.Vars(r)["orderId"], chatType)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

// POST /messages/{orderId} takes a Message body. A client-chosen id is kept as clientId
// so an optimistic copy can be matched to the stored one.
func (h *Handler) sendMessage(w http.ResponseWriter, r *http.Request) {
	var msg domain.Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		http.Error(w, "Invalid JSON format: "+err.Error(), http.StatusBadRequest)
		return
	}
	msg.OrderID = mux.Vars(r)["orderId"]
	if msg.ClientID == "" {
		msg.ClientID = msg.ID
	}

	saved, err := h.Messages.Send(r.Context(), msg)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
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
		log.Errorf("[chat-svc] %v", err)
	}
	http.Error(w, err.Error(), code)
}
