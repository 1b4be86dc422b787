package gateway

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Config struct {
	OrderSvcURL string
	ChatSvcURL  string
}

type Gateway struct {
	config Config
	client HTTPClient
	ws     http.Handler
}

func NewGateway(config Config, client HTTPClient) *Gateway {
	g := &Gateway{
		config: config,
		client: client,
	}
	if target, err := url.Parse(config.ChatSvcURL); err == nil && config.ChatSvcURL != "" {
		// ReverseProxy passes the Upgrade handshake through and then copies both directions.
		g.ws = httputil.NewSingleHostReverseProxy(target)
	}
	return g
}

func (g *Gateway) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"status":  "healthy",
		"service": "api-gateway",
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func (g *Gateway) ProxyRequest(w http.ResponseWriter, r *http.Request, targetURL string) {
	log.Debugf("PROXY: %s %s -> %s%s", r.Method, r.URL.Path, targetURL, r.URL.Path)

	target := targetURL + r.URL.Path
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}

	req, err := http.NewRequestWithContext(r.Context(), r.Method, target, r.Body)
	if err != nil {
		log.Errorf("Failed to create request: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	for k, v := range r.Header {
		req.Header[k] = v
	}
	if host, _, ok := strings.Cut(r.RemoteAddr, ":"); ok {
		req.Header.Add("X-Forwarded-For", host)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		log.Errorf("Failed to proxy to %s: %v", targetURL, err)
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	for k, v := range resp.Header {
		w.Header()[k] = v
	}
	w.WriteHeader(resp.StatusCode)

	if _, err := io.Copy(w, resp.Body); err != nil {
		log.Warnf("Failed to copy response: %v", err)
	}
}

// RouteHandler sends chat traffic to chat-svc and everything else of the public surface
// to order-svc. A leading /api is accepted and stripped.
func (g *Gateway) RouteHandler(w http.ResponseWriter, r *http.Request) {
	if rest, ok := strings.CutPrefix(r.URL.Path, "/api/"); ok {
		r.URL.Path = "/" + rest
	}
	path := r.URL.Path
	log.Debugf("ROUTE: %s %s", r.Method, path)

	switch {
	case path == "/ws":
		if g.ws == nil {
			http.Error(w, "chat service not configured", http.StatusServiceUnavailable)
			return
		}
		g.ws.ServeHTTP(w, r)
	case hasSegmentPrefix(path, "/messages"):
		g.ProxyRequest(w, r, g.config.ChatSvcURL)
	case hasSegmentPrefix(path, "/orders"),
		hasSegmentPrefix(path, "/restaurants"),
		hasSegmentPrefix(path, "/menus"),
		hasSegmentPrefix(path, "/uploads"):
		g.ProxyRequest(w, r, g.config.OrderSvcURL)
	default:
		log.Warnf("Unmatched route: %s %s", r.Method, path)
		http.Error(w, "route not found", http.StatusNotFound)
	}
}

func hasSegmentPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func (g *Gateway) SetupRoutes() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/health", g.HealthCheck).Methods("GET")
	r.PathPrefix("/").HandlerFunc(g.RouteHandler)
	return r
}
