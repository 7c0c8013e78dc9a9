package router

import (
	"net/http"
	"strings"

	"storefront/internal/handler"
	"storefront/internal/middleware"

	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware configured.
func New(
	productHandler *handler.ProductHandler,
	cartHandler *handler.CartHandler,
	checkoutHandler *handler.CheckoutHandler,
	orderHandler *handler.OrderHandler,
	webhookHandler *handler.WebhookHandler,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	// Product handler function
	productRouteHandler := func(w http.ResponseWriter, r *http.Request) {
		// Check if this is a request for a specific product ID
		if r.URL.Path != "/api/products" && r.URL.Path != "/api/products/" {
			productHandler.GetByID(w, r)
			return
		}
		productHandler.List(w, r)
	}

	// Register product routes (both with and without trailing slash)
	mux.HandleFunc("/api/products", productRouteHandler)
	mux.HandleFunc("/api/products/", productRouteHandler)

	// Cart handler function
	cartRouteHandler := func(w http.ResponseWriter, r *http.Request) {
		// Item removal carries the product ID in the path
		if strings.HasPrefix(r.URL.Path, "/api/cart/") && r.URL.Path != "/api/cart/" {
			if r.Method == http.MethodDelete {
				cartHandler.RemoveItem(w, r)
				return
			}
			http.Error(w, "not found", http.StatusNotFound)
			return
		}

		switch r.Method {
		case http.MethodGet:
			cartHandler.Get(w, r)
		case http.MethodPost, http.MethodPut:
			cartHandler.PutItem(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}

	mux.HandleFunc("/api/cart", cartRouteHandler)
	mux.HandleFunc("/api/cart/", cartRouteHandler)

	// Checkout routes
	mux.HandleFunc("/api/checkout/summary", checkoutHandler.Summary)
	mux.HandleFunc("/api/checkout/payment-intent", checkoutHandler.CreatePaymentIntent)

	// Order routes
	mux.HandleFunc("/api/orders/my", orderHandler.MyOrders)
	mux.HandleFunc("/api/orders/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/orders/" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		orderHandler.GetByID(w, r)
	})

	// Admin routes
	mux.HandleFunc("/api/admin/orders", orderHandler.AdminList)
	mux.HandleFunc("/api/admin/orders/", func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/status") {
			orderHandler.UpdateStatus(w, r)
			return
		}
		http.Error(w, "not found", http.StatusNotFound)
	})
	mux.HandleFunc("/api/admin/products/", func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/stock") {
			productHandler.AdjustStock(w, r)
			return
		}
		http.Error(w, "not found", http.StatusNotFound)
	})

	// Payment webhook (authenticated by signature, not by user identity)
	mux.HandleFunc("/api/webhooks/payment", webhookHandler.HandleEvent)

	// Apply middleware in order: Recovery -> Logging -> CORS -> Identity
	var handler http.Handler = mux
	handler = middleware.Identity(logger, "/health", "/api/webhooks/payment")(handler)
	handler = middleware.CORS(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Recovery(logger)(handler)

	return handler
}
