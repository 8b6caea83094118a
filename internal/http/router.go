package http

import (
	"net/http"
	"slices"
	"time"

	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

type Deps struct {
	Carts    CartService
	Checkout CheckoutService
	Catalog  catalog.Editor
	Sessions *SessionManager
	Log      *zap.Logger

	AdminUsername  string
	AdminPassword  string
	UploadDir      string
	StaticDir      string
	RequestTimeout time.Duration
	MaxBodyBytes   int64
	AllowedOrigins []string
	RateLimit      float64
	RateBurst      int
}

func NewRouter(d Deps) http.Handler {
	cartHandler := NewCartHandler(d.Carts, d.RequestTimeout, d.Log)
	checkoutHandler := NewCheckoutHandler(d.Checkout, d.RequestTimeout, d.Log)
	productHandler := NewProductHandler(d.Catalog, d.RequestTimeout, d.Log)
	adminHandler := NewAdminHandler(d.Catalog, d.Sessions, d.AdminUsername, d.AdminPassword, d.UploadDir, d.RequestTimeout, d.Log)
	limiter := NewRateLimiter(d.RateLimit, d.RateBurst)

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(d.Log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(d.RequestTimeout))
	r.Use(MaxBodySize(d.MaxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if d.StaticDir != "" {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(d.StaticDir))))
	}

	r.Group(func(r chi.Router) {
		r.Use(d.Sessions.Middleware)

		r.Route("/api", func(r chi.Router) {
			r.Get("/products", productHandler.List)
			r.Get("/products/{id}", productHandler.Get)
			r.Get("/categories", productHandler.Categories)

			r.Get("/cart", cartHandler.GetCart)
			r.Get("/cart-count", cartHandler.Count)
			r.Get("/cart-total", cartHandler.Total)
			r.Get("/order-success", checkoutHandler.GetLastOrder)

			r.Group(func(r chi.Router) {
				r.Use(limiter.Middleware)
				r.Post("/seed", productHandler.Seed)
				r.Post("/add-to-cart", cartHandler.AddItem)
				r.Post("/remove-from-cart", cartHandler.RemoveItem)
				r.Post("/update-quantity", cartHandler.UpdateQuantity)
				r.Post("/checkout", checkoutHandler.SubmitCheckout)
				r.Delete("/order-success", checkoutHandler.ResetLastOrder)
			})
		})

		r.With(limiter.Middleware).Post("/login", adminHandler.Login)
		r.Post("/logout", adminHandler.Logout)

		r.Route("/admin", func(r chi.Router) {
			r.Use(d.Sessions.RequireAdmin)
			r.Get("/products", adminHandler.List)
			r.Post("/products", adminHandler.Add)
			r.Post("/products/{id}/delete", adminHandler.Delete)
		})
	})

	handler := cors.New(corsOptions(d.AllowedOrigins)).Handler(r)

	return otelhttp.NewHandler(handler, "storefront")
}

// corsOptions sends credentials only to explicitly listed origins. With no
// list or a wildcard, cross-origin requests are answered without cookies.
func corsOptions(origins []string) cors.Options {
	explicit := len(origins) > 0 && !slices.Contains(origins, "*")
	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "X-Request-ID"},
		AllowCredentials: explicit,
	}
}
