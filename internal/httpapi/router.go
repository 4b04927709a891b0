package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// NewRouter assembles the terminal API.
func NewRouter(sessions *SessionHandler, catalog *CatalogHandler, requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", catalog.Products)
		r.Get("/categories", catalog.Categories)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", sessions.Create)
			r.Route("/{session_id}", func(r chi.Router) {
				r.Get("/", sessions.Get)
				r.Post("/tap", sessions.Tap)
				r.Post("/variant", sessions.SelectVariant)
				r.Delete("/variant", sessions.DismissVariant)
				r.Put("/cart/items/{key}", sessions.UpdateQuantity)
				r.Delete("/cart/items/{key}", sessions.RemoveItem)
				r.Post("/cart/clear", sessions.ClearCart)
				r.Put("/cart/pricing", sessions.SetPricing)
				r.Post("/payment", sessions.ProceedToPayment)
				r.Delete("/payment", sessions.BackToBrowsing)
				r.Post("/submit", sessions.Submit)
				r.Post("/retry", sessions.Retry)
				r.Get("/receipt", sessions.Receipt)
				r.Post("/new-sale", sessions.NewSale)
			})
		})
	})

	return otelhttp.NewHandler(r, "pos-terminal")
}
