package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"storefront/internal/storefront"
)

func NewRouter(ctrl *storefront.Controller, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", ctrl.GetCart)
		r.Delete("/", ctrl.ClearCart)
		r.Post("/items", ctrl.AddItem)
		r.Patch("/items/{cartId}", ctrl.UpdateQuantity)
		r.Delete("/items/{cartId}", ctrl.RemoveItem)
		r.Post("/toggle", ctrl.ToggleCart)
		r.Post("/open", ctrl.OpenCart)
		r.Post("/close", ctrl.CloseCart)
	})

	r.Route("/checkout", func(r chi.Router) {
		r.Get("/", ctrl.GetCheckout)
		r.Post("/", ctrl.OpenCheckout)
		r.Delete("/", ctrl.CloseCheckout)
		r.Post("/addresses/retry", ctrl.RetryAddresses)
		r.Put("/address", ctrl.SelectAddress)
		r.Put("/payment", ctrl.SelectPayment)
		r.Put("/notes", ctrl.SetNotes)
		r.Post("/next", ctrl.NextStep)
		r.Post("/back", ctrl.PreviousStep)
		r.Post("/submit", ctrl.SubmitOrder)
		r.Get("/orders/{orderId}", ctrl.GetOrder)
	})

	return r
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("request handled",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
