package httpx

import (
	"net/http"
	"time"

	"github.com/ariefcatur/restaurant-orders/internal/authz"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds the base router. Streaming routes are registered outside
// the timeout group by the stream handler itself.
func NewRouter(tokens *authz.Tokens) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(Authenticate(tokens))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

func withTimeout(d time.Duration) func(http.Handler) http.Handler {
	if d <= 0 {
		d = 15 * time.Second
	}
	return middleware.Timeout(d)
}
