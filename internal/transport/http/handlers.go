package http

import (
	"math/big"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fedutinova/tlexport/internal/config"
)

type Handlers struct {
	Config  config.Config
	Started time.Time
}

func NewHandlers(cfg config.Config) *Handlers {
	return &Handlers{Config: cfg, Started: time.Now()}
}

func (h *Handlers) Routers(r chi.Router) {
	r.Get("/healthz", h.Health)

	r.Get("/hello", h.hello)
	r.Get("/users", h.users)
	// non integer ids fall through to 404
	r.Get("/users/{id:-?[0-9]+}", h.user)
}

func writeText(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

func (h *Handlers) hello(w http.ResponseWriter, r *http.Request) {
	writeText(w, "Hello World!")
}

func (h *Handlers) users(w http.ResponseWriter, r *http.Request) {
	writeText(w, "Users List")
}

// user echoes the id in canonical form ("007" is 7); ids are unbounded.
func (h *Handlers) user(w http.ResponseWriter, r *http.Request) {
	id, ok := new(big.Int).SetString(chi.URLParam(r, "id"), 10)
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeText(w, "User + "+id.String())
}
