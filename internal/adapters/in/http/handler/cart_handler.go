// internal/adapters/in/http/handler/cart_handler.go
package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"costtracker/internal/adapters/in/http/middleware"
	"costtracker/internal/application/cartsync"
	"costtracker/internal/application/usecase"
)

// viewSettleTimeout bounds how long a one-shot GET waits for the session
// view to settle before answering with whatever is current.
const viewSettleTimeout = 5 * time.Second

// CartHandler serves the signed-in user's cart: the resolved view (one-shot
// and streaming) plus the three mutations. All routes sit behind the auth
// middleware, so the uid always comes from the verified token.
type CartHandler struct {
	UC       *usecase.CartUsecase
	Sessions *cartsync.Manager
}

func NewCartHandler(uc *usecase.CartUsecase, sessions *cartsync.Manager) *CartHandler {
	return &CartHandler{UC: uc, Sessions: sessions}
}

// Get handles GET /api/me/cart: opens a session scoped to the caller,
// waits for the view to settle (cart snapshot in, fetches done) and
// returns it.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Sessions == nil {
		writeErr(w, http.StatusServiceUnavailable, "cart handler is not configured")
		return
	}

	uid := middleware.UIDFromContext(r.Context())
	if uid == "" {
		writeErr(w, http.StatusUnauthorized, "not signed in")
		return
	}

	s, err := h.Sessions.OpenSession()
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "could not open cart session")
		return
	}
	defer s.Close()

	s.SetUser(uid)

	deadline := time.NewTimer(viewSettleTimeout)
	defer deadline.Stop()

	for {
		v := s.View()
		if v.Settled() {
			writeJSON(w, http.StatusOK, v)
			return
		}

		select {
		case <-s.Updates():
		case <-deadline.C:
			// answer with the best we have rather than hanging the caller
			writeJSON(w, http.StatusOK, s.View())
			return
		case <-r.Context().Done():
			return
		}
	}
}

// Stream handles GET /api/me/cart/stream as server-sent events: one "view"
// event per recomputation, so the client's displayed total tracks live
// changes to both the cart and the catalog. The session lives for the
// duration of the connection.
func (h *CartHandler) Stream(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Sessions == nil {
		writeErr(w, http.StatusServiceUnavailable, "cart handler is not configured")
		return
	}

	uid := middleware.UIDFromContext(r.Context())
	if uid == "" {
		writeErr(w, http.StatusUnauthorized, "not signed in")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeErr(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	s, err := h.Sessions.OpenSession()
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "could not open cart session")
		return
	}
	defer s.Close()

	s.SetUser(uid)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	log.Printf("[cart_handler] stream open uid=%q", uid)
	defer log.Printf("[cart_handler] stream closed uid=%q", uid)

	send := func(v cartsync.View) bool {
		payload, merr := json.Marshal(v)
		if merr != nil {
			return false
		}
		if _, werr := w.Write([]byte("event: view\ndata: " + string(payload) + "\n\n")); werr != nil {
			return false
		}
		flusher.Flush()
		return true
	}

	if !send(s.View()) {
		return
	}

	for {
		select {
		case _, open := <-s.Updates():
			if !open {
				return
			}
			if !send(s.View()) {
				return
			}
		case <-r.Context().Done():
			return
		}
	}
}

// AddItem handles POST /api/me/cart/items {"productId": "..."}.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.UC == nil {
		writeErr(w, http.StatusServiceUnavailable, "cart handler is not configured")
		return
	}

	uid := middleware.UIDFromContext(r.Context())
	if uid == "" {
		writeErr(w, http.StatusUnauthorized, "not signed in")
		return
	}

	var body struct {
		ProductID string `json:"productId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json body")
		return
	}

	if err := h.UC.AddToCart(r.Context(), uid, body.ProductID); err != nil {
		log.Printf("[cart_handler] add failed uid=%q productId=%q: %v", uid, body.ProductID, err)
		writeErr(w, mutationStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// SetQuantity handles PUT /api/me/cart/items/{itemID} {"quantity": n}.
// quantity < 1 is rejected before any write.
func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.UC == nil {
		writeErr(w, http.StatusServiceUnavailable, "cart handler is not configured")
		return
	}

	uid := middleware.UIDFromContext(r.Context())
	if uid == "" {
		writeErr(w, http.StatusUnauthorized, "not signed in")
		return
	}

	itemID := strings.TrimSpace(chi.URLParam(r, "itemID"))

	var body struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json body")
		return
	}

	if err := h.UC.SetQuantity(r.Context(), uid, itemID, body.Quantity); err != nil {
		writeErr(w, mutationStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// RemoveItem handles DELETE /api/me/cart/items/{itemID}.
// Removing an already absent item still answers ok.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.UC == nil {
		writeErr(w, http.StatusServiceUnavailable, "cart handler is not configured")
		return
	}

	uid := middleware.UIDFromContext(r.Context())
	if uid == "" {
		writeErr(w, http.StatusUnauthorized, "not signed in")
		return
	}

	itemID := strings.TrimSpace(chi.URLParam(r, "itemID"))

	if err := h.UC.Remove(r.Context(), uid, itemID); err != nil {
		writeErr(w, mutationStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
