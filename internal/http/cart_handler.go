package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/boywithalo/marketplacen2/internal/cart"
	"github.com/boywithalo/marketplacen2/internal/checkout"
)

type CartHandler struct {
	carts    *cart.Manager
	pipeline *checkout.Pipeline
}

func NewCartHandler(carts *cart.Manager, pipeline *checkout.Pipeline) *CartHandler {
	return &CartHandler{carts: carts, pipeline: pipeline}
}

type cartView struct {
	SessionID string          `json:"sessionId"`
	Items     []cart.LineItem `json:"items"`
	Count     int             `json:"count"`
	Total     float64         `json:"total"`
}

func viewOf(c *cart.Cart) cartView {
	totals := c.Totals()
	items := c.Items()
	if items == nil {
		items = []cart.LineItem{}
	}
	return cartView{
		SessionID: c.SessionID(),
		Items:     items,
		Count:     totals.Count,
		Total:     totals.Total,
	}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "missing sessionId")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	writeJSON(w, http.StatusOK, viewOf(h.carts.Get(ctx, sessionID)))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "missing sessionId")
		return
	}

	var body struct {
		cart.ProductSnapshot
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if body.ProductID == "" {
		writeError(w, http.StatusBadRequest, "missing productId")
		return
	}
	if body.Quantity == 0 {
		body.Quantity = 1
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c := h.carts.Get(ctx, sessionID)
	if err := c.AddItem(ctx, body.ProductSnapshot, body.Quantity); err != nil {
		if errors.Is(err, cart.ErrBadQuantity) {
			writeError(w, http.StatusBadRequest, "quantity must be a positive integer")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to add item")
		return
	}

	writeJSON(w, http.StatusOK, viewOf(c))
}

func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")
	productID := chi.URLParam(r, "productId")
	if sessionID == "" || productID == "" {
		writeError(w, http.StatusBadRequest, "missing sessionId or productId")
		return
	}

	var body struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c := h.carts.Get(ctx, sessionID)
	c.SetQuantity(ctx, productID, body.Quantity)

	writeJSON(w, http.StatusOK, viewOf(c))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")
	productID := chi.URLParam(r, "productId")
	if sessionID == "" || productID == "" {
		writeError(w, http.StatusBadRequest, "missing sessionId or productId")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c := h.carts.Get(ctx, sessionID)
	c.RemoveItem(ctx, productID)

	writeJSON(w, http.StatusOK, viewOf(c))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "missing sessionId")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c := h.carts.Get(ctx, sessionID)
	c.Clear(ctx)

	writeJSON(w, http.StatusOK, viewOf(c))
}

func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "missing sessionId")
		return
	}

	var in checkout.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := in.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	c := h.carts.Get(ctx, sessionID)
	res, err := h.pipeline.Commit(ctx, c, in)
	if err != nil {
		if errors.Is(err, checkout.ErrEmptyCart) {
			writeError(w, http.StatusConflict, "cart is empty")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to place order")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"orderId": res.OrderID})
}
