package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/ariefcatur/go-ecommerce-catalog/internal/catalog"
)

const HeaderIdempotencyKey = "Idempotency-Key"

// IdempotencyStore remembers which order an Idempotency-Key produced.
type IdempotencyStore interface {
	Lookup(ctx context.Context, userID, key string) (orderID string, ok bool, err error)
	Remember(ctx context.Context, userID, key, orderID string) error
}

type OrdersHandler struct {
	Service     *catalog.OrderService
	Idempotency IdempotencyStore // optional
}

type OrderItemReq struct {
	ProductID string `json:"productId"`
	Qty       int    `json:"qty"`
}

type CreateOrderReq struct {
	UserID string         `json:"userId"`
	Items  []OrderItemReq `json:"items"`
}

type ProductDetails struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

type OrderItemResp struct {
	ProductDetails ProductDetails `json:"productDetails"`
	Qty            int            `json:"qty"`
}

type OrderResp struct {
	ID    string          `json:"id"`
	Items []OrderItemResp `json:"items"`
	Total float64         `json:"total"`
}

type OrdersListResp struct {
	Data []OrderResp        `json:"data"`
	Page catalog.Pagination `json:"page"`
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Post("/orders", h.createOrder)
	r.Get("/orders/{userId}", h.listUserOrders)
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid json")
		return
	}
	ctx := r.Context()

	// Lookup and Remember are separate calls: two concurrent requests with the
	// same key can both insert. Only the first id is remembered for replays.
	idemKey := strings.TrimSpace(r.Header.Get(HeaderIdempotencyKey))
	if idemKey != "" && h.Idempotency != nil {
		if id, ok, err := h.Idempotency.Lookup(ctx, req.UserID, idemKey); err != nil {
			log.WithError(err).Warn("idempotency lookup failed")
		} else if ok {
			writeJSON(w, http.StatusCreated, IDResp{ID: id})
			return
		}
	}

	items := make([]catalog.OrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, catalog.OrderItem{ProductID: it.ProductID, Qty: it.Qty})
	}

	id, err := h.Service.CreateOrder(ctx, req.UserID, items)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if idemKey != "" && h.Idempotency != nil {
		if err := h.Idempotency.Remember(ctx, req.UserID, idemKey, id); err != nil {
			log.WithError(err).WithField("order_id", id).Warn("idempotency remember failed")
		}
	}
	writeJSON(w, http.StatusCreated, IDResp{ID: id})
}

func (h *OrdersHandler) listUserOrders(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	page, err := parsePage(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	list, err := h.Service.ListUserOrders(r.Context(), userID, page)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := OrdersListResp{Data: make([]OrderResp, 0, len(list.Data)), Page: list.Page}
	for _, o := range list.Data {
		resp := OrderResp{ID: o.ID, Items: make([]OrderItemResp, 0, len(o.Items)), Total: o.Total.InexactFloat64()}
		for _, it := range o.Items {
			resp.Items = append(resp.Items, OrderItemResp{
				ProductDetails: ProductDetails{Name: it.ProductName, ID: it.ProductID},
				Qty:            it.Qty,
			})
		}
		out.Data = append(out.Data, resp)
	}
	writeJSON(w, http.StatusOK, out)
}
