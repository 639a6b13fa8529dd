package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/ariefcatur/go-ecommerce-catalog/internal/catalog"
)

type ProductsHandler struct {
	Service *catalog.ProductService
}

type SizeReq struct {
	Size     string `json:"size"`
	Quantity int    `json:"quantity"`
}

// CreateProductReq uses pointers so a missing field can be told apart from a zero value.
type CreateProductReq struct {
	Name  *string          `json:"name"`
	Price *decimal.Decimal `json:"price"`
	Sizes []SizeReq        `json:"sizes"`
}

type IDResp struct {
	ID string `json:"id"`
}

type ProductResp struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type ProductsListResp struct {
	Data []ProductResp      `json:"data"`
	Page catalog.Pagination `json:"page"`
}

func (h *ProductsHandler) Register(r chi.Router) {
	r.Post("/products", h.createProduct)
	r.Get("/products", h.listProducts)
}

func (h *ProductsHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Name == nil || req.Price == nil || req.Sizes == nil {
		writeErrorMessage(w, http.StatusBadRequest, "missing fields: name, price and sizes are required")
		return
	}

	sizes := make([]catalog.Size, 0, len(req.Sizes))
	for _, s := range req.Sizes {
		sizes = append(sizes, catalog.Size{Size: s.Size, Quantity: s.Quantity})
	}

	id, err := h.Service.CreateProduct(r.Context(), *req.Name, *req.Price, sizes)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, IDResp{ID: id})
}

func (h *ProductsHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	f := catalog.ProductFilter{
		Name: r.URL.Query().Get("name"),
		Size: r.URL.Query().Get("size"),
	}

	list, err := h.Service.ListProducts(r.Context(), f, page)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := ProductsListResp{Data: make([]ProductResp, 0, len(list.Data)), Page: list.Page}
	for _, p := range list.Data {
		out.Data = append(out.Data, ProductResp{ID: p.ID, Name: p.Name, Price: p.Price.InexactFloat64()})
	}
	writeJSON(w, http.StatusOK, out)
}
