package httpapi

import (
	"net/http"

	"github.com/usmanz-dev/nova-pos-terminal/internal/domain"
)

// CatalogView is the filtered read side the product grid needs.
type CatalogView interface {
	Products(search, categoryID string) []domain.Product
	Categories() []domain.Category
}

type CatalogHandler struct {
	catalog CatalogView
}

func NewCatalogHandler(catalog CatalogView) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

type ProductsResponse struct {
	Products []domain.Product `json:"products"`
}

type CategoriesResponse struct {
	Categories []domain.Category `json:"categories"`
}

// GET /api/v1/products?search=&category=
func (h *CatalogHandler) Products(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	category := r.URL.Query().Get("category")

	products := h.catalog.Products(search, category)
	if products == nil {
		products = []domain.Product{}
	}
	respondJSON(w, http.StatusOK, ProductsResponse{Products: products})
}

// GET /api/v1/categories
func (h *CatalogHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories := h.catalog.Categories()
	if categories == nil {
		categories = []domain.Category{}
	}
	respondJSON(w, http.StatusOK, CategoriesResponse{Categories: categories})
}
