package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rl1809/catalog/internal/core/domain"
	"github.com/rl1809/catalog/internal/core/service"
	"github.com/rl1809/catalog/internal/logging"
	"github.com/rl1809/catalog/internal/monitoring"
)

const (
	KindElectronics = "electronics"
	KindFood        = "food"
)

type HTTPHandler struct {
	registry *service.Registry
	metrics  *monitoring.Metrics
}

type CreateItemRequest struct {
	ID             string          `json:"id"`
	Kind           string          `json:"kind"`
	Name           string          `json:"name"`
	Category       string          `json:"category"`
	Price          decimal.Decimal `json:"price"`
	WarrantyMonths int             `json:"warranty_months"`
	Weight         decimal.Decimal `json:"weight"`
	ExpirationDate string          `json:"expiration_date"`
}

type UpdatePriceRequest struct {
	Price *decimal.Decimal `json:"price"`
}

type ItemView struct {
	ID             uuid.UUID        `json:"id"`
	Kind           string           `json:"kind"`
	Name           string           `json:"name"`
	Category       string           `json:"category"`
	Price          decimal.Decimal  `json:"price"`
	Details        string           `json:"details"`
	WarrantyMonths *int             `json:"warranty_months,omitempty"`
	Weight         *decimal.Decimal `json:"weight,omitempty"`
	ShippingCost   *decimal.Decimal `json:"shipping_cost,omitempty"`
	ExpirationDate string           `json:"expiration_date,omitempty"`
	Expired        *bool            `json:"expired,omitempty"`
}

type CategoryGroup struct {
	Category string     `json:"category"`
	Items    []ItemView `json:"items"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// NewHTTPHandler serves registry over JSON. metrics may be nil.
func NewHTTPHandler(registry *service.Registry, metrics *monitoring.Metrics) *HTTPHandler {
	return &HTTPHandler{registry: registry, metrics: metrics}
}

// Register mounts every route on mux.
func (h *HTTPHandler) Register(mux *http.ServeMux) {
	h.handle(mux, "GET /health", h.HealthCheck)
	h.handle(mux, "GET /api/items", h.ListItems)
	h.handle(mux, "POST /api/items", h.CreateItem)
	h.handle(mux, "GET /api/items/changed", h.ChangedItems)
	h.handle(mux, "GET /api/items/shippable", h.ShippableItems)
	h.handle(mux, "GET /api/items/expired", h.ExpiredItems)
	h.handle(mux, "GET /api/items/{id}", h.GetItem)
	h.handle(mux, "DELETE /api/items/{id}", h.DeleteItem)
	h.handle(mux, "PUT /api/items/{id}/price", h.UpdatePrice)
	h.handle(mux, "GET /api/categories", h.Categories)
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, viewsOf(h.registry.List()))
}

func (h *HTTPHandler) ChangedItems(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, viewsOf(h.registry.ChangedItems()))
}

func (h *HTTPHandler) ShippableItems(w http.ResponseWriter, r *http.Request) {
	shippable := h.registry.ShippableItems()
	views := make([]ItemView, 0, len(shippable))
	for _, s := range shippable {
		views = append(views, viewOf(s))
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *HTTPHandler) ExpiredItems(w http.ResponseWriter, r *http.Request) {
	expired := h.registry.ExpiredItems()
	views := make([]ItemView, 0, len(expired))
	for _, p := range expired {
		views = append(views, viewOf(p))
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *HTTPHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	item, ok := h.registry.Get(id)
	if !ok {
		writeError(w, fmt.Errorf("%w: item %s", domain.ErrNotFound, id))
		return
	}
	writeJSON(w, http.StatusOK, viewOf(item))
}

func (h *HTTPHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req CreateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "invalid request body"})
		return
	}

	item, err := buildItem(req)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.registry.Add(item); err != nil {
		writeError(w, err)
		return
	}

	h.refreshGauge()
	writeJSON(w, http.StatusCreated, viewOf(item))
}

func (h *HTTPHandler) UpdatePrice(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req UpdatePriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Price == nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "invalid request body"})
		return
	}

	if err := h.registry.UpdatePrice(id, *req.Price); err != nil {
		writeError(w, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordPriceUpdate()
	}

	item, _ := h.registry.Get(id)
	if item == nil {
		// Removed between the update and the read.
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(item))
}

func (h *HTTPHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	h.registry.Remove(id)
	h.refreshGauge()
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) Categories(w http.ResponseWriter, r *http.Request) {
	groups := h.registry.GroupByCategory()

	out := make([]CategoryGroup, 0, len(groups))
	for cat, items := range groups {
		out = append(out, CategoryGroup{Category: cat.Name(), Items: viewsOf(items)})
	}
	slices.SortFunc(out, func(a, b CategoryGroup) int {
		return strings.Compare(a.Category, b.Category)
	})
	writeJSON(w, http.StatusOK, out)
}

func (h *HTTPHandler) handle(mux *http.ServeMux, pattern string, fn http.HandlerFunc) {
	if h.metrics == nil {
		mux.HandleFunc(pattern, fn)
		return
	}
	method, route, _ := strings.Cut(pattern, " ")
	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		fn(rec, r)
		h.metrics.RecordRequest(method, route, rec.status)
	})
}

func (h *HTTPHandler) refreshGauge() {
	if h.metrics != nil {
		h.metrics.SetCatalogItems(h.registry.Len())
	}
}

func buildItem(req CreateItemRequest) (domain.Item, error) {
	id := uuid.New()
	if req.ID != "" {
		parsed, err := uuid.Parse(req.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: id: %v", domain.ErrInvalidArgument, err)
		}
		id = parsed
	}

	category, err := domain.CategoryOf(req.Category)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(req.Kind) {
	case KindElectronics:
		return domain.NewElectronics(id, req.Name, category, req.Price, req.WarrantyMonths, req.Weight)
	case KindFood:
		expires, err := domain.ParseDate(req.ExpirationDate)
		if err != nil {
			return nil, err
		}
		return domain.NewFood(id, req.Name, category, req.Price, expires, req.Weight)
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", domain.ErrInvalidArgument, req.Kind)
	}
}

func viewsOf(items []domain.Item) []ItemView {
	views := make([]ItemView, 0, len(items))
	for _, item := range items {
		views = append(views, viewOf(item))
	}
	return views
}

func viewOf(item domain.Item) ItemView {
	v := ItemView{
		ID:       item.ID(),
		Name:     item.Name(),
		Category: item.Category().Name(),
		Price:    item.Price(),
		Details:  item.ProductDetails(),
	}

	switch it := item.(type) {
	case *domain.Electronics:
		v.Kind = KindElectronics
		months := it.WarrantyMonths()
		v.WarrantyMonths = &months
	case *domain.Food:
		v.Kind = KindFood
	}

	if s, ok := item.(domain.Shippable); ok {
		weight, cost := s.Weight(), s.ShippingCost()
		v.Weight = &weight
		v.ShippingCost = &cost
	}
	if p, ok := item.(domain.Perishable); ok {
		expired := p.IsExpired()
		v.ExpirationDate = domain.FormatDate(p.ExpirationDate())
		v.Expired = &expired
	}
	return v
}

func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: id: %v", domain.ErrInvalidArgument, err)
	}
	return id, nil
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrDuplicateKey):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrNotFound):
		status, message = http.StatusNotFound, err.Error()
	default:
		logging.L().Error("request failed", zap.Error(err))
	}

	writeJSON(w, status, ErrorResponse{Success: false, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
