package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/rl1809/pos-register/internal/core/service"
)

const idempotencyHeader = "Idempotency-Key"

type HTTPHandler struct {
	register *service.RegisterService
	logger   *zap.Logger
}

func NewHTTPHandler(register *service.RegisterService, logger *zap.Logger) *HTTPHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPHandler{register: register, logger: logger}
}

// RegisterRoutes registers all routes on the provided router
func (h *HTTPHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	// Catalog
	api.HandleFunc("/products", h.ListProducts).Methods(http.MethodGet)
	api.HandleFunc("/categories", h.ListCategories).Methods(http.MethodGet)

	// Cart
	api.HandleFunc("/cart", h.GetCart).Methods(http.MethodGet)
	api.HandleFunc("/cart", h.ClearCart).Methods(http.MethodDelete)
	api.HandleFunc("/cart/items", h.AddItem).Methods(http.MethodPost)
	api.HandleFunc("/cart/items/{index}", h.RemoveItem).Methods(http.MethodDelete)
	api.HandleFunc("/cart/discount", h.SetDiscount).Methods(http.MethodPut)

	// Orders
	api.HandleFunc("/orders", h.CommitOrder).Methods(http.MethodPost)
	api.HandleFunc("/orders", h.ListOrders).Methods(http.MethodGet)
	api.HandleFunc("/orders/{id}", h.GetOrder).Methods(http.MethodGet)

	// Customers
	api.HandleFunc("/customers", h.RegisterCustomer).Methods(http.MethodPost)
	api.HandleFunc("/customers", h.ListCustomers).Methods(http.MethodGet)
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.register.ListProducts(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ListProductsResponse{Products: toProductDTOs(products)})
}

func (h *HTTPHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.register.ListCategories(r.Context())
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ListCategoriesResponse{Categories: categories})
}

func (h *HTTPHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	h.writeCart(w, r, http.StatusOK)
}

func (h *HTTPHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.register.AddItem(r.Context(), req.ProductID); err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeCart(w, r, http.StatusOK)
}

func (h *HTTPHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid cart line index"})
		return
	}

	if err := h.register.RemoveItem(r.Context(), index); err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeCart(w, r, http.StatusOK)
}

func (h *HTTPHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.register.ClearCart(r.Context()); err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeCart(w, r, http.StatusOK)
}

func (h *HTTPHandler) SetDiscount(w http.ResponseWriter, r *http.Request) {
	var req SetDiscountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.register.SetDiscount(r.Context(), req.Discount); err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeCart(w, r, http.StatusOK)
}

// CommitOrder accepts an empty body, in which case the stored discount and a
// walk-in customer are used.
func (h *HTTPHandler) CommitOrder(w http.ResponseWriter, r *http.Request) {
	var req CommitOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	if key := r.Header.Get(idempotencyHeader); key != "" {
		req.RequestID = key
	}

	order, err := h.register.CommitOrder(r.Context(), service.CommitRequest{
		Discount:   req.Discount,
		CustomerID: req.CustomerID,
		RequestID:  req.RequestID,
	})
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderDTO(order))
}

func (h *HTTPHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.register.ListOrders(r.Context())
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ListOrdersResponse{Orders: toOrderDTOs(orders)})
}

func (h *HTTPHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid order id"})
		return
	}

	order, err := h.register.GetOrder(r.Context(), id)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderDTO(order))
}

func (h *HTTPHandler) RegisterCustomer(w http.ResponseWriter, r *http.Request) {
	var req RegisterCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	customer, err := h.register.RegisterCustomer(r.Context(), req.Name, req.Email)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCustomerDTO(customer))
}

func (h *HTTPHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.register.ListCustomers(r.Context())
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ListCustomersResponse{Customers: toCustomerDTOs(customers)})
}

func (h *HTTPHandler) writeCart(w http.ResponseWriter, r *http.Request, status int) {
	view, err := h.register.GetCartView(r.Context())
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, status, toCartViewDTO(view))
}

func (h *HTTPHandler) writeErr(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, service.ErrEmptyCart):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, service.ErrDuplicateRequest):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, service.ErrMissingField):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrCartLineNotFound),
		errors.Is(err, service.ErrCustomerNotFound),
		errors.Is(err, service.ErrOrderNotFound):
		status, message = http.StatusNotFound, err.Error()
	default:
		h.logger.Error("request failed", zap.Error(err))
	}

	writeJSON(w, status, ErrorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
