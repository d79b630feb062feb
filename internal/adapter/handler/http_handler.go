package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/lberthe/mocktail-machine/internal/core/domain"
	"github.com/lberthe/mocktail-machine/internal/core/service"
)

// HTTPHandler is the API surface: a thin JSON adapter over the core
// services. Every response uses the {success, message, ...} envelope.
type HTTPHandler struct {
	orders    *service.OrderService
	inventory *service.InventoryService
	reviews   *service.ReviewService
	logger    *zap.Logger
}

func NewHTTPHandler(orders *service.OrderService, inventory *service.InventoryService, reviews *service.ReviewService, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{
		orders:    orders,
		inventory: inventory,
		reviews:   reviews,
		logger:    logger,
	}
}

// Routes registers every endpoint on a fresh mux wrapped with CORS.
func (h *HTTPHandler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.HealthCheck)

	mux.HandleFunc("POST /api/orders", h.CreateOrder)
	mux.HandleFunc("GET /api/orders", h.ListOrders)
	mux.HandleFunc("GET /api/orders/{id}", h.GetOrder)
	mux.HandleFunc("PUT /api/orders/{id}/status", h.UpdateOrderStatus)

	mux.HandleFunc("GET /api/recipes", h.ListRecipes)
	mux.HandleFunc("POST /api/recipes/{ref}/reviews", h.AddReview)
	mux.HandleFunc("GET /api/recipes/{ref}/reviews", h.ListReviews)
	mux.HandleFunc("PUT /api/recipes/{ref}/reviews/{reviewId}", h.UpdateReview)
	mux.HandleFunc("DELETE /api/recipes/{ref}/reviews/{reviewId}", h.DeleteReview)

	mux.HandleFunc("GET /api/ingredients", h.ListIngredients)
	mux.HandleFunc("POST /api/ingredients/check", h.CheckAvailability)
	mux.HandleFunc("PUT /api/ingredients/{id}/level", h.SetIngredientLevel)

	return corsMiddleware(mux)
}

// corsMiddleware allows any origin, matching the permissive CORS setup the
// kiosk clients expect.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "online",
		"timestamp": time.Now().Unix(),
	})
}

type createOrderRequest struct {
	MocktailName string         `json:"mocktailName"`
	Ingredients  map[string]int `json:"ingredients"`
	TotalVolume  int            `json:"totalVolume"`
}

func (h *HTTPHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Message: "invalid request body"})
		return
	}

	orderID, err := h.orders.CreateOrder(r.Context(), req.MocktailName, req.Ingredients, req.TotalVolume)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Mocktail order received and processing",
		"orderId": orderID,
	})
}

func (h *HTTPHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.GetOrder(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"order":   order,
	})
}

func (h *HTTPHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListOrders(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"orders":  orders,
	})
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *HTTPHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Message: "invalid request body"})
		return
	}

	err := h.orders.UpdateStatus(r.Context(), r.PathValue("id"), domain.OrderStatus(req.Status))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "order status updated"})
}

func (h *HTTPHandler) ListRecipes(w http.ResponseWriter, r *http.Request) {
	recipes, err := h.reviews.ListRecipes(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	if recipes == nil {
		recipes = []domain.Recipe{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"mocktails": recipes,
	})
}

type reviewRequest struct {
	Author  string  `json:"author"`
	Rating  float64 `json:"rating"`
	Comment string  `json:"comment"`
}

func (h *HTTPHandler) AddReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Message: "invalid request body"})
		return
	}

	reviewID, err := h.reviews.AddReview(r.Context(), r.PathValue("ref"), req.Author, req.Rating, req.Comment, time.Time{})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"message":  "review added",
		"reviewId": reviewID,
	})
}

func (h *HTTPHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviews.ListReviews(r.Context(), r.PathValue("ref"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"reviews": reviews,
	})
}

func (h *HTTPHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Message: "invalid request body"})
		return
	}

	err := h.reviews.UpdateReview(r.Context(), r.PathValue("reviewId"), r.PathValue("ref"), req.Rating, req.Comment)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "review updated"})
}

func (h *HTTPHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	err := h.reviews.DeleteReview(r.Context(), r.PathValue("reviewId"), r.PathValue("ref"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "review deleted"})
}

func (h *HTTPHandler) ListIngredients(w http.ResponseWriter, r *http.Request) {
	ingredients, err := h.inventory.Levels(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	if ingredients == nil {
		ingredients = []domain.Ingredient{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"ingredients": ingredients,
	})
}

type checkAvailabilityRequest struct {
	Ingredients map[string]int `json:"ingredients"`
}

func (h *HTTPHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	var req checkAvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Message: "invalid request body"})
		return
	}
	if len(req.Ingredients) == 0 {
		writeJSON(w, http.StatusBadRequest, envelope{Message: "missing required field: ingredients"})
		return
	}

	result, err := h.inventory.CheckAvailability(r.Context(), req.Ingredients)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"availability": result,
	})
}

type setLevelRequest struct {
	Level *int `json:"level"`
}

func (h *HTTPHandler) SetIngredientLevel(w http.ResponseWriter, r *http.Request) {
	var req setLevelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Message: "invalid request body"})
		return
	}
	if req.Level == nil {
		writeJSON(w, http.StatusBadRequest, envelope{Message: "missing required field: level"})
		return
	}

	if err := h.inventory.SetLevel(r.Context(), r.PathValue("id"), *req.Level); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "ingredient level updated"})
}

// writeError maps core errors to HTTP statuses without leaking storage
// internals.
func (h *HTTPHandler) writeError(w http.ResponseWriter, err error) {
	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, envelope{Message: validationErr.Error()})
	case errors.Is(err, service.ErrNotFound):
		writeJSON(w, http.StatusNotFound, envelope{Message: err.Error()})
	default:
		h.logger.Error("request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, envelope{Message: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
