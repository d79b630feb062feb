package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/lberthe/mocktail-machine/internal/adapter/storage"
	"github.com/lberthe/mocktail-machine/internal/core/service"
)

// testServer wires the full stack over a temp-dir file store, with one
// fulfillment worker draining the order queue like cmd/server does.
func testServer(t *testing.T) *httptest.Server {
	t.Helper()

	adapter, err := storage.NewFileAdapter(t.TempDir())
	if err != nil {
		t.Fatalf("open file store: %v", err)
	}
	logger := zap.NewNop()

	inventory := service.NewInventoryService(adapter, nil, logger)
	orders := service.NewOrderService(adapter, inventory, logger, 100)
	reviews := service.NewReviewService(adapter, adapter, logger)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for order := range orders.GetOrderQueue() {
			orders.Fulfill(context.Background(), order)
		}
	}()
	t.Cleanup(func() {
		orders.Close()
		<-done
	})

	h := NewHTTPHandler(orders, inventory, reviews, logger)
	server := httptest.NewServer(h.Routes())
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp, decodeBody(t, resp)
}

func getJSON(t *testing.T, url string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	return resp, decodeBody(t, resp)
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body
}

func TestHealthCheck(t *testing.T) {
	server := testServer(t)

	resp, body := getJSON(t, server.URL+"/health")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if body["status"] != "online" {
		t.Errorf("expected online, got %v", body["status"])
	}
}

func TestCreateOrder_EndToEnd(t *testing.T) {
	server := testServer(t)

	resp, body := postJSON(t, server.URL+"/api/orders", map[string]any{
		"mocktailName": "Sunrise Rouge",
		"ingredients": map[string]int{
			"Jus de Cranberry":   70,
			"Sirop de Grenadine": 20,
			"Sprite":             60,
		},
		"totalVolume": 150,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", resp.StatusCode, body)
	}
	if body["success"] != true {
		t.Fatalf("expected success envelope, got %v", body)
	}
	orderID, _ := body["orderId"].(string)
	if orderID == "" {
		t.Fatal("expected an order id")
	}

	// the fulfillment worker advances the order asynchronously
	deadline := time.Now().Add(2 * time.Second)
	var status string
	for time.Now().Before(deadline) {
		_, orderBody := getJSON(t, server.URL+"/api/orders/"+orderID)
		order, _ := orderBody["order"].(map[string]any)
		status, _ = order["status"].(string)
		if status == "processing" {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if status != "processing" {
		t.Errorf("expected order to reach processing, stuck at %q", status)
	}

	// stock went down
	_, ingBody := getJSON(t, server.URL+"/api/ingredients")
	ingredients, _ := ingBody["ingredients"].([]any)
	for _, raw := range ingredients {
		ing := raw.(map[string]any)
		if ing["ingredientId"] == "cranberry" && ing["currentLevel"].(float64) != 730 {
			t.Errorf("expected cranberry at 730, got %v", ing["currentLevel"])
		}
	}
}

func TestCreateOrder_MissingField(t *testing.T) {
	server := testServer(t)

	resp, body := postJSON(t, server.URL+"/api/orders", map[string]any{
		"mocktailName": "Sunrise Rouge",
		"ingredients":  map[string]int{"Sprite": 60},
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	msg, _ := body["message"].(string)
	if msg == "" || !strings.Contains(msg, "totalVolume") {
		t.Errorf("expected message naming totalVolume, got %q", msg)
	}
}

func TestGetOrder_NotFound(t *testing.T) {
	server := testServer(t)

	resp, _ := getJSON(t, server.URL+"/api/orders/no-such-order")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func TestUpdateOrderStatus_Invalid(t *testing.T) {
	server := testServer(t)

	_, body := postJSON(t, server.URL+"/api/orders", map[string]any{
		"mocktailName": "Citrus Fizz",
		"ingredients":  map[string]int{"Sprite": 100},
		"totalVolume":  150,
	})
	orderID := body["orderId"].(string)

	data, _ := json.Marshal(map[string]string{"status": "teleported"})
	req, _ := http.NewRequest(http.MethodPut,
		server.URL+"/api/orders/"+orderID+"/status", bytes.NewReader(data))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT status: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown status, got %d", resp.StatusCode)
	}
}

func TestReviewFlow(t *testing.T) {
	server := testServer(t)

	// the recipe ref is a display name here; resolution maps it to the id
	resp, body := postJSON(t, server.URL+"/api/recipes/Sunrise Rouge/reviews", map[string]any{
		"author":  "Alice",
		"rating":  3.5,
		"comment": "bien frais",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", resp.StatusCode, body)
	}

	// out-of-range rating is rejected
	resp, _ = postJSON(t, server.URL+"/api/recipes/sunrise_rouge/reviews", map[string]any{
		"author": "Bob",
		"rating": 6.0,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for rating 6.0, got %d", resp.StatusCode)
	}

	// listing by id finds the review added by name
	_, listBody := getJSON(t, server.URL+"/api/recipes/sunrise_rouge/reviews")
	reviews, _ := listBody["reviews"].([]any)
	if len(reviews) != 1 {
		t.Fatalf("expected 1 review, got %d", len(reviews))
	}

	// the recipe aggregate reflects the single review
	_, recipesBody := getJSON(t, server.URL+"/api/recipes")
	for _, raw := range recipesBody["mocktails"].([]any) {
		recipe := raw.(map[string]any)
		if recipe["mocktailId"] == "sunrise_rouge" {
			if recipe["rating"].(float64) != 3.5 || recipe["reviewCount"].(float64) != 1 {
				t.Errorf("aggregate mismatch: %v/%v", recipe["rating"], recipe["reviewCount"])
			}
		}
	}
}

func TestCheckAvailability(t *testing.T) {
	server := testServer(t)

	// seeded citron level is 600
	resp, body := postJSON(t, server.URL+"/api/ingredients/check", map[string]any{
		"ingredients": map[string]int{"Jus de Citron": 700},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	availability, _ := body["availability"].(map[string]any)
	if availability["available"] != false {
		t.Errorf("expected unavailable, got %v", availability)
	}
	shortfalls, _ := availability["shortfalls"].([]any)
	if len(shortfalls) != 1 {
		t.Fatalf("expected 1 shortfall, got %d", len(shortfalls))
	}
	sf := shortfalls[0].(map[string]any)
	if sf["requested"].(float64) != 700 || sf["available"].(float64) != 600 {
		t.Errorf("shortfall should carry requested and available: %v", sf)
	}
}

func TestSetIngredientLevel(t *testing.T) {
	server := testServer(t)

	data, _ := json.Marshal(map[string]int{"level": 1000})
	req, _ := http.NewRequest(http.MethodPut,
		server.URL+"/api/ingredients/sprite/level", bytes.NewReader(data))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT level: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	_, body := getJSON(t, server.URL+"/api/ingredients")
	for _, raw := range body["ingredients"].([]any) {
		ing := raw.(map[string]any)
		if ing["ingredientId"] == "sprite" && ing["currentLevel"].(float64) != 1000 {
			t.Errorf("expected sprite at 1000, got %v", ing["currentLevel"])
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	server := testServer(t)

	req, _ := http.NewRequest(http.MethodOptions, server.URL+"/api/orders", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("OPTIONS: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("expected 204, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Error("expected permissive CORS header")
	}
}
