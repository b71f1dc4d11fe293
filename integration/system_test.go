//go:build integration
// +build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"testing"
	"time"
)

// Runs against a catalogd pointed at a devstore, e.g.
// CATALOGDESK_REMOTE_BASE_URL=http://localhost:8082.
var baseURL = getenv("E2E_BASE_URL", "http://localhost:8090")

type product struct {
	ID       int     `json:"id"`
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
}

type mutation struct {
	Product    *product `json:"product"`
	NavigateTo string   `json:"navigate_to"`
}

func TestSystem_E2E_ProductLifecycle(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	waitReady(t, ctx, baseURL+"/readyz")

	title := fmt.Sprintf("E2E Lamp %d_%d", time.Now().Unix(), rand.Intn(100000))

	var created mutation
	doJSON(t, http.MethodPost, baseURL+"/products", map[string]any{
		"title":       title,
		"price":       "19.99",
		"description": "created by the e2e suite",
		"image":       "https://example.com/e2e.png",
		"category":    "e2e",
	}, &created, 201)
	if created.Product == nil || created.Product.ID == 0 {
		t.Fatalf("created product has no id: %#v", created)
	}
	id := created.Product.ID

	doJSON(t, http.MethodPost, baseURL+"/catalog/reload", nil, nil, 200)

	var list struct {
		Products []product `json:"products"`
	}
	doJSON(t, http.MethodGet, baseURL+"/products?category=e2e&q="+url.QueryEscape(title), nil, &list, 200)
	if len(list.Products) != 1 || list.Products[0].ID != id {
		t.Fatalf("filtered list does not hold the new product: %#v", list.Products)
	}

	var updated mutation
	doJSON(t, http.MethodPut, fmt.Sprintf("%s/products/%d", baseURL, id), map[string]any{
		"title":       title + " v2",
		"price":       21,
		"description": "updated by the e2e suite",
		"image":       "https://example.com/e2e.png",
		"category":    "e2e",
	}, &updated, 200)
	if updated.NavigateTo != fmt.Sprintf("/product/%d", id) {
		t.Fatalf("navigate_to=%q", updated.NavigateTo)
	}

	if os.Getenv("E2E_RESTART_DEVSTORE") == "1" {
		// Products only survive this with a database behind devstore.
		restartService(t, ctx, "devstore")
		waitReady(t, ctx, baseURL+"/readyz")
	}

	var got product
	doJSON(t, http.MethodGet, fmt.Sprintf("%s/products/%d", baseURL, id), nil, &got, 200)
	if got.Title != title+" v2" {
		t.Fatalf("title=%q", got.Title)
	}

	doJSON(t, http.MethodDelete, fmt.Sprintf("%s/products/%d", baseURL, id), nil, nil, 200)
	doJSON(t, http.MethodDelete, fmt.Sprintf("%s/products/%d", baseURL, id), nil, nil, 404)
}

func TestSystem_E2E_InvalidDraft(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	waitReady(t, ctx, baseURL+"/readyz")

	var resp struct {
		Details struct {
			Fields []struct {
				Field string `json:"field"`
			} `json:"fields"`
		} `json:"details"`
	}
	doJSON(t, http.MethodPost, baseURL+"/products", map[string]any{"title": "", "price": "-1"}, &resp, 400)
	if len(resp.Details.Fields) == 0 {
		t.Fatalf("expected field errors")
	}
}

func waitReady(t *testing.T, ctx context.Context, url string) {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}

	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		resp, err := client.Do(req)
		if err == nil && resp != nil && resp.StatusCode == 200 {
			_ = resp.Body.Close()
			return
		}
		if resp != nil {
			_ = resp.Body.Close()
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("service not ready: %s", url)
}

func doJSON(t *testing.T, method, url string, body any, out any, want int) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		t.Fatalf("%s %s: status=%d want=%d", method, url, resp.StatusCode, want)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
