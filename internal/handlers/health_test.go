package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jwebster45206/lifesim-engine/pkg/storage"
)

func TestHealthHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		cacheErr       error
		storeErr       error
		expectedStatus int
		expectedHealth string
		expectedCache  string
		expectedStore  string
	}{
		{
			name:           "all healthy",
			expectedStatus: http.StatusOK,
			expectedHealth: "healthy",
			expectedCache:  "healthy",
			expectedStore:  "healthy",
		},
		{
			name:           "unhealthy cache",
			cacheErr:       errors.New("connection failed"),
			expectedStatus: http.StatusServiceUnavailable,
			expectedHealth: "degraded",
			expectedCache:  "unhealthy",
			expectedStore:  "healthy",
		},
		{
			name:           "unhealthy store",
			storeErr:       errors.New("database is locked"),
			expectedStatus: http.StatusServiceUnavailable,
			expectedHealth: "degraded",
			expectedCache:  "healthy",
			expectedStore:  "unhealthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := storage.NewMockStateCache()
			cache.SetPingError(tt.cacheErr)
			store := storage.NewMockCharacterStore()
			store.SetPingError(tt.storeErr)
			handler := NewHealthHandler(cache, store, testLogger())

			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, rr.Code)
			}
			if rr.Header().Get("Content-Type") != "application/json" {
				t.Errorf("Expected Content-Type application/json, got %s", rr.Header().Get("Content-Type"))
			}

			var response HealthResponse
			if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if response.Status != tt.expectedHealth {
				t.Errorf("Expected status '%s', got '%s'", tt.expectedHealth, response.Status)
			}
			if response.Service != ServiceName {
				t.Errorf("Expected service '%s', got '%s'", ServiceName, response.Service)
			}
			if response.Components["cache"] != tt.expectedCache {
				t.Errorf("Expected cache status '%s', got '%s'", tt.expectedCache, response.Components["cache"])
			}
			if response.Components["store"] != tt.expectedStore {
				t.Errorf("Expected store status '%s', got '%s'", tt.expectedStore, response.Components["store"])
			}
		})
	}
}
