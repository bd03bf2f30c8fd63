package classifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/certwatch/backend/internal/domain"
)

func TestNewClient(t *testing.T) {
	client := NewClient("test-api-key", "https://classifier.example.com", 10*time.Second)

	assert.NotNil(t, client)
	assert.Equal(t, "test-api-key", client.apiKey)
	assert.Equal(t, "https://classifier.example.com", client.baseURL)
	assert.NotNil(t, client.httpClient)
	assert.NotNil(t, client.rateLimiter)
	assert.False(t, client.debug)
	assert.Equal(t, 10*time.Second, client.httpClient.Timeout)
}

func TestNewClientDefaultTimeout(t *testing.T) {
	client := NewClient("key", "https://classifier.example.com", 0)
	assert.Equal(t, 30*time.Second, client.httpClient.Timeout)
}

func TestSetDebug(t *testing.T) {
	client := NewClient("key", "https://classifier.example.com", 0)

	assert.False(t, client.debug)

	client.SetDebug(true)
	assert.True(t, client.debug)

	client.SetDebug(false)
	assert.False(t, client.debug)
}

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 500 * time.Millisecond},
		{2, 1 * time.Second},
		{3, 2 * time.Second},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, exponentialBackoff(tt.attempt))
	}
}

func TestClassify(t *testing.T) {
	t.Run("successful classification", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/v1/classify", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

			var req domain.ClassifyRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "Skin Analyzer Pro", req.DeviceName)

			json.NewEncoder(w).Encode(domain.ClassifyResponse{
				IsRelated:  true,
				Confidence: 0.93,
				Reason:     "3D facial imaging device",
				Category:   "skin analysis device",
			})
		}))
		defer server.Close()

		client := NewClient("test-key", server.URL, 5*time.Second)

		verdict, err := client.Classify(context.Background(), domain.ClassifyRequest{
			DeviceName:   "Skin Analyzer Pro",
			Manufacturer: "DermaTech",
			Description:  "3D imaging",
			EntityType:   "Recall",
		})

		require.NoError(t, err)
		assert.True(t, verdict.IsRelated)
		assert.Equal(t, 0.93, verdict.Confidence)
		assert.Equal(t, "3D facial imaging device", verdict.Reason)
	})

	t.Run("omits authorization header without API key", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Empty(t, r.Header.Get("Authorization"))
			json.NewEncoder(w).Encode(domain.ClassifyResponse{Confidence: 0.5, Reason: "ok"})
		}))
		defer server.Close()

		client := NewClient("", server.URL, 5*time.Second)
		_, err := client.Classify(context.Background(), domain.ClassifyRequest{})
		require.NoError(t, err)
	})

	t.Run("retries server errors and succeeds", func(t *testing.T) {
		attempts := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts++
			if attempts < 3 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			json.NewEncoder(w).Encode(domain.ClassifyResponse{IsRelated: false, Confidence: 0.6, Reason: "unrelated"})
		}))
		defer server.Close()

		client := NewClient("key", server.URL, 5*time.Second)
		verdict, err := client.Classify(context.Background(), domain.ClassifyRequest{DeviceName: "X"})

		require.NoError(t, err)
		assert.Equal(t, 3, attempts)
		assert.False(t, verdict.IsRelated)
	})

	t.Run("gives up after three attempts", func(t *testing.T) {
		attempts := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts++
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := NewClient("key", server.URL, 5*time.Second)
		_, err := client.Classify(context.Background(), domain.ClassifyRequest{DeviceName: "X"})

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrClassifierFailure)
		assert.Equal(t, 3, attempts)
	})

	t.Run("does not retry client errors", func(t *testing.T) {
		attempts := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts++
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		client := NewClient("key", server.URL, 5*time.Second)
		_, err := client.Classify(context.Background(), domain.ClassifyRequest{DeviceName: "X"})

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrClassifierFailure)
		assert.Equal(t, 1, attempts)
	})

	t.Run("rejects malformed response body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}))
		defer server.Close()

		client := NewClient("key", server.URL, 5*time.Second)
		_, err := client.Classify(context.Background(), domain.ClassifyRequest{DeviceName: "X"})

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrClassifierFailure)
	})

	t.Run("rejects out-of-range confidence", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(domain.ClassifyResponse{IsRelated: true, Confidence: 1.4, Reason: "bad"})
		}))
		defer server.Close()

		client := NewClient("key", server.URL, 5*time.Second)
		_, err := client.Classify(context.Background(), domain.ClassifyRequest{DeviceName: "X"})

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrClassifierFailure)
	})

	t.Run("cancelled context aborts the call", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		client := NewClient("key", server.URL, 5*time.Second)
		_, err := client.Classify(ctx, domain.ClassifyRequest{DeviceName: "X"})

		require.Error(t, err)
	})
}
