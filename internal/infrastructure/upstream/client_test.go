package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aioutlet/admin-service/internal/core/domain"
	"github.com/aioutlet/admin-service/internal/pkg/reqctx"
)

const userID = "507f1f77bcf86cd799439011"

type recorded struct {
	method  string
	path    string
	headers http.Header
	body    []byte
}

type recorder struct {
	mu    sync.Mutex
	calls []recorded
}

func (r *recorder) list() []recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recorded(nil), r.calls...)
}

// newServer starts a fake upstream answering every request with status and body.
func newServer(t *testing.T, status int, body string) (*httptest.Server, *recorder) {
	t.Helper()
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		rec.mu.Lock()
		rec.calls = append(rec.calls, recorded{method: r.Method, path: r.URL.Path, headers: r.Header.Clone(), body: b})
		rec.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func TestUserClient_FetchUserByID_ForwardsHeaders(t *testing.T) {
	srv, calls := newServer(t, http.StatusOK, `{"_id":"`+userID+`","name":"Ann"}`)
	client := NewUserClient(srv.URL, time.Second, zerolog.Nop())

	ctx := reqctx.WithCorrelationID(context.Background(), "cid-42")
	ctx = reqctx.WithTrace(ctx, reqctx.Trace{TraceID: "4bf92f3577b34da6a3ce929d0e0e4736", SpanID: "00f067aa0ba902b7", Flags: "01"})

	raw, err := client.FetchUserByID(ctx, userID, "tok")
	require.NoError(t, err)
	assert.JSONEq(t, `{"_id":"`+userID+`","name":"Ann"}`, string(raw))

	require.Len(t, calls.list(), 1)
	got := calls.list()[0]
	assert.Equal(t, http.MethodGet, got.method)
	assert.Equal(t, "/api/admin/users/"+userID, got.path)
	assert.Equal(t, "Bearer tok", got.headers.Get("Authorization"))
	assert.Equal(t, "cid-42", got.headers.Get(reqctx.HeaderCorrelationID))
	assert.Equal(t, "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01", got.headers.Get(reqctx.HeaderTraceParent))
}

func TestUserClient_UpdateUserByID_SendsPayload(t *testing.T) {
	srv, calls := newServer(t, http.StatusOK, `{"id":"`+userID+`","isActive":false}`)
	client := NewUserClient(srv.URL, time.Second, zerolog.Nop())

	raw, err := client.UpdateUserByID(context.Background(), userID, domain.UpdatePayload{"isActive": false}, "tok")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"`+userID+`","isActive":false}`, string(raw))

	require.Len(t, calls.list(), 1)
	got := calls.list()[0]
	assert.Equal(t, http.MethodPatch, got.method)
	assert.Equal(t, "application/json", got.headers.Get("Content-Type"))

	var sent map[string]any
	require.NoError(t, json.Unmarshal(got.body, &sent))
	assert.Equal(t, map[string]any{"isActive": false}, sent)
}

func TestUserClient_RemoveUserByID(t *testing.T) {
	srv, calls := newServer(t, http.StatusNoContent, "")
	client := NewUserClient(srv.URL, time.Second, zerolog.Nop())

	require.NoError(t, client.RemoveUserByID(context.Background(), userID, "tok"))
	require.Len(t, calls.list(), 1)
	assert.Equal(t, http.MethodDelete, calls.list()[0].method)
}

func TestClient_HTTPErrorMapsToUpstreamError(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"message field", http.StatusNotFound, `{"message":"User not found"}`, "User not found"},
		{"error string", http.StatusConflict, `{"error":"duplicate email"}`, "duplicate email"},
		{"nested error", http.StatusBadRequest, `{"error":{"code":"X","message":"bad field"}}`, "bad field"},
		{"plain text", http.StatusBadGateway, `oops`, http.StatusText(http.StatusBadGateway)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv, calls := newServer(t, tc.status, tc.body)
			client := NewUserClient(srv.URL, time.Second, zerolog.Nop())

			_, err := client.FetchUserByID(context.Background(), userID, "tok")
			require.Error(t, err)

			var uerr *domain.UpstreamError
			require.True(t, errors.As(err, &uerr))
			assert.Equal(t, tc.status, uerr.StatusCode)
			assert.Equal(t, tc.message, uerr.Message)
			assert.Equal(t, "user", uerr.Service)
			assert.Len(t, calls.list(), 1, "no retries")
		})
	}
}

func TestClient_TransportError(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, "[]")
	url := srv.URL
	srv.Close()

	client := NewOrderClient(url, time.Second, zerolog.Nop())
	_, err := client.FetchAllOrders(context.Background(), "tok")

	var uerr *domain.UpstreamError
	require.True(t, errors.As(err, &uerr))
	assert.Zero(t, uerr.StatusCode)
	assert.Error(t, uerr.Err)
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	client := NewProductClient(srv.URL, 50*time.Millisecond, zerolog.Nop())
	_, err := client.FetchAllProducts(context.Background(), "tok")

	var uerr *domain.UpstreamError
	require.True(t, errors.As(err, &uerr))
	assert.Zero(t, uerr.StatusCode)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCatalogClients_DecodeListShapes(t *testing.T) {
	t.Run("bare array", func(t *testing.T) {
		srv, calls := newServer(t, http.StatusOK, `[{"id":"o1","status":1,"totalAmount":9.5},{"id":"o2","status":"Delivered"}]`)
		orders, err := NewOrderClient(srv.URL, time.Second, zerolog.Nop()).FetchAllOrders(context.Background(), "tok")
		require.NoError(t, err)
		require.Len(t, orders, 2)
		assert.Equal(t, domain.OrderProcessing, orders[0].Status)
		assert.Equal(t, domain.OrderCompleted, orders[1].Status)
		assert.Equal(t, "/api/orders", calls.list()[0].path)
	})

	t.Run("data envelope", func(t *testing.T) {
		srv, calls := newServer(t, http.StatusOK, `{"success":true,"data":[{"id":"p1","stock":3}]}`)
		products, err := NewProductClient(srv.URL, time.Second, zerolog.Nop()).FetchAllProducts(context.Background(), "tok")
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, 3, products[0].Stock)
		assert.Equal(t, "/api/products", calls.list()[0].path)
	})

	t.Run("empty body", func(t *testing.T) {
		srv, _ := newServer(t, http.StatusOK, ``)
		reviews, err := NewReviewClient(srv.URL, time.Second, zerolog.Nop()).FetchAllReviews(context.Background(), "tok")
		require.NoError(t, err)
		assert.Empty(t, reviews)
	})

	t.Run("malformed", func(t *testing.T) {
		srv, _ := newServer(t, http.StatusOK, `{"data":"nope"}`)
		_, err := NewReviewClient(srv.URL, time.Second, zerolog.Nop()).FetchAllReviews(context.Background(), "tok")
		var uerr *domain.UpstreamError
		require.True(t, errors.As(err, &uerr))
		assert.Equal(t, "malformed upstream response", uerr.Message)
	})
}

func TestUserClient_ListUsers_MongoIDs(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, `[{"_id":"a","role":"admin","createdAt":"2025-01-02T03:04:05Z"}]`)
	users, err := NewUserClient(srv.URL, time.Second, zerolog.Nop()).ListUsers(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "a", users[0].ID)
	assert.Equal(t, "admin", users[0].PrimaryRole())
}

func TestClient_Ping(t *testing.T) {
	srv, calls := newServer(t, http.StatusOK, `{"status":"healthy"}`)
	require.NoError(t, NewClient("user", srv.URL+"/", time.Second, zerolog.Nop()).Ping(context.Background()))
	assert.Equal(t, "/health", calls.list()[0].path)
	assert.Empty(t, calls.list()[0].headers.Get("Authorization"))
}
