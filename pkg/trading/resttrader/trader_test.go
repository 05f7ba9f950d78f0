package resttrader

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jalleo/nodion/pkg/trading"
)

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	_, err := New("", "", nil)
	assert.Error(t, err)

	_, err = New("ftp://example.com", "", nil)
	assert.Error(t, err)

	trader, err := New("http://localhost:8080/", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", trader.baseURL)
}

func TestSellPosition_Success(t *testing.T) {
	t.Parallel()

	var gotPath, gotAuth string

	var gotBody sellRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")

		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(trading.TradeReceipt{
			OrderID:    "ord-42",
			Symbol:     gotBody.Symbol,
			Percentage: gotBody.Percentage,
			Price:      123.45,
			ExecutedAt: time.Now().UTC(),
		})
	}))
	defer server.Close()

	trader, err := New(server.URL, "secret-token", nil)
	require.NoError(t, err)

	receipt, err := trader.SellPosition(context.Background(), "ETH-USD", 25)
	require.NoError(t, err)

	assert.Equal(t, "/positions/sell", gotPath)
	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, "ETH-USD", gotBody.Symbol)
	assert.InDelta(t, 25.0, gotBody.Percentage, 0.001)
	assert.Equal(t, "ord-42", receipt.OrderID)
	assert.InDelta(t, 123.45, receipt.Price, 0.001)
}

func TestSellPosition_RejectsBadArguments(t *testing.T) {
	t.Parallel()

	trader, err := New("http://localhost:8080", "", nil)
	require.NoError(t, err)

	_, err = trader.SellPosition(context.Background(), "", 25)
	assert.Error(t, err)

	_, err = trader.SellPosition(context.Background(), "ETH-USD", 0)
	assert.Error(t, err)

	_, err = trader.SellPosition(context.Background(), "ETH-USD", 101)
	assert.Error(t, err)
}

func TestSellPosition_SurfacesAPIErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "position not found", http.StatusNotFound)
	}))
	defer server.Close()

	trader, err := New(server.URL, "", nil)
	require.NoError(t, err)

	_, err = trader.SellPosition(context.Background(), "ETH-USD", 25)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
	assert.Contains(t, err.Error(), "position not found")
}

func TestSellPosition_StampsMissingExecutionTime(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"order_id":"ord-7","symbol":"ETH-USD","percentage":10,"price":99.9}`))
	}))
	defer server.Close()

	trader, err := New(server.URL, "", nil)
	require.NoError(t, err)

	receipt, err := trader.SellPosition(context.Background(), "ETH-USD", 10)
	require.NoError(t, err)
	assert.False(t, receipt.ExecutedAt.IsZero())
}
