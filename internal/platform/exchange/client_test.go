package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/predictlabs/predictbot/internal/crypto"
	"github.com/predictlabs/predictbot/internal/domain"
)

func TestGetOrderBook_ParsesExactDecimals(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/markets/m1/orderbook" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("outcome"); got != "Yes" {
			t.Errorf("outcome = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"marketId": "m1",
			"outcome": "Yes",
			"bids": [{"price":"0.60","size":"10"},{"price":"0.58","size":"3"}],
			"asks": [{"price":"0.55","size":"8"}],
			"timestamp": 1700000000000
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	book, err := client.GetOrderBook(context.Background(), "m1", "Yes")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bid, ok := book.BestBid()
	if !ok || bid.Price.String() != "0.6" {
		t.Errorf("best bid = %v (ok=%v), want 0.6", bid.Price, ok)
	}
	ask, ok := book.BestAsk()
	if !ok || ask.Price.String() != "0.55" {
		t.Errorf("best ask = %v (ok=%v), want 0.55", ask.Price, ok)
	}
	if ask.Size.String() != "8" {
		t.Errorf("ask size = %v, want 8", ask.Size)
	}
}

func TestGetOrderBook_RejectsMalformedPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"marketId":"m1","outcome":"Yes","bids":[{"price":"oops","size":"1"}],"asks":[]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	if _, err := client.GetOrderBook(context.Background(), "m1", "Yes"); err == nil {
		t.Fatal("expected parse error for malformed price")
	}
}

func TestCreateOrder_SendsDecimalStringsAndAuth(t *testing.T) {
	var captured createOrderRequest
	var gotKey, gotSig string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/orders" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotKey = r.Header.Get("X-API-KEY")
		gotSig = r.Header.Get("X-API-SIGNATURE")
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.Write([]byte(`{"id":"o1","marketId":"m1","outcome":"Yes","side":"buy","price":"0.41","size":"20","status":"open","createdAt":1700000000000}`))
	}))
	defer srv.Close()

	auth := &crypto.HMACAuth{Key: "k1", Secret: "s1"}
	client := NewClient(srv.URL, auth)

	req := domain.OrderRequest{
		MarketID: "m1",
		Outcome:  "Yes",
		Side:     domain.OrderSideBuy,
		Price:    mustDecimal(t, "0.41"),
		Size:     mustDecimal(t, "20"),
	}
	order, err := client.CreateOrder(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if captured.Price != "0.41" || captured.Size != "20" {
		t.Errorf("wire payload price=%q size=%q, want decimal strings", captured.Price, captured.Size)
	}
	if gotKey != "k1" || gotSig == "" {
		t.Errorf("auth headers missing: key=%q sig=%q", gotKey, gotSig)
	}
	if order.ID != "o1" || order.Status != domain.OrderStatusOpen {
		t.Errorf("order = %+v", order)
	}
}

func TestDoRequest_MapsStatusCodes(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, domain.ErrNotFound},
		{http.StatusUnauthorized, domain.ErrUnauthorized},
		{http.StatusForbidden, domain.ErrUnauthorized},
		{http.StatusTooManyRequests, domain.ErrRateLimited},
	}

	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))

		client := NewClient(srv.URL, nil)
		_, err := client.GetMarket(context.Background(), "m1")
		if !errors.Is(err, tt.want) {
			t.Errorf("status %d: err = %v, want %v", tt.status, err, tt.want)
		}
		srv.Close()
	}
}

func TestGetTrades_ParsesMakerTaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("limit"); got != "50" {
			t.Errorf("limit = %q", got)
		}
		w.Write([]byte(`[
			{"id":"t1","marketId":"m1","outcome":"Yes","side":"buy","price":"0.40","size":"50","timestamp":1700000000000,"maker":"0xM","taker":"0xT"}
		]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	trades, err := client.GetTrades(context.Background(), "m1", 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(trades) != 1 {
		t.Fatalf("got %d trades, want 1", len(trades))
	}
	tr := trades[0]
	if tr.Maker != "0xM" || tr.Taker != "0xT" {
		t.Errorf("maker=%q taker=%q", tr.Maker, tr.Taker)
	}
	if tr.Price.String() != "0.4" || tr.Size.String() != "50" {
		t.Errorf("price=%v size=%v", tr.Price, tr.Size)
	}
}
