package exchange

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/predictlabs/predictbot/internal/domain"
)

// Wire DTOs for the exchange REST API. Prices and sizes arrive as decimal
// strings and are parsed exactly; a malformed number is an error, not a zero.

// APIMarket mirrors the /markets response shape.
type APIMarket struct {
	ID        string   `json:"id"`
	Question  string   `json:"question"`
	Active    bool     `json:"active"`
	Outcomes  []string `json:"outcomes"`
	CreatedAt int64    `json:"createdAt"` // unix millis
}

// ToDomainMarket converts an APIMarket to the domain representation.
func (m *APIMarket) ToDomainMarket() domain.Market {
	return domain.Market{
		ID:        m.ID,
		Question:  m.Question,
		Active:    m.Active,
		Outcomes:  m.Outcomes,
		CreatedAt: time.UnixMilli(m.CreatedAt).UTC(),
	}
}

// APIPriceLevel mirrors one orderbook level.
type APIPriceLevel struct {
	Price     string `json:"price"`
	Size      string `json:"size"`
	Maker     string `json:"maker,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

func (l *APIPriceLevel) toDomain() (domain.PriceLevel, error) {
	price, err := decimal.NewFromString(l.Price)
	if err != nil {
		return domain.PriceLevel{}, fmt.Errorf("parse level price %q: %w", l.Price, err)
	}
	size, err := decimal.NewFromString(l.Size)
	if err != nil {
		return domain.PriceLevel{}, fmt.Errorf("parse level size %q: %w", l.Size, err)
	}
	return domain.PriceLevel{
		Price:     price,
		Size:      size,
		Maker:     l.Maker,
		Timestamp: time.UnixMilli(l.Timestamp).UTC(),
	}, nil
}

// APIOrderBook mirrors the /markets/:id/orderbook response shape.
type APIOrderBook struct {
	MarketID  string          `json:"marketId"`
	Outcome   string          `json:"outcome"`
	Bids      []APIPriceLevel `json:"bids"`
	Asks      []APIPriceLevel `json:"asks"`
	Timestamp int64           `json:"timestamp"`
}

// ToDomainOrderBook converts an APIOrderBook to the domain representation.
func (b *APIOrderBook) ToDomainOrderBook() (domain.OrderBook, error) {
	book := domain.OrderBook{
		MarketID:  b.MarketID,
		Outcome:   b.Outcome,
		Bids:      make([]domain.PriceLevel, 0, len(b.Bids)),
		Asks:      make([]domain.PriceLevel, 0, len(b.Asks)),
		Timestamp: time.UnixMilli(b.Timestamp).UTC(),
	}
	for i := range b.Bids {
		lvl, err := b.Bids[i].toDomain()
		if err != nil {
			return domain.OrderBook{}, fmt.Errorf("bid %d: %w", i, err)
		}
		book.Bids = append(book.Bids, lvl)
	}
	for i := range b.Asks {
		lvl, err := b.Asks[i].toDomain()
		if err != nil {
			return domain.OrderBook{}, fmt.Errorf("ask %d: %w", i, err)
		}
		book.Asks = append(book.Asks, lvl)
	}
	return book, nil
}

// APITrade mirrors one entry of the /markets/:id/trades response.
type APITrade struct {
	ID        string `json:"id"`
	MarketID  string `json:"marketId"`
	Outcome   string `json:"outcome"`
	Side      string `json:"side"`
	Price     string `json:"price"`
	Size      string `json:"size"`
	Timestamp int64  `json:"timestamp"`
	Maker     string `json:"maker"`
	Taker     string `json:"taker"`
}

// ToDomainTrade converts an APITrade to the domain representation.
func (t *APITrade) ToDomainTrade() (domain.Trade, error) {
	price, err := decimal.NewFromString(t.Price)
	if err != nil {
		return domain.Trade{}, fmt.Errorf("parse trade price %q: %w", t.Price, err)
	}
	size, err := decimal.NewFromString(t.Size)
	if err != nil {
		return domain.Trade{}, fmt.Errorf("parse trade size %q: %w", t.Size, err)
	}
	return domain.Trade{
		ID:        t.ID,
		MarketID:  t.MarketID,
		Outcome:   t.Outcome,
		Side:      domain.OrderSide(t.Side),
		Price:     price,
		Size:      size,
		Timestamp: time.UnixMilli(t.Timestamp).UTC(),
		Maker:     t.Maker,
		Taker:     t.Taker,
	}, nil
}

// APIAccount mirrors the /accounts/:addr response shape.
type APIAccount struct {
	Address string `json:"address"`
	Balance string `json:"balance"`
}

// ToDomainAccount converts an APIAccount to the domain representation.
func (a *APIAccount) ToDomainAccount() (domain.Account, error) {
	balance, err := decimal.NewFromString(a.Balance)
	if err != nil {
		return domain.Account{}, fmt.Errorf("parse balance %q: %w", a.Balance, err)
	}
	return domain.Account{Address: a.Address, Balance: balance}, nil
}

// APIPosition mirrors one entry of the /accounts/:addr/positions response.
type APIPosition struct {
	MarketID      string `json:"marketId"`
	Outcome       string `json:"outcome"`
	Side          string `json:"side"`
	Size          string `json:"size"`
	AvgPrice      string `json:"avgPrice"`
	UnrealizedPnL string `json:"unrealizedPnl"`
	RealizedPnL   string `json:"realizedPnl"`
}

// ToDomainPosition converts an APIPosition to the domain representation.
func (p *APIPosition) ToDomainPosition() (domain.Position, error) {
	size, err := decimal.NewFromString(p.Size)
	if err != nil {
		return domain.Position{}, fmt.Errorf("parse position size %q: %w", p.Size, err)
	}
	avg, err := decimal.NewFromString(p.AvgPrice)
	if err != nil {
		return domain.Position{}, fmt.Errorf("parse position avg price %q: %w", p.AvgPrice, err)
	}
	// PnL fields may be absent on fresh positions.
	upnl := decimal.Zero
	if p.UnrealizedPnL != "" {
		if upnl, err = decimal.NewFromString(p.UnrealizedPnL); err != nil {
			return domain.Position{}, fmt.Errorf("parse unrealized pnl %q: %w", p.UnrealizedPnL, err)
		}
	}
	rpnl := decimal.Zero
	if p.RealizedPnL != "" {
		if rpnl, err = decimal.NewFromString(p.RealizedPnL); err != nil {
			return domain.Position{}, fmt.Errorf("parse realized pnl %q: %w", p.RealizedPnL, err)
		}
	}
	return domain.Position{
		MarketID:      p.MarketID,
		Outcome:       p.Outcome,
		Side:          domain.OrderSide(p.Side),
		Size:          size,
		AvgPrice:      avg,
		UnrealizedPnL: upnl,
		RealizedPnL:   rpnl,
	}, nil
}

// APIOrder mirrors the /orders responses.
type APIOrder struct {
	ID        string `json:"id"`
	MarketID  string `json:"marketId"`
	Outcome   string `json:"outcome"`
	Side      string `json:"side"`
	Price     string `json:"price"`
	Size      string `json:"size"`
	Status    string `json:"status"`
	CreatedAt int64  `json:"createdAt"`
}

// ToDomainOrder converts an APIOrder to the domain representation.
func (o *APIOrder) ToDomainOrder() (domain.Order, error) {
	price, err := decimal.NewFromString(o.Price)
	if err != nil {
		return domain.Order{}, fmt.Errorf("parse order price %q: %w", o.Price, err)
	}
	size, err := decimal.NewFromString(o.Size)
	if err != nil {
		return domain.Order{}, fmt.Errorf("parse order size %q: %w", o.Size, err)
	}
	return domain.Order{
		ID:        o.ID,
		MarketID:  o.MarketID,
		Outcome:   o.Outcome,
		Side:      domain.OrderSide(o.Side),
		Price:     price,
		Size:      size,
		Status:    domain.OrderStatus(o.Status),
		CreatedAt: time.UnixMilli(o.CreatedAt).UTC(),
	}, nil
}

// createOrderRequest is the POST /orders payload. Price and size are decimal
// strings, never floats.
type createOrderRequest struct {
	MarketID string `json:"marketId"`
	Outcome  string `json:"outcome"`
	Side     string `json:"side"`
	Price    string `json:"price"`
	Size     string `json:"size"`
}
