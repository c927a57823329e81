package payment

import (
	"context"
	"time"

	"github.com/djkraph/payment-processor/internal/domain/port/gateway"
	"github.com/djkraph/payment-processor/internal/infrastructure/adapter/logger"
	"github.com/djkraph/payment-processor/internal/infrastructure/adapter/store"
)

// fakeClock is a manually advanced clock for deterministic expiry tests
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// fakeGateway is a scriptable gateway that counts calls, so tests can
// assert how many external requests a flow issued
type fakeGateway struct {
	configured bool

	pushResp *gateway.PushResponse
	pushErr  error

	queryResp *gateway.QueryResponse
	queryErr  error

	pushCalls  int
	queryCalls int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		configured: true,
		pushResp: &gateway.PushResponse{
			MerchantRequestID:   "29115-34620561-1",
			CheckoutRequestID:   "ws_CO_191220191020363925",
			ResponseCode:        "0",
			ResponseDescription: "Success. Request accepted for processing",
			CustomerMessage:     "Success. Request accepted for processing",
			Raw: map[string]any{
				"ResponseCode":      "0",
				"CheckoutRequestID": "ws_CO_191220191020363925",
			},
		},
		queryResp: &gateway.QueryResponse{
			ResponseCode: "0",
		},
	}
}

func (g *fakeGateway) Configured() bool { return g.configured }

func (g *fakeGateway) STKPush(ctx context.Context, req gateway.PushRequest) (*gateway.PushResponse, error) {
	g.pushCalls++
	if g.pushErr != nil {
		return nil, g.pushErr
	}
	return g.pushResp, nil
}

func (g *fakeGateway) STKQuery(ctx context.Context, checkoutRequestID string) (*gateway.QueryResponse, error) {
	g.queryCalls++
	if g.queryErr != nil {
		return nil, g.queryErr
	}
	return g.queryResp, nil
}

// newTestService wires a service over the real in-memory store with a fake
// gateway and a fixed clock
func newTestService() (*Service, *fakeGateway, *fakeClock, *store.MemoryTransactionStore) {
	gw := newFakeGateway()
	clock := newFakeClock()
	st := store.NewMemoryTransactionStore(logger.NewNoopLogger())

	svc := NewService(st, gw, clock, logger.NewNoopLogger(), Config{
		BusinessShortCode: "174379",
	})

	return svc, gw, clock, st
}
