package payment

import (
	"context"
	"fmt"
	"sync"
)

// MockGateway fabricates gateway orders in memory for tests.
type MockGateway struct {
	mu       sync.Mutex
	counter  int
	orders   []GatewayOrder
	FailNext error

	Key    string
	Secret string
}

func NewMockGateway() *MockGateway {
	return &MockGateway{Key: "rzp_test_key", Secret: "test_secret"}
}

func (m *MockGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]interface{}) (*GatewayOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailNext != nil {
		err := m.FailNext
		m.FailNext = nil
		return nil, err
	}

	m.counter++
	order := GatewayOrder{
		ID:       fmt.Sprintf("order_mock%06d", m.counter),
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
	}
	m.orders = append(m.orders, order)
	return &order, nil
}

func (m *MockGateway) KeyID() string {
	return m.Key
}

func (m *MockGateway) KeySecret() string {
	return m.Secret
}

// CreatedOrders returns a copy of every order fabricated so far.
func (m *MockGateway) CreatedOrders() []GatewayOrder {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]GatewayOrder, len(m.orders))
	copy(out, m.orders)
	return out
}
