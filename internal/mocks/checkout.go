package mocks

import (
	"context"
	"errors"

	models "github.com/adriaticstays/booking-api/internal"
	"github.com/stretchr/testify/mock"
)

type MockCheckoutClient struct {
	mock.Mock
}

func (m *MockCheckoutClient) CreateSession(ctx context.Context, req models.CheckoutRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

// MockCheckoutClientError always fails, for paths where the request payload
// does not matter.
type MockCheckoutClientError struct{}

func (m *MockCheckoutClientError) CreateSession(ctx context.Context, req models.CheckoutRequest) (string, error) {
	return "", errors.New("checkout api error")
}
