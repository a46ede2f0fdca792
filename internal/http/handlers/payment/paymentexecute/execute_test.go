package paymentexecute

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-payments/internal/http/response"
	"github.com/magabrotheeeer/subscription-payments/internal/models"
	paymentservice "github.com/magabrotheeeer/subscription-payments/internal/services/payment"
)

type ServiceMock struct{ mock.Mock }

func (m *ServiceMock) Execute(ctx context.Context, gatewayPaymentID string) (*paymentservice.ExecuteResult, error) {
	args := m.Called(ctx, gatewayPaymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentservice.ExecuteResult), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestExecuteHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    any
		setupMocks     func(s *ServiceMock)
		wantStatusCode int
		wantError      string
		wantStatus     string
	}{
		{
			name:        "live payment completed",
			requestBody: Request{PaymentID: "TR0011abc"},
			setupMocks: func(s *ServiceMock) {
				s.On("Execute", mock.Anything, "TR0011abc").
					Return(&paymentservice.ExecuteResult{Status: models.PaymentStatusCompleted, TransactionID: "AHB4521XQ"}, nil).Once()
			},
			wantStatusCode: http.StatusOK,
			wantStatus:     models.PaymentStatusCompleted,
		},
		{
			name:        "demo payment completed",
			requestBody: Request{PaymentID: "DEMO_7_1000"},
			setupMocks: func(s *ServiceMock) {
				s.On("Execute", mock.Anything, "DEMO_7_1000").
					Return(&paymentservice.ExecuteResult{Status: models.PaymentStatusCompleted, TransactionID: "TXN_7_7_1000", DemoMode: true}, nil).Once()
			},
			wantStatusCode: http.StatusOK,
			wantStatus:     models.PaymentStatusCompleted,
		},
		{
			name:        "declined payment failed",
			requestBody: Request{PaymentID: "TR0011abc"},
			setupMocks: func(s *ServiceMock) {
				s.On("Execute", mock.Anything, "TR0011abc").
					Return(&paymentservice.ExecuteResult{Status: models.PaymentStatusFailed}, nil).Once()
			},
			wantStatusCode: http.StatusOK,
			wantStatus:     models.PaymentStatusFailed,
		},
		{
			name:           "invalid json",
			requestBody:    "not a json",
			setupMocks:     func(_ *ServiceMock) {},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request body",
		},
		{
			name:           "validation error - missing payment id",
			requestBody:    Request{},
			setupMocks:     func(_ *ServiceMock) {},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field PaymentID is a required field",
		},
		{
			name:        "payment not found",
			requestBody: Request{PaymentID: "TRunknown"},
			setupMocks: func(s *ServiceMock) {
				s.On("Execute", mock.Anything, "TRunknown").
					Return(nil, paymentservice.ErrPaymentNotFound).Once()
			},
			wantStatusCode: http.StatusNotFound,
			wantError:      "payment not found",
		},
		{
			name:        "storage error",
			requestBody: Request{PaymentID: "TR0011abc"},
			setupMocks: func(s *ServiceMock) {
				s.On("Execute", mock.Anything, "TR0011abc").
					Return(nil, errors.New("db down")).Once()
			},
			wantStatusCode: http.StatusInternalServerError,
			wantError:      "could not execute payment",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(ServiceMock)
			tt.setupMocks(service)
			handler := New(newNoopLogger(), service)

			var bodyBytes []byte
			switch v := tt.requestBody.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				var err error
				bodyBytes, err = json.Marshal(v)
				require.NoError(t, err)
			}

			req := httptest.NewRequest(http.MethodPost, "/payment/execute", bytes.NewReader(bodyBytes))
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatusCode, rr.Code)

			var resp response.Response
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			if tt.wantError != "" {
				assert.Equal(t, response.StatusError, resp.Status)
				assert.Contains(t, resp.Error, tt.wantError)
			} else {
				assert.Equal(t, response.StatusOK, resp.Status)
				data, ok := resp.Data.(map[string]any)
				require.True(t, ok)
				assert.Equal(t, tt.wantStatus, data["status"])
			}
			service.AssertExpectations(t)
		})
	}
}
