package paymentstatus

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-payments/internal/http/response"
	paymentservice "github.com/magabrotheeeer/subscription-payments/internal/services/payment"
)

type ServiceMock struct{ mock.Mock }

func (m *ServiceMock) Status(ctx context.Context, gatewayPaymentID string) (*paymentservice.StatusResult, error) {
	args := m.Called(ctx, gatewayPaymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentservice.StatusResult), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

// newStatusRequest кладёт paymentID в route-контекст chi, как это делает роутер.
func newStatusRequest(paymentID string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/payment/status/"+paymentID, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("paymentID", paymentID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestStatusHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		paymentID      string
		setupMocks     func(s *ServiceMock)
		wantStatusCode int
		wantError      string
		wantCode       string
	}{
		{
			name:      "live status",
			paymentID: "TR0011abc",
			setupMocks: func(s *ServiceMock) {
				s.On("Status", mock.Anything, "TR0011abc").
					Return(&paymentservice.StatusResult{StatusCode: "0000", StatusMessage: "Successful", PaymentID: "TR0011abc", TrxID: "AHB4521XQ"}, nil).Once()
			},
			wantStatusCode: http.StatusOK,
			wantCode:       "0000",
		},
		{
			name:      "demo status",
			paymentID: "DEMO_7_1000",
			setupMocks: func(s *ServiceMock) {
				s.On("Status", mock.Anything, "DEMO_7_1000").
					Return(&paymentservice.StatusResult{StatusCode: "2001", StatusMessage: "Pending", PaymentID: "DEMO_7_1000", DemoMode: true}, nil).Once()
			},
			wantStatusCode: http.StatusOK,
			wantCode:       "2001",
		},
		{
			name:      "payment not found",
			paymentID: "TRunknown",
			setupMocks: func(s *ServiceMock) {
				s.On("Status", mock.Anything, "TRunknown").
					Return(nil, paymentservice.ErrPaymentNotFound).Once()
			},
			wantStatusCode: http.StatusNotFound,
			wantError:      "payment not found",
		},
		{
			name:      "storage error",
			paymentID: "TR0011abc",
			setupMocks: func(s *ServiceMock) {
				s.On("Status", mock.Anything, "TR0011abc").
					Return(nil, errors.New("db down")).Once()
			},
			wantStatusCode: http.StatusInternalServerError,
			wantError:      "could not get payment status",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(ServiceMock)
			tt.setupMocks(service)
			handler := New(newNoopLogger(), service)

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, newStatusRequest(tt.paymentID))

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
				assert.Equal(t, tt.wantCode, data["statusCode"])
			}
			service.AssertExpectations(t)
		})
	}
}
