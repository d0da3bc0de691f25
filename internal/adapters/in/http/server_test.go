package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	api "deliveryhub/internal/adapters/in/http"
	"deliveryhub/internal/core/application/usecases/commands"
	"deliveryhub/internal/core/application/usecases/queries"
	"deliveryhub/internal/core/domain/model/delivery"
	"deliveryhub/internal/core/domain/model/kernel"
	"deliveryhub/internal/core/domain/model/partner"
	"deliveryhub/internal/core/ports"
	"deliveryhub/internal/pkg/errs"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAssign struct{ mock.Mock }

func (m *MockAssign) Handle(ctx context.Context, c commands.AssignDeliveryCommand) (commands.AssignedDelivery, error) {
	args := m.Called(ctx, c)
	return args.Get(0).(commands.AssignedDelivery), args.Error(1)
}

type MockUpdateStatus struct{ mock.Mock }

func (m *MockUpdateStatus) Handle(ctx context.Context, c commands.UpdateDeliveryStatusCommand) (*delivery.Delivery, error) {
	args := m.Called(ctx, c)
	d, _ := args.Get(0).(*delivery.Delivery)
	return d, args.Error(1)
}

type MockGetDelivery struct{ mock.Mock }

func (m *MockGetDelivery) Handle(ctx context.Context, q queries.GetDeliveryQuery) (queries.GetDeliveryQueryResponse, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(queries.GetDeliveryQueryResponse), args.Error(1)
}

type MockActiveDeliveries struct{ mock.Mock }

func (m *MockActiveDeliveries) Handle(ctx context.Context, q queries.GetPartnerActiveDeliveriesQuery) ([]queries.DeliveryView, error) {
	args := m.Called(ctx, q)
	views, _ := args.Get(0).([]queries.DeliveryView)
	return views, args.Error(1)
}

type apiFixture struct {
	assign *MockAssign
	update *MockUpdateStatus
	get    *MockGetDelivery
	active *MockActiveDeliveries
	h      http.Handler
}

func newAPIFixture() apiFixture {
	f := apiFixture{
		assign: &MockAssign{},
		update: &MockUpdateStatus{},
		get:    &MockGetDelivery{},
		active: &MockActiveDeliveries{},
	}
	e := api.NewEcho(zerolog.Nop())
	api.NewServer(f.assign, f.update, f.get, f.active).Register(e)
	f.h = e
	return f
}

func (f apiFixture) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, api.ErrorResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.h.ServeHTTP(rec, req)

	var errResp api.ErrorResponse
	if rec.Code >= 400 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp), rec.Body.String())
		assert.Equal(t, rec.Code, errResp.Code)
	}
	return rec, errResp
}

func newDelivery(t *testing.T, partnerID kernel.UUID) *delivery.Delivery {
	t.Helper()
	customer, err := delivery.NewCustomer("Asha", "+919000000002", "12 Jubilee Hills")
	require.NoError(t, err)
	d, err := delivery.NewDelivery(delivery.NewParams{
		ID:                  kernel.NewUUID(),
		OrderID:             kernel.NewUUID(),
		StoreID:             kernel.NewUUID(),
		PartnerID:           partnerID,
		Customer:            customer,
		Items:               json.RawMessage(`[]`),
		TotalAmount:         decimal.RequireFromString("349.50"),
		EstimatedPickupTime: time.Date(2026, 3, 1, 12, 20, 0, 0, time.UTC),
		AssignedAt:          time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return d
}

func createBody(orderID string) string {
	return fmt.Sprintf(`{
		"orderId": %q,
		"storeId": "5d1c7f2e-33a8-4b8b-9a55-0b8f0e1e7c11",
		"customer": {"name": "Asha", "phone": "+919000000002", "address": "12 Jubilee Hills"},
		"items": [{"sku": "A", "qty": 2}],
		"totalAmount": "349.50",
		"estimatedPickupTime": "2026-03-01T12:20:00Z"
	}`, orderID)
}

func TestCreateDelivery_Created(t *testing.T) {
	f := newAPIFixture()
	p, err := partner.NewPartner(kernel.NewUUID(), "Ravi", "+919000000001")
	require.NoError(t, err)
	d := newDelivery(t, p.ID())
	orderID := kernel.NewUUID().String()

	f.assign.On("Handle", mock.Anything, mock.MatchedBy(func(c commands.AssignDeliveryCommand) bool {
		return c.OrderID().String() == orderID && c.TotalAmount().Equal(decimal.RequireFromString("349.5"))
	})).Return(commands.AssignedDelivery{Delivery: d, Partner: p}, nil).Once()

	rec, _ := f.do(t, http.MethodPost, "/api/v1/deliveries", createBody(orderID))

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp api.CreateDeliveryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, d.ID().String(), resp.DeliveryID)
	assert.Equal(t, "ASSIGNED", resp.Status)
	assert.Equal(t, "Ravi", resp.Partner.Name)
	assert.True(t, resp.EstimatedDeliveryTime.Equal(d.EstimatedDeliveryTime()))
	f.assign.AssertExpectations(t)
}

func TestCreateDelivery_Errors(t *testing.T) {
	tests := map[string]struct {
		err        error
		wantCode   int
		wantReason string
	}{
		"no partner":       {commands.ErrNoPartnerAvailable, http.StatusConflict, api.ReasonNoPartnerAvailable},
		"already assigned": {errs.NewObjectAlreadyExistsError("orderID", "o-1"), http.StatusConflict, api.ReasonDeliveryExists},
		"storage":          {fmt.Errorf("%w: %w", commands.ErrStorageFailure, errors.New("conn refused")), http.StatusServiceUnavailable, api.ReasonStorageFailure},
		"unexpected":       {errors.New("boom"), http.StatusInternalServerError, api.ReasonInternal},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			f := newAPIFixture()
			f.assign.On("Handle", mock.Anything, mock.Anything).Return(commands.AssignedDelivery{}, tt.err).Once()

			rec, resp := f.do(t, http.MethodPost, "/api/v1/deliveries", createBody(kernel.NewUUID().String()))

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantReason, resp.Reason)
		})
	}
}

func TestCreateDelivery_RejectsInvalidBody(t *testing.T) {
	f := newAPIFixture()

	rec, resp := f.do(t, http.MethodPost, "/api/v1/deliveries", `{"orderId": "nope", "items": []}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, api.ReasonValidationFailed, resp.Reason)
	assert.Equal(t, "must be a valid uuid", resp.Details["orderId"])
	assert.Equal(t, "is required", resp.Details["storeId"])

	rec, _ = f.do(t, http.MethodPost, "/api/v1/deliveries", `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	f.assign.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
}

func TestUpdateDeliveryStatus_OK(t *testing.T) {
	f := newAPIFixture()
	d := newDelivery(t, kernel.NewUUID())
	_, err := d.ChangeStatus(delivery.PickedUp, time.Date(2026, 3, 1, 12, 25, 0, 0, time.UTC))
	require.NoError(t, err)

	f.update.On("Handle", mock.Anything, mock.MatchedBy(func(c commands.UpdateDeliveryStatusCommand) bool {
		return c.DeliveryID().IsEqual(d.ID()) &&
			c.Status() == delivery.PickedUp &&
			c.Location() != nil && c.Location().Lat() == 17.45
	})).Return(d, nil).Once()

	rec, _ := f.do(t, http.MethodPatch, "/api/v1/deliveries/"+d.ID().String()+"/status",
		`{"status": "PICKED_UP", "location": {"lat": 17.45, "lng": 78.39}}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp api.DeliveryStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "PICKED_UP", resp.Status)
	require.NotNil(t, resp.PickedUpAt)
	f.update.AssertExpectations(t)
}

func TestUpdateDeliveryStatus_Errors(t *testing.T) {
	id := kernel.NewUUID().String()
	tests := map[string]struct {
		path       string
		body       string
		handleErr  error
		wantCode   int
		wantReason string
	}{
		"unknown status": {
			path: id, body: `{"status": "TELEPORTED"}`,
			wantCode: http.StatusBadRequest, wantReason: api.ReasonInvalidStatus,
		},
		"bad id": {
			path: "42", body: `{"status": "PICKED_UP"}`,
			wantCode: http.StatusBadRequest, wantReason: api.ReasonValidationFailed,
		},
		"latitude out of range": {
			path: id, body: `{"status": "PICKED_UP", "location": {"lat": 91, "lng": 0}}`,
			wantCode: http.StatusBadRequest, wantReason: api.ReasonValidationFailed,
		},
		"not found": {
			path: id, body: `{"status": "PICKED_UP"}`, handleErr: errs.NewObjectNotFoundError("delivery", id),
			wantCode: http.StatusNotFound, wantReason: api.ReasonNotFound,
		},
		"illegal transition": {
			path: id, body: `{"status": "DELIVERED"}`, handleErr: commands.ErrInvalidStatusTransition,
			wantCode: http.StatusUnprocessableEntity, wantReason: api.ReasonInvalidStatusTransition,
		},
		"storage": {
			path: id, body: `{"status": "PICKED_UP"}`, handleErr: fmt.Errorf("%w: timeout", commands.ErrStorageFailure),
			wantCode: http.StatusServiceUnavailable, wantReason: api.ReasonStorageFailure,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			f := newAPIFixture()
			if tt.handleErr != nil {
				f.update.On("Handle", mock.Anything, mock.Anything).Return(nil, tt.handleErr).Once()
			}

			rec, resp := f.do(t, http.MethodPatch, "/api/v1/deliveries/"+tt.path+"/status", tt.body)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantReason, resp.Reason)
			f.update.AssertExpectations(t)
		})
	}
}

func TestGetDelivery_WithTracking(t *testing.T) {
	f := newAPIFixture()
	id := kernel.NewUUID()
	loc, err := kernel.NewLocation(17.45, 78.39)
	require.NoError(t, err)
	at := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)

	f.get.On("Handle", mock.Anything, mock.MatchedBy(func(q queries.GetDeliveryQuery) bool {
		return q.DeliveryID().IsEqual(id)
	})).Return(queries.GetDeliveryQueryResponse{
		Delivery: queries.DeliveryView{ID: id.String(), Status: "PICKED_UP", Items: json.RawMessage(`[]`)},
		Tracking: &ports.TrackingSnapshot{
			DeliveryID:  id.String(),
			Status:      delivery.PickedUp,
			Location:    &ports.LocationReading{Location: loc, Timestamp: at},
			Subscribers: 2,
		},
	}, nil).Once()

	rec, _ := f.do(t, http.MethodGet, "/api/v1/deliveries/"+id.String(), "")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp api.GetDeliveryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, id.String(), resp.Delivery.ID)
	require.NotNil(t, resp.Tracking)
	assert.Equal(t, 2, resp.Tracking.Subscribers)
	require.NotNil(t, resp.Tracking.Location)
	assert.InDelta(t, 78.39, resp.Tracking.Location.Lng, 1e-9)
}

func TestGetDelivery_NotFound(t *testing.T) {
	f := newAPIFixture()
	id := kernel.NewUUID()
	f.get.On("Handle", mock.Anything, mock.Anything).
		Return(queries.GetDeliveryQueryResponse{}, errs.NewObjectNotFoundError("delivery", id)).Once()

	rec, resp := f.do(t, http.MethodGet, "/api/v1/deliveries/"+id.String(), "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, api.ReasonNotFound, resp.Reason)
}

func TestGetPartnerActiveDeliveries(t *testing.T) {
	f := newAPIFixture()
	partnerID := kernel.NewUUID()
	f.active.On("Handle", mock.Anything, mock.MatchedBy(func(q queries.GetPartnerActiveDeliveriesQuery) bool {
		return q.PartnerID().IsEqual(partnerID)
	})).Return([]queries.DeliveryView{{ID: "d-1", Items: json.RawMessage(`[]`)}, {ID: "d-2", Items: json.RawMessage(`[]`)}}, nil).Once()

	rec, _ := f.do(t, http.MethodGet, "/api/v1/partners/"+partnerID.String()+"/deliveries/active", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var views []queries.DeliveryView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
	require.Len(t, views, 2)
	assert.Equal(t, "d-1", views[0].ID)
}

func TestUnknownRoute(t *testing.T) {
	f := newAPIFixture()

	rec, resp := f.do(t, http.MethodGet, "/api/v1/nothing", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, api.ReasonNotFound, resp.Reason)
}
