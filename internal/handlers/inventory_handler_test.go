// internal/handlers/inventory_handler_test.go
package handlers_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/logistics-be/internal/core/domain"
	"github.com/ammerola/logistics-be/internal/core/ports"
	"github.com/ammerola/logistics-be/internal/handlers"
	"github.com/ammerola/logistics-be/test/helpers"
	"github.com/ammerola/logistics-be/test/mocks"
)

func availabilityOf(item *domain.InventoryItem, outstanding int) domain.ItemAvailability {
	return domain.ItemAvailability{
		InventoryItem: *item,
		Outstanding:   outstanding,
		Available:     item.TotalQuantity - outstanding,
	}
}

func TestInventoryHandler_GetItem(t *testing.T) {
	testItem := helpers.CreateTestInventoryItem()

	tests := []struct {
		name           string
		item           string
		setupMocks     func(*mocks.MockInventoryService)
		expectedStatus int
		validateBody   func(*testing.T, []byte)
	}{
		{
			name: "successfully_retrieves_item",
			item: testItem.Name,
			setupMocks: func(m *mocks.MockInventoryService) {
				view := availabilityOf(testItem, 12)
				m.EXPECT().GetItem(gomock.Any(), testItem.Name).Return(&view, nil)
			},
			expectedStatus: http.StatusOK,
			validateBody: func(t *testing.T, body []byte) {
				var response domain.ItemAvailability
				require.NoError(t, json.Unmarshal(body, &response))
				assert.Equal(t, testItem.Name, response.Name)
				assert.Equal(t, 12, response.Outstanding)
				assert.Equal(t, 28, response.Available)
			},
		},
		{
			name: "item_not_found",
			item: "Projector",
			setupMocks: func(m *mocks.MockInventoryService) {
				m.EXPECT().GetItem(gomock.Any(), "Projector").
					Return(nil, fmt.Errorf("%q: %w", "Projector", domain.ErrItemNotFound))
			},
			expectedStatus: http.StatusNotFound,
			validateBody: func(t *testing.T, body []byte) {
				assert.Equal(t, "ItemNotFound", decodeError(t, body).Code)
			},
		},
		{
			name: "service_error",
			item: testItem.Name,
			setupMocks: func(m *mocks.MockInventoryService) {
				m.EXPECT().GetItem(gomock.Any(), testItem.Name).
					Return(nil, errors.New("database connection failed"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)

			mockService := mocks.NewMockInventoryService(ctrl)
			h := handlers.NewInventoryHandler(mockService, helpers.TestLogger())
			tt.setupMocks(mockService)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/inventory/x", nil)
			req.SetPathValue("item", tt.item)
			w := httptest.NewRecorder()

			h.GetItem(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.validateBody != nil {
				tt.validateBody(t, w.Body.Bytes())
			}
		})
	}
}

func TestInventoryHandler_ListInventory(t *testing.T) {
	chairs := helpers.CreateTestInventoryItem()
	tables := helpers.CreateTestInventoryItem(func(i *domain.InventoryItem) {
		i.Name = "Trestle Tables"
		i.TotalQuantity = 8
		i.Category = "tables"
	})
	views := []domain.ItemAvailability{availabilityOf(chairs, 10), availabilityOf(tables, 0)}

	t.Run("returns_availability", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockService := mocks.NewMockInventoryService(ctrl)
		mockService.EXPECT().ListAvailability(gomock.Any()).Return(views, nil)

		h := handlers.NewInventoryHandler(mockService, helpers.TestLogger())
		w := httptest.NewRecorder()
		h.ListInventory(w, httptest.NewRequest(http.MethodGet, "/api/v1/inventory", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var response struct {
			Items []domain.ItemAvailability `json:"items"`
			Count int                       `json:"count"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, 2, response.Count)
		assert.Equal(t, 30, response.Items[0].Available)
	})

	t.Run("filters_by_category", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockService := mocks.NewMockInventoryService(ctrl)
		mockService.EXPECT().ListAvailability(gomock.Any()).Return(views, nil)
		mockService.EXPECT().
			ListItems(gomock.Any(), ports.InventoryListParams{Category: "tables"}).
			Return([]*domain.InventoryItem{tables}, nil)

		h := handlers.NewInventoryHandler(mockService, helpers.TestLogger())
		w := httptest.NewRecorder()
		h.ListInventory(w, httptest.NewRequest(http.MethodGet, "/api/v1/inventory?category=tables", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var response struct {
			Items []domain.ItemAvailability `json:"items"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		require.Len(t, response.Items, 1)
		assert.Equal(t, "Trestle Tables", response.Items[0].Name)
	})

	t.Run("integrity_failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockService := mocks.NewMockInventoryService(ctrl)
		mockService.EXPECT().ListAvailability(gomock.Any()).Return(nil, domain.ErrIntegrityViolation)

		h := handlers.NewInventoryHandler(mockService, helpers.TestLogger())
		w := httptest.NewRecorder()
		h.ListInventory(w, httptest.NewRequest(http.MethodGet, "/api/v1/inventory", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "IntegrityViolation", decodeError(t, w.Body.Bytes()).Code)
	})
}

func TestInventoryHandler_CreateItem(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		actor          domain.Actor
		setupMocks     func(*mocks.MockInventoryService)
		expectedStatus int
		validateBody   func(*testing.T, []byte)
	}{
		{
			name:  "creates_item",
			body:  `{"name":"Projector","totalQuantity":3,"category":"av"}`,
			actor: handler,
			setupMocks: func(m *mocks.MockInventoryService) {
				m.EXPECT().CreateItem(gomock.Any(), handler, gomock.Any()).
					DoAndReturn(func(_ any, _ domain.Actor, item *domain.InventoryItem) (*domain.InventoryItem, error) {
						assert.Equal(t, "Projector", item.Name)
						assert.Equal(t, 3, item.TotalQuantity)
						return item, nil
					})
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "total_quantity_required",
			body:           `{"name":"Projector"}`,
			actor:          handler,
			setupMocks:     func(m *mocks.MockInventoryService) {},
			expectedStatus: http.StatusBadRequest,
			validateBody: func(t *testing.T, body []byte) {
				assert.Equal(t, "required", decodeError(t, body).Fields["InventoryItemBody.TotalQuantity"])
			},
		},
		{
			name:           "negative_total",
			body:           `{"name":"Projector","totalQuantity":-1}`,
			actor:          handler,
			setupMocks:     func(m *mocks.MockInventoryService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "name_required",
			body:           `{"totalQuantity":1}`,
			actor:          handler,
			setupMocks:     func(m *mocks.MockInventoryService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:  "requester_forbidden",
			body:  `{"name":"Projector","totalQuantity":3}`,
			actor: requester,
			setupMocks: func(m *mocks.MockInventoryService) {
				m.EXPECT().CreateItem(gomock.Any(), requester, gomock.Any()).
					Return(nil, fmt.Errorf("%w: handler role required", domain.ErrForbidden))
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:  "duplicate_name",
			body:  `{"name":"Projector","totalQuantity":3}`,
			actor: handler,
			setupMocks: func(m *mocks.MockInventoryService) {
				m.EXPECT().CreateItem(gomock.Any(), handler, gomock.Any()).Return(nil, domain.ErrItemExists)
			},
			expectedStatus: http.StatusConflict,
			validateBody: func(t *testing.T, body []byte) {
				assert.Equal(t, "ItemExists", decodeError(t, body).Code)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)

			mockService := mocks.NewMockInventoryService(ctrl)
			h := handlers.NewInventoryHandler(mockService, helpers.TestLogger())
			tt.setupMocks(mockService)

			w := httptest.NewRecorder()
			h.CreateItem(w, newRequest(http.MethodPost, "/api/v1/inventory", tt.body, tt.actor))

			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			if tt.validateBody != nil {
				tt.validateBody(t, w.Body.Bytes())
			}
		})
	}
}

func TestInventoryHandler_UpsertItem(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		created        bool
		expectCall     bool
		expectedStatus int
	}{
		{name: "creates_when_absent", body: `{"totalQuantity":5}`, created: true, expectCall: true, expectedStatus: http.StatusCreated},
		{name: "replaces_when_present", body: `{"totalQuantity":5,"name":"Projector"}`, expectCall: true, expectedStatus: http.StatusOK},
		{name: "body_name_mismatch", body: `{"totalQuantity":5,"name":"Screen"}`, expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)

			mockService := mocks.NewMockInventoryService(ctrl)
			if tt.expectCall {
				mockService.EXPECT().UpsertItem(gomock.Any(), handler, gomock.Any()).
					DoAndReturn(func(_ any, _ domain.Actor, item *domain.InventoryItem) (*domain.InventoryItem, bool, error) {
						assert.Equal(t, "Projector", item.Name)
						return item, tt.created, nil
					})
			}
			h := handlers.NewInventoryHandler(mockService, helpers.TestLogger())

			req := newRequest(http.MethodPut, "/api/v1/inventory/Projector", tt.body, handler)
			req.SetPathValue("item", "Projector")
			w := httptest.NewRecorder()

			h.UpsertItem(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestInventoryHandler_DeleteItem(t *testing.T) {
	tests := []struct {
		name           string
		serviceErr     error
		expectedStatus int
		expectedCode   string
	}{
		{name: "deletes_item", expectedStatus: http.StatusOK},
		{name: "item_in_use", serviceErr: fmt.Errorf("%q has 3 outstanding: %w", "Projector", domain.ErrItemInUse), expectedStatus: http.StatusConflict, expectedCode: "ItemInUse"},
		{name: "item_not_found", serviceErr: domain.ErrItemNotFound, expectedStatus: http.StatusNotFound, expectedCode: "ItemNotFound"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)

			mockService := mocks.NewMockInventoryService(ctrl)
			mockService.EXPECT().DeleteItem(gomock.Any(), handler, "Projector").Return(tt.serviceErr)
			h := handlers.NewInventoryHandler(mockService, helpers.TestLogger())

			req := newRequest(http.MethodDelete, "/api/v1/inventory/Projector", "", handler)
			req.SetPathValue("item", "Projector")
			w := httptest.NewRecorder()

			h.DeleteItem(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decodeError(t, w.Body.Bytes()).Code)
			}
		})
	}
}
