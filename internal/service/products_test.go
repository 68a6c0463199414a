package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/amritage/age-fabric-shop-admin-panel/internal/catalog"
	"github.com/amritage/age-fabric-shop-admin-panel/internal/domain"
	memrepo "github.com/amritage/age-fabric-shop-admin-panel/internal/repository/memory"
	apperrors "github.com/amritage/age-fabric-shop-admin-panel/pkg/errors"
	"github.com/amritage/age-fabric-shop-admin-panel/pkg/httpclient"
	"github.com/amritage/age-fabric-shop-admin-panel/pkg/pagination"
)

func newTestProductService() (*ProductService, *mockBackend, *stubLoader, *recordingEvents, *memrepo.ActivityRepository) {
	backend := new(mockBackend)
	loader := newStubLoader()
	events := &recordingEvents{}
	activity := memrepo.NewActivityRepository(10)
	return NewProductService(backend, loader, events, activity, newTestLogger()), backend, loader, events, activity
}

func productRecords(n int) []map[string]any {
	out := make([]map[string]any, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, map[string]any{
			"_id":         fmt.Sprintf("p-%d", i),
			"name":        fmt.Sprintf("Fabric %d", i),
			"sku":         fmt.Sprintf("SKU-%d", i),
			"groupcodeId": map[string]any{"_id": "G1"},
		})
	}
	return out
}

func TestProductService_List(t *testing.T) {
	svc, backend, _, _, _ := newTestProductService()
	ctx := context.Background()

	records := productRecords(3)
	records = append(records, map[string]any{
		"_id":           "p-linen",
		"name":          "Linen",
		"sku":           "LN-1",
		"newCategoryId": map[string]any{"_id": "cat-9", "name": "Shirting"},
	})
	backend.On("ListProducts", ctx, "tok", 1, 1000).Return(records, nil)

	all, err := svc.List(ctx, testActor, "", pagination.Params{Page: 1, PerPage: 2})
	require.NoError(t, err)
	assert.Equal(t, 4, all.TotalCount)
	assert.Len(t, all.Data, 2)
	assert.True(t, all.HasNext)

	byCategory, err := svc.List(ctx, testActor, "shirt", pagination.Params{Page: 1, PerPage: 20})
	require.NoError(t, err)
	require.Len(t, byCategory.Data, 1)
	assert.Equal(t, "p-linen", byCategory.Data[0].ID)

	bySKU, err := svc.List(ctx, testActor, "sku-2", pagination.Params{Page: 1, PerPage: 20})
	require.NoError(t, err)
	require.Len(t, bySKU.Data, 1)
	assert.Equal(t, "Fabric 2", bySKU.Data[0].Name)
}

func TestProductService_ListBackendDown(t *testing.T) {
	svc, backend, _, _, _ := newTestProductService()
	backend.On("ListProducts", mock.Anything, "tok", 1, 1000).Return(nil, apperrors.Unavailable("catalog down", nil))

	_, err := svc.List(context.Background(), testActor, "", pagination.DefaultParams())
	assert.True(t, errors.Is(err, apperrors.ErrServiceUnavail))
}

func TestProductService_Delete(t *testing.T) {
	svc, backend, _, events, activity := newTestProductService()
	ctx := context.Background()
	backend.On("DeleteProduct", ctx, "tok", "p-1").Return(nil)

	require.NoError(t, svc.Delete(ctx, testActor, "p-1"))
	assert.Equal(t, []string{"p-1"}, events.deleted)

	entries, err := activity.ListByOwner(ctx, testActor.Owner, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ActionProductDeleted, entries[0].Action)
}

func TestProductService_DeleteRejected(t *testing.T) {
	svc, backend, _, events, _ := newTestProductService()
	ctx := context.Background()

	backend.On("DeleteProduct", ctx, "tok", "p-1").Return(&httpclient.ResponseError{
		Service: catalog.ServiceName,
		Status:  http.StatusConflict,
		Message: "Product is referenced by an order",
	}).Once()
	backend.On("DeleteProduct", ctx, "tok", "p-2").Return(errors.New("connection reset")).Once()

	err := svc.Delete(ctx, testActor, "p-1")
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, catalog.CodeDeleteRejected, appErr.Code)
	assert.Equal(t, "Product is referenced by an order", appErr.Message)
	assert.Equal(t, http.StatusConflict, appErr.Status)

	err = svc.Delete(ctx, testActor, "p-2")
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "Failed to delete product.", appErr.Message)
	assert.Equal(t, http.StatusBadGateway, appErr.Status)

	assert.Empty(t, events.deleted)
}

func TestProductService_Related(t *testing.T) {
	svc, backend, _, _, _ := newTestProductService()
	ctx := context.Background()
	backend.On("ProductsByGroupCode", ctx, "tok", "G1").Return(productRecords(9), nil)

	related, err := svc.Related(ctx, testActor, "G1", "p-1")
	require.NoError(t, err)
	require.Len(t, related, domain.MaxRelatedProducts)
	assert.Equal(t, "p-2", related[0].ID)
	for _, p := range related {
		assert.NotEqual(t, "p-1", p.ID)
	}

	_, err = svc.Related(ctx, testActor, "", "")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestProductService_Dashboard(t *testing.T) {
	svc, backend, loader, _, _ := newTestProductService()
	loader.failing["colorId"] = true
	backend.On("ListProducts", mock.Anything, "tok", 1, 1000).Return(productRecords(5), nil)

	summary := svc.Dashboard(context.Background(), testActor)
	assert.Equal(t, 5, summary.ProductCount)
	assert.Equal(t, 2, summary.OptionCounts["Structure"])
	assert.Equal(t, 0, summary.OptionCounts["Color"])
	assert.Equal(t, "Failed to load Color", summary.Errors["colorId"])
	assert.NotContains(t, summary.Errors, "products")
}

func TestProductService_DashboardProductsUnavailable(t *testing.T) {
	svc, backend, _, _, _ := newTestProductService()
	backend.On("ListProducts", mock.Anything, "tok", 1, 1000).Return(nil, errors.New("boom"))

	summary := svc.Dashboard(context.Background(), testActor)
	assert.Zero(t, summary.ProductCount)
	assert.Equal(t, "Failed to load products", summary.Errors["products"])
}
