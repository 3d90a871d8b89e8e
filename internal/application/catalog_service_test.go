package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nusastay/service-rental/internal/domain"
)

func newCatalogService() (*CatalogService, *fakeServiceRepo) {
	services := newFakeServiceRepo()
	return NewCatalogService(services, nil, zap.NewNop()), services
}

func TestCatalogService_CreateAndGet(t *testing.T) {
	svc, _ := newCatalogService()

	created, err := svc.CreateService(context.Background(), UpsertServiceRequest{
		Name:  "Deluxe Room",
		Slug:  "deluxe-room",
		Price: 450_000,
		Unit:  "per_day",
	})
	require.NoError(t, err)
	assert.True(t, created.Active)
	assert.Equal(t, "IDR", created.Currency)

	got, err := svc.GetServiceBySlug(context.Background(), "deluxe-room")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = svc.CreateService(context.Background(), UpsertServiceRequest{
		Name:  "Bad",
		Slug:  "bad",
		Price: 1000,
		Unit:  "per_week",
	})
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestCatalogService_DeactivatedHidden(t *testing.T) {
	svc, _ := newCatalogService()

	created, err := svc.CreateService(context.Background(), UpsertServiceRequest{
		Name:  "Meeting Pod",
		Slug:  "meeting-pod",
		Price: 75_000,
		Unit:  "per_hour",
	})
	require.NoError(t, err)

	_, err = svc.SetServiceActive(context.Background(), created.ID, false)
	require.NoError(t, err)

	_, err = svc.GetServiceBySlug(context.Background(), "meeting-pod")
	assert.True(t, domain.IsKind(err, domain.KindNotFound))

	list, err := svc.ListServices(context.Background(), nil, 1, 20)
	require.NoError(t, err)
	assert.Empty(t, list.Items)
}

func TestCatalogService_UpdateService(t *testing.T) {
	svc, _ := newCatalogService()

	created, err := svc.CreateService(context.Background(), UpsertServiceRequest{
		Name:  "Meeting Pod",
		Slug:  "meeting-pod",
		Price: 75_000,
		Unit:  "per_hour",
	})
	require.NoError(t, err)

	updated, err := svc.UpdateService(context.Background(), created.ID, UpsertServiceRequest{
		Name:  "Meeting Pod XL",
		Slug:  "meeting-pod",
		Price: 90_000,
		Unit:  "per_hour",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(90_000), updated.Price)
	assert.Equal(t, "meeting-pod", updated.Slug)
}
