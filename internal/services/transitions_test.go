package services

import (
	"context"
	"testing"

	"restaurant_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransitionItem(t *testing.T) {
	tests := []struct {
		from, to models.OrderItemStatusCode
		want     bool
	}{
		{models.ItemStatusPending, models.ItemStatusCooking, true},
		{models.ItemStatusCooking, models.ItemStatusReadyToServe, true},
		{models.ItemStatusReadyToServe, models.ItemStatusServed, true},
		{models.ItemStatusServed, models.ItemStatusCompleted, true},
		{models.ItemStatusPending, models.ItemStatusCancelled, true},
		{models.ItemStatusCooking, models.ItemStatusCancelled, true},
		{models.ItemStatusPending, models.ItemStatusConfirmed, true},
		{models.ItemStatusConfirmed, models.ItemStatusCooking, true},

		{models.ItemStatusPending, models.ItemStatusReadyToServe, false},
		{models.ItemStatusPending, models.ItemStatusServed, false},
		{models.ItemStatusReadyToServe, models.ItemStatusCooking, false},
		{models.ItemStatusReadyToServe, models.ItemStatusCancelled, false},
		{models.ItemStatusCompleted, models.ItemStatusCancelled, false},
		{models.ItemStatusCancelled, models.ItemStatusCooking, false},
		{models.ItemStatusCooking, models.ItemStatusCooking, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransitionItem(tt.from, tt.to))
		})
	}
}

func TestCanTransitionOrder(t *testing.T) {
	tests := []struct {
		name     string
		typ      models.OrderTypeCode
		from, to models.OrderStatusCode
		want     bool
	}{
		{"confirm", models.OrderTypeTakeout, models.OrderStatusPending, models.OrderStatusConfirmed, true},
		{"cancel pending", models.OrderTypeDelivery, models.OrderStatusPending, models.OrderStatusCancelled, true},
		{"cancel confirmed", models.OrderTypeDineIn, models.OrderStatusConfirmed, models.OrderStatusCancelled, true},
		{"pay", models.OrderTypeTakeout, models.OrderStatusConfirmed, models.OrderStatusPaid, true},
		{"dine in asks for bill", models.OrderTypeDineIn, models.OrderStatusConfirmed, models.OrderStatusRequestPayment, true},
		{"dine in pays bill", models.OrderTypeDineIn, models.OrderStatusRequestPayment, models.OrderStatusPaid, true},
		{"delivery leaves", models.OrderTypeDelivery, models.OrderStatusPaid, models.OrderStatusDelivering, true},
		{"delivery arrives", models.OrderTypeDelivery, models.OrderStatusDelivering, models.OrderStatusDelivered, true},

		{"takeout cannot ask for bill", models.OrderTypeTakeout, models.OrderStatusConfirmed, models.OrderStatusRequestPayment, false},
		{"takeout is not delivered", models.OrderTypeTakeout, models.OrderStatusPaid, models.OrderStatusDelivering, false},
		{"no cancel after payment", models.OrderTypeDelivery, models.OrderStatusPaid, models.OrderStatusCancelled, false},
		{"no skipping confirm", models.OrderTypeTakeout, models.OrderStatusPending, models.OrderStatusPaid, false},
		{"cancelled is terminal", models.OrderTypeTakeout, models.OrderStatusCancelled, models.OrderStatusConfirmed, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransitionOrder(tt.typ, tt.from, tt.to))
		})
	}
}

func TestStationOf(t *testing.T) {
	tests := []struct {
		category string
		want     models.Station
		ok       bool
	}{
		{"Món Lạnh", models.StationCold, true},
		{"Gỏi Lạnh đặc biệt", models.StationCold, true},
		{"Món Nóng", models.StationHot, true},
		{"Nước ép", models.StationDrink, true},
		{"Tráng miệng", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			got, ok := StationOf(tt.category)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseStation(t *testing.T) {
	st, err := ParseStation(" hot ")
	require.NoError(t, err)
	assert.Equal(t, models.StationHot, st)

	_, err = ParseStation("grill")
	assert.ErrorIs(t, err, ErrUnknownStation)
}

func TestLoadStatusCatalog(t *testing.T) {
	ctx := context.Background()

	t.Run("maps codes to ids", func(t *testing.T) {
		c, err := LoadStatusCatalog(ctx, &fakeStatusRepo{})
		require.NoError(t, err)

		id, err := c.ItemStatusID(models.ItemStatusCooking)
		require.NoError(t, err)
		assert.Equal(t, idOf(models.OrderItemStatusCodes, models.ItemStatusCooking), id)

		_, err = c.ItemStatusID("BURNT")
		assert.ErrorIs(t, err, ErrUnknownStatus)
		_, err = c.OrderTypeID("CATERING")
		assert.ErrorIs(t, err, ErrUnknownOrderType)
	})

	t.Run("fails fast on a missing fixed code", func(t *testing.T) {
		_, err := LoadStatusCatalog(ctx, &fakeStatusRepo{missingItemStatus: models.ItemStatusServed})
		require.Error(t, err)
		assert.Contains(t, err.Error(), string(models.ItemStatusServed))
	})

	t.Run("delivery codes are looked up and cached", func(t *testing.T) {
		repo := &fakeStatusRepo{extraDelivery: map[string]int64{"RETURNED": 42}}
		c, err := LoadStatusCatalog(ctx, repo)
		require.NoError(t, err)

		id, err := c.DeliveryStatusID(ctx, models.DeliveryStatusFailed)
		require.NoError(t, err)
		assert.Equal(t, idOf(testDeliveryCodes, models.DeliveryStatusFailed), id)
		assert.Zero(t, repo.lookups)

		for i := 0; i < 2; i++ {
			id, err = c.DeliveryStatusID(ctx, "RETURNED")
			require.NoError(t, err)
			assert.Equal(t, int64(42), id)
		}
		assert.Equal(t, 1, repo.lookups)

		_, err = c.DeliveryStatusID(ctx, "LOST")
		assert.ErrorIs(t, err, ErrUnknownStatus)
	})
}
