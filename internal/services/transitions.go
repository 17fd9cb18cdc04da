package services

import "restaurant_backend/internal/models"

// itemTransitions lists, for every target status, the statuses an item may leave to reach it.
var itemTransitions = map[models.OrderItemStatusCode][]models.OrderItemStatusCode{
	models.ItemStatusConfirmed:    {models.ItemStatusPending},
	models.ItemStatusCooking:      {models.ItemStatusPending, models.ItemStatusConfirmed},
	models.ItemStatusReadyToServe: {models.ItemStatusCooking},
	models.ItemStatusServed:       {models.ItemStatusReadyToServe},
	models.ItemStatusCompleted:    {models.ItemStatusServed},
	models.ItemStatusCancelled:    {models.ItemStatusPending, models.ItemStatusConfirmed, models.ItemStatusCooking},
}

// CanTransitionItem reports whether an item in status from may move to status to.
func CanTransitionItem(from, to models.OrderItemStatusCode) bool {
	for _, prev := range itemTransitions[to] {
		if prev == from {
			return true
		}
	}
	return false
}

type orderEdge struct {
	from, to models.OrderStatusCode
}

// orderTransitions maps an edge to the order types allowed to take it; nil means any type.
var orderTransitions = map[orderEdge][]models.OrderTypeCode{
	{models.OrderStatusPending, models.OrderStatusConfirmed}:        nil,
	{models.OrderStatusPending, models.OrderStatusCancelled}:        nil,
	{models.OrderStatusConfirmed, models.OrderStatusPaid}:           nil,
	{models.OrderStatusConfirmed, models.OrderStatusCancelled}:      nil,
	{models.OrderStatusConfirmed, models.OrderStatusRequestPayment}: {models.OrderTypeDineIn},
	{models.OrderStatusRequestPayment, models.OrderStatusPaid}:      {models.OrderTypeDineIn},
	{models.OrderStatusPaid, models.OrderStatusDelivering}:          {models.OrderTypeDelivery},
	{models.OrderStatusDelivering, models.OrderStatusDelivered}:     {models.OrderTypeDelivery},
}

// CanTransitionOrder reports whether an order of the given type may move from one status to another.
func CanTransitionOrder(orderType models.OrderTypeCode, from, to models.OrderStatusCode) bool {
	types, ok := orderTransitions[orderEdge{from, to}]
	if !ok {
		return false
	}
	if types == nil {
		return true
	}
	for _, t := range types {
		if t == orderType {
			return true
		}
	}
	return false
}

// cancellableItemStatuses are the item statuses an order cancellation voids.
// READY_TO_SERVE is voided only here; a single item cannot be cancelled once plated.
var cancellableItemStatuses = map[models.OrderItemStatusCode]bool{
	models.ItemStatusPending:      true,
	models.ItemStatusConfirmed:    true,
	models.ItemStatusCooking:      true,
	models.ItemStatusReadyToServe: true,
}
