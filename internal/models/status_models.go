package models

// OrderStatusCode is the stable code of an order status row.
type OrderStatusCode string

const (
	OrderStatusRequestPayment OrderStatusCode = "REQUEST_PAYMENT"
	OrderStatusPending        OrderStatusCode = "PENDING"
	OrderStatusConfirmed      OrderStatusCode = "CONFIRMED"
	OrderStatusPaid           OrderStatusCode = "PAID"
	OrderStatusCancelled      OrderStatusCode = "CANCELLED"
	OrderStatusDelivering     OrderStatusCode = "DELIVERING"
	OrderStatusDelivered      OrderStatusCode = "DELIVERED"
)

// OrderStatusCodes lists every order status the application relies on.
var OrderStatusCodes = []OrderStatusCode{
	OrderStatusRequestPayment,
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusPaid,
	OrderStatusCancelled,
	OrderStatusDelivering,
	OrderStatusDelivered,
}

// OrderItemStatusCode is the stable code of an order item status row.
type OrderItemStatusCode string

const (
	ItemStatusPending      OrderItemStatusCode = "PENDING"
	ItemStatusCooking      OrderItemStatusCode = "COOKING"
	ItemStatusConfirmed    OrderItemStatusCode = "CONFIRMED"
	ItemStatusReadyToServe OrderItemStatusCode = "READY_TO_SERVE"
	ItemStatusServed       OrderItemStatusCode = "SERVED"
	ItemStatusCompleted    OrderItemStatusCode = "COMPLETED"
	ItemStatusCancelled    OrderItemStatusCode = "CANCELLED"
)

// OrderItemStatusCodes lists every item status the application relies on.
var OrderItemStatusCodes = []OrderItemStatusCode{
	ItemStatusPending,
	ItemStatusCooking,
	ItemStatusConfirmed,
	ItemStatusReadyToServe,
	ItemStatusServed,
	ItemStatusCompleted,
	ItemStatusCancelled,
}

// DeliveryStatusCode is open-ended; operators may add rows without a release.
type DeliveryStatusCode string

const (
	DeliveryStatusPending    DeliveryStatusCode = "PENDING"
	DeliveryStatusDelivering DeliveryStatusCode = "DELIVERING"
	DeliveryStatusDelivered  DeliveryStatusCode = "DELIVERED"
	DeliveryStatusFailed     DeliveryStatusCode = "FAILED"
)

// OrderTypeCode tells how the order reaches the customer.
type OrderTypeCode string

const (
	OrderTypeTakeout  OrderTypeCode = "TAKEOUT"
	OrderTypeDelivery OrderTypeCode = "DELIVERY"
	OrderTypeDineIn   OrderTypeCode = "DINE_IN"
)

// OrderTypeCodes lists every order type the application relies on.
var OrderTypeCodes = []OrderTypeCode{OrderTypeTakeout, OrderTypeDelivery, OrderTypeDineIn}

// StatusRow is a row of any of the code lookup tables.
type StatusRow struct {
	ID   int64  `json:"id" db:"id"`
	Code string `json:"code" db:"code"`
	Name string `json:"name" db:"name"`
}
