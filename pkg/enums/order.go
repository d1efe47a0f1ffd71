package enums

// OrderStatus tracks the lifecycle of a client order. Only open orders are
// visible to the deadline scanner.
type OrderStatus string

const (
	OrderStatusOpen      OrderStatus = "open"
	OrderStatusDone      OrderStatus = "done"
	OrderStatusCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusOpen, OrderStatusDone, OrderStatusCancelled:
		return true
	}
	return false
}
