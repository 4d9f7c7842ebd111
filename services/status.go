package services

import "tasty-canteen/models"

// Order status flow. The storefront never writes a status after creation;
// kitchen tooling does.
var statusTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderStatusPending:   {models.OrderStatusPreparing, models.OrderStatusCancelled},
	models.OrderStatusPreparing: {models.OrderStatusCompleted},
}

// ValidStatusTransition reports whether an order may move from one status to
// the next.
func ValidStatusTransition(from, to models.OrderStatus) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func IsTerminal(s models.OrderStatus) bool {
	return s == models.OrderStatusCompleted || s == models.OrderStatusCancelled
}

// StatusIcon is the badge shown next to an order status.
func StatusIcon(s models.OrderStatus) string {
	switch s {
	case models.OrderStatusCompleted:
		return "✅"
	case models.OrderStatusCancelled:
		return "❌"
	case models.OrderStatusPreparing:
		return "👨‍🍳"
	default:
		return "🕒"
	}
}
