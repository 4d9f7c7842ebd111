package services

import (
	"fmt"
	"strings"

	"tasty-canteen/lang"
	"tasty-canteen/models"
)

// CardButton is one inline callback button.
type CardButton struct {
	Text         string
	CallbackData string
}

// CardContent is the text and optional inline keyboard for a chat card.
type CardContent struct {
	Text    string
	Buttons [][]CardButton
}

func statusLabel(langCode string, s models.OrderStatus) string {
	switch s {
	case models.OrderStatusPending, models.OrderStatusPreparing, models.OrderStatusCompleted, models.OrderStatusCancelled:
		return lang.T(langCode, "status_"+string(s))
	default:
		return string(s)
	}
}

func paymentLabel(langCode string, m models.PaymentMethod) string {
	switch m {
	case models.PaymentUPI, models.PaymentCard, models.PaymentCOD:
		return lang.T(langCode, "pay_"+string(m))
	default:
		return string(m)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// OrderSummaryLine is the one-line entry for an order in the history list.
func OrderSummaryLine(o models.Order, langCode, currency string) string {
	return fmt.Sprintf("%s #%s · %s · %s · %s",
		StatusIcon(o.OrderStatus), shortID(o.ID),
		o.CreatedAt.Format("02 Jan 15:04"),
		FormatMoney(o.TotalAmount, currency),
		statusLabel(langCode, o.OrderStatus))
}

// BuildOrderHistory lists orders with one button per order.
func BuildOrderHistory(orders []models.Order, langCode, currency string) CardContent {
	if len(orders) == 0 {
		return CardContent{
			Text:    lang.T(langCode, "orders_empty"),
			Buttons: [][]CardButton{{{Text: lang.T(langCode, "btn_menu"), CallbackData: "cat:" + string(ViewAll)}}},
		}
	}
	var b strings.Builder
	b.WriteString(lang.T(langCode, "orders_header"))
	var buttons [][]CardButton
	for _, o := range orders {
		line := OrderSummaryLine(o, langCode, currency)
		b.WriteString("\n" + line)
		buttons = append(buttons, []CardButton{{Text: line, CallbackData: "order:" + o.ID}})
	}
	return CardContent{Text: b.String(), Buttons: buttons}
}

// BuildCustomerCard returns the order detail card. names maps menu item ids
// to display names; unknown ids fall back to the id.
func BuildCustomerCard(o models.Order, names map[string]string, langCode, currency string) CardContent {
	var b strings.Builder
	b.WriteString(lang.T(langCode, "order_id", shortID(o.ID)) + "\n")
	b.WriteString(o.CreatedAt.Format("02 Jan 2006 15:04") + "\n\n")
	if len(o.Items) > 0 {
		b.WriteString(lang.T(langCode, "order_items") + "\n")
		for _, it := range o.Items {
			name := names[it.MenuItemID]
			if name == "" {
				name = shortID(it.MenuItemID)
			}
			fmt.Fprintf(&b, "• %s × %d = %s\n", name, it.Quantity, FormatMoney(it.Extension(), currency))
		}
		b.WriteString("\n")
	}
	b.WriteString(lang.T(langCode, "order_total", FormatMoney(o.TotalAmount, currency)) + "\n")
	b.WriteString(lang.T(langCode, "order_payment", paymentLabel(langCode, o.PaymentMethod), lang.T(langCode, "pay_status_"+string(o.PaymentStatus))) + "\n")
	b.WriteString(lang.T(langCode, "order_status", StatusIcon(o.OrderStatus)+" "+statusLabel(langCode, o.OrderStatus)))
	if o.EstimatedWaitMinutes != nil && !IsTerminal(o.OrderStatus) {
		b.WriteString("\n" + lang.T(langCode, "order_wait", *o.EstimatedWaitMinutes))
	}
	return CardContent{
		Text:    b.String(),
		Buttons: [][]CardButton{{{Text: lang.T(langCode, "btn_back"), CallbackData: "orders"}}},
	}
}

// BuildCartCard renders the cart with per-line − / + / ✕ controls.
func BuildCartCard(cart CartView, quote Quote, taxRate string, langCode, currency string) CardContent {
	if len(cart.Lines) == 0 {
		return CardContent{
			Text:    lang.T(langCode, "cart_empty"),
			Buttons: [][]CardButton{{{Text: lang.T(langCode, "btn_menu"), CallbackData: "menu"}}},
		}
	}
	var b strings.Builder
	b.WriteString(lang.T(langCode, "cart_header") + "\n\n")
	var buttons [][]CardButton
	for _, l := range cart.Lines {
		fmt.Fprintf(&b, "• %s\n   %s × %d = %s\n", l.Name, FormatMoney(l.UnitPrice, currency), l.Quantity, FormatMoney(l.Extension(), currency))
		buttons = append(buttons, []CardButton{
			{Text: "➖", CallbackData: "dec:" + l.ID},
			{Text: fmt.Sprintf("%s (%d)", l.Name, l.Quantity), CallbackData: "noop"},
			{Text: "➕", CallbackData: "inc:" + l.ID},
			{Text: "✕", CallbackData: "rm:" + l.ID},
		})
	}
	b.WriteString("\n" + lang.T(langCode, "subtotal", FormatMoney(quote.Subtotal, currency)))
	b.WriteString("\n" + lang.T(langCode, "tax", taxRate, FormatMoney(quote.Tax, currency)))
	b.WriteString("\n" + lang.T(langCode, "total", FormatMoney(quote.Total, currency)))
	buttons = append(buttons,
		[]CardButton{{Text: lang.T(langCode, "btn_checkout"), CallbackData: "checkout"}},
		[]CardButton{{Text: lang.T(langCode, "btn_clear"), CallbackData: "clear"}, {Text: lang.T(langCode, "btn_menu"), CallbackData: "menu"}},
	)
	return CardContent{Text: b.String(), Buttons: buttons}
}

// BuildPaymentCard asks for a payment method before checkout.
func BuildPaymentCard(quote Quote, langCode, currency string) CardContent {
	row := make([]CardButton, 0, len(models.PaymentMethods))
	for _, m := range models.PaymentMethods {
		row = append(row, CardButton{Text: paymentLabel(langCode, m), CallbackData: "pay:" + string(m)})
	}
	return CardContent{
		Text: lang.T(langCode, "total", FormatMoney(quote.Total, currency)) + "\n\n" + lang.T(langCode, "choose_payment"),
		Buttons: [][]CardButton{
			row,
			{{Text: lang.T(langCode, "btn_back"), CallbackData: "cart"}},
		},
	}
}
