// Package lang holds the storefront's user-facing messages.
package lang

import "fmt"

const (
	En = "en"
	Hi = "hi"
)

// Supported reports whether code has a message table.
func Supported(code string) bool {
	_, ok := messages[code]
	return ok
}

// T formats the message for key in langCode. Unknown languages fall back to
// English; unknown keys return the key itself.
func T(langCode, key string, args ...interface{}) string {
	table, ok := messages[langCode]
	if !ok {
		table = messages[En]
	}
	format, ok := table[key]
	if !ok {
		format, ok = messages[En][key]
		if !ok {
			return key
		}
	}
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}

var messages = map[string]map[string]string{
	En: {
		"welcome":         "Welcome to %s! 🍽\nBrowse the menu, add dishes to your cart and check out in a few taps.",
		"menu_header":     "📋 Menu: choose a section",
		"cat_veg":         "🥦 Veg",
		"cat_non-veg":     "🍗 Non-Veg",
		"cat_egg":         "🥚 Egg",
		"cat_combo":       "🍱 Combos",
		"cat_offers":      "🔥 Offers",
		"cat_all":         "📖 Full menu",
		"menu_empty":      "Nothing here right now.",
		"load_failed":     "Failed to load menu items",
		"offers_failed":   "Failed to load offers",
		"combos_failed":   "Failed to load combo items",
		"orders_failed":   "Failed to load orders",
		"item_added":      "%s added to cart!",
		"item_not_found":  "This item is no longer available.",
		"off":             "%s%% OFF",
		"cart_empty":      "Your cart is empty",
		"cart_header":     "🛒 Your cart",
		"subtotal":        "Subtotal: %s",
		"tax":             "Tax (%s%%): %s",
		"total":           "Total: %s",
		"btn_checkout":    "✅ Checkout",
		"btn_clear":       "🗑 Clear cart",
		"btn_menu":        "📋 Menu",
		"btn_cart":        "🛒 Cart (%d)",
		"btn_back":        "⬅️ Back",
		"cart_cleared":    "Cart cleared.",
		"choose_payment":  "Choose a payment method:",
		"pay_upi":         "📱 UPI",
		"pay_card":        "💳 Card",
		"pay_cod":         "💵 Cash on delivery",
		"invalid_payment": "Please choose a valid payment method.",
		"sign_in_needed":  "Please sign in to place an order",
		"share_contact":   "📞 Share phone number to sign in",
		"signed_in":       "Signed in ✅",
		"signin_wait":     "Too many attempts. Try again in %d s.",
		"signed_out":      "You have been signed out.",
		"order_placed":    "Order placed successfully!",
		"order_failed":    "Failed to place order: %s",
		"orders_empty":    "No orders yet",
		"orders_header":   "🧾 My orders",
		"order_id":        "Order #%s",
		"order_total":     "Total: %s",
		"order_payment":   "Payment: %s (%s)",
		"order_status":    "Status: %s",
		"order_wait":      "⏱ Estimated wait: %d min",
		"order_items":     "Items:",
		"order_not_found": "Order not found.",
		"status_pending":   "Pending",
		"status_preparing": "Preparing",
		"status_completed": "Completed",
		"status_cancelled": "Cancelled",
		"pay_status_pending": "pending",
		"pay_status_paid":    "paid",
		"pay_status_failed":  "failed",
		"choose_lang":      "Choose a language:",
		"language_changed": "Language changed.",
		"unknown_command":  "Sorry, I didn't get that. Try /menu.",
	},
	Hi: {
		"welcome":         "%s में आपका स्वागत है! 🍽\nमेनू देखें, कार्ट में व्यंजन जोड़ें और कुछ ही टैप में ऑर्डर करें।",
		"menu_header":     "📋 मेनू: एक सेक्शन चुनें",
		"cat_veg":         "🥦 शाकाहारी",
		"cat_non-veg":     "🍗 मांसाहारी",
		"cat_egg":         "🥚 अंडा",
		"cat_combo":       "🍱 कॉम्बो",
		"cat_offers":      "🔥 ऑफ़र",
		"cat_all":         "📖 पूरा मेनू",
		"menu_empty":      "अभी यहाँ कुछ नहीं है।",
		"load_failed":     "मेनू लोड नहीं हो सका",
		"offers_failed":   "ऑफ़र लोड नहीं हो सके",
		"combos_failed":   "कॉम्बो लोड नहीं हो सके",
		"orders_failed":   "ऑर्डर लोड नहीं हो सके",
		"item_added":      "%s कार्ट में जोड़ा गया!",
		"item_not_found":  "यह आइटम अब उपलब्ध नहीं है।",
		"off":             "%s%% छूट",
		"cart_empty":      "आपका कार्ट खाली है",
		"cart_header":     "🛒 आपका कार्ट",
		"subtotal":        "उप-योग: %s",
		"tax":             "कर (%s%%): %s",
		"total":           "कुल: %s",
		"btn_checkout":    "✅ ऑर्डर करें",
		"btn_clear":       "🗑 कार्ट खाली करें",
		"btn_menu":        "📋 मेनू",
		"btn_cart":        "🛒 कार्ट (%d)",
		"btn_back":        "⬅️ वापस",
		"cart_cleared":    "कार्ट खाली कर दिया गया।",
		"choose_payment":  "भुगतान का तरीका चुनें:",
		"pay_upi":         "📱 UPI",
		"pay_card":        "💳 कार्ड",
		"pay_cod":         "💵 कैश ऑन डिलीवरी",
		"invalid_payment": "कृपया सही भुगतान तरीका चुनें।",
		"sign_in_needed":  "ऑर्डर करने के लिए कृपया साइन इन करें",
		"share_contact":   "📞 साइन इन के लिए फ़ोन नंबर साझा करें",
		"signed_in":       "साइन इन हो गया ✅",
		"signin_wait":     "बहुत सारे प्रयास। %d सेकंड बाद फिर कोशिश करें।",
		"signed_out":      "आप साइन आउट हो गए हैं।",
		"order_placed":    "ऑर्डर सफलतापूर्वक हो गया!",
		"order_failed":    "ऑर्डर नहीं हो सका: %s",
		"orders_empty":    "अभी तक कोई ऑर्डर नहीं",
		"orders_header":   "🧾 मेरे ऑर्डर",
		"order_id":        "ऑर्डर #%s",
		"order_total":     "कुल: %s",
		"order_payment":   "भुगतान: %s (%s)",
		"order_status":    "स्थिति: %s",
		"order_wait":      "⏱ अनुमानित प्रतीक्षा: %d मिनट",
		"order_items":     "आइटम:",
		"order_not_found": "ऑर्डर नहीं मिला।",
		"status_pending":   "लंबित",
		"status_preparing": "तैयार हो रहा है",
		"status_completed": "पूरा हुआ",
		"status_cancelled": "रद्द",
		"pay_status_pending": "लंबित",
		"pay_status_paid":    "भुगतान हुआ",
		"pay_status_failed":  "विफल",
		"choose_lang":      "भाषा चुनें:",
		"language_changed": "भाषा बदल दी गई।",
		"unknown_command":  "माफ़ कीजिए, समझ नहीं आया। /menu आज़माएँ।",
	},
}
