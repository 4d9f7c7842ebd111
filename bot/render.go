package bot

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tasty-canteen/lang"
	"tasty-canteen/models"
	"tasty-canteen/services"
)

// menuViews is the order of the sections on the main menu keyboard.
var menuViews = []services.View{
	services.ViewAll, services.ViewOffers, services.ViewCombo,
	services.ViewVeg, services.ViewNonVeg, services.ViewEgg,
}

func viewLabel(langCode string, v services.View) string {
	return lang.T(langCode, "cat_"+string(v))
}

// loadFailedKey picks the read-failure message for a view.
func loadFailedKey(v services.View) string {
	switch v {
	case services.ViewOffers:
		return "offers_failed"
	case services.ViewCombo:
		return "combos_failed"
	default:
		return "load_failed"
	}
}

// cardMarkup converts CardContent.Buttons to a Telegram inline keyboard.
func cardMarkup(c services.CardContent) *tgbotapi.InlineKeyboardMarkup {
	if len(c.Buttons) == 0 {
		return nil
	}
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, row := range c.Buttons {
		var btns []tgbotapi.InlineKeyboardButton
		for _, btn := range row {
			btns = append(btns, tgbotapi.NewInlineKeyboardButtonData(btn.Text, btn.CallbackData))
		}
		rows = append(rows, btns)
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &kb
}

func cartButton(langCode string, count int) services.CardButton {
	return services.CardButton{Text: lang.T(langCode, "btn_cart", count), CallbackData: "cart"}
}

// mainMenuCard is the section picker shown by /menu.
func mainMenuCard(langCode string, cartCount int) services.CardContent {
	var rows [][]services.CardButton
	for i := 0; i < len(menuViews); i += 3 {
		var row []services.CardButton
		for _, v := range menuViews[i:min(i+3, len(menuViews))] {
			row = append(row, services.CardButton{Text: viewLabel(langCode, v), CallbackData: "cat:" + string(v)})
		}
		rows = append(rows, row)
	}
	rows = append(rows, []services.CardButton{cartButton(langCode, cartCount)})
	return services.CardContent{Text: lang.T(langCode, "menu_header"), Buttons: rows}
}

// itemLine renders one menu item with its effective price, striking through
// the base price when discounted.
func itemLine(item models.MenuItem, langCode, currency string) string {
	price := services.FormatMoney(services.EffectivePrice(item), currency)
	if !item.HasDiscount() {
		return fmt.Sprintf("• %s · %s", item.Name, price)
	}
	return fmt.Sprintf("• %s · %s (%s, %s)", item.Name, price,
		strikethrough(services.FormatMoney(item.Price, currency)),
		lang.T(langCode, "off", item.DiscountPercentage.String()))
}

func strikethrough(s string) string {
	var b strings.Builder
	for _, r := range s {
		b.WriteRune(r)
		b.WriteRune('\u0336')
	}
	return b.String()
}

// itemsCard lists a catalog view with one add button per item.
func itemsCard(view services.View, items []models.MenuItem, langCode, currency string, cartCount int) services.CardContent {
	var b strings.Builder
	b.WriteString(viewLabel(langCode, view))
	if len(items) == 0 {
		b.WriteString("\n\n" + lang.T(langCode, "menu_empty"))
	}
	var rows [][]services.CardButton
	for _, it := range items {
		b.WriteString("\n" + itemLine(it, langCode, currency))
		if it.Description != "" {
			b.WriteString("\n   " + it.Description)
		}
		rows = append(rows, []services.CardButton{{
			Text:         fmt.Sprintf("➕ %s", it.Name),
			CallbackData: "add:" + it.ID,
		}})
	}
	rows = append(rows, []services.CardButton{
		{Text: lang.T(langCode, "btn_back"), CallbackData: "menu"},
		cartButton(langCode, cartCount),
	})
	return services.CardContent{Text: b.String(), Buttons: rows}
}

// groupedCard renders the unified menu as veg, egg and non-veg sections.
func groupedCard(g services.MenuGroups, langCode, currency string, cartCount int) services.CardContent {
	var b strings.Builder
	b.WriteString(viewLabel(langCode, services.ViewAll))
	var rows [][]services.CardButton
	sections := []struct {
		view  services.View
		items []models.MenuItem
	}{
		{services.ViewVeg, g.Veg},
		{services.ViewEgg, g.Egg},
		{services.ViewNonVeg, g.NonVeg},
	}
	for _, s := range sections {
		if len(s.items) == 0 {
			continue
		}
		b.WriteString("\n\n" + viewLabel(langCode, s.view))
		for _, it := range s.items {
			b.WriteString("\n" + itemLine(it, langCode, currency))
			rows = append(rows, []services.CardButton{{Text: "➕ " + it.Name, CallbackData: "add:" + it.ID}})
		}
	}
	if len(rows) == 0 {
		b.WriteString("\n\n" + lang.T(langCode, "menu_empty"))
	}
	rows = append(rows, []services.CardButton{
		{Text: lang.T(langCode, "btn_back"), CallbackData: "menu"},
		cartButton(langCode, cartCount),
	})
	return services.CardContent{Text: b.String(), Buttons: rows}
}

func languageCard() services.CardContent {
	return services.CardContent{
		Text: lang.T(lang.En, "choose_lang") + "\n" + lang.T(lang.Hi, "choose_lang"),
		Buttons: [][]services.CardButton{{
			{Text: "English", CallbackData: "lang:" + lang.En},
			{Text: "हिन्दी", CallbackData: "lang:" + lang.Hi},
		}},
	}
}

// contactKeyboard asks the user to share their own phone number.
func contactKeyboard(langCode string) tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButtonContact(lang.T(langCode, "share_contact")),
		),
	)
	kb.OneTimeKeyboard = true
	kb.ResizeKeyboard = true
	return kb
}
