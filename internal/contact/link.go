// Package contact builds the outbound messaging links used to reach an
// owner or to hand the cart over for checkout.
package contact

import (
	"fmt"
	"math"
	"net/url"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/aayush4jha/kirayawale-beta-version/internal/cart"
	"github.com/aayush4jha/kirayawale-beta-version/internal/model"
)

const baseURL = "https://wa.me/"

var printer = message.NewPrinter(language.MustParse("en-IN"))

// FormatPrice renders an amount in rupees without decimals, e.g. ₹3,000.
func FormatPrice(amount float64) string {
	return "₹" + printer.Sprintf("%d", int64(math.Round(amount)))
}

// CheckoutMessage lists every cart entry and the total.
func CheckoutMessage(entries []cart.Entry, total float64) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("%s - %dx for %d days (%s)",
			e.Title, e.Quantity, e.RentalDays, FormatPrice(e.Subtotal())))
	}
	return "Hi! I'd like to rent the following items from KirayaWale:\n\n" +
		strings.Join(lines, "\n") +
		"\n\nTotal: " + FormatPrice(total) +
		"\n\nPlease let me know the availability and next steps for the rental process. Thank you!"
}

// CheckoutLink returns the deep link carrying CheckoutMessage. An empty
// cart has no link.
func CheckoutLink(phone string, entries []cart.Entry, total float64) (string, bool) {
	if len(entries) == 0 {
		return "", false
	}
	return link(phone, CheckoutMessage(entries, total)), true
}

// OwnerMessage asks about a single listing.
func OwnerMessage(l model.Listing) string {
	return fmt.Sprintf("Hi! I'm interested in renting \"%s\" (%s/day) listed on KirayaWale. Is it available?",
		l.Title, FormatPrice(l.PricePerDay))
}

// OwnerLink returns the deep link for enquiring about l.
func OwnerLink(phone string, l model.Listing) string {
	return link(phone, OwnerMessage(l))
}

func link(phone, text string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	// wa.me wants spaces as %20, not +
	return baseURL + digits + "?text=" + strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}
