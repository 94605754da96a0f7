package orders

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strict        = bluemonday.StrictPolicy()
	angleBrackets = strings.NewReplacer("<", "", ">", "")
)

// Sanitize strips every tag from free text and collapses whitespace runs into single spaces.
func Sanitize(s string) string {
	s = strict.Sanitize(s)
	s = angleBrackets.Replace(html.UnescapeString(s))
	return strings.Join(strings.Fields(s), " ")
}

func sanitizeCheckout(req CheckoutRequest) CheckoutRequest {
	req.CustomerName = Sanitize(req.CustomerName)
	req.CustomerAddress = Sanitize(req.CustomerAddress)
	req.CustomerPhone = Sanitize(req.CustomerPhone)
	req.Notes = Sanitize(req.Notes)
	items := make([]CheckoutItem, len(req.Items))
	for i, it := range req.Items {
		it.Note = Sanitize(it.Note)
		items[i] = it
	}
	req.Items = items
	return req
}
