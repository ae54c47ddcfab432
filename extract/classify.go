package extract

import (
	"strings"

	"github.com/fwojciec/harvest"
)

// categorySignals holds the keyword lists checked during classification.
type categorySignals struct {
	category harvest.Category
	url      []string
	content  []string
}

// classifierSignals lists categories in fixed priority order. The first
// category with any keyword match wins; there is no scoring by match count.
var classifierSignals = []categorySignals{
	{
		category: harvest.CategoryEcommerce,
		url:      []string{"amazon", "ebay", "etsy", "shop", "store", "/product", "/dp/", "cart"},
		content:  []string{"add to cart", "buy now", "in stock", "checkout", "free shipping", "sku"},
	},
	{
		category: harvest.CategoryRealEstate,
		url:      []string{"zillow", "realtor", "redfin", "realestate", "/property", "/homes"},
		content:  []string{"bedroom", "bathroom", "square feet", "sqft", "for sale", "listing price"},
	},
	{
		category: harvest.CategoryTravel,
		url:      []string{"booking", "airbnb", "expedia", "tripadvisor", "hotel", "/flights"},
		content:  []string{"check-in", "check-out", "per night", "guests", "amenities", "itinerary"},
	},
	{
		category: harvest.CategoryHealthcare,
		url:      []string{"health", "clinic", "hospital", "medical", "/doctors"},
		content:  []string{"appointment", "patient", "physician", "treatment", "insurance accepted"},
	},
}

// Classify selects the rule-set category for a page. It is a pure function
// of (rawURL, content): both inputs are lower-cased and tested against fixed
// keyword lists, URL signals before content signals within each category.
// Returns CategoryGeneral when nothing matches.
func Classify(rawURL, content string) harvest.Category {
	url := strings.ToLower(rawURL)
	body := strings.ToLower(content)

	for _, sig := range classifierSignals {
		for _, kw := range sig.url {
			if strings.Contains(url, kw) {
				return sig.category
			}
		}
		for _, kw := range sig.content {
			if strings.Contains(body, kw) {
				return sig.category
			}
		}
	}
	return harvest.CategoryGeneral
}
