package pricing

import "strings"

var countryAliases = map[string]string{
	"ng":             "NG",
	"nga":            "NG",
	"nigeria":        "NG",
	"gh":             "GH",
	"gha":            "GH",
	"ghana":          "GH",
	"ke":             "KE",
	"ken":            "KE",
	"kenya":          "KE",
	"za":             "ZA",
	"zaf":            "ZA",
	"rsa":            "ZA",
	"south africa":   "ZA",
	"us":             "US",
	"usa":            "US",
	"united states":  "US",
	"gb":             "GB",
	"gbr":            "GB",
	"uk":             "GB",
	"united kingdom": "GB",
}

// NormalizeCountry maps a country name or code to an uppercase ISO-like
// two-letter code. Unrecognized two-letter strings pass through uppercased;
// anything else resolves to "".
func NormalizeCountry(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	if code, ok := countryAliases[s]; ok {
		return code
	}
	if len(s) == 2 && isAlpha(s) {
		return strings.ToUpper(s)
	}
	return ""
}

func isAlpha(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

// ResolveCountry walks the client metadata candidates in precedence order
// and returns the first that normalizes to a country code.
func ResolveCountry(meta *ClientMeta) string {
	if meta == nil {
		return ""
	}
	for _, candidate := range countryCandidates(meta) {
		if code := NormalizeCountry(candidate); code != "" {
			return code
		}
	}
	return ""
}

func countryCandidates(meta *ClientMeta) []string {
	candidates := make([]string, 0, 5)
	if meta.Shipping != nil {
		candidates = append(candidates, meta.Shipping.Country)
	}
	if meta.ShippingAddress != nil {
		candidates = append(candidates, meta.ShippingAddress.Country)
	}
	if meta.Address != nil {
		candidates = append(candidates, meta.Address.Country)
	}
	if meta.Client != nil {
		candidates = append(candidates, meta.Client.Country)
	}
	candidates = append(candidates, meta.Country)
	return candidates
}
