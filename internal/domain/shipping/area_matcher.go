package shipping

import "strings"

// Destination is the address a shipment resolves against
type Destination struct {
	City    string
	ZipCode string
	Country string
}

// IsEmpty reports whether no address component is present
func (d Destination) IsEmpty() bool {
	return strings.TrimSpace(d.City) == "" &&
		strings.TrimSpace(d.ZipCode) == "" &&
		strings.TrimSpace(d.Country) == ""
}

// MatchArea resolves a destination against the given areas using an
// ordered waterfall: city containment first, then exact zip, then a
// substring match on the area name. The first rule to produce a hit wins;
// later rules are never consulted for a "better" match. Inactive areas
// never match. Returns nil when no rule hits (callers fall back to the
// default area).
func MatchArea(areas []ShippingArea, dest Destination) *ShippingArea {
	if dest.City != "" {
		for i := range areas {
			if areas[i].IsActive() && areas[i].MatchesCity(dest.City) {
				return &areas[i]
			}
		}
	}

	if dest.ZipCode != "" {
		for i := range areas {
			if areas[i].IsActive() && areas[i].MatchesZip(dest.ZipCode) {
				return &areas[i]
			}
		}
	}

	if term := nameFallbackTerm(dest); term != "" {
		for i := range areas {
			if areas[i].IsActive() && areas[i].MatchesName(term) {
				return &areas[i]
			}
		}
	}

	return nil
}

// nameFallbackTerm picks the term used for the area-name fallback rule:
// the country when present, otherwise the city.
func nameFallbackTerm(dest Destination) string {
	if strings.TrimSpace(dest.Country) != "" {
		return dest.Country
	}
	return strings.TrimSpace(dest.City)
}
