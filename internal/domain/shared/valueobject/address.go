package valueobject

import "strings"

// Address is a postal address as captured on order forms and buyer records.
type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	Province   string `json:"province"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// Normalize trims every field and upper-cases two-letter country codes.
func (a Address) Normalize() Address {
	out := Address{
		Line1:      strings.TrimSpace(a.Line1),
		Line2:      strings.TrimSpace(a.Line2),
		City:       strings.TrimSpace(a.City),
		Province:   strings.TrimSpace(a.Province),
		PostalCode: strings.TrimSpace(a.PostalCode),
		Country:    strings.TrimSpace(a.Country),
	}
	if len(out.Country) == 2 {
		out.Country = strings.ToUpper(out.Country)
	}
	return out
}

// IsEmpty reports whether no field is set
func (a Address) IsEmpty() bool {
	return a.Normalize() == Address{}
}

// String joins the non-empty parts on one line
func (a Address) String() string {
	n := a.Normalize()
	parts := make([]string, 0, 6)
	for _, p := range []string{n.Line1, n.Line2, n.City, n.Province, n.PostalCode, n.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
