package model

// Environment is a themed dining area of the restaurant. Catalog entries are
// static and never change at runtime.
type Environment struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	MinPartySize int      `json:"capacityMin"`
	MaxPartySize int      `json:"capacityMax"`
	Description  string   `json:"description"`
	Reviews      []Review `json:"-"`
}

// Accepts reports whether a party of n guests fits the area's bounds.
func (e Environment) Accepts(n int) bool {
	return n >= e.MinPartySize && n <= e.MaxPartySize
}

// Review is a guest comment displayed next to a dining area.
type Review struct {
	Author string `json:"usuario"`
	Date   string `json:"fecha"`
	Rating int    `json:"rating"`
	Text   string `json:"texto"`
}
