package deck

import (
	"fmt"
	"strconv"
	"strings"
)

// Element represents a card's elemental category
type Element int

const (
	Fire Element = iota
	Ice
	Water
	Electricity
	Earth
	Power
)

// Elements lists every element in canonical deck order
var Elements = []Element{Fire, Ice, Water, Electricity, Earth, Power}

// String returns the string representation of an element
func (e Element) String() string {
	switch e {
	case Fire:
		return "FIRE"
	case Ice:
		return "ICE"
	case Water:
		return "WATER"
	case Electricity:
		return "ELECTRICITY"
	case Earth:
		return "EARTH"
	case Power:
		return "POWER"
	default:
		return "UNKNOWN"
	}
}

// ParseElement parses an element name (case-insensitive)
func ParseElement(s string) (Element, error) {
	for _, e := range Elements {
		if strings.EqualFold(s, e.String()) {
			return e, nil
		}
	}
	return 0, fmt.Errorf("unknown element %q", s)
}

// MarshalText implements encoding.TextMarshaler so elements appear as
// names rather than ints on the wire
func (e Element) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (e *Element) UnmarshalText(text []byte) error {
	parsed, err := ParseElement(string(text))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// Card represents an elemental card. Cards are plain values; duplicates
// of the same (element, strength) pair never occur within one deck but
// are not globally unique
type Card struct {
	Element  Element `json:"element"`
	Strength int     `json:"strength"`
}

// NewCard creates a new card
func NewCard(element Element, strength int) Card {
	return Card{Element: element, Strength: strength}
}

// String returns the string representation of a card (e.g. "FIRE_7")
func (c Card) String() string {
	return c.Element.String() + "_" + strconv.Itoa(c.Strength)
}

// IsPower returns true if playing this card triggers the power cascade
func (c Card) IsPower() bool {
	return c.Element == Power
}
