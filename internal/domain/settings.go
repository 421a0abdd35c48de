package domain

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"
)

// Price is either a numeric amount or a free-form label such as "По запросу".
// Null marks a price the admin explicitly cleared.
type Price struct {
	Amount *float64
	Label  string
	Null   bool
}

// NumericPrice builds an amount price
func NumericPrice(amount float64) Price {
	return Price{Amount: &amount}
}

// LabelPrice builds a sentinel price shown instead of an amount
func LabelPrice(label string) Price {
	return Price{Label: label}
}

// MarshalJSON encodes the price as a JSON number, string or null
func (p Price) MarshalJSON() ([]byte, error) {
	switch {
	case p.Null:
		return []byte("null"), nil
	case p.Amount != nil:
		return json.Marshal(*p.Amount)
	default:
		return json.Marshal(p.Label)
	}
}

// UnmarshalJSON accepts a JSON number, string or null
func (p *Price) UnmarshalJSON(data []byte) error {
	*p = Price{}
	if string(bytes.TrimSpace(data)) == "null" {
		p.Null = true
		return nil
	}
	var amount float64
	if err := json.Unmarshal(data, &amount); err == nil {
		p.Amount = &amount
		return nil
	}
	var label string
	if err := json.Unmarshal(data, &label); err != nil {
		return fmt.Errorf("price must be a number or a string: %w", err)
	}
	p.Label = label
	return nil
}

// Settings is the singleton document that drives pricing, discounts and
// package availability on the public site.
type Settings struct {
	DiscountEnabled       bool    `json:"discountEnabled"`
	DiscountPercent       float64 `json:"discountPercent"`
	DiscountText          string  `json:"discountText"`
	DiscountExpiry        string  `json:"discountExpiry"`
	BasicAvailable        bool    `json:"basicAvailable"`
	GroupAvailable        bool    `json:"groupAvailable"`
	IndividualAvailable   bool    `json:"individualAvailable"`
	ConsultationAvailable bool    `json:"consultationAvailable"`
	BasicPrice            Price   `json:"basicPrice"`
	GroupPrice            Price   `json:"groupPrice"`
	IndividualPrice       Price   `json:"individualPrice"`
	ContactTelegram       string  `json:"contactTelegram"`
	ContactEmail          string  `json:"contactEmail"`

	// Extra keeps keys the admin panel sent that this struct does not model,
	// so a saved document reads back unchanged.
	Extra map[string]json.RawMessage `json:"-"`

	// present lists the modelled keys the document carries. Absent keys keep
	// their default values for the public view but are not written back.
	// A nil set means every key except an empty discountExpiry.
	present map[string]bool
}

type settingsFields Settings

var settingsKeys = []string{
	"discountEnabled", "discountPercent", "discountText", "discountExpiry",
	"basicAvailable", "groupAvailable", "individualAvailable", "consultationAvailable",
	"basicPrice", "groupPrice", "individualPrice",
	"contactTelegram", "contactEmail",
}

// DefaultSettings is written when no settings document exists yet
func DefaultSettings() Settings {
	return Settings{
		DiscountEnabled:       false,
		DiscountPercent:       20,
		DiscountText:          "Скидка 20% на все курсы!",
		BasicAvailable:        true,
		GroupAvailable:        true,
		IndividualAvailable:   true,
		ConsultationAvailable: true,
		BasicPrice:            NumericPrice(10000),
		GroupPrice:            NumericPrice(30000),
		IndividualPrice:       LabelPrice("По запросу"),
		ContactTelegram:       "@vxschool",
		ContactEmail:          "contact@vxschool.com",
	}
}

// Has reports whether the document carries the modelled key
func (s *Settings) Has(key string) bool {
	if s.present == nil {
		return key != "discountExpiry" || s.DiscountExpiry != ""
	}
	return s.present[key]
}

// complete reports whether the nil key set would write the same keys
func (s *Settings) complete() bool {
	switch len(s.present) {
	case len(settingsKeys):
		return s.DiscountExpiry != ""
	case len(settingsKeys) - 1:
		return !s.present["discountExpiry"]
	default:
		return false
	}
}

// mark records key as present without mutating a set shared with a copy
func (s *Settings) mark(key string) {
	if s.present == nil || s.present[key] {
		return
	}
	set := make(map[string]bool, len(s.present)+1)
	for k := range s.present {
		set[k] = true
	}
	set[key] = true
	s.present = set
}

// UnmarshalJSON decodes the modelled fields over the defaults and stashes
// the rest in Extra
func (s *Settings) UnmarshalJSON(data []byte) error {
	fields := settingsFields(DefaultSettings())
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}

	present := make(map[string]bool, len(settingsKeys))
	for _, key := range settingsKeys {
		if _, ok := all[key]; ok {
			present[key] = true
			delete(all, key)
		}
	}

	*s = Settings(fields)
	s.present = present
	if s.complete() {
		s.present = nil
	}
	s.Extra = nil
	if len(all) > 0 {
		s.Extra = all
	}
	return nil
}

// MarshalJSON encodes the present modelled fields merged with Extra
func (s Settings) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(settingsFields(s))
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}

	merged := make(map[string]json.RawMessage, len(fields)+len(s.Extra))
	for key, value := range s.Extra {
		merged[key] = value
	}
	for _, key := range settingsKeys {
		if s.Has(key) {
			merged[key] = fields[key]
		}
	}
	return json.Marshal(merged)
}

// ToggleDiscount flips discountEnabled and returns the new value
func (s *Settings) ToggleDiscount() bool {
	s.DiscountEnabled = !s.DiscountEnabled
	s.mark("discountEnabled")
	return s.DiscountEnabled
}

// TogglePackage flips the availability flag of a package ("basic", "group",
// "individual", "consultation"). ok is false for an unknown package.
func (s *Settings) TogglePackage(name string) (value, ok bool) {
	flag, ok := s.packageAvailability(name)
	if !ok {
		return false, false
	}
	*flag = !*flag
	s.mark(name + "Available")
	return *flag, true
}

func (s *Settings) packageAvailability(name string) (*bool, bool) {
	switch name {
	case "basic":
		return &s.BasicAvailable, true
	case "group":
		return &s.GroupAvailable, true
	case "individual":
		return &s.IndividualAvailable, true
	case "consultation":
		return &s.ConsultationAvailable, true
	default:
		return nil, false
	}
}

// PublicSettings is the subset of Settings exposed by GET /api/settings
type PublicSettings struct {
	DiscountEnabled       bool    `json:"discountEnabled"`
	DiscountPercent       float64 `json:"discountPercent"`
	DiscountText          string  `json:"discountText"`
	DiscountExpiry        string  `json:"discountExpiry,omitempty"`
	BasicAvailable        bool    `json:"basicAvailable"`
	GroupAvailable        bool    `json:"groupAvailable"`
	IndividualAvailable   bool    `json:"individualAvailable"`
	ConsultationAvailable bool    `json:"consultationAvailable"`
	BasicPrice            Price   `json:"basicPrice"`
	GroupPrice            Price   `json:"groupPrice"`
	IndividualPrice       Price   `json:"individualPrice"`
}

// Public drops the contact channel fields and anything unmodelled
func (s Settings) Public() PublicSettings {
	return PublicSettings{
		DiscountEnabled:       s.DiscountEnabled,
		DiscountPercent:       s.DiscountPercent,
		DiscountText:          s.DiscountText,
		DiscountExpiry:        s.DiscountExpiry,
		BasicAvailable:        s.BasicAvailable,
		GroupAvailable:        s.GroupAvailable,
		IndividualAvailable:   s.IndividualAvailable,
		ConsultationAvailable: s.ConsultationAvailable,
		BasicPrice:            s.BasicPrice,
		GroupPrice:            s.GroupPrice,
		IndividualPrice:       s.IndividualPrice,
	}
}
