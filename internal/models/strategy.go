package models

import (
	"errors"
	"fmt"
	"strings"
)

// Strategy is one of the fixed allocation policies a projection can follow
type Strategy int

const (
	PayDownDebt Strategy = iota + 1
	EmergencyFund
	InvestmentGrowth
	HomePurchase
)

// ErrUnknownStrategy is returned when a strategy name does not match any policy
var ErrUnknownStrategy = errors.New("unknown strategy")

type strategyInfo struct {
	id          string
	name        string
	description string
}

var strategyCatalogue = map[Strategy]strategyInfo{
	PayDownDebt: {
		id:          "PayDownDebt",
		name:        "Pay Down Debt",
		description: "Prioritize paying off high-interest debt before saving or investing",
	},
	EmergencyFund: {
		id:          "EmergencyFund",
		name:        "Emergency Fund",
		description: "Build a 3-6 month emergency fund for financial security",
	},
	InvestmentGrowth: {
		id:          "InvestmentGrowth",
		name:        "Investment Growth",
		description: "Invest in diversified portfolio for long-term growth",
	},
	HomePurchase: {
		id:          "HomePurchase",
		name:        "Home Purchase",
		description: "Save for a down payment on a home purchase",
	},
}

// Strategies lists every strategy in display order
func Strategies() []Strategy {
	return []Strategy{PayDownDebt, EmergencyFund, InvestmentGrowth, HomePurchase}
}

// Valid reports whether s is one of the defined strategies
func (s Strategy) Valid() bool {
	_, ok := strategyCatalogue[s]
	return ok
}

// ID returns the identifier form, e.g. "PayDownDebt"
func (s Strategy) ID() string {
	return strategyCatalogue[s].id
}

// String returns the display name, e.g. "Pay Down Debt"
func (s Strategy) String() string {
	info, ok := strategyCatalogue[s]
	if !ok {
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
	return info.name
}

// Description returns the fixed description shown next to the strategy
func (s Strategy) Description() string {
	return strategyCatalogue[s].description
}

// ParseStrategy accepts either the display name or the identifier,
// ignoring case and whitespace
func ParseStrategy(name string) (Strategy, error) {
	key := normalizeStrategyName(name)
	if key == "" {
		return 0, fmt.Errorf("%w: empty name", ErrUnknownStrategy)
	}
	for _, s := range Strategies() {
		if normalizeStrategyName(s.ID()) == key {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}

func normalizeStrategyName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), ""))
}

// MarshalText encodes the display name
func (s Strategy) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownStrategy, int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes a display name or identifier
func (s *Strategy) UnmarshalText(text []byte) error {
	parsed, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// StrategyInfo is the public description of a strategy
type StrategyInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Info returns the public description of s
func (s Strategy) Info() StrategyInfo {
	return StrategyInfo{
		ID:          s.ID(),
		Name:        s.String(),
		Description: s.Description(),
	}
}
