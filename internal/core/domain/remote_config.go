package domain

import "time"

// RemoteServiceConfig is the per shop configuration published by the
// search service. It is never mutated after construction.
type RemoteServiceConfig struct {
	ShopKey            string    `json:"shopkey"`
	Enabled            bool      `json:"enabled"`
	IsStaging          bool      `json:"isStaging"`
	SmartSuggestBlocks []string  `json:"smartSuggestBlocks"`
	ExpireAt           time.Time `json:"expireAt"`
}

func (c RemoteServiceConfig) IsExpired(now time.Time) bool {
	return now.After(c.ExpireAt)
}

// Field returns the value of a config field by its name.
func (c RemoteServiceConfig) Field(name string) (any, error) {
	switch name {
	case "shopkey":
		return c.ShopKey, nil
	case "enabled":
		return c.Enabled, nil
	case "isStaging":
		return c.IsStaging, nil
	case "smartSuggestBlocks":
		blocks := make([]string, len(c.SmartSuggestBlocks))
		copy(blocks, c.SmartSuggestBlocks)
		return blocks, nil
	case "expireAt":
		return c.ExpireAt, nil
	}
	return nil, &UnknownConfigKeyError{Key: name}
}

// IsConfigField reports whether name is a known config field.
func IsConfigField(name string) bool {
	_, err := RemoteServiceConfig{}.Field(name)
	return err == nil
}
