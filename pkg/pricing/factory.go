package pricing

import "fmt"

// NewProvider creates a pricing provider based on config
func NewProvider(config *Config) (Provider, error) {
	name := config.Provider
	if name == "" {
		name = "default"
		if config.Overrides != "" {
			name = "override"
		}
	}

	switch name {
	case "default":
		return NewDefaultProvider(), nil
	case "override":
		overrides, err := ParseOverrides(config.Overrides)
		if err != nil {
			return nil, err
		}
		return NewOverrideProvider(NewDefaultProvider(), overrides), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", name)
	}
}
