package builder

import "fmt"

// ConfigError covers a Build() call missing a required field: issuer or
// audience (spec §4.3, §7).
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string { return fmt.Sprintf("ucan: builder config error: %s", e.Reason) }
