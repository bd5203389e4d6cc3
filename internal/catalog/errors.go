package catalog

import (
	"fmt"
	"strings"
)

// ConfigurationError reports a reference table that lacks expected columns.
// It is fatal at load time.
type ConfigurationError struct {
	Table   string
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("table %s is missing required columns: %s", e.Table, strings.Join(e.Missing, ", "))
}
