package extension

import "fmt"

// SchemaError reports a bad or unknown extension identifier.
type SchemaError struct {
	Name   string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("extension schema error: %q: %s", e.Name, e.Reason)
}
