package compare

import (
	"context"
	"fmt"
	"strings"

	"github.com/dd0wney/cluso-crosscheck/pkg/client"
)

// ErrorPolicy decides what a transport failure does to a data check
type ErrorPolicy string

const (
	// AbortOnError stops the whole run on the first transport failure
	AbortOnError ErrorPolicy = "abort"
	// FlagOnError records the failure as an issue of the entity and moves on
	FlagOnError ErrorPolicy = "flag"
)

// ParseErrorPolicy accepts "abort" or "flag"; empty means abort
func ParseErrorPolicy(s string) (ErrorPolicy, error) {
	switch p := ErrorPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "", AbortOnError:
		return AbortOnError, nil
	case FlagOnError:
		return FlagOnError, nil
	default:
		return "", fmt.Errorf("unknown transport error policy %q (supported: abort, flag)", s)
	}
}

// handleFetch turns a fetch error into either an issue line or a fatal error.
// Cancellation and non-transport errors are always fatal.
func (p ErrorPolicy) handleFetch(ctx context.Context, entity string, err error) (string, error) {
	if ctx.Err() != nil || p != FlagOnError || !client.IsTransportError(err) {
		return "", fmt.Errorf("entity %s: %w", entity, err)
	}
	return "query failed: " + err.Error(), nil
}
