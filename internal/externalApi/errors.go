package externalApi

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// ProviderError means no configured alias produced a usable quote for a
// ticker. The whole fetch fails; nothing is partially returned.
type ProviderError struct {
	Ticker   string
	Aliases  []string
	Attempts map[string]string // alias -> failure reason
}

func (e *ProviderError) Error() string {
	reasons := make([]string, 0, len(e.Attempts))
	for _, alias := range e.Aliases {
		if reason, ok := e.Attempts[alias]; ok {
			reasons = append(reasons, fmt.Sprintf("%s: %s", alias, reason))
		}
	}
	if len(reasons) == 0 {
		for alias, reason := range e.Attempts {
			reasons = append(reasons, fmt.Sprintf("%s: %s", alias, reason))
		}
		sort.Strings(reasons)
	}
	return fmt.Sprintf("no quote for %s (tried %s): %s",
		e.Ticker, strings.Join(e.Aliases, ", "), strings.Join(reasons, "; "))
}

// StaleQuote identifies one quote that failed the freshness gate.
type StaleQuote struct {
	Ticker         string
	ResolvedSymbol string
	ObservedAt     time.Time
}

// StaleQuoteError rejects a whole fetched batch: a single stale quote must
// never be mixed with fresh ones in a decision pass.
type StaleQuoteError struct {
	Bound time.Duration
	Stale []StaleQuote
}

func (e *StaleQuoteError) Error() string {
	parts := make([]string, 0, len(e.Stale))
	for _, s := range e.Stale {
		parts = append(parts, fmt.Sprintf("%s(via %s, ts %s)", s.Ticker, s.ResolvedSymbol, s.ObservedAt.Format("15:04:05")))
	}
	return fmt.Sprintf("quotes older than %s, batch dropped: %s", e.Bound, strings.Join(parts, ", "))
}
