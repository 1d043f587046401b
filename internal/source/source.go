// Package source abstracts where the raw CSV export comes from. The parser
// downstream only ever sees CSV text, so every source renders to that.
package source

import "context"

// Source fetches one CSV document. Implementations must be safe for
// repeated calls; each reload fetches fresh.
type Source interface {
	Fetch(ctx context.Context) (string, error)
}
