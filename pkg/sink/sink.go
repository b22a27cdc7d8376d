// pkg/sink/sink.go
package sink

import (
	"context"

	"github.com/David-Botos/erp-ingress/pkg/model"
)

// Store is an append-only destination for row sets. Appending the same
// rows twice stores them twice; rows are never updated in place.
type Store interface {
	Append(ctx context.Context, set model.RowSet) (int64, error)
}

// Pinger is implemented by stores that can report their health
type Pinger interface {
	Ping(ctx context.Context) error
}
