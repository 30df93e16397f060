package project

import (
	"context"
	"fmt"
)

// Driver names accepted by NewStore
const DriverMemory = "memory"

// NewStore opens the store for driver
func NewStore(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case DriverMemory, "":
		return NewMemoryStore(), nil
	case DriverSQLite, DriverPostgres:
		return OpenSQL(ctx, driver, dsn)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}
}
