package storage

import (
	"fmt"

	"param-server/src/interfaces"
	"param-server/src/logger"
	"param-server/src/models"
)

// NewPriceStore builds and initializes the store named by storage.db_type.
func NewPriceStore(cfg *models.MConfig, log *logger.Logger) (interfaces.IPriceStore, error) {
	var (
		store interfaces.IPriceStore
		err   error
	)
	switch cfg.Storage.DBType {
	case "sqlite":
		store, err = NewAsyncSQLiteDB(cfg, log)
	case "postgres":
		store, err = NewPostgresDB(cfg, log)
	default:
		return nil, fmt.Errorf("unsupported db_type %q", cfg.Storage.DBType)
	}
	if err != nil {
		return nil, err
	}

	if err := store.Initialize(); err != nil {
		store.Close()
		return nil, fmt.Errorf("%s store: %w", cfg.Storage.DBType, err)
	}
	return store, nil
}
