package database

import (
	"context"
	"fmt"

	"github.com/xyz-asif/sheetodo/internal/config"
	"github.com/xyz-asif/sheetodo/internal/pkg/logger"
	"github.com/xyz-asif/sheetodo/internal/rowstore"
)

// OpenRowStore builds the row store selected by cfg.RowStore. For Sheets
// the header is written or migrated to layout before returning. The
// returned func releases the store.
func OpenRowStore(ctx context.Context, cfg *config.Config, layout rowstore.Layout) (rowstore.Store, func(), error) {
	noop := func() {}

	switch cfg.RowStore {
	case config.StoreMemory:
		logger.Warn("Using in-memory row store: data is lost on restart")
		return rowstore.NewMemory(), noop, nil

	case config.StoreMongo:
		db, err := Connect(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, noop, fmt.Errorf("connect to MongoDB: %w", err)
		}
		closeDB := func() { _ = db.Disconnect(context.Background()) }

		store, err := rowstore.NewMongo(db.Database, cfg.SheetName, cfg.StoreTimeout)
		if err != nil {
			closeDB()
			return nil, noop, err
		}
		return store, closeDB, nil

	case config.StoreSheets:
		creds, err := rowstore.CredentialSource{
			JSONPath: cfg.GoogleServiceAccountJSONPath,
			JSON:     cfg.GoogleServiceAccountJSON,
		}.ClientOption(ctx)
		if err != nil {
			return nil, noop, err
		}

		store, err := rowstore.NewSheets(ctx, rowstore.SheetsOptions{
			SpreadsheetID: cfg.SpreadsheetID,
			SheetName:     cfg.SheetName,
			Layout:        layout,
			Timeout:       cfg.StoreTimeout,
		}, creds)
		if err != nil {
			return nil, noop, err
		}
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, noop, fmt.Errorf("prepare sheet %q: %w", cfg.SheetName, err)
		}
		return store, noop, nil
	}

	return nil, noop, fmt.Errorf("unknown row store %q", cfg.RowStore)
}
