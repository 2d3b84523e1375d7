package badger

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/placesbridge/internal/common"
	"github.com/timshannon/badgerhold/v4"
)

// gcDiscardRatio is the value-log rewrite threshold used when closing
const gcDiscardRatio = 0.5

// BadgerDB owns the badgerhold store holding variables and session records
type BadgerDB struct {
	store  *badgerhold.Store
	logger arbor.ILogger
	config *common.BadgerConfig
}

// NewBadgerDB opens the store at config.Path, or an in-memory store when config.InMemory is set
func NewBadgerDB(logger arbor.ILogger, config *common.BadgerConfig) (*BadgerDB, error) {
	options := badgerhold.DefaultOptions

	if config.InMemory {
		options.Options = badgerdb.DefaultOptions("").WithInMemory(true)
	} else {
		if config.ResetOnStartup {
			if _, err := os.Stat(config.Path); err == nil {
				logger.Debug().Str("path", config.Path).Msg("Deleting existing database (reset_on_startup=true)")
				if err := os.RemoveAll(config.Path); err != nil {
					logger.Warn().Err(err).Str("path", config.Path).Msg("Failed to delete database directory")
				}
			}
		}

		if err := os.MkdirAll(filepath.Dir(config.Path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		options.Options = badgerdb.DefaultOptions(config.Path)
	}

	// badger's own logger is noisy; arbor covers open/close
	options.Options = options.Options.WithLogger(nil)

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database at %s: %w", config.Path, err)
	}

	logger.Debug().
		Str("path", config.Path).
		Bool("in_memory", config.InMemory).
		Msg("Badger database opened")

	return &BadgerDB{
		store:  store,
		logger: logger,
		config: config,
	}, nil
}

// Store returns the underlying badgerhold store
func (b *BadgerDB) Store() *badgerhold.Store {
	return b.store
}

// Close runs one value-log GC pass and closes the store
func (b *BadgerDB) Close() error {
	if b.store == nil {
		return nil
	}

	if !b.config.InMemory {
		if err := b.store.Badger().RunValueLogGC(gcDiscardRatio); err != nil && !errors.Is(err, badgerdb.ErrNoRewrite) {
			b.logger.Debug().Err(err).Msg("Value log GC skipped")
		}
	}

	return b.store.Close()
}
