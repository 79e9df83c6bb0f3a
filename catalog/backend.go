// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
)

// Backend owns the BadgerDB handle behind a Catalog.
type Backend struct {
	db     *badger.DB
	logger *slog.Logger
}

// slogBadger routes Badger's printf-style logging into slog. Badger is chatty at
// info, so info is demoted to debug.
type slogBadger struct {
	logger *slog.Logger
}

var _ badger.Logger = slogBadger{}

func (s slogBadger) log(level slog.Level, format string, args []any) {
	s.logger.Log(context.Background(), level, strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (s slogBadger) Errorf(format string, args ...any)   { s.log(slog.LevelError, format, args) }
func (s slogBadger) Warningf(format string, args ...any) { s.log(slog.LevelWarn, format, args) }
func (s slogBadger) Infof(format string, args ...any)    { s.log(slog.LevelDebug, format, args) }
func (s slogBadger) Debugf(format string, args ...any)   { s.log(slog.LevelDebug, format, args) }

// ensureDir creates path when missing and rejects anything that is not a directory.
func ensureDir(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("catalog directory %s: %w", path, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}

// OpenBackend opens the catalog database in path, creating the directory when
// needed. With inMemory set the path is ignored.
func OpenBackend(path string, inMemory bool, logger *slog.Logger) (*Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "catalog")

	opts := badger.DefaultOptions("").WithInMemory(true)
	if !inMemory {
		if err := ensureDir(path); err != nil {
			return nil, err
		}
		opts = badger.DefaultOptions(path)
	}
	opts.Logger = slogBadger{logger: logger}
	// Raw lines are mostly JSON digits and compress well.
	opts.Compression = options.ZSTD

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	logger.Debug("catalog opened", "path", path, "in_memory", inMemory)

	return &Backend{db: db, logger: logger}, nil
}

// Close closes the database.
func (b *Backend) Close() error {
	return b.db.Close()
}

// IsClosed reports whether Close has run.
func (b *Backend) IsClosed() bool {
	return b.db.IsClosed()
}

// WithTx runs fn inside a transaction, read-write when isWrite is set. fn commits
// write transactions itself; the transaction is always discarded afterwards.
func (b *Backend) WithTx(fn func(tx *badger.Txn) error, isWrite bool) error {
	tx := b.db.NewTransaction(isWrite)
	defer tx.Discard()
	return fn(tx)
}

// NewWriteBatch returns a batch for bulk writes. Set is safe for concurrent use.
func (b *Backend) NewWriteBatch() *badger.WriteBatch {
	return b.db.NewWriteBatch()
}
