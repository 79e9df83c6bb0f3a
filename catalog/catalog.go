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
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/vecload/core"
)

// Catalog stores run reports and journaled rejections.
type Catalog struct {
	backend *Backend
	logger  *slog.Logger
}

// Open opens the catalog at path, or an in-memory catalog when inMemory is set.
func Open(path string, inMemory bool, logger *slog.Logger) (*Catalog, error) {
	backend, err := OpenBackend(path, inMemory, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	return &Catalog{
		backend: backend,
		logger:  backend.logger,
	}, nil
}

// Close closes the underlying database.
func (c *Catalog) Close() error {
	return c.backend.Close()
}

// RecordRun stores report, replacing any earlier report with the same run ID.
func (c *Catalog) RecordRun(ctx context.Context, report *core.RunReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeRunKey(report.RunID), MarshalRunReport(report)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Run returns the report for id, or ErrRunNotFound.
func (c *Catalog) Run(ctx context.Context, id core.ID) (*core.RunReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var report *core.RunReport
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeRunKey(id))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %d", ErrRunNotFound, id)
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var err error
			report, err = UnmarshalRunReport(val)
			if err != nil {
				return fmt.Errorf("%w: run %d: %w", ErrCorruptRecord, id, err)
			}
			return nil
		})
	}, false)
	return report, err
}

// Runs returns up to limit reports, newest first. A limit of 0 returns all of them.
func (c *Catalog) Runs(ctx context.Context, limit int) ([]*core.RunReport, error) {
	var reports []*core.RunReport
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(runRecordPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := iter.Item().Value(func(val []byte) error {
				report, err := UnmarshalRunReport(val)
				if err != nil {
					return fmt.Errorf("%w: %w", ErrCorruptRecord, err)
				}
				reports = append(reports, report)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(reports, func(a, b *core.RunReport) int {
		return b.StartedAt.Compare(a.StartedAt)
	})
	if limit > 0 && len(reports) > limit {
		reports = reports[:limit]
	}
	return reports, nil
}

// Rejections returns up to limit journaled lines of a run in line order.
// A limit of 0 returns all of them.
func (c *Catalog) Rejections(ctx context.Context, runID core.ID, limit int) ([]*RejectedLine, error) {
	var lines []*RejectedLine
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialRejectionKey(runID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if limit > 0 && len(lines) >= limit {
				return nil
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			err := iter.Item().Value(func(val []byte) error {
				line, err := UnmarshalRejectedLine(val)
				if err != nil {
					return fmt.Errorf("%w: %w", ErrCorruptRecord, err)
				}
				lines = append(lines, line)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// DeleteRun removes a run report and its journaled lines.
func (c *Catalog) DeleteRun(ctx context.Context, runID core.ID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var keys [][]byte
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialRejectionKey(runID)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()
		for iter.Rewind(); iter.Valid(); iter.Next() {
			keys = append(keys, iter.Item().KeyCopy(nil))
		}
		return nil
	}, false)
	if err != nil {
		return err
	}

	wb := c.backend.NewWriteBatch()
	defer wb.Cancel()
	if err := wb.Delete(makeRunKey(runID)); err != nil {
		return err
	}
	for _, key := range keys {
		if err := wb.Delete(key); err != nil {
			return err
		}
	}
	return wb.Flush()
}
