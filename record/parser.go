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

// Package record turns delimited text lines into embedding vectors.
package record

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/goccy/go-json"
	"github.com/poiesic/vecload/core"
)

const (
	// DefaultDelimiter separates fields within a line.
	DefaultDelimiter = ";"
	// DefaultColumn is the zero-based index of the field holding the embedding.
	DefaultColumn = 4
)

// Parser extracts the embedding column from a line and decodes it.
// A Parser is immutable after construction and safe for concurrent use.
type Parser struct {
	dimensions int
	delimiter  string
	column     int
}

// Option configures a Parser.
type Option func(*Parser) error

// WithDelimiter sets the field delimiter.
func WithDelimiter(delimiter string) Option {
	return func(p *Parser) error {
		if delimiter == "" {
			return errors.New("delimiter cannot be empty")
		}
		p.delimiter = delimiter
		return nil
	}
}

// WithColumn sets the zero-based embedding column.
func WithColumn(column int) Option {
	return func(p *Parser) error {
		if column < 0 {
			return fmt.Errorf("column cannot be negative, got %d", column)
		}
		p.column = column
		return nil
	}
}

// NewParser creates a parser that accepts vectors of exactly dimensions components.
func NewParser(dimensions int, opts ...Option) (*Parser, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("%w: %d", core.ErrInvalidDimensions, dimensions)
	}
	p := &Parser{
		dimensions: dimensions,
		delimiter:  DefaultDelimiter,
		column:     DefaultColumn,
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Dimensions returns the expected vector length.
func (p *Parser) Dimensions() int {
	return p.dimensions
}

// Parse returns the vector held in the embedding column of text.
//
// Errors:
//   - ErrMissingField if the line has fewer than column+1 fields
//   - ErrMalformedVector if the field is not a JSON array of finite float32 values
//   - ErrDimensionMismatch if the array length differs from the configured dimensions
func (p *Parser) Parse(text string) (core.Vector, error) {
	field, ok := p.field(text)
	if !ok {
		return nil, fmt.Errorf("%w: need %d fields", ErrMissingField, p.column+1)
	}

	// A JSON array of numbers never contains "null"; catching it here keeps
	// null elements from decoding as zero.
	if strings.Contains(field, "null") {
		return nil, fmt.Errorf("%w: null value", ErrMalformedVector)
	}

	var raw []float64
	if err := json.Unmarshal([]byte(field), &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedVector, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: not an array", ErrMalformedVector)
	}

	if len(raw) != p.dimensions {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(raw), p.dimensions)
	}

	vec := make(core.Vector, len(raw))
	for i, v := range raw {
		if math.Abs(v) > math.MaxFloat32 {
			return nil, fmt.Errorf("%w: component %d out of float32 range", ErrMalformedVector, i)
		}
		vec[i] = float32(v)
	}
	return vec, nil
}

func (p *Parser) field(text string) (string, bool) {
	rest := text
	for i := 0; i < p.column; i++ {
		_, after, found := strings.Cut(rest, p.delimiter)
		if !found {
			return "", false
		}
		rest = after
	}
	field, _, _ := strings.Cut(rest, p.delimiter)
	return field, true
}

// Classify maps a Parse or index error to a rejection reason.
func Classify(err error) core.RejectReason {
	switch {
	case err == nil:
		return core.RejectNone
	case errors.Is(err, ErrMissingField):
		return core.RejectMissingField
	case errors.Is(err, ErrMalformedVector):
		return core.RejectMalformedVector
	case errors.Is(err, ErrDimensionMismatch):
		return core.RejectDimensionMismatch
	default:
		return core.RejectIndexFailure
	}
}
