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

package ingestion

import "errors"

var (
	// ErrSourceRequired is returned when a line source is not provided.
	ErrSourceRequired = errors.New("line source required")

	// ErrParserRequired is returned when a record parser is not provided.
	ErrParserRequired = errors.New("record parser required")

	// ErrSinkRequired is returned when an index sink is not provided.
	ErrSinkRequired = errors.New("index sink required")

	// ErrReservationFailed is returned when the sink cannot reserve the precounted capacity.
	ErrReservationFailed = errors.New("failed to reserve index capacity")

	// ErrSaveFailed is returned when the sink could not be persisted after ingestion.
	ErrSaveFailed = errors.New("failed to save index")
)
