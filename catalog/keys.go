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
	"encoding/binary"
	"fmt"

	"github.com/poiesic/vecload/core"
)

const (
	runRecordPrefix = "runrec"
	rejectionPrefix = "rejln"
)

// makeRunKey generates a key for a run report by ID.
func makeRunKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", runRecordPrefix, id))
}

// makeRejectionKey generates a composite key for a rejected line.
// Format: prefix:runID:line
func makeRejectionKey(runID core.ID, line int) []byte {
	buf := makePartialRejectionKey(runID)
	// Write in BigEndian order so lines iterate in file order
	return binary.BigEndian.AppendUint64(buf, uint64(line))
}

// makePartialRejectionKey generates a partial key for the rejections of one run.
// Format: prefix:runID
func makePartialRejectionKey(runID core.ID) []byte {
	prefix := rejectionPrefix + ":"
	buf := make([]byte, len(prefix), len(prefix)+16)
	copy(buf, prefix)
	return binary.BigEndian.AppendUint64(buf, uint64(runID))
}
