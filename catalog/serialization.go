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
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/vecload/core"
)

// RejectedLine is a journaled rejection.
type RejectedLine struct {
	RunID   core.ID
	Line    int
	Reason  core.RejectReason
	Raw     string
	Err     string
	Elapsed time.Duration
}

// Timestamps are stored as Unix microseconds, durations as nanoseconds.

var (
	IDMUS           = idMUS{}
	IndexConfigMUS  = indexConfigMUS{}
	RunReportMUS    = runReportMUS{}
	RejectedLineMUS = rejectedLineMUS{}
)

type idMUS struct{}

func (s idMUS) Marshal(v core.ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (s idMUS) Unmarshal(bs []byte) (v core.ID, n int, err error) {
	tmp, n, err := varint.Uint64.Unmarshal(bs)
	return core.ID(tmp), n, err
}

func (s idMUS) Size(v core.ID) (size int) {
	return varint.Uint64.Size(uint64(v))
}

func (s idMUS) Skip(bs []byte) (n int, err error) {
	return varint.Uint64.Skip(bs)
}

type indexConfigMUS struct{}

func (s indexConfigMUS) Marshal(v core.IndexConfig, bs []byte) (n int) {
	n = varint.Int.Marshal(v.Dimensions, bs)
	n += varint.Int.Marshal(int(v.Metric), bs[n:])
	n += varint.Int.Marshal(int(v.Scalar), bs[n:])
	n += varint.Int.Marshal(v.Connectivity, bs[n:])
	n += varint.Int.Marshal(v.ExpansionAdd, bs[n:])
	return n + varint.Int.Marshal(v.ExpansionSearch, bs[n:])
}

func (s indexConfigMUS) Unmarshal(bs []byte) (v core.IndexConfig, n int, err error) {
	var (
		n1   int
		vals [6]int
	)
	for i := range vals {
		vals[i], n1, err = varint.Int.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	v = core.IndexConfig{
		Dimensions:      vals[0],
		Metric:          core.MetricKind(vals[1]),
		Scalar:          core.ScalarKind(vals[2]),
		Connectivity:    vals[3],
		ExpansionAdd:    vals[4],
		ExpansionSearch: vals[5],
	}
	return
}

func (s indexConfigMUS) Size(v core.IndexConfig) (size int) {
	size = varint.Int.Size(v.Dimensions)
	size += varint.Int.Size(int(v.Metric))
	size += varint.Int.Size(int(v.Scalar))
	size += varint.Int.Size(v.Connectivity)
	size += varint.Int.Size(v.ExpansionAdd)
	return size + varint.Int.Size(v.ExpansionSearch)
}

func (s indexConfigMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	for range 6 {
		n1, err = varint.Int.Skip(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	return
}

type runReportMUS struct{}

func (s runReportMUS) counts(v *core.RunReport) []*int {
	return []*int{
		&v.LinesCounted,
		&v.LinesRead,
		&v.Inserted,
		&v.MalformedVectors,
		&v.MissingFields,
		&v.DimensionMismatch,
		&v.IndexFailures,
		&v.DuplicateKeys,
	}
}

func (s runReportMUS) durations(v *core.RunReport) []*time.Duration {
	return []*time.Duration{&v.PrecountDuration, &v.IngestDuration, &v.SaveDuration}
}

func (s runReportMUS) Marshal(v core.RunReport, bs []byte) (n int) {
	n = IDMUS.Marshal(v.RunID, bs)
	n += ord.String.Marshal(v.Input, bs[n:])
	n += ord.String.Marshal(v.Output, bs[n:])
	n += IndexConfigMUS.Marshal(v.Config, bs[n:])
	n += varint.Int64.Marshal(v.StartedAt.UnixMicro(), bs[n:])
	for _, c := range s.counts(&v) {
		n += varint.Int.Marshal(*c, bs[n:])
	}
	for _, d := range s.durations(&v) {
		n += varint.Int64.Marshal(int64(*d), bs[n:])
	}
	n += ord.String.Marshal(v.HardwareAcceleration, bs[n:])
	n += varint.Int64.Marshal(v.ArtifactBytes, bs[n:])
	return n + ord.String.Marshal(v.SaveError, bs[n:])
}

func (s runReportMUS) Unmarshal(bs []byte) (v core.RunReport, n int, err error) {
	var n1 int
	v.RunID, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	v.Input, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Output, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Config, n1, err = IndexConfigMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var micros int64
	micros, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.StartedAt = time.UnixMicro(micros).UTC()
	for _, c := range s.counts(&v) {
		*c, n1, err = varint.Int.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	for _, d := range s.durations(&v) {
		var nanos int64
		nanos, n1, err = varint.Int64.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
		*d = time.Duration(nanos)
	}
	v.HardwareAcceleration, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ArtifactBytes, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.SaveError, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	return
}

func (s runReportMUS) Size(v core.RunReport) (size int) {
	size = IDMUS.Size(v.RunID)
	size += ord.String.Size(v.Input)
	size += ord.String.Size(v.Output)
	size += IndexConfigMUS.Size(v.Config)
	size += varint.Int64.Size(v.StartedAt.UnixMicro())
	for _, c := range s.counts(&v) {
		size += varint.Int.Size(*c)
	}
	for _, d := range s.durations(&v) {
		size += varint.Int64.Size(int64(*d))
	}
	size += ord.String.Size(v.HardwareAcceleration)
	size += varint.Int64.Size(v.ArtifactBytes)
	return size + ord.String.Size(v.SaveError)
}

type rejectedLineMUS struct{}

func (s rejectedLineMUS) Marshal(v RejectedLine, bs []byte) (n int) {
	n = IDMUS.Marshal(v.RunID, bs)
	n += varint.Int.Marshal(v.Line, bs[n:])
	n += varint.Int.Marshal(int(v.Reason), bs[n:])
	n += ord.String.Marshal(v.Raw, bs[n:])
	n += ord.String.Marshal(v.Err, bs[n:])
	return n + varint.Int64.Marshal(int64(v.Elapsed), bs[n:])
}

func (s rejectedLineMUS) Unmarshal(bs []byte) (v RejectedLine, n int, err error) {
	var n1 int
	v.RunID, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	v.Line, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var reason int
	reason, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Reason = core.RejectReason(reason)
	v.Raw, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Err, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var nanos int64
	nanos, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	v.Elapsed = time.Duration(nanos)
	return
}

func (s rejectedLineMUS) Size(v RejectedLine) (size int) {
	size = IDMUS.Size(v.RunID)
	size += varint.Int.Size(v.Line)
	size += varint.Int.Size(int(v.Reason))
	size += ord.String.Size(v.Raw)
	size += ord.String.Size(v.Err)
	return size + varint.Int64.Size(int64(v.Elapsed))
}

// MarshalRunReport serializes a RunReport to bytes.
func MarshalRunReport(report *core.RunReport) []byte {
	buf := make([]byte, RunReportMUS.Size(*report))
	RunReportMUS.Marshal(*report, buf)
	return buf
}

// UnmarshalRunReport deserializes a RunReport from bytes.
func UnmarshalRunReport(data []byte) (*core.RunReport, error) {
	report, _, err := RunReportMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// MarshalRejectedLine serializes a RejectedLine to bytes.
func MarshalRejectedLine(line *RejectedLine) []byte {
	buf := make([]byte, RejectedLineMUS.Size(*line))
	RejectedLineMUS.Marshal(*line, buf)
	return buf
}

// UnmarshalRejectedLine deserializes a RejectedLine from bytes.
func UnmarshalRejectedLine(data []byte) (*RejectedLine, error) {
	line, _, err := RejectedLineMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &line, nil
}
