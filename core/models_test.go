package core

import (
	"testing"
	"time"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "simple content", content: "data.csv|index.usearch|1700000000"},
		{name: "empty string", content: ""},
		{name: "long content", content: "s3://bucket/very/long/path/to/an/embedding/dump.csv|out.usearch|1700000000123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)
			if id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	if IDFromContent("run-a") == IDFromContent("run-b") {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestParseMetricKind(t *testing.T) {
	tests := []struct {
		in   string
		want MetricKind
	}{
		{"cos", MetricCos},
		{"COS", MetricCos},
		{"Cos", MetricCos},
		{"ip", MetricIP},
		{"l2sq", MetricIP},
		{"", MetricIP},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseMetricKind(tt.in); got != tt.want {
				t.Errorf("ParseMetricKind(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseScalarKind(t *testing.T) {
	tests := []struct {
		in   string
		want ScalarKind
	}{
		{"f16", ScalarF16},
		{"16", ScalarF16},
		{"F64", ScalarF64},
		{"64", ScalarF64},
		{"b1", ScalarB1},
		{"1", ScalarB1},
		{"i8", ScalarI8},
		{"8", ScalarI8},
		{"f32", ScalarF32},
		{"bogus", ScalarF32},
		{"", ScalarF32},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseScalarKind(tt.in); got != tt.want {
				t.Errorf("ParseScalarKind(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestScalarKind_StringRoundTrip(t *testing.T) {
	for _, s := range []ScalarKind{ScalarF32, ScalarF16, ScalarF64, ScalarI8, ScalarB1} {
		if got := ParseScalarKind(s.String()); got != s {
			t.Errorf("ParseScalarKind(%q) = %v, want %v", s.String(), got, s)
		}
	}
}

func TestRejectReason_Silent(t *testing.T) {
	tests := []struct {
		reason RejectReason
		silent bool
	}{
		{RejectMalformedVector, false},
		{RejectMissingField, false},
		{RejectDimensionMismatch, true},
		{RejectIndexFailure, false},
	}

	for _, tt := range tests {
		t.Run(tt.reason.String(), func(t *testing.T) {
			if got := tt.reason.Silent(); got != tt.silent {
				t.Errorf("%v.Silent() = %v, want %v", tt.reason, got, tt.silent)
			}
		})
	}
}

func TestOutcome(t *testing.T) {
	ok := Inserted(7)
	if !ok.Inserted || ok.Key != 7 || ok.Reason != RejectNone {
		t.Errorf("Inserted(7) = %+v", ok)
	}

	bad := Rejected(3, RejectMissingField, nil)
	if bad.Inserted || bad.Key != 3 || bad.Reason != RejectMissingField {
		t.Errorf("Rejected(3, ...) = %+v", bad)
	}
}

func TestRunReport_MinutesToIndex(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		want     int64
	}{
		{name: "sub-minute", duration: 59 * time.Second, want: 0},
		{name: "exactly one minute", duration: time.Minute, want: 1},
		{name: "truncates", duration: 2*time.Minute + 59*time.Second, want: 2},
		{name: "zero", duration: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &RunReport{IngestDuration: tt.duration}
			if got := r.MinutesToIndex(); got != tt.want {
				t.Errorf("MinutesToIndex() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRunReport_Rejected(t *testing.T) {
	r := &RunReport{
		MalformedVectors:  2,
		MissingFields:     1,
		DimensionMismatch: 4,
		IndexFailures:     0,
		DuplicateKeys:     9,
	}
	if got := r.Rejected(); got != 7 {
		t.Errorf("Rejected() = %d, want 7", got)
	}
	if got := r.Count(RejectDimensionMismatch); got != 4 {
		t.Errorf("Count(DimensionMismatch) = %d, want 4", got)
	}
}

func TestRunReport_Throughput(t *testing.T) {
	r := &RunReport{Inserted: 100, IngestDuration: 2 * time.Second}
	if got := r.Throughput(); got != 50 {
		t.Errorf("Throughput() = %v, want 50", got)
	}

	empty := &RunReport{Inserted: 100}
	if got := empty.Throughput(); got != 0 {
		t.Errorf("Throughput() with zero duration = %v, want 0", got)
	}
}
