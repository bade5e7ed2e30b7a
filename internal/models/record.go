package models

import (
	"fmt"
	"time"
)

// Record is one sensor reading: a timestamp plus a mapping from channel name
// to value. A channel with no valid reading for this row is simply absent
// from Values, never present with a sentinel. Raw preserves the original CSV
// cells in header order so exported group files stay lossless.
type Record struct {
	Timestamp time.Time
	Values    map[string]float64
	Profile   string
	Raw       []string
	Line      int
}

// Value returns the reading for the named channel and whether it is present.
func (r Record) Value(channel string) (float64, bool) {
	v, ok := r.Values[channel]
	return v, ok
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	out := r
	out.Values = make(map[string]float64, len(r.Values))
	for k, v := range r.Values {
		out.Values[k] = v
	}
	out.Raw = append([]string(nil), r.Raw...)
	return out
}

// InvalidRow records one source row whose timestamp failed every accepted
// format. Invalid rows are set aside for diagnostics rather than dropped
// silently or defaulted into the ordered sequence.
type InvalidRow struct {
	Line   int      `json:"line"`
	Raw    []string `json:"raw"`
	Reason string   `json:"reason"`
}

// Dataset is an ordered sequence of records, timestamp ascending, together
// with its schema, the original column order and any rows that could not be
// parsed. Pipeline stages treat a Dataset as immutable and return new ones.
type Dataset struct {
	Schema  Schema
	Columns []string
	Records []Record
	Invalid []InvalidRow
}

// Len returns the number of valid records.
func (d *Dataset) Len() int { return len(d.Records) }

// ColumnIndex returns the position of the named column in the original
// header, or -1 when absent.
func (d *Dataset) ColumnIndex(name string) int {
	for i, c := range d.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// NumericChannels returns the channels that carry at least one parsed value
// in this dataset, in schema declaration order followed by any coerced
// columns not declared up front.
func (d *Dataset) NumericChannels() []string {
	present := make(map[string]bool)
	for _, r := range d.Records {
		for name := range r.Values {
			present[name] = true
		}
	}
	names := make([]string, 0, len(present))
	for _, c := range d.Schema.Channels {
		if present[c.Name] {
			names = append(names, c.Name)
			delete(present, c.Name)
		}
	}
	for _, c := range d.Columns {
		if present[c] {
			names = append(names, c)
			delete(present, c)
		}
	}
	return names
}

// Series returns the valid values of one channel with their timestamps,
// preserving record order. Records without a reading on the channel are
// skipped.
func (d *Dataset) Series(channel string) (values []float64, times []time.Time) {
	for _, r := range d.Records {
		if v, ok := r.Values[channel]; ok {
			values = append(values, v)
			times = append(times, r.Timestamp)
		}
	}
	return values, times
}

// Restrict returns a new Dataset containing only the given records, sharing
// the schema and column order. Record slices are copied, not aliased.
func (d *Dataset) Restrict(records []Record) *Dataset {
	out := &Dataset{
		Schema:  d.Schema,
		Columns: append([]string(nil), d.Columns...),
		Records: append([]Record(nil), records...),
	}
	return out
}

// Clone returns a deep copy of the dataset.
func (d *Dataset) Clone() *Dataset {
	out := &Dataset{
		Schema:  d.Schema,
		Columns: append([]string(nil), d.Columns...),
		Records: make([]Record, len(d.Records)),
		Invalid: append([]InvalidRow(nil), d.Invalid...),
	}
	for i, r := range d.Records {
		out.Records[i] = r.Clone()
	}
	return out
}

// TimeSpan returns the first and last timestamps of the dataset. The second
// return value is false for an empty dataset.
func (d *Dataset) TimeSpan() (first, last time.Time, ok bool) {
	if len(d.Records) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return d.Records[0].Timestamp, d.Records[len(d.Records)-1].Timestamp, true
}

// String returns a short human-readable description of the dataset.
func (d *Dataset) String() string {
	return fmt.Sprintf("Dataset{columns: %d, records: %d, invalid: %d}",
		len(d.Columns), len(d.Records), len(d.Invalid))
}
