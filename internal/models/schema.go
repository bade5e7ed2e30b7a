// Package models provides the core data structures for press sensor analytics:
// schemas, time-indexed datasets, partition group keys, and derived summary
// tables. All types are value snapshots passed between pipeline stages; no
// stage holds a live reference into another stage's mutable state.
package models

// ChannelKind classifies a column in a sensor dataset.
type ChannelKind string

const (
	// ChannelNumeric marks a column carrying floating-point sensor readings.
	ChannelNumeric ChannelKind = "numeric"
	// ChannelCategorical marks a column carrying free-text labels such as
	// the extrusion profile identifier.
	ChannelCategorical ChannelKind = "categorical"
)

// ChannelSpec describes one named measurement stream: its engineering unit
// and the kind of values it is expected to carry.
type ChannelSpec struct {
	Name string      `json:"name"`
	Unit string      `json:"unit,omitempty"`
	Kind ChannelKind `json:"kind"`
}

// Schema is an explicit channel descriptor for a dataset. It replaces
// hardcoded channel name lists so the summarizer, partitioner and outlier
// detectors stay schema-agnostic and testable against synthetic schemas.
type Schema struct {
	Channels []ChannelSpec `json:"channels"`
}

// Channel returns the spec for the named channel and whether it is declared.
func (s Schema) Channel(name string) (ChannelSpec, bool) {
	for _, c := range s.Channels {
		if c.Name == name {
			return c, true
		}
	}
	return ChannelSpec{}, false
}

// Unit returns the engineering unit for the named channel, or an empty
// string when the channel is unknown.
func (s Schema) Unit(name string) string {
	if c, ok := s.Channel(name); ok {
		return c.Unit
	}
	return ""
}

// IsNumeric reports whether the named channel is declared numeric.
func (s Schema) IsNumeric(name string) bool {
	c, ok := s.Channel(name)
	return ok && c.Kind == ChannelNumeric
}

// NumericChannels returns the declared numeric channel names in order.
func (s Schema) NumericChannels() []string {
	names := make([]string, 0, len(s.Channels))
	for _, c := range s.Channels {
		if c.Kind == ChannelNumeric {
			names = append(names, c.Name)
		}
	}
	return names
}

// WithChannel returns a copy of the schema with the given spec appended, or
// replaced if a channel of the same name is already declared.
func (s Schema) WithChannel(spec ChannelSpec) Schema {
	out := Schema{Channels: make([]ChannelSpec, len(s.Channels))}
	copy(out.Channels, s.Channels)
	for i, c := range out.Channels {
		if c.Name == spec.Name {
			out.Channels[i] = spec
			return out
		}
	}
	out.Channels = append(out.Channels, spec)
	return out
}

// DefaultExtrusionSchema returns the channel descriptor for the aluminum
// extrusion press logs this pipeline was built around.
func DefaultExtrusionSchema() Schema {
	return Schema{Channels: []ChannelSpec{
		{Name: "BILLET_TEMP", Unit: "°C", Kind: ChannelNumeric},
		{Name: "PROFILE_EXIT_TEMP", Unit: "°C", Kind: ChannelNumeric},
		{Name: "RAM_SPEED", Unit: "mm/s", Kind: ChannelNumeric},
		{Name: "EXT_TIME", Unit: "s", Kind: ChannelNumeric},
		{Name: "BREAKTHOUGH_PRESSURE", Unit: "MPa", Kind: ChannelNumeric},
		{Name: "MAIN_RAM_PRESSURE", Unit: "MPa", Kind: ChannelNumeric},
		{Name: "PROFILE", Kind: ChannelCategorical},
	}}
}
