// pkg/rules/serialization.go
package rules

import (
	"github.com/David-Botos/erp-ingress/pkg/converter"
)

const (
	LabelSerialized    = "Serialized"
	LabelNotSerialized = "Not Serialized"
)

// DefaultSerialSentinels are the serial number profile codes that mean
// "no serial number management"
var DefaultSerialSentinels = []string{"Z002"}

// SerializationPolicy is the single authority for the serialization flag.
// A profile that is blank or equal to one of the sentinels is not serialized.
type SerializationPolicy struct {
	Sentinels []string
}

// NewSerializationPolicy creates a policy with the given sentinel codes
func NewSerializationPolicy(sentinels []string) SerializationPolicy {
	return SerializationPolicy{Sentinels: append([]string(nil), sentinels...)}
}

// IsSerialized reports whether a serial number profile marks the material as serialized
func (p SerializationPolicy) IsSerialized(profile any) bool {
	return converter.IsPresent(profile, p.Sentinels)
}

// Label returns the reporting label for a serial number profile
func (p SerializationPolicy) Label(profile any) string {
	if p.IsSerialized(profile) {
		return LabelSerialized
	}
	return LabelNotSerialized
}
