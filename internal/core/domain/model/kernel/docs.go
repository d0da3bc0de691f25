// Package kernel holds the value objects shared by every aggregate of the delivery
// domain: UUID identifiers and geographic Locations.
//
// Both are immutable and validated on construction; a zero value fails Validate.
package kernel
