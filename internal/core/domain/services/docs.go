// Package services provides domain services that coordinate aggregates.
//
// The package includes:
//   - PartnerDispatcher: picks the delivery partner for a newly confirmed order
package services
