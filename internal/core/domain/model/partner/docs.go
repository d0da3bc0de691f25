// Package partner provides the delivery partner aggregate: the person who carries
// orders from stores to customers.
//
// A partner is eligible for a new delivery only while active, available and below
// MaxConcurrentOrders in-flight deliveries. The counter of in-flight deliveries never
// goes below zero or above the cap.
package partner
