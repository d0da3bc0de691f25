// Package delivery provides the Delivery aggregate that binds one confirmed order to
// one delivery partner, and the Status state machine that drives its lifecycle.
//
// Key business rules:
//   - a delivery is created in Assigned with an estimated delivery time of
//     estimated pickup time plus EstimatedDeliveryBuffer
//   - status moves forward only; Failed and Cancelled are reachable from any
//     non-terminal status; Delivered, Failed and Cancelled are terminal
//   - the partner's capacity is released exactly once, when a terminal status is reached
package delivery
