// Package model defines the wire message envelope exchanged with the
// streaming server.
//
// Every frame is a JSON envelope with a required "type" field. The types
// "ping" and "pong" are reserved for liveness probing; all other values are
// application-defined and opaque to the connection core.
package model
