// Package transport performs single delivery attempts against the bus.
//
// A Channel posts one payload to one endpoint and interprets the response.
// It never retries and never changes the payload shape; both concerns live
// in package delivery, which drives a Channel.
package transport
