// Package brokerapi is the HTTP client for the brokerage back-office API.
//
// Every call returns a tagged *Error on failure. Only KindUnauthorized should
// end the session; network and server failures are transient and the console
// keeps its last good data.
package brokerapi
