// Package internal holds cryptographic helpers shared by the passedit
// engine and its stores: session ID generation and anti-forgery token
// generation. Nothing here is part of the public API.
package internal
