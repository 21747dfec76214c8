// Package jwt signs and verifies the operator tokens that authenticate
// maintenance staff to the web layer. A token binds an operator user ID
// and role to a server-side session ID; it says who is asking, never
// what they may do. Capability decisions stay server-side.
package jwt
