// Package directory is the account store the maintenance endpoint writes
// to. Accounts live in Redis hashes; sparse credential updates map onto
// HSET so untouched fields are never rewritten.
package directory
