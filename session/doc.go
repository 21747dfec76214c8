// Package session stores operator sessions in Redis, encoded as compact
// versioned binary records. The edit token that protects the maintenance
// form lives inside the session record, so token verification and session
// lookup are a single read and tokens die with their session.
package session
