// Package password provides the Argon2id hasher used before any
// credential write. Hashes are serialized in PHC string format so the
// stored value is self-describing and verifiable without engine state.
//
// The hasher enforces floor values for memory, time, parallelism, salt
// and key length; it deliberately enforces no plaintext strength policy.
package password
