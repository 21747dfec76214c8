// Package passedit implements a privileged account-maintenance engine:
// staff operators holding the editpassword capability can set a target
// account's password, email, or both through a token-protected form.
//
// The engine enforces a fixed check order on every submission. The
// operator's capability is checked first, then the session edit token,
// then input validation, then target resolution; the directory is only
// written once everything has passed, so a failed request never leaves a
// partial update behind. Passwords are hashed with Argon2id before
// storage and the plaintext is never persisted.
//
// Engines are built once via [Builder] and are safe for concurrent use.
package passedit
