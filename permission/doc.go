// Package permission implements the capability model consulted before any
// account-maintenance request is processed: a frozen registry of named
// capabilities, a 64-bit mask per role, and a role manager resolving an
// operator's role to its mask. The engine asks a single question of this
// package: does this role carry this capability.
package permission
