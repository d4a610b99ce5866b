// Package models defines the core domain entities for Divvy.
//
// # Models
//
//   - User: a registered account; identity plus friend and group membership
//   - Group: a named container of members and expense ids (pure bookkeeping)
//   - Expense: one shared real-world cost, split into signed per-participant shares
//   - Settlement: a recorded transfer that pays down one directed debt
//
// # Design Principles
//
//  1. Entities reference each other by ID string, never by pointer, to avoid
//     circular object graphs and to keep them storage-friendly.
//  2. Amounts are decimal.Decimal everywhere; see the money package.
//  3. Balances between users are NOT stored on these models. The pairwise
//     balance graph is owned by the ledger package behind a narrow mutation
//     API, which is what keeps the symmetry invariant enforceable.
//  4. Status transitions live on the entities as guarded methods; an attempt
//     to leave a terminal state fails with ErrInvalidState.
package models
