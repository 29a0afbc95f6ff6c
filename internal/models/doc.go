// Package models defines the core domain models for Tally.
//
// # Ledger records
//
//   - ExpenseRecord: a shared expense paid by one member, divided among
//     participants by explicit split lines
//   - SettlementRecord: a direct payment from one member to another that
//     reduces existing debt
//
// Both carry a Deletion state instead of a nullable timestamp: a record is
// either Active or Deleted(at). Soft-deleted records stay in the database and
// remain readable, but the ledger queries and the balance engine exclude them.
//
// # Balance outputs
//
//   - UserBalance: one member's position in one currency (owes/owedBy maps
//     plus net balance)
//   - SimplifiedDebt: one recommended settling transaction
//   - GroupBalances: the complete per-currency result for a group
//
// Balance outputs are ephemeral. They are recomputed from the ledger on every
// request and never persisted by this package.
//
// # Design principles
//
//  1. Amounts never mix currencies: every balance type is keyed by currency
//     code and each currency is computed independently.
//  2. Relationships use ID strings, not pointers, to avoid circular
//     references between records.
//  3. Members are identified by user IDs everywhere; a group's Members list
//     is its *active* roster. Departed members still appear in historical
//     records, which is what locks those records against mutation.
package models
