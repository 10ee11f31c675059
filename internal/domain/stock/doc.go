// Package stock implements the weighted-average stock valuation engine:
// an append-only movement ledger, a cached per-item balance, a pure replay
// function that reconstructs valuation state from history, and the single
// transactional entry point that mutates balances online.
//
// The online path and the replay path deliberately disagree on one point:
// AdjustStock treats an "adjust" quantity as the new absolute on-hand level,
// while Replay applies "adjust" movements as signed deltas. The behaviors
// are kept as-is on both sides; reconciling a replayed history that contains
// adjust movements against the live balance can therefore report a mismatch.
// Service.Reconcile surfaces both states instead of papering over it.
//
// Replay and Classify are pure and never fail. Reads (overview, history,
// reconciliation) take no locks and may trail in-flight adjustments.
package stock
