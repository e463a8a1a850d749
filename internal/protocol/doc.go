// Package protocol owns the Call envelope wire contract.
//
// Ownership boundary:
// - envelope layout (op code, token, delimited params)
// - protocol preconditions (no record separator inside params)
// - embedded error payload recovery lives in salvage/
package protocol
