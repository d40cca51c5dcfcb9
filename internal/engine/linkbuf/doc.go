// Package linkbuf implements the contract as a doubly-linked chain of
// fixed-capacity nodes.
//
// Each node holds up to [Capacity] cells. The cursor is a (node, offset)
// pair. Inserting into a node with spare room shifts at most Capacity cells;
// a full node either gains a successor (cursor at its end) or is split at the
// cursor, the suffix moving into a new successor behind the inserted cell.
// Deleting the last cell of a node unlinks it unless it is the only node.
//
// # Storage
//
// Nodes live in an arena and refer to each other by index. The chain owns
// its nodes head to tail; prev links are navigational only and are never
// used to release a node. Released slots are recycled by later allocations.
//
// # Memory Model
//
// MemoryEstimate counts one unit per cell plus two per node for the link
// fields, so a chain of n cells in full nodes costs n + 2*ceil(n/Capacity).
package linkbuf
