// Package merge moves partial prime lists from workers to the collector.
//
// The protocol is point to point over a types.Transport. A reporter sends
// its element count, then the elements in blocks of at most the bus width.
// The collector drains reporters one at a time in ascending rank order and
// appends each block to the global list through a single reusable buffer,
// so the merged list comes out sorted without a merge step.
//
// Any disagreement between the announced count and what arrives is a
// types.ErrTransferIntegrity error; the collector never returns a partial
// list.
package merge
