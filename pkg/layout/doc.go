// Package layout computes canvas positions for a family tree.
//
// # Overview
//
// [Compute] is a pure function from a snapshot of members to a [Layout]:
// a position for every member, synthetic junction points where two parents
// meet, and the edges a renderer should draw. Nothing is cached between
// calls, so computing the same snapshot twice yields identical results.
//
// # Algorithm
//
// Layout runs in passes:
//
//  1. Custom positions: members with a user-dragged position keep it
//     verbatim. Later passes never move them.
//  2. Levels: every remaining (automatic) member gets a generation. Roots
//     (no parents) are level 0 and children sit one below their deepest
//     parent. Spouses are then lifted to the deeper of the two levels.
//  3. Units: each generation is split into family units, either a single
//     member or a spouse pair that is placed side by side.
//  4. Placement: units of the root generation, and orphans, are packed left
//     to right. Other units are centered under their parents unless that
//     would overlap an interval already reserved on the same row, in which
//     case they go to the right of everything on the row.
//  5. Connections: children with two parents get a junction point between
//     the parents and three edges; single-parent children get one direct
//     edge; spouse pairs get one marriage edge.
//  6. Centering: automatic members, junctions and reservations are shifted
//     horizontally so the automatic part of the tree is centered on x = 0.
//
// # Ordering
//
// Horizontal placement depends on the order in which units are visited.
// [Options.Order] picks a documented stable order ([OrderInput], [OrderID]
// or [OrderName]) so results do not depend on incidental query order.
//
// # Malformed input
//
// Compute never fails. Parent references that do not resolve fall back to
// root placement. Parent cycles are cut while assigning levels, which can
// leave the member that closes a cycle on a shallower row than a full walk
// would give. Self references should be rejected before layout
// (see family.Validate); they cannot make Compute loop.
//
// # Re-layout policy
//
// [Tracker] decides when a new snapshot warrants a fresh layout: only when
// the member count changes or an unseen member appears. Saving a dragged
// position does not trigger one.
package layout
