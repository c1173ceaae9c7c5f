// Package mergeplan turns track inventory, normalized delays, and selection
// rules into the ordered option-token document a remux tool replays. The
// token order is a deterministic contract; building the same inputs twice
// yields byte-identical output.
package mergeplan
