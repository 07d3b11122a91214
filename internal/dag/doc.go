// Package dag holds the workflow graph: the nodes, the structural edges
// ordering them, the bindings wiring outputs into inputs, per-node
// staleness, groups and the workflow's variable table.
//
// Every mutation keeps the graph acyclic. Connect and Bind run a full cycle
// check after tentatively adding an edge and roll the edge back on failure,
// so a rejected call leaves the graph exactly as it was.
package dag
