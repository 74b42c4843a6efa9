package badger

// Key layout. Node and edge records live under graph-scoped keys so a
// single prefix scan yields one graph's contents; the idx keys map a
// bare entity id to its owning graph for point lookups; the uniq key
// enforces at most one edge per (from, to, type) within a graph.
const (
	graphKeyPrefix    = "graph:"
	nodeKeyPrefix     = "node:"
	nodeIdxKeyPrefix  = "nodeidx:"
	edgeKeyPrefix     = "edge:"
	edgeIdxKeyPrefix  = "edgeidx:"
	edgeUniqKeyPrefix = "edgeuniq:"
)

func graphKey(graphID string) []byte {
	return []byte(graphKeyPrefix + graphID)
}

func graphScanPrefix() []byte {
	return []byte(graphKeyPrefix)
}

func nodeKey(graphID, nodeID string) []byte {
	return []byte(nodeKeyPrefix + graphID + ":" + nodeID)
}

func nodeScanPrefix(graphID string) []byte {
	return []byte(nodeKeyPrefix + graphID + ":")
}

func nodeIdxKey(nodeID string) []byte {
	return []byte(nodeIdxKeyPrefix + nodeID)
}

func edgeKey(graphID, edgeID string) []byte {
	return []byte(edgeKeyPrefix + graphID + ":" + edgeID)
}

func edgeScanPrefix(graphID string) []byte {
	return []byte(edgeKeyPrefix + graphID + ":")
}

func edgeIdxKey(edgeID string) []byte {
	return []byte(edgeIdxKeyPrefix + edgeID)
}

func edgeUniqKey(graphID, fromNodeID, toNodeID, edgeType string) []byte {
	return []byte(edgeUniqKeyPrefix + graphID + ":" + fromNodeID + ":" + toNodeID + ":" + edgeType)
}
