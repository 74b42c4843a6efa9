package badger

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/alfredjeanlab/lattice/internal/model"
	"github.com/alfredjeanlab/lattice/internal/store"
)

// The tx* functions below are shared by BadgerStore and txStore; both
// hand them the *badger.Txn they operate in.

func txCreateGraph(txn *badger.Txn, g *model.Graph) error {
	key := graphKey(g.ID)
	if _, err := txn.Get(key); err == nil {
		return fmt.Errorf("graph %s: %w", g.ID, store.ErrDuplicate)
	} else if !errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("create graph %s: %w", g.ID, err)
	}
	return setJSON(txn, key, g)
}

func txGetGraph(txn *badger.Txn, id string) (*model.Graph, error) {
	var g model.Graph
	if err := getJSON(txn, graphKey(id), &g); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, fmt.Errorf("graph %s: %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("get graph %s: %w", id, err)
	}
	return &g, nil
}

func txListGraphs(txn *badger.Txn, filter model.GraphFilter) ([]*model.Graph, int, error) {
	var graphs []*model.Graph

	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = true
	it := txn.NewIterator(opts)
	defer it.Close()

	prefix := graphScanPrefix()
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		var g model.Graph
		if err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &g)
		}); err != nil {
			return nil, 0, fmt.Errorf("decode %s: %w", it.Item().Key(), err)
		}
		if filter.CourseID != "" && g.CourseID != filter.CourseID {
			continue
		}
		if filter.Prototype != nil && g.IsPrototype != *filter.Prototype {
			continue
		}
		graphs = append(graphs, &g)
	}

	sort.Slice(graphs, func(i, j int) bool {
		if !graphs[i].CreatedAt.Equal(graphs[j].CreatedAt) {
			return graphs[i].CreatedAt.Before(graphs[j].CreatedAt)
		}
		return graphs[i].ID < graphs[j].ID
	})

	total := len(graphs)
	return applyWindow(graphs, filter.Offset, filter.Limit), total, nil
}

func txUpdateGraph(txn *badger.Txn, g *model.Graph) error {
	key := graphKey(g.ID)
	if _, err := txn.Get(key); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("graph %s: %w", g.ID, store.ErrNotFound)
		}
		return fmt.Errorf("update graph %s: %w", g.ID, err)
	}
	g.UpdatedAt = time.Now().UTC()
	return setJSON(txn, key, g)
}

func txDeleteGraph(txn *badger.Txn, id string) error {
	key := graphKey(id)
	if _, err := txn.Get(key); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("graph %s: %w", id, store.ErrNotFound)
		}
		return fmt.Errorf("delete graph %s: %w", id, err)
	}
	return txn.Delete(key)
}

func txCreateNode(txn *badger.Txn, n *model.Node) error {
	idxKey := nodeIdxKey(n.ID)
	if _, err := txn.Get(idxKey); err == nil {
		return fmt.Errorf("node %s: %w", n.ID, store.ErrDuplicate)
	} else if !errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("create node %s: %w", n.ID, err)
	}
	if err := setJSON(txn, nodeKey(n.GraphID, n.ID), n); err != nil {
		return err
	}
	return txn.Set(idxKey, []byte(n.GraphID))
}

func txGetNode(txn *badger.Txn, id string) (*model.Node, error) {
	graphID, err := lookupIndex(txn, nodeIdxKey(id))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, fmt.Errorf("node %s: %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("get node %s: %w", id, err)
	}
	var n model.Node
	if err := getJSON(txn, nodeKey(graphID, id), &n); err != nil {
		return nil, fmt.Errorf("get node %s: %w", id, err)
	}
	return &n, nil
}

func txListNodes(txn *badger.Txn, graphID string) ([]*model.Node, error) {
	var nodes []*model.Node

	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = true
	it := txn.NewIterator(opts)
	defer it.Close()

	prefix := nodeScanPrefix(graphID)
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		var n model.Node
		if err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &n)
		}); err != nil {
			return nil, fmt.Errorf("decode %s: %w", it.Item().Key(), err)
		}
		nodes = append(nodes, &n)
	}

	sort.Slice(nodes, func(i, j int) bool {
		if !nodes[i].CreatedAt.Equal(nodes[j].CreatedAt) {
			return nodes[i].CreatedAt.Before(nodes[j].CreatedAt)
		}
		return nodes[i].ID < nodes[j].ID
	})
	return nodes, nil
}

func txUpdateNode(txn *badger.Txn, n *model.Node) error {
	if _, err := lookupIndex(txn, nodeIdxKey(n.ID)); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("node %s: %w", n.ID, store.ErrNotFound)
		}
		return fmt.Errorf("update node %s: %w", n.ID, err)
	}
	n.UpdatedAt = time.Now().UTC()
	return setJSON(txn, nodeKey(n.GraphID, n.ID), n)
}

func txDeleteNode(txn *badger.Txn, id string) error {
	graphID, err := lookupIndex(txn, nodeIdxKey(id))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("node %s: %w", id, store.ErrNotFound)
		}
		return fmt.Errorf("delete node %s: %w", id, err)
	}
	if err := txn.Delete(nodeKey(graphID, id)); err != nil {
		return err
	}
	return txn.Delete(nodeIdxKey(id))
}

func txCreateEdge(txn *badger.Txn, e *model.Edge) error {
	uniqKey := edgeUniqKey(e.GraphID, e.FromNodeID, e.ToNodeID, string(e.Type))
	if _, err := txn.Get(uniqKey); err == nil {
		return fmt.Errorf("edge %s -> %s (%s): %w", e.FromNodeID, e.ToNodeID, e.Type, store.ErrDuplicate)
	} else if !errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("create edge %s: %w", e.ID, err)
	}
	idxKey := edgeIdxKey(e.ID)
	if _, err := txn.Get(idxKey); err == nil {
		return fmt.Errorf("edge %s: %w", e.ID, store.ErrDuplicate)
	} else if !errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("create edge %s: %w", e.ID, err)
	}
	if err := setJSON(txn, edgeKey(e.GraphID, e.ID), e); err != nil {
		return err
	}
	if err := txn.Set(idxKey, []byte(e.GraphID)); err != nil {
		return err
	}
	return txn.Set(uniqKey, []byte(e.ID))
}

func txGetEdge(txn *badger.Txn, id string) (*model.Edge, error) {
	graphID, err := lookupIndex(txn, edgeIdxKey(id))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, fmt.Errorf("edge %s: %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("get edge %s: %w", id, err)
	}
	var e model.Edge
	if err := getJSON(txn, edgeKey(graphID, id), &e); err != nil {
		return nil, fmt.Errorf("get edge %s: %w", id, err)
	}
	return &e, nil
}

func txListEdges(txn *badger.Txn, graphID string, filter model.EdgeFilter) ([]*model.Edge, error) {
	var edges []*model.Edge

	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = true
	it := txn.NewIterator(opts)
	defer it.Close()

	prefix := edgeScanPrefix(graphID)
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		var e model.Edge
		if err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &e)
		}); err != nil {
			return nil, fmt.Errorf("decode %s: %w", it.Item().Key(), err)
		}
		if filter.Type != "" && e.Type != filter.Type {
			continue
		}
		if filter.FromNodeID != "" && e.FromNodeID != filter.FromNodeID {
			continue
		}
		if filter.ToNodeID != "" && e.ToNodeID != filter.ToNodeID {
			continue
		}
		edges = append(edges, &e)
	}

	sort.Slice(edges, func(i, j int) bool {
		if !edges[i].CreatedAt.Equal(edges[j].CreatedAt) {
			return edges[i].CreatedAt.Before(edges[j].CreatedAt)
		}
		return edges[i].ID < edges[j].ID
	})
	return edges, nil
}

func txDeleteEdge(txn *badger.Txn, id string) error {
	e, err := txGetEdge(txn, id)
	if err != nil {
		return err
	}
	if err := txn.Delete(edgeKey(e.GraphID, e.ID)); err != nil {
		return err
	}
	if err := txn.Delete(edgeIdxKey(e.ID)); err != nil {
		return err
	}
	return txn.Delete(edgeUniqKey(e.GraphID, e.FromNodeID, e.ToNodeID, string(e.Type)))
}

func setJSON(txn *badger.Txn, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return txn.Set(key, data)
}

func getJSON(txn *badger.Txn, key []byte, v any) error {
	item, err := txn.Get(key)
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

func lookupIndex(txn *badger.Txn, key []byte) (string, error) {
	item, err := txn.Get(key)
	if err != nil {
		return "", err
	}
	var v string
	err = item.Value(func(val []byte) error {
		v = string(val)
		return nil
	})
	return v, err
}

// applyWindow applies offset and limit to an already sorted slice.
func applyWindow[T any](items []T, offset, limit int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return nil
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
