// Package nodes persists the thought-node graph as a JSON file on disk.
package nodes

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/creativeos/creos/models"
	"github.com/creativeos/creos/simhash"
)

// ErrNotFound is returned when a node id does not exist in the store.
var ErrNotFound = errors.New("node not found")

// Store is a file-backed node store. All access goes through a mutex; the
// dataset is a personal bookmark graph, small enough to hold in memory and
// rewrite whole on every save.
type Store struct {
	mu    sync.Mutex
	path  string
	nodes []models.ThoughtNode
}

// Open loads the store at path, creating an empty one if the file does not
// exist yet.
func Open(path string) (*Store, error) {
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.nodes = []models.ThoughtNode{}
			return s, nil
		}
		return nil, models.NewAppError(models.ErrCodeStorage, "read node data", err)
	}
	if err := json.Unmarshal(data, &s.nodes); err != nil {
		return nil, models.NewAppError(models.ErrCodeStorage, "parse node data", err)
	}
	return s, nil
}

// List returns a copy of all nodes.
func (s *Store) List() []models.ThoughtNode {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ThoughtNode, len(s.nodes))
	copy(out, s.nodes)
	return out
}

// Get returns the node with the given id.
func (s *Store) Get(id string) (models.ThoughtNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.nodes {
		if n.ID == id {
			return n, nil
		}
	}
	return models.ThoughtNode{}, ErrNotFound
}

// ReplaceAll overwrites the entire node set. The client owns the canonical
// graph and syncs it back in bulk.
func (s *Store) ReplaceAll(nodes []models.ThoughtNode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if nodes == nil {
		nodes = []models.ThoughtNode{}
	}
	s.nodes = nodes
	return s.persist()
}

// Add appends a node, assigning an id and creation time when missing.
func (s *Store) Add(node models.ThoughtNode) (models.ThoughtNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if node.ID == "" {
		node.ID = uuid.NewString()
	}
	if node.CreatedAt == 0 {
		node.CreatedAt = time.Now().UnixMilli()
	}
	if node.LinkedNodeIDs == nil {
		node.LinkedNodeIDs = []string{}
	}
	s.nodes = append(s.nodes, node)
	if err := s.persist(); err != nil {
		return models.ThoughtNode{}, err
	}
	return node, nil
}

// Count returns the number of stored nodes.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.nodes)
}

// Similar ranks all other nodes by similarity to the node with the given id.
// Nodes with embeddings are compared by cosine similarity; nodes without fall
// back to SimHash distance over their summary and comment text. At most limit
// results are returned.
func (s *Store) Similar(id string, limit int) ([]models.SimilarNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ref *models.ThoughtNode
	for i := range s.nodes {
		if s.nodes[i].ID == id {
			ref = &s.nodes[i]
			break
		}
	}
	if ref == nil {
		return nil, ErrNotFound
	}

	refFP := simhash.Fingerprint(ref.Summary + " " + ref.Comment)
	results := make([]models.SimilarNode, 0, len(s.nodes)-1)
	for _, n := range s.nodes {
		if n.ID == id {
			continue
		}
		results = append(results, models.SimilarNode{
			Node:     n,
			Distance: similarityDistance(ref, refFP, &n),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// similarityDistance returns a distance in [0, 64]; lower is more similar.
// Cosine similarity is rescaled onto the same range as Hamming distance so
// mixed comparisons still sort sensibly.
func similarityDistance(ref *models.ThoughtNode, refFP uint64, other *models.ThoughtNode) float64 {
	if len(ref.Embedding) > 0 && len(other.Embedding) == len(ref.Embedding) {
		return (1 - simhash.Cosine(ref.Embedding, other.Embedding)) * 32
	}
	otherFP := simhash.Fingerprint(other.Summary + " " + other.Comment)
	return float64(simhash.Distance(refFP, otherFP))
}

// persist writes the node set atomically via a temp file rename.
// Callers must hold s.mu.
func (s *Store) persist() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return models.NewAppError(models.ErrCodeStorage, "create data dir", err)
	}

	data, err := json.MarshalIndent(s.nodes, "", "  ")
	if err != nil {
		return models.NewAppError(models.ErrCodeStorage, "encode node data", err)
	}

	tmp := fmt.Sprintf("%s.tmp.%d", s.path, time.Now().UnixNano())
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return models.NewAppError(models.ErrCodeStorage, "write node data", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return models.NewAppError(models.ErrCodeStorage, "replace node data", err)
	}
	return nil
}
