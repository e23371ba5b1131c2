package memory

import (
	"bytes"
	"context"
	"crypto/md5"
	"database/sql"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"
)

// Store defines the persistence operations for the vector memory.
type Store interface {
	Add(ctx context.Context, item *Item) error
	Search(ctx context.Context, vector []float32, n int, before time.Time) ([]Candidate, error)
	Count(ctx context.Context) (int64, error)
	Close() error
}

// Item is one stored memory: a fact, its embedding, and metadata.
// ID is derived from content and date so re-ingesting the same fact
// for the same day overwrites instead of duplicating.
type Item struct {
	ID        string
	Content   string
	Vector    []float32
	Metadata  map[string]any
	Timestamp time.Time
	Date      string
}

// FactID returns the deterministic document ID for a fact on a date.
func FactID(fact, date string) string {
	sum := md5.Sum([]byte(fact + date))
	return hex.EncodeToString(sum[:])
}

// SQLiteStore implements Store backed by a SQLite database. The
// nearest-neighbor search is a full scan with cosine distance, which
// is fine for the tens of thousands of facts a personal journal
// accumulates.
type SQLiteStore struct {
	db *sql.DB

	insertItem *sql.Stmt
	countItems *sql.Stmt
}

// NewSQLiteStore creates a SQLiteStore from an already-opened and
// migrated database.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}

	var err error
	s.insertItem, err = db.Prepare(`
		INSERT INTO memories (id, content, vector, metadata, ts, date)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			content = excluded.content,
			vector = excluded.vector,
			metadata = excluded.metadata,
			ts = excluded.ts,
			date = excluded.date
	`)
	if err != nil {
		return nil, fmt.Errorf("prepare insert: %w", err)
	}

	s.countItems, err = db.Prepare(`SELECT COUNT(*) FROM memories`)
	if err != nil {
		return nil, fmt.Errorf("prepare count: %w", err)
	}

	return s, nil
}

// encodeVector serializes an embedding as little-endian float32s.
func encodeVector(vec []float32) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, vec); err != nil {
		return nil, fmt.Errorf("encode vector: %w", err)
	}
	return buf.Bytes(), nil
}

// decodeVector deserializes a little-endian float32 blob.
func decodeVector(blob []byte) ([]float32, error) {
	vec := make([]float32, len(blob)/4)
	if err := binary.Read(bytes.NewReader(blob), binary.LittleEndian, &vec); err != nil {
		return nil, fmt.Errorf("decode vector: %w", err)
	}
	return vec, nil
}

// Add inserts or replaces a memory item.
func (s *SQLiteStore) Add(ctx context.Context, item *Item) error {
	if item.ID == "" {
		item.ID = FactID(item.Content, item.Date)
	}
	if len(item.Vector) == 0 {
		return fmt.Errorf("memory item %s has no vector", item.ID)
	}

	blob, err := encodeVector(item.Vector)
	if err != nil {
		return err
	}

	meta := item.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	meta["date"] = item.Date
	meta["timestamp"] = float64(item.Timestamp.Unix())

	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	_, err = s.insertItem.ExecContext(ctx,
		item.ID, item.Content, blob, string(metaJSON),
		float64(item.Timestamp.Unix()), item.Date,
	)
	if err != nil {
		return fmt.Errorf("insert memory: %w", err)
	}
	return nil
}

// Search returns the n nearest stored memories to vector by cosine
// distance, nearest first. A non-zero before excludes memories whose
// event timestamp is at or after that instant (the hard cutoff applied
// upstream of recency ranking).
func (s *SQLiteStore) Search(ctx context.Context, vector []float32, n int, before time.Time) ([]Candidate, error) {
	if n <= 0 {
		n = 5
	}

	query := `SELECT content, vector, metadata FROM memories`
	var args []interface{}
	if !before.IsZero() {
		query += ` WHERE ts < ?`
		args = append(args, float64(before.Unix()))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query memories: %w", err)
	}
	defer rows.Close()

	candidates := make([]Candidate, 0)
	for rows.Next() {
		var content, metaJSON string
		var blob []byte
		if err := rows.Scan(&content, &blob, &metaJSON); err != nil {
			return nil, fmt.Errorf("scan memory: %w", err)
		}

		stored, err := decodeVector(blob)
		if err != nil {
			return nil, err
		}

		var meta map[string]any
		if err := json.Unmarshal([]byte(metaJSON), &meta); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}

		candidates = append(candidates, Candidate{
			Content:  content,
			Metadata: meta,
			Distance: cosineDistance(vector, stored),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Distance < candidates[j].Distance
	})
	if n < len(candidates) {
		candidates = candidates[:n]
	}
	return candidates, nil
}

// Count returns the number of stored memories.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.countItems.QueryRowContext(ctx).Scan(&n); err != nil {
		return 0, fmt.Errorf("count memories: %w", err)
	}
	return n, nil
}

// Close releases prepared statements. The underlying *sql.DB is NOT
// closed — that is the caller's responsibility.
func (s *SQLiteStore) Close() error {
	for _, stmt := range []*sql.Stmt{s.insertItem, s.countItems} {
		if stmt != nil {
			stmt.Close()
		}
	}
	return nil
}

// cosineDistance is 1 minus the cosine similarity of a and b, clamped
// to be nonnegative. Mismatched or zero-length vectors are maximally
// distant.
func cosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 1
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}

	dist := 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
	if dist < 0 {
		return 0
	}
	return dist
}
