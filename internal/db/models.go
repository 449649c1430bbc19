package db

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/pgvector/pgvector-go"
	"github.com/uptrace/bun"
)

// RAGChunk is one embedded slice of an ingested text.
type RAGChunk struct {
	bun.BaseModel `bun:"table:rag_chunks"`

	ID             string          `bun:"id,pk"` // sha256(source|idx|text)
	Source         string          `bun:"source"`
	ChunkIndex     int             `bun:"chunk_index"`
	ChunkText      string          `bun:"chunk_text"`
	Embedding      pgvector.Vector `bun:"embedding,type:vector"`
	EmbeddingModel string          `bun:"embedding_model"`
	CreatedAt      time.Time       `bun:"created_at,nullzero,default:now()"`
}

// ChunkID derives the stable primary key of a chunk so re-ingesting the same
// text is idempotent.
func ChunkID(source string, index int, text string) string {
	sum := sha256.Sum256([]byte(source + "|" + strconv.Itoa(index) + "|" + text))
	return hex.EncodeToString(sum[:])
}
