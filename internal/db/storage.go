package db

import (
	"context"

	pgvector "github.com/pgvector/pgvector-go"
	"github.com/uptrace/bun"
)

type ChunkRepository struct {
	db *bun.DB
}

type ChunkSearchRow struct {
	RAGChunk `bun:",extend"`
	Distance float64 `bun:"distance"`
}

// Similarity converts the cosine distance into a 0..1 style score.
func (r ChunkSearchRow) Similarity() float64 { return 1 - r.Distance }

func NewChunkRepository(database *Database) *ChunkRepository {
	return &ChunkRepository{db: database.Bun()}
}

// StoreChunks inserts chunks, skipping ids that already exist, and returns
// how many rows were written.
func (r *ChunkRepository) StoreChunks(ctx context.Context, chunks []RAGChunk) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}
	res, err := r.db.NewInsert().Model(&chunks).On("CONFLICT (id) DO NOTHING").Exec(ctx)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return len(chunks), nil
	}
	return int(n), nil
}

// SearchChunks returns the nearest chunks by cosine distance. Rows whose
// similarity is below minSimilarity are dropped.
func (r *ChunkRepository) SearchChunks(ctx context.Context, embedding []float32, limit int, minSimilarity float64) ([]ChunkSearchRow, error) {
	if limit <= 0 {
		limit = 5
	}
	var results []ChunkSearchRow
	q := r.db.NewSelect().Model(&results).
		Column("id", "source", "chunk_index", "chunk_text", "embedding_model", "created_at").
		ColumnExpr("embedding <=> ? AS distance", pgvector.NewVector(embedding)).
		OrderExpr("distance").
		Limit(limit)
	if minSimilarity > 0 {
		q = q.Where("1 - (embedding <=> ?) >= ?", pgvector.NewVector(embedding), minSimilarity)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *ChunkRepository) CountChunks(ctx context.Context) (int, error) {
	return r.db.NewSelect().Model((*RAGChunk)(nil)).Count(ctx)
}

// ReplaceSource swaps every chunk stored for source with chunks in one
// transaction. It returns how many rows were removed and written.
func (r *ChunkRepository) ReplaceSource(ctx context.Context, source string, chunks []RAGChunk) (removed, written int, err error) {
	err = r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewDelete().Model((*RAGChunk)(nil)).Where("source = ?", source).Exec(ctx)
		if err != nil {
			return err
		}
		n, _ := res.RowsAffected()
		removed = int(n)
		if len(chunks) == 0 {
			return nil
		}
		res, err = tx.NewInsert().Model(&chunks).On("CONFLICT (id) DO NOTHING").Exec(ctx)
		if err != nil {
			return err
		}
		n, _ = res.RowsAffected()
		written = int(n)
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return removed, written, nil
}
