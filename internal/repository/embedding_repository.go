package repository

import (
	"context"
	"fmt"
	"strings"

	"mba-counselor/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"
)

// EmbeddingRepository is the similarity store: it owns the mba_embeddings
// table and answers top-K nearest-neighbour queries joined with the
// owning universities.
type EmbeddingRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewEmbeddingRepository(db *pgxpool.Pool, logger *zap.Logger) *EmbeddingRepository {
	return &EmbeddingRepository{
		db:     db,
		logger: logger,
	}
}

func (r *EmbeddingRepository) CreateChunk(ctx context.Context, chunk *models.ContentChunk) error {
	query := squirrel.Insert("mba_embeddings").
		Columns("university_id", "content_type", "content_source", "content_text", "embedding", "metadata").
		Values(chunk.UniversityID, chunk.ContentType, chunk.ContentSource,
			chunk.ContentText, pgvector.NewVector(chunk.Embedding), chunk.Metadata).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	return r.db.QueryRow(ctx, sql, args...).Scan(&chunk.ID)
}

// SearchSimilar returns the top-K content chunks by cosine similarity,
// each joined with its university, ordered by similarity descending.
// The query builder cannot express the correlated vector subquery, so the
// nearest-neighbour SQL is written out.
func (r *EmbeddingRepository) SearchSimilar(ctx context.Context, req *models.SimilarityRequest) ([]models.SearchHit, error) {
	vec := pgvector.NewVector(req.Vector)

	var filters []string
	args := []any{vec}
	if len(req.ContentTypes) > 0 {
		types := make([]string, 0, len(req.ContentTypes))
		for _, ct := range req.ContentTypes {
			types = append(types, string(ct))
		}
		args = append(args, types)
		filters = append(filters, fmt.Sprintf("AND content_type = ANY($%d)", len(args)))
	}

	args = append(args, req.TopK)
	limitArg := len(args)

	feeFilter := ""
	if req.StrictMaxFees && req.MaxFees > 0 {
		args = append(args, req.MaxFees)
		feeFilter = fmt.Sprintf("WHERE u.fees_per_semester <= $%d", len(args))
	}

	sql := fmt.Sprintf(`
		SELECT
			e.similarity,
			e.content_type,
			e.content_source,
			e.content_text,
			u.id, u.name, u.specialization, u.fees_per_semester,
			u.subsidy_cashback, u.accreditations, u.website,
			u.landing_page_url, u.brochure_url, u.brochure_file_path,
			u.raw_data, u.alumni_status, u.review_rating, u.review_count,
			u.review_sentiment, u.review_source, u.created_at
		FROM (
			SELECT *,
			       1 - (embedding <=> $1) AS similarity
			FROM mba_embeddings
			WHERE 1=1
			%s
			ORDER BY embedding <=> $1
			LIMIT $%d
		) e
		JOIN universities u ON e.university_id = u.id
		%s
		ORDER BY e.similarity DESC, u.name ASC;`,
		strings.Join(filters, "\n"), limitArg, feeFilter)

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("similarity search failed: %w", err)
	}
	defer rows.Close()

	var hits []models.SearchHit
	for rows.Next() {
		var hit models.SearchHit
		u := &hit.University
		if err := rows.Scan(
			&hit.Similarity, &hit.ContentType, &hit.ContentSource, &hit.ContentText,
			&u.ID, &u.Name, &u.Specialization, &u.FeesPerSemester,
			&u.SubsidyCashback, &u.Accreditations, &u.Website,
			&u.LandingPageURL, &u.BrochureURL, &u.BrochureFilePath,
			&u.RawData, &u.AlumniStatus, &u.ReviewRating, &u.ReviewCount,
			&u.ReviewSentiment, &u.ReviewSource, &u.CreatedAt,
		); err != nil {
			return nil, err
		}
		hits = append(hits, hit)
	}

	return hits, rows.Err()
}

// Ping is the cheap reachability probe used by the health endpoint.
func (r *EmbeddingRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
