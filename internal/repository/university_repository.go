package repository

import (
	"context"

	"mba-counselor/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type UniversityRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewUniversityRepository(db *pgxpool.Pool, logger *zap.Logger) *UniversityRepository {
	return &UniversityRepository{
		db:     db,
		logger: logger,
	}
}

const universityColumns = "id, name, specialization, fees_per_semester, subsidy_cashback, " +
	"accreditations, website, landing_page_url, brochure_url, brochure_file_path, raw_data, " +
	"alumni_status, review_rating, review_count, review_sentiment, review_source, created_at"

func (r *UniversityRepository) Create(ctx context.Context, u *models.University) error {
	query := squirrel.Insert("universities").
		Columns("name", "specialization", "fees_per_semester", "subsidy_cashback",
			"accreditations", "website", "landing_page_url", "brochure_url",
			"brochure_file_path", "raw_data", "alumni_status", "review_rating",
			"review_count", "review_sentiment", "review_source").
		Values(u.Name, u.Specialization, u.FeesPerSemester, u.SubsidyCashback,
			u.Accreditations, u.Website, u.LandingPageURL, u.BrochureURL,
			u.BrochureFilePath, u.RawData, u.AlumniStatus, u.ReviewRating,
			u.ReviewCount, u.ReviewSentiment, u.ReviewSource).
		Suffix("ON CONFLICT (name) DO UPDATE SET specialization = EXCLUDED.specialization, " +
			"fees_per_semester = EXCLUDED.fees_per_semester RETURNING id").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	return r.db.QueryRow(ctx, sql, args...).Scan(&u.ID)
}

func (r *UniversityRepository) GetByName(ctx context.Context, name string) (*models.University, error) {
	query := squirrel.Select(universityColumns).
		From("universities").
		Where(squirrel.Eq{"name": name}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	row := r.db.QueryRow(ctx, sql, args...)
	return scanUniversity(row)
}

func (r *UniversityRepository) List(ctx context.Context) ([]*models.University, error) {
	query := squirrel.Select(universityColumns).
		From("universities").
		OrderBy("name ASC").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var universities []*models.University
	for rows.Next() {
		u, err := scanUniversity(rows)
		if err != nil {
			return nil, err
		}
		universities = append(universities, u)
	}

	return universities, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUniversity(row rowScanner) (*models.University, error) {
	var u models.University
	err := row.Scan(
		&u.ID, &u.Name, &u.Specialization, &u.FeesPerSemester, &u.SubsidyCashback,
		&u.Accreditations, &u.Website, &u.LandingPageURL, &u.BrochureURL,
		&u.BrochureFilePath, &u.RawData, &u.AlumniStatus, &u.ReviewRating,
		&u.ReviewCount, &u.ReviewSentiment, &u.ReviewSource, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
