package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"regexp"
	"strconv"
	"strings"

	"mba-counselor/internal/models"
	"mba-counselor/internal/repository"
	"mba-counselor/internal/service"
	"mba-counselor/pkg/config"
	"mba-counselor/pkg/logger"
	"mba-counselor/pkg/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Seeds the database from the program catalog CSV: creates the schema,
// upserts universities and writes one embedding chunk per content source.

func main() {
	csvPath := flag.String("csv", "cmd/seed/programs.csv", "path to the program catalog CSV")
	recreate := flag.Bool("recreate", false, "drop and recreate tables before seeding")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	// Connect to database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	universityRepo := repository.NewUniversityRepository(db, appLogger)
	embeddingRepo := repository.NewEmbeddingRepository(db, appLogger)

	// LLM service provides the embedding endpoint
	llmService, err := service.NewLLMService(&cfg.GigaChat, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize LLM service", zap.Error(err))
	}
	defer llmService.Close()

	appLogger.Info("Starting database seeding...")

	if err := setupSchema(ctx, db, cfg.GigaChat.EmbeddingDim, *recreate); err != nil {
		appLogger.Fatal("Failed to set up schema", zap.Error(err))
	}

	count, err := seedFromCSV(ctx, *csvPath, universityRepo, embeddingRepo, llmService, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to seed from CSV", zap.Error(err))
	}

	appLogger.Info("Database seeding completed successfully!", zap.Int("universities", count))
}

// setupSchema creates the pgvector extension, the three tables and the
// supporting indexes. The ivfflat index needs cosine ops to match the
// <=> queries.
func setupSchema(ctx context.Context, db *pgxpool.Pool, embeddingDim int, recreate bool) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector;`,
	}

	if recreate {
		statements = append(statements,
			`DROP TABLE IF EXISTS mba_embeddings CASCADE;`,
			`DROP TABLE IF EXISTS conversations CASCADE;`,
			`DROP TABLE IF EXISTS universities CASCADE;`,
		)
	}

	statements = append(statements,
		`CREATE TABLE IF NOT EXISTS universities (
			id SERIAL PRIMARY KEY,
			name VARCHAR(255) UNIQUE NOT NULL,
			specialization TEXT,
			fees_per_semester NUMERIC,
			subsidy_cashback TEXT,
			accreditations TEXT,
			website TEXT,
			landing_page_url TEXT,
			brochure_url TEXT,
			brochure_file_path TEXT,
			raw_data JSONB,
			alumni_status BOOLEAN DEFAULT FALSE,
			review_rating NUMERIC DEFAULT 0,
			review_count INTEGER DEFAULT 0,
			review_sentiment TEXT[] DEFAULT '{}',
			review_source TEXT DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS mba_embeddings (
			id SERIAL PRIMARY KEY,
			university_id INTEGER REFERENCES universities(id),
			content_type VARCHAR(50) NOT NULL,
			content_source VARCHAR(50) NOT NULL,
			content_text TEXT,
			embedding vector(%d),
			metadata JSONB,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);`, embeddingDim),
		`CREATE TABLE IF NOT EXISTS conversations (
			id SERIAL PRIMARY KEY,
			session_id UUID NOT NULL,
			user_message TEXT NOT NULL,
			bot_response TEXT NOT NULL,
			context JSONB,
			failed BOOLEAN DEFAULT FALSE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE INDEX IF NOT EXISTS mba_embeddings_vector_idx
			ON mba_embeddings USING ivfflat (embedding vector_cosine_ops)
			WITH (lists = 100);`,
		`CREATE INDEX IF NOT EXISTS idx_universities_name ON universities(name);`,
		`CREATE INDEX IF NOT EXISTS idx_embeddings_content_type ON mba_embeddings(content_type);`,
		`CREATE INDEX IF NOT EXISTS idx_conversations_session ON conversations(session_id);`,
	)

	for _, stmt := range statements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}

// seedFromCSV reads the catalog and writes one university row plus an
// info-chunk embedding per record.
func seedFromCSV(
	ctx context.Context,
	csvPath string,
	universityRepo *repository.UniversityRepository,
	embeddingRepo *repository.EmbeddingRepository,
	llmService *service.LLMService,
	logger *zap.Logger,
) (int, error) {
	file, err := os.Open(csvPath)
	if err != nil {
		return 0, fmt.Errorf("failed to open CSV: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("failed to read CSV header: %w", err)
	}
	col := columnIndex(header)

	if _, ok := col["brand university"]; !ok {
		return 0, fmt.Errorf("CSV is missing the 'Brand University' column")
	}

	records, err := reader.ReadAll()
	if err != nil {
		return 0, fmt.Errorf("failed to read CSV records: %w", err)
	}

	seeded := 0
	for _, record := range records {
		get := func(name string) string {
			idx, ok := col[name]
			if !ok || idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		name := get("brand university")
		if name == "" {
			continue
		}

		rawData := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(record) {
				rawData[h] = record[i]
			}
		}
		rawJSON, _ := json.Marshal(rawData)

		university := &models.University{
			Name:             name,
			Specialization:   get("specialization"),
			FeesPerSemester:  parseFees(get("course fees")),
			SubsidyCashback:  get("subsidy cashback on full payment"),
			Accreditations:   get("accredations"),
			Website:          get("website"),
			LandingPageURL:   get("landing page link"),
			BrochureURL:      get("brouchure link"),
			BrochureFilePath: get("brochure file path"),
			RawData:          rawJSON,
			ReviewSentiment:  []string{},
		}

		if err := universityRepo.Create(ctx, university); err != nil {
			logger.Error("Failed to upsert university", zap.String("name", name), zap.Error(err))
			continue
		}

		infoText := fmt.Sprintf("Fees: %s | Specialization: %s | Accreditations: %s",
			orNA(get("course fees")), orNA(university.Specialization), orNA(university.Accreditations))

		if err := embedChunk(ctx, embeddingRepo, llmService, university, models.ContentTypeInfo, infoText); err != nil {
			logger.Error("Failed to embed info chunk", zap.String("name", name), zap.Error(err))
			continue
		}

		// Optional long-form description column becomes a webpage chunk
		if desc := get("description"); desc != "" {
			if err := embedChunk(ctx, embeddingRepo, llmService, university, models.ContentTypeWebpage, truncateText(desc, 2000)); err != nil {
				logger.Error("Failed to embed description chunk", zap.String("name", name), zap.Error(err))
			}
		}

		seeded++
		logger.Info("Seeded university", zap.String("name", name))
	}

	return seeded, nil
}

func embedChunk(
	ctx context.Context,
	embeddingRepo *repository.EmbeddingRepository,
	llmService *service.LLMService,
	university *models.University,
	contentType models.ContentType,
	text string,
) error {
	vector, err := llmService.Embed(ctx, text)
	if err != nil {
		return err
	}

	metadata, _ := json.Marshal(map[string]any{
		"university":       university.Name,
		"content_source":   string(contentType),
		"vector_dimension": len(vector),
	})

	chunk := &models.ContentChunk{
		UniversityID:  university.ID,
		ContentType:   contentType,
		ContentSource: string(contentType),
		ContentText:   text,
		Embedding:     vector,
		Metadata:      metadata,
	}
	return embeddingRepo.CreateChunk(ctx, chunk)
}

// columnIndex maps lowercased header names to their positions.
func columnIndex(header []string) map[string]int {
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return col
}

var feeNumberRe = regexp.MustCompile(`\d+`)

// parseFees extracts the first number from a fee string like
// "INR 45,000 per semester".
func parseFees(fees string) float64 {
	cleaned := strings.ReplaceAll(fees, ",", "")
	match := feeNumberRe.FindString(cleaned)
	if match == "" {
		return 0
	}
	value, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0
	}
	return value
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func truncateText(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
