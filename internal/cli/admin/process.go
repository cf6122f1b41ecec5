package admin

import (
	"context"
	"fmt"
	"net/http"

	"github.com/botweaver/knowledge/internal/config"
	"github.com/botweaver/knowledge/internal/database"
	"github.com/botweaver/knowledge/internal/extract"
	"github.com/botweaver/knowledge/internal/jobs"
	"github.com/botweaver/knowledge/internal/openai"
	"github.com/botweaver/knowledge/internal/repository"
	"github.com/botweaver/knowledge/internal/service"
	"github.com/botweaver/knowledge/internal/storage"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

// ProcessCmd returns the process command
func ProcessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process [document-id...]",
		Short: "Run the ingestion pipeline",
		Long:  "Process the given documents, or drain the pending queue when no ids are given",
		RunE:  runProcess,
	}

	cmd.Flags().Int("batch", jobs.DefaultClaimBatchSize, "Pending documents to claim per batch when draining")

	return cmd
}

func runProcess(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if !cfg.HasOpenAI() {
		return fmt.Errorf("KNOWLEDGE_OPENAI_API_KEY is required")
	}

	pool, err := database.NewPool(ctx, cfg.DatabaseURL, database.PoolOptions{})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	ingestSvc, documentRepo, err := buildIngestService(ctx, cfg, pool)
	if err != nil {
		return err
	}

	if len(args) > 0 {
		results := ingestSvc.ProcessDocuments(ctx, args)
		failed := 0
		for _, res := range results {
			if res.Err != nil {
				failed++
				fmt.Printf("%s: FAILED: %v\n", res.DocumentID, res.Err)
			} else {
				fmt.Printf("%s: ok\n", res.DocumentID)
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d documents failed", failed, len(results))
		}
		return nil
	}

	batch, _ := cmd.Flags().GetInt("batch")
	total := 0
	for {
		docs, err := documentRepo.ClaimPending(ctx, batch)
		if err != nil {
			return fmt.Errorf("failed to claim pending documents: %w", err)
		}
		if len(docs) == 0 {
			break
		}
		for _, doc := range docs {
			if err := ingestSvc.ProcessDocument(ctx, doc.ID); err != nil {
				fmt.Printf("%s: FAILED: %v\n", doc.ID, err)
			} else {
				fmt.Printf("%s: ok\n", doc.ID)
			}
			total++
		}
	}
	fmt.Printf("processed %d documents\n", total)
	return nil
}

func buildIngestService(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) (*service.IngestService, *repository.DocumentRepository, error) {
	documentRepo := repository.NewDocumentRepository(pool)
	kbRepo := repository.NewKnowledgeBaseRepository(pool)
	chunkRepo := repository.NewChunkRepository(pool)

	var objects storage.ObjectGetter
	if cfg.HasS3() {
		s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create S3 client: %w", err)
		}
		objects = s3Client
	}

	embeddingClient := openai.NewClientWithConfig(openai.Config{
		APIKey:              cfg.OpenAIAPIKey,
		EmbeddingModel:      cfg.EmbeddingModel,
		EmbeddingDimensions: cfg.EmbeddingDimensions,
	})
	extractor := extract.NewServiceWith(storage.NewSourceReader(objects), http.DefaultClient)

	return service.NewIngestService(documentRepo, kbRepo, chunkRepo, extractor, embeddingClient), documentRepo, nil
}
