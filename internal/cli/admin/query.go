package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/botweaver/knowledge/internal/config"
	"github.com/botweaver/knowledge/internal/database"
	"github.com/botweaver/knowledge/internal/openai"
	"github.com/botweaver/knowledge/internal/repository"
	"github.com/botweaver/knowledge/internal/service"
	"github.com/spf13/cobra"
)

// QueryCmd returns the query command
func QueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <bot-id> <query>",
		Short: "Retrieve knowledge base context for a query",
		Args:  cobra.ExactArgs(2),
		RunE:  runQuery,
	}

	cmd.Flags().Int("max-chunks", service.DefaultMaxContextChunks, "Maximum chunks to retrieve")
	cmd.Flags().Float64("threshold", service.DefaultSimilarityThreshold, "Similarity threshold for vector search")
	cmd.Flags().Bool("json", false, "Output the full result as JSON")
	cmd.Flags().Bool("prompt", false, "Output the assembled system prompt instead of raw context")
	cmd.Flags().String("base-prompt", "", "Base persona prompt to prepend when --prompt is set")

	return cmd
}

func runQuery(cmd *cobra.Command, args []string) error {
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

	embeddingClient := openai.NewClientWithConfig(openai.Config{
		APIKey:              cfg.OpenAIAPIKey,
		EmbeddingModel:      cfg.EmbeddingModel,
		EmbeddingDimensions: cfg.EmbeddingDimensions,
	})

	retrievalSvc := service.NewRetrievalService(
		repository.NewBotConfigRepository(pool),
		repository.NewChunkRepository(pool),
		embeddingClient,
	)

	maxChunks, _ := cmd.Flags().GetInt("max-chunks")
	threshold, _ := cmd.Flags().GetFloat64("threshold")

	result := retrievalSvc.GetContextForQuery(ctx, args[0], args[1], service.ContextOptions{
		MaxChunks: maxChunks,
		Threshold: threshold,
	})

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	if asPrompt, _ := cmd.Flags().GetBool("prompt"); asPrompt {
		basePrompt, _ := cmd.Flags().GetString("base-prompt")
		fmt.Println(service.BuildRAGPrompt(basePrompt, result.Context))
		return nil
	}

	if !result.HasContext {
		fmt.Println("no context found")
		if result.Error != "" {
			fmt.Printf("retrieval degraded: %s\n", result.Error)
		}
		return nil
	}

	fmt.Println(result.Context)
	fmt.Printf("\n%d sources\n", len(result.Sources))
	return nil
}
