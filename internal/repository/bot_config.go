package repository

import (
	"context"
	"errors"
	"time"

	"github.com/botweaver/knowledge/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BotConfigRepository reads and writes the knowledge-base links of the
// external bot-configuration store.
type BotConfigRepository struct {
	db dbtx
}

func NewBotConfigRepository(pool *pgxpool.Pool) *BotConfigRepository {
	return &BotConfigRepository{db: pool}
}

// GetLinkedKnowledgeBases returns the knowledge base ids a bot consults.
// An unknown bot yields an empty slice, not an error; at query time a
// missing link just means no context.
func (r *BotConfigRepository) GetLinkedKnowledgeBases(ctx context.Context, botID string) ([]string, error) {
	var kbIDs []string
	err := r.db.QueryRow(ctx,
		`SELECT knowledge_base_ids FROM bot_configs WHERE bot_id = $1`,
		botID,
	).Scan(&kbIDs)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []string{}, nil
		}
		return nil, err
	}
	return kbIDs, nil
}

// LinkKnowledgeBase attaches a knowledge base to a bot, creating the config
// row when missing.
func (r *BotConfigRepository) LinkKnowledgeBase(ctx context.Context, botID, kbID string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO bot_configs (bot_id, knowledge_base_ids, updated_at)
		 VALUES ($1, ARRAY[$2]::text[], $3)
		 ON CONFLICT (bot_id) DO UPDATE SET
			knowledge_base_ids = (
				SELECT ARRAY(SELECT DISTINCT unnest(bot_configs.knowledge_base_ids || $2))
			),
			updated_at = $3`,
		botID, kbID, time.Now().UTC(),
	)
	return err
}

// UnlinkKnowledgeBase detaches all knowledge bases from a bot.
func (r *BotConfigRepository) UnlinkKnowledgeBase(ctx context.Context, botID string) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE bot_configs SET knowledge_base_ids = '{}', updated_at = $1 WHERE bot_id = $2`,
		time.Now().UTC(), botID,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrBotConfigNotFound
	}
	return nil
}
