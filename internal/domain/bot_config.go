package domain

import "time"

// BotConfig is the slice of the external bot-configuration store this
// pipeline reads and writes: which knowledge bases a bot consults.
type BotConfig struct {
	BotID            string
	KnowledgeBaseIDs []string
	UpdatedAt        time.Time
}
