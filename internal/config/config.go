package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port       int              `json:"port"`
	LogConfig  logger.LogConfig `json:"log_config"`
	Database   DatabaseConfig   `json:"database"`
	FileStore  FileStoreConfig  `json:"file_store"`
	AI         AIConfig         `json:"ai"`
	Retrieval  RetrievalConfig  `json:"retrieval"`
	Jobs       JobConfig        `json:"jobs"`
	CORSAllow  []string         `json:"cors_allow"`
	RateWindow int              `json:"rate_window_seconds"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	SSLMode  string `json:"ssl_mode"`
}

type FileStoreConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type AIConfig struct {
	Provider       string      `json:"provider"`
	Model          string      `json:"model"`
	EmbedProvider  string      `json:"embed_provider"`
	EmbedModel     string      `json:"embed_model"`
	EmbedDim       int         `json:"embed_dim"`
	EmbedWorkers   int         `json:"embed_workers"`
	EmbedCacheSize int         `json:"embed_cache_size"`
	EmbedCacheTTL  int         `json:"embed_cache_ttl_minutes"`
	Timeout        int         `json:"timeout_seconds"`
	Data           interface{} `json:"data"`
	EmbedData      interface{} `json:"embed_data"`
}

type RetrievalConfig struct {
	TopK             int `json:"top_k"`
	MaxTopK          int `json:"max_top_k"`
	LexicalPoolLimit int `json:"lexical_pool_limit"`
	ChunkMaxChars    int `json:"chunk_max_chars"`
}

type JobConfig struct {
	BackfillCron  string `json:"backfill_cron"`
	BackfillBatch int    `json:"backfill_batch"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}
	if cfg.Database.DSN == "" && cfg.Database.Host == "" {
		return nil, fmt.Errorf("database.dsn or database.host is required")
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.FileStore.Type == "" {
		cfg.FileStore.Type = "local"
	}
	if cfg.AI.Provider == "" {
		return nil, fmt.Errorf("ai.provider is required")
	}
	if cfg.AI.Model == "" {
		return nil, fmt.Errorf("ai.model is required")
	}
	if cfg.AI.EmbedProvider == "" {
		cfg.AI.EmbedProvider = cfg.AI.Provider
	}
	if cfg.AI.EmbedModel == "" {
		return nil, fmt.Errorf("ai.embed_model is required")
	}
	if cfg.AI.EmbedData == nil {
		cfg.AI.EmbedData = cfg.AI.Data
	}
	if cfg.AI.EmbedDim == 0 {
		cfg.AI.EmbedDim = 768
	}
	if cfg.AI.EmbedWorkers == 0 {
		cfg.AI.EmbedWorkers = 4
	}
	if cfg.AI.EmbedCacheSize == 0 {
		cfg.AI.EmbedCacheSize = 10000
	}
	if cfg.AI.EmbedCacheTTL == 0 {
		cfg.AI.EmbedCacheTTL = 120
	}
	if cfg.AI.Timeout == 0 {
		cfg.AI.Timeout = 60
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 10
	}
	if cfg.Retrieval.MaxTopK == 0 {
		cfg.Retrieval.MaxTopK = 50
	}
	if cfg.Retrieval.LexicalPoolLimit == 0 {
		cfg.Retrieval.LexicalPoolLimit = 1000
	}
	if cfg.Retrieval.ChunkMaxChars == 0 {
		cfg.Retrieval.ChunkMaxChars = 500
	}
	if cfg.Jobs.BackfillCron == "" {
		cfg.Jobs.BackfillCron = "*/10 * * * *"
	}
	if cfg.Jobs.BackfillBatch == 0 {
		cfg.Jobs.BackfillBatch = 100
	}
	return &cfg, nil
}
