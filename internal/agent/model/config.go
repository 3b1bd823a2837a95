package model

// ================ Config ================
type ConversationConfig struct {
	TTL      string `envconfig:"CONVERSATION_TTL" default:"30m"`
	MaxTurns int    `envconfig:"CONVERSATION_MAX_TURNS" default:"6"`
}

type IntentModelConfig struct {
	Model       string  `envconfig:"INTENT_MODEL" default:"gemini-2.5-flash-lite"`
	MaxTokens   int     `envconfig:"INTENT_MAX_TOKENS" default:"500"`
	Temperature float32 `envconfig:"INTENT_TEMPERATURE" default:"0.3"`
}

type AnswerModelConfig struct {
	Model       string  `envconfig:"ANSWER_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"ANSWER_MAX_TOKENS" default:"1500"`
	Temperature float32 `envconfig:"ANSWER_TEMPERATURE" default:"0.7"`
}

type EmbeddingConfig struct {
	APIKey    string `envconfig:"OPENAI_API_KEY"`
	BaseURL   string `envconfig:"OPENAI_BASE_URL"`
	Model     string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-ada-002"`
	CacheSize int    `envconfig:"EMBEDDING_CACHE_SIZE" default:"1024"`
}

// PipelineConfig bounds the answer composer loop.
type PipelineConfig struct {
	ConfidenceThreshold float64 `envconfig:"PIPELINE_CONFIDENCE_THRESHOLD" default:"0.6"`
	RefinementCap       int     `envconfig:"PIPELINE_REFINEMENT_CAP" default:"2"`
	// VerifyScoreMode is "banded" (0.9/0.7/0.6) or "numeric".
	VerifyScoreMode string `envconfig:"VERIFY_SCORE_MODE" default:"banded"`
}

type RetrievalConfig struct {
	SimilarityThreshold float64 `envconfig:"RETRIEVAL_SIMILARITY_THRESHOLD" default:"0.6"`
	SkillsPerQuery      int     `envconfig:"RETRIEVAL_SKILLS_PER_QUERY" default:"5"`
	MaxSkills           int     `envconfig:"RETRIEVAL_MAX_SKILLS" default:"10"`
	Resources           int     `envconfig:"RETRIEVAL_RESOURCES" default:"5"`
	Recommendations     int     `envconfig:"RETRIEVAL_RECOMMENDATIONS" default:"5"`
}

// AccessConfig replaces the platform access registry: sources and keywords
// that must never reach an answer.
type AccessConfig struct {
	BlockedSources  []string `envconfig:"ACCESS_BLOCKED_SOURCES" default:"reddit,twitter"`
	BlockedKeywords []string `envconfig:"ACCESS_BLOCKED_KEYWORDS"`
}
