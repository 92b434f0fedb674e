// Package config 提供配置加载和管理功能
package config

import (
	"time"
)

// Config 应用配置根结构
type Config struct {
	App           AppConfig           `yaml:"app" mapstructure:"app"`
	Server        ServerConfig        `yaml:"server" mapstructure:"server"`
	AWS           AWSConfig           `yaml:"aws" mapstructure:"aws"`
	Search        SearchConfig        `yaml:"search" mapstructure:"search"`
	Inference     InferenceConfig     `yaml:"inference" mapstructure:"inference"`
	Pipeline      PipelineConfig      `yaml:"pipeline" mapstructure:"pipeline"`
	Storage       StorageConfig       `yaml:"storage" mapstructure:"storage"`
	Database      DatabaseConfig      `yaml:"database" mapstructure:"database"`
	Cache         CacheConfig         `yaml:"cache" mapstructure:"cache"`
	Messaging     MessagingConfig     `yaml:"messaging" mapstructure:"messaging"`
	Mail          MailConfig          `yaml:"mail" mapstructure:"mail"`
	Speech        SpeechConfig        `yaml:"speech" mapstructure:"speech"`
	Trending      TrendingConfig      `yaml:"trending" mapstructure:"trending"`
	Observability ObservabilityConfig `yaml:"observability" mapstructure:"observability"`
	Security      SecurityConfig      `yaml:"security" mapstructure:"security"`
}

// AppConfig 应用基础配置
type AppConfig struct {
	Name    string `yaml:"name" mapstructure:"name"`
	Version string `yaml:"version" mapstructure:"version"`
	Env     string `yaml:"env" mapstructure:"env"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	HTTP HTTPServerConfig `yaml:"http" mapstructure:"http"`
}

// HTTPServerConfig HTTP 服务器配置
type HTTPServerConfig struct {
	Host         string        `yaml:"host" mapstructure:"host"`
	Port         int           `yaml:"port" mapstructure:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
	// MaxBodyBytes 请求体大小上限（上传接口为 base64 PDF，需要放宽）
	MaxBodyBytes int64 `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
}

// AWSConfig 出站请求签名所需的凭证与区域配置
type AWSConfig struct {
	Region          string `yaml:"region" mapstructure:"region"`
	AccessKeyID     string `yaml:"access_key_id" mapstructure:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key" mapstructure:"secret_access_key"`
	SessionToken    string `yaml:"session_token" mapstructure:"session_token"`
}

// SearchConfig 向量搜索引擎配置
type SearchConfig struct {
	// Host 形如 https://search-xxx.us-east-1.es.amazonaws.com
	Host  string `yaml:"host" mapstructure:"host"`
	Index string `yaml:"index" mapstructure:"index"`
	// Service 签名作用域中的服务名
	Service string        `yaml:"service" mapstructure:"service"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// InferenceConfig 推理端点配置
type InferenceConfig struct {
	// Endpoint 形如 https://bedrock-runtime.us-east-1.amazonaws.com
	Endpoint       string        `yaml:"endpoint" mapstructure:"endpoint"`
	GenModelID     string        `yaml:"gen_model_id" mapstructure:"gen_model_id"`
	EmbedModelID   string        `yaml:"embed_model_id" mapstructure:"embed_model_id"`
	Temperature    float64       `yaml:"temperature" mapstructure:"temperature"`
	TopP           float64       `yaml:"top_p" mapstructure:"top_p"`
	TopK           int           `yaml:"top_k" mapstructure:"top_k"`
	SummaryTokens  int           `yaml:"summary_tokens" mapstructure:"summary_tokens"`
	AnswerTokens   int           `yaml:"answer_tokens" mapstructure:"answer_tokens"`
	RequestTimeout time.Duration `yaml:"request_timeout" mapstructure:"request_timeout"`
}

// PipelineConfig 摄取与问答流水线常量
type PipelineConfig struct {
	MaxChunkChars int     `yaml:"max_chunk_chars" mapstructure:"max_chunk_chars"`
	TopK          int     `yaml:"top_k" mapstructure:"top_k"`
	MinScore      float64 `yaml:"min_score" mapstructure:"min_score"`
}

// StorageConfig 对象存储配置
type StorageConfig struct {
	S3 S3Config `yaml:"s3" mapstructure:"s3"`
}

// S3Config S3 配置
type S3Config struct {
	Bucket  string        `yaml:"bucket" mapstructure:"bucket"`
	Region  string        `yaml:"region" mapstructure:"region"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Postgres PostgresConfig `yaml:"postgres" mapstructure:"postgres"`
}

// PostgresConfig PostgreSQL 配置
type PostgresConfig struct {
	Host            string        `yaml:"host" mapstructure:"host"`
	Port            int           `yaml:"port" mapstructure:"port"`
	User            string        `yaml:"user" mapstructure:"user"`
	Password        string        `yaml:"password" mapstructure:"password"`
	Database        string        `yaml:"database" mapstructure:"database"`
	SSLMode         string        `yaml:"ssl_mode" mapstructure:"ssl_mode"`
	MaxOpenConns    int           `yaml:"max_open_conns" mapstructure:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns" mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time" mapstructure:"conn_max_idle_time"`
}

// CacheConfig 缓存配置
type CacheConfig struct {
	Redis RedisConfig `yaml:"redis" mapstructure:"redis"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Host         string        `yaml:"host" mapstructure:"host"`
	Port         int           `yaml:"port" mapstructure:"port"`
	Password     string        `yaml:"password" mapstructure:"password"`
	DB           int           `yaml:"db" mapstructure:"db"`
	PoolSize     int           `yaml:"pool_size" mapstructure:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns" mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout" mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
}

// MessagingConfig 消息队列配置
type MessagingConfig struct {
	RedisStream RedisStreamConfig `yaml:"redis_stream" mapstructure:"redis_stream"`
}

// RedisStreamConfig Redis Stream 配置
type RedisStreamConfig struct {
	MaxLen       int           `yaml:"max_len" mapstructure:"max_len"`
	BlockTimeout time.Duration `yaml:"block_timeout" mapstructure:"block_timeout"`
	RetryLimit   int           `yaml:"retry_limit" mapstructure:"retry_limit"`
}

// MailConfig 邮件通知配置
type MailConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// Endpoint 形如 https://email.us-east-1.amazonaws.com
	Endpoint string        `yaml:"endpoint" mapstructure:"endpoint"`
	Sender   string        `yaml:"sender" mapstructure:"sender"`
	Timeout  time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// SpeechConfig 语音合成配置
type SpeechConfig struct {
	// Endpoint 形如 https://polly.us-east-1.amazonaws.com
	Endpoint string        `yaml:"endpoint" mapstructure:"endpoint"`
	VoiceID  string        `yaml:"voice_id" mapstructure:"voice_id"`
	Engine   string        `yaml:"engine" mapstructure:"engine"`
	Timeout  time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// TrendingConfig 热门论文源配置
type TrendingConfig struct {
	Endpoint   string        `yaml:"endpoint" mapstructure:"endpoint"`
	Query      string        `yaml:"query" mapstructure:"query"`
	MaxResults int           `yaml:"max_results" mapstructure:"max_results"`
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ObservabilityConfig 可观测性配置
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
	Tracing TracingConfig `yaml:"tracing" mapstructure:"tracing"`
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// TracingConfig 追踪配置
type TracingConfig struct {
	Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
	Endpoint   string  `yaml:"endpoint" mapstructure:"endpoint"`
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate"`
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	CORS CORSConfig `yaml:"cors" mapstructure:"cors"`
}

// CORSConfig CORS 配置
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods" mapstructure:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers" mapstructure:"allowed_headers"`
}
