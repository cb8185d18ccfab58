package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Backend 名称，对应 MENTOR_BACKEND。
const (
	BackendArk       = "ark"
	BackendGemini    = "gemini"
	BackendOpenAI    = "openai"
	BackendAnthropic = "anthropic"
	BackendScripted  = "scripted"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server  ServerConfig
	Log     LogConfig
	Catalog CatalogConfig
	AI      AIConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	logCfg, err := loadLogConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:  server,
		Log:     logCfg,
		Catalog: CatalogConfig{Path: strings.TrimSpace(os.Getenv("MENTOR_CATALOG"))},
		AI:      ai,
	}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// LogConfig 描述日志输出。
type LogConfig struct {
	Level  string
	Format string // json 或 console
}

func loadLogConfig() (LogConfig, error) {
	level := strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info"))
	switch level {
	case "debug", "info", "warn", "error":
	default:
		return LogConfig{}, fmt.Errorf("invalid LOG_LEVEL value: %q", level)
	}

	format := strings.ToLower(getEnvOrDefault("LOG_FORMAT", "json"))
	if format != "json" && format != "console" {
		return LogConfig{}, fmt.Errorf("invalid LOG_FORMAT value: %q", format)
	}

	return LogConfig{Level: level, Format: format}, nil
}

// CatalogConfig 指向可选的导师目录 YAML 文件，留空则使用内置目录。
type CatalogConfig struct {
	Path string
}

// AIConfig 描述补全后端的选择与各家凭证。
type AIConfig struct {
	Backend     string
	TurnTimeout time.Duration
	Ark         ArkConfig
	Gemini      GeminiConfig
	OpenAI      OpenAIConfig
	Anthropic   AnthropicConfig
	Scripted    ScriptedConfig
}

// ArkConfig 描述火山方舟模型配置。
type ArkConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
}

// GeminiConfig 描述 Google Gemini 配置。
type GeminiConfig struct {
	APIKey      string
	Model       string
	Temperature *float64
}

// OpenAIConfig 描述 OpenAI 兼容接口配置。
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// AnthropicConfig 描述 Anthropic 配置。
type AnthropicConfig struct {
	APIKey           string
	Model            string
	MaxTokens        int
	DossierMaxTokens int
}

// ScriptedConfig 控制离线脚本后端。
type ScriptedConfig struct {
	FragmentDelay time.Duration
}

// Enabled 表示是否提供了必需的密钥。
func (c ArkConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// Enabled 表示是否提供了 API Key。
func (c GeminiConfig) Enabled() bool {
	return c.APIKey != ""
}

// Enabled 表示是否提供了 API Key。
func (c OpenAIConfig) Enabled() bool {
	return c.APIKey != ""
}

// Enabled 表示是否提供了 API Key。
func (c AnthropicConfig) Enabled() bool {
	return c.APIKey != ""
}

// NewChatModel 使用配置创建一个方舟模型实例。
func (c ArkConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("Ark 凭证或模型配置缺失，至少提供 ARK_API_KEY + Model 或 AK/SK 组合")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	var maxTokens *int
	if c.MaxTokens != nil {
		val := *c.MaxTokens
		maxTokens = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	arkCfg, err := loadArkConfig()
	if err != nil {
		return AIConfig{}, err
	}

	geminiTemperature, err := parseOptionalFloatEnv("GEMINI_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}
	geminiKey := strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	if geminiKey == "" {
		geminiKey = strings.TrimSpace(os.Getenv("API_KEY"))
	}
	gemini := GeminiConfig{
		APIKey:      geminiKey,
		Model:       getEnvOrDefault("GEMINI_MODEL", "gemini-3-flash-preview"),
		Temperature: geminiTemperature,
	}

	openai := OpenAIConfig{
		APIKey:  strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		Model:   getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		BaseURL: strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")),
	}

	anthropicMax, err := parsePositiveIntEnv("ANTHROPIC_MAX_TOKENS", 1024)
	if err != nil {
		return AIConfig{}, err
	}
	anthropicDossierMax, err := parsePositiveIntEnv("ANTHROPIC_DOSSIER_MAX_TOKENS", 2048)
	if err != nil {
		return AIConfig{}, err
	}
	anthropic := AnthropicConfig{
		APIKey:           strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY")),
		Model:            getEnvOrDefault("ANTHROPIC_MODEL", "claude-3-5-haiku-latest"),
		MaxTokens:        anthropicMax,
		DossierMaxTokens: anthropicDossierMax,
	}

	delay, err := parseDurationEnv("SCRIPTED_FRAGMENT_DELAY", 40*time.Millisecond)
	if err != nil {
		return AIConfig{}, err
	}

	timeout, err := parseDurationEnv("MENTOR_TURN_TIMEOUT", 2*time.Minute)
	if err != nil {
		return AIConfig{}, err
	}

	cfg := AIConfig{
		TurnTimeout: timeout,
		Ark:         arkCfg,
		Gemini:      gemini,
		OpenAI:      openai,
		Anthropic:   anthropic,
		Scripted:    ScriptedConfig{FragmentDelay: delay},
	}

	backend := strings.ToLower(strings.TrimSpace(os.Getenv("MENTOR_BACKEND")))
	switch backend {
	case "":
		cfg.Backend = cfg.detectBackend()
	case BackendArk, BackendGemini, BackendOpenAI, BackendAnthropic, BackendScripted:
		cfg.Backend = backend
	default:
		return AIConfig{}, fmt.Errorf("invalid MENTOR_BACKEND value: %q", backend)
	}

	return cfg, nil
}

// detectBackend 按凭证可用性挑选后端，全部缺失时退回脚本后端。
func (c AIConfig) detectBackend() string {
	switch {
	case c.Ark.Enabled():
		return BackendArk
	case c.Gemini.Enabled():
		return BackendGemini
	case c.OpenAI.Enabled():
		return BackendOpenAI
	case c.Anthropic.Enabled():
		return BackendAnthropic
	default:
		return BackendScripted
	}
}

func loadArkConfig() (ArkConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return ArkConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return ArkConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return ArkConfig{}, err
	}

	return ArkConfig{
		APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:       strings.TrimSpace(os.Getenv("Model")),
		BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature: temperature,
		TopP:        topP,
		MaxTokens:   maxTokens,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	if val < 0 {
		return 0, fmt.Errorf("invalid %s value %q: must not be negative", key, raw)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parsePositiveIntEnv(key string, fallback int) (int, error) {
	val, err := parseOptionalIntEnv(key)
	if err != nil {
		return 0, err
	}
	if val == nil {
		return fallback, nil
	}
	if *val <= 0 {
		return 0, fmt.Errorf("invalid %s value %d: must be positive", key, *val)
	}
	return *val, nil
}
