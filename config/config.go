package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa de la simulación.
type Config struct {
	Simulation SimulationConfig `yaml:"simulation"`
	Sources    SourcesConfig    `yaml:"sources"`
	Retry      RetryConfig      `yaml:"retry"`
	Fees       FeesConfig       `yaml:"fees"`
	Storage    StorageConfig    `yaml:"storage"`
	Log        LogConfig        `yaml:"log"`
}

// SimulationConfig controla la ventana y la paginación.
type SimulationConfig struct {
	WindowHours   int `yaml:"window_hours"`
	HistoryMargin int `yaml:"history_margin"` // rondas extra más antiguas que el inicio
	PageSize      int `yaml:"page_size"`
}

// SourcesConfig contiene los endpoints de las dos fuentes de datos.
type SourcesConfig struct {
	SubgraphURL string `yaml:"subgraph_url"`
	PoolID      string `yaml:"pool_id"`
	RPCURL      string `yaml:"rpc_url"`
	FeedAddress string `yaml:"feed_address"` // agregador de Chainlink, no el proxy
}

// RetryConfig es la política común de reintentos de ambos clientes.
type RetryConfig struct {
	Attempts       int `yaml:"attempts"`
	DelayMillis    int `yaml:"delay_ms"`
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// FeesConfig contiene las constantes del modelo de fees, en puntos
// porcentuales (0.05 = 0.05%).
type FeesConfig struct {
	BaseFeePct          float64 `yaml:"base_fee_pct"`
	DeviationMultiplier float64 `yaml:"deviation_multiplier"`
	StandardFeePct      float64 `yaml:"standard_fee_pct"`
}

// StorageConfig controla dónde se persisten el caché y los reportes.
type StorageConfig struct {
	DSN       string `yaml:"dsn"`        // ruta al archivo SQLite, o ":memory:"
	OutputDir string `yaml:"output_dir"` // directorio de los reportes JSON
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del .env sobreescriben los del YAML para las keys que correspondan.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// RetryDelay devuelve la espera entre intentos como time.Duration.
func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.Retry.DelayMillis) * time.Millisecond
}

// RetryTimeout devuelve el timeout por intento como time.Duration.
func (c *Config) RetryTimeout() time.Duration {
	return time.Duration(c.Retry.TimeoutSeconds) * time.Second
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SUBGRAPH_URL"); v != "" {
		cfg.Sources.SubgraphURL = v
	}
	if v := os.Getenv("POOL_ID"); v != "" {
		cfg.Sources.PoolID = v
	}
	if v := os.Getenv("RPC_URL"); v != "" {
		cfg.Sources.RPCURL = v
	}
	if v := os.Getenv("FEED_ADDRESS"); v != "" {
		cfg.Sources.FeedAddress = v
	}
	if v := os.Getenv("WINDOW_HOURS"); v != "" {
		if hours, err := strconv.Atoi(v); err == nil {
			cfg.Simulation.WindowHours = hours
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Simulation.WindowHours <= 0 {
		cfg.Simulation.WindowHours = 24
	}
	if cfg.Simulation.HistoryMargin <= 0 {
		cfg.Simulation.HistoryMargin = 5
	}
	if cfg.Simulation.PageSize <= 0 {
		cfg.Simulation.PageSize = 1000
	}
	if cfg.Retry.Attempts <= 0 {
		cfg.Retry.Attempts = 3
	}
	if cfg.Retry.DelayMillis <= 0 {
		cfg.Retry.DelayMillis = 500
	}
	if cfg.Retry.TimeoutSeconds <= 0 {
		cfg.Retry.TimeoutSeconds = 10
	}
	if cfg.Fees.BaseFeePct <= 0 {
		cfg.Fees.BaseFeePct = 0.05
	}
	if cfg.Fees.DeviationMultiplier <= 0 {
		cfg.Fees.DeviationMultiplier = 70
	}
	if cfg.Fees.StandardFeePct <= 0 {
		cfg.Fees.StandardFeePct = 0.05
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "levery_rounds.db"
	}
	if cfg.Storage.OutputDir == "" {
		cfg.Storage.OutputDir = "reports"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
