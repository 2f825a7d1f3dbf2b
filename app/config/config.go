package config

import (
	"errors"
	"io/fs"
	"net"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

const (
	DefaultLocalURL      = "http://localhost:8000"
	DefaultProductionURL = "https://lead-capture-9mnb.onrender.com"
	DefaultProbeTimeout  = 3 * time.Second
	DefaultListen        = "localhost:3000"
	DefaultAllowOrigins  = "*"
)

const (
	apiURLEnv   = "NEXT_PUBLIC_API_URL"
	siteHostEnv = "SITE_HOST"
)

type Config struct {
	Log     Log     `yaml:"log"`
	Gateway Gateway `yaml:"gateway"`
	Server  Server  `yaml:"server"`
}

type Gateway struct {
	// Explicit backend base url, skips local/production detection
	APIURL string `yaml:"api_url" example:"https://staging.example.org" validate:"omitempty,url"`
	// Backend used during local development
	LocalURL string `yaml:"local_url" example:"http://localhost:8000" validate:"required,url"`
	// Deployed backend
	ProductionURL string `yaml:"production_url" example:"https://lead-capture-9mnb.onrender.com" validate:"required,url"`
	// Host the widget is served from, used to detect local development
	SiteHost string `yaml:"site_host" example:"localhost"`
	// Health probe timeout
	ProbeTimeout time.Duration `yaml:"probe_timeout" example:"3s" validate:"gt=0"`
}

type Server struct {
	// Widget API listen address
	Listen string `yaml:"listen" example:"localhost:3000" validate:"required"`
	// Comma separated origins allowed to call the widget API
	AllowOrigins string `yaml:"allow_origins" example:"https://lead-capture-gamma.vercel.app"`
}

type Log struct {
	// Telegram logging config
	Telegram TelegramLog `yaml:"telegram"`
}

type TelegramLog struct {
	// Chat bot token, obtain it via BotFather
	Token string `yaml:"token" example:"1234567890:ABCdefGHIjklMNopQRstUVwxyZ-123456789"`
	// Chat ID to send messages to
	ChatID string `yaml:"chat_id" example:"1001234567890"`
}

func Load() (*Config, error) {
	return LoadFile("config.yaml")
}

// LoadFile reads the YAML config at path. A missing file is not an error,
// defaults and environment overrides still apply.
func LoadFile(path string) (*Config, error) {
	var result Config

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, oops.Errorf("failed to read config file: %w", err)
	}

	if len(data) > 0 {
		if err = yaml.Unmarshal(data, &result); err != nil {
			return nil, oops.Errorf("failed to parse YAML config: %w", err)
		}
	}

	if result.Gateway.LocalURL == "" {
		result.Gateway.LocalURL = DefaultLocalURL
	}
	if result.Gateway.ProductionURL == "" {
		result.Gateway.ProductionURL = DefaultProductionURL
	}
	if result.Gateway.ProbeTimeout == 0 {
		result.Gateway.ProbeTimeout = DefaultProbeTimeout
	}
	if result.Server.Listen == "" {
		result.Server.Listen = DefaultListen
	}
	if result.Server.AllowOrigins == "" {
		result.Server.AllowOrigins = DefaultAllowOrigins
	}

	if value := os.Getenv(apiURLEnv); value != "" {
		result.Gateway.APIURL = value
	}
	if value := os.Getenv(siteHostEnv); value != "" {
		result.Gateway.SiteHost = value
	}
	if result.Gateway.SiteHost == "" {
		result.Gateway.SiteHost = listenHost(result.Server.Listen)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(result); err != nil {
		return nil, oops.Errorf("failed to validate config: %w", err)
	}

	return &result, nil
}

// listenHost is the host part of the listen address, or the machine name when
// the address binds every interface.
func listenHost(listen string) string {
	host, _, err := net.SplitHostPort(listen)
	if err == nil && host != "" {
		return host
	}

	hostname, _ := os.Hostname()

	return hostname
}
