// server/config/config.go
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

type MongoConfig struct {
	URI    string `mapstructure:"uri"`
	DBName string `mapstructure:"dbName"`
}

type JWTConfig struct {
	Secret     string `mapstructure:"secret"`
	Expiration string `mapstructure:"expiration"`
}

// TTL parses Expiration, falling back to 24h when it is blank or invalid.
func (c JWTConfig) TTL() time.Duration {
	d, err := time.ParseDuration(c.Expiration)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

type AuthConfig struct {
	BcryptCost        int    `mapstructure:"bcryptCost"`
	MaxFailedAttempts int    `mapstructure:"maxFailedAttempts"`
	LockoutWindow     string `mapstructure:"lockoutWindow"`
}

func (c AuthConfig) Window() time.Duration {
	d, err := time.ParseDuration(c.LockoutWindow)
	if err != nil || d <= 0 {
		return 15 * time.Minute
	}
	return d
}

// AdminConfig is the account created by the seeder on first start.
type AdminConfig struct {
	Email     string `mapstructure:"email"`
	Password  string `mapstructure:"password"`
	FirstName string `mapstructure:"firstName"`
	LastName  string `mapstructure:"lastName"`
}

type S3Config struct {
	Bucket           string `mapstructure:"bucket"`
	Region           string `mapstructure:"region"`
	AccessKeyID      string `mapstructure:"accessKeyID"`
	SecretAccessKey  string `mapstructure:"secretAccessKey"`
	CloudFrontDomain string `mapstructure:"cloudFrontDomain"`
}

// Enabled reports whether photo uploads can be served.
func (c S3Config) Enabled() bool { return c.Bucket != "" && c.Region != "" }

type AIConfig struct {
	APIKey  string `mapstructure:"apiKey"`
	BaseURL string `mapstructure:"baseURL"`
	Model   string `mapstructure:"model"`
	Timeout string `mapstructure:"timeout"`
}

func (c AIConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 60 * time.Second
	}
	return d
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Mongo  MongoConfig  `mapstructure:"mongo"`
	JWT    JWTConfig    `mapstructure:"jwt"`
	Auth   AuthConfig   `mapstructure:"auth"`
	Admin  AdminConfig  `mapstructure:"admin"`
	S3     S3Config     `mapstructure:"s3"`
	AI     AIConfig     `mapstructure:"ai"`
	Log    LogConfig    `mapstructure:"log"`
}

// envBindings maps config keys to the environment variables that override them.
var envBindings = map[string]string{
	"server.port":            "SERVER_PORT",
	"server.mode":            "GIN_MODE",
	"server.allowedOrigins":  "ALLOWED_ORIGINS",
	"mongo.uri":              "MONGO_URI",
	"mongo.dbName":           "MONGO_DBNAME",
	"jwt.secret":             "JWT_SECRET",
	"jwt.expiration":         "JWT_EXPIRATION",
	"auth.bcryptCost":        "AUTH_BCRYPT_COST",
	"auth.maxFailedAttempts": "AUTH_MAX_FAILED_ATTEMPTS",
	"auth.lockoutWindow":     "AUTH_LOCKOUT_WINDOW",
	"admin.email":            "ADMIN_EMAIL",
	"admin.password":         "ADMIN_PASSWORD",
	"admin.firstName":        "ADMIN_FIRST_NAME",
	"admin.lastName":         "ADMIN_LAST_NAME",
	"s3.bucket":              "S3_BUCKET",
	"s3.region":              "S3_REGION",
	"s3.accessKeyID":         "S3_ACCESS_KEY_ID",
	"s3.secretAccessKey":     "S3_SECRET_ACCESS_KEY",
	"s3.cloudFrontDomain":    "S3_CLOUDFRONT_DOMAIN",
	"ai.apiKey":              "AI_API_KEY",
	"ai.baseURL":             "AI_BASE_URL",
	"ai.model":               "AI_MODEL",
	"ai.timeout":             "AI_TIMEOUT",
	"log.level":              "LOG_LEVEL",
	"log.format":             "LOG_FORMAT",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.allowedOrigins", []string{"http://localhost:5173"})
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.dbName", "edc_panorama")
	v.SetDefault("jwt.expiration", "24h")
	v.SetDefault("auth.bcryptCost", 12)
	v.SetDefault("auth.maxFailedAttempts", 5)
	v.SetDefault("auth.lockoutWindow", "15m")
	v.SetDefault("admin.email", "admin@edc.local")
	v.SetDefault("admin.firstName", "Super")
	v.SetDefault("admin.lastName", "Admin")
	v.SetDefault("ai.baseURL", "https://generativelanguage.googleapis.com/v1beta/openai/")
	v.SetDefault("ai.model", "gemini-2.5-flash")
	v.SetDefault("ai.timeout", "60s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// LoadConfig reads path/config.yaml, then applies .env and environment overrides.
// A missing file is not an error.
func LoadConfig(path string) (config Config, err error) {
	// .env only fills variables that are not already set.
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	setDefaults(v)

	for key, env := range envBindings {
		if err = v.BindEnv(key, env); err != nil {
			return
		}
	}

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return config, fmt.Errorf("read config: %w", err)
		}
		err = nil
	}

	if err = v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("decode config: %w", err)
	}
	config.Server.AllowedOrigins = splitOrigins(config.Server.AllowedOrigins)
	return config, nil
}

// Validate checks the settings the server cannot start without.
func (c Config) Validate() error {
	var errs []error
	if c.Mongo.URI == "" {
		errs = append(errs, errors.New("mongo.uri is required"))
	}
	if c.Mongo.DBName == "" {
		errs = append(errs, errors.New("mongo.dbName is required"))
	}
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("jwt.secret is required (JWT_SECRET)"))
	}
	return errors.Join(errs...)
}

// splitOrigins accepts both a YAML list and a comma separated env value.
func splitOrigins(in []string) []string {
	var out []string
	for _, item := range in {
		for _, origin := range strings.Split(item, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				out = append(out, origin)
			}
		}
	}
	return out
}
