package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/golang-jwt/jwt"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	ServiceHost   string
	ServicePort   int
	PublicBaseURL string
	StudioName    string
	JWT           JWTConfig
	Redis         RedisConfig
	Storage       StorageConfig
	Tax           TaxConfig
	Mail          MailConfig
	PDF           PDFConfig
	Async         AsyncConfig
	Wizard        WizardConfig
	CORS          CORSConfig
}

type JWTConfig struct {
	Token         string
	ExpiresIn     time.Duration
	SigningMethod jwt.SigningMethod
}

type RedisConfig struct {
	Enabled     bool
	Host        string
	Password    string
	Port        int
	User        string
	DialTimeout time.Duration
	ReadTimeout time.Duration
}

type StorageConfig struct {
	Driver    string // minio | s3
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	PathStyle bool
	URLExpiry time.Duration
}

// TaxConfig holds GST/QST rates and the fallback markup, all in percent.
type TaxConfig struct {
	GSTRate       decimal.Decimal
	QSTRate       decimal.Decimal
	DefaultMarkup decimal.Decimal
}

type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// PDFConfig drives headless Chrome. Without Enabled, PDF endpoints answer 503
// and emails carry the print link only.
type PDFConfig struct {
	Enabled   bool
	ChromeURL string
	Timeout   time.Duration
	NoSandbox bool
}

type AsyncConfig struct {
	SecretKey string
}

type WizardConfig struct {
	SessionTTL time.Duration
}

// CORSConfig lists the front-end origins; "*" allows any.
type CORSConfig struct {
	AllowOrigins []string
}

const (
	envRedisHost = "REDIS_HOST"
	envRedisPort = "REDIS_PORT"
	envRedisUser = "REDIS_USER"
	envRedisPass = "REDIS_PASSWORD"

	envJWTSecret = "JWT_SECRET"

	envStorageAccessKey = "STORAGE_ACCESS_KEY"
	envStorageSecretKey = "STORAGE_SECRET_KEY"

	envSMTPUser = "SMTP_USER"
	envSMTPPass = "SMTP_PASSWORD"

	envAsyncKey = "ASYNC_SECRET_KEY"
)

func NewConfig() (*Config, error) {
	var err error

	configName := "config"
	_ = godotenv.Load()
	if os.Getenv("CONFIG_NAME") != "" {
		configName = os.Getenv("CONFIG_NAME")
	}

	viper.SetConfigName(configName)
	viper.SetConfigType("toml")
	viper.AddConfigPath("config")
	viper.AddConfigPath(".")
	setDefaults(viper.GetViper())

	err = viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	err = viper.Unmarshal(cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		stringToDecimalHook,
	)))
	if err != nil {
		return nil, err
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}

	log.Info("config parsed")

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ServiceHost", "0.0.0.0")
	v.SetDefault("ServicePort", 8080)
	v.SetDefault("PublicBaseURL", "http://localhost:8080")
	v.SetDefault("StudioName", "Renovation Studio")
	v.SetDefault("JWT.ExpiresIn", "12h")
	v.SetDefault("Redis.DialTimeout", "10s")
	v.SetDefault("Redis.ReadTimeout", "10s")
	v.SetDefault("Storage.Driver", "minio")
	v.SetDefault("Storage.Bucket", "renovation")
	v.SetDefault("Storage.Region", "us-east-1")
	v.SetDefault("Storage.URLExpiry", "1h")
	v.SetDefault("Mail.Port", 587)
	v.SetDefault("PDF.Enabled", true)
	v.SetDefault("PDF.Timeout", "30s")
	v.SetDefault("Wizard.SessionTTL", "24h")
	v.SetDefault("CORS.AllowOrigins", []string{"*"})
}

// stringToDecimalHook decodes toml strings and numbers into decimal.Decimal.
func stringToDecimalHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if to != reflect.TypeOf(decimal.Decimal{}) {
		return data, nil
	}
	switch from.Kind() {
	case reflect.String, reflect.Float32, reflect.Float64, reflect.Int, reflect.Int64:
		return decimal.NewFromString(fmt.Sprint(data))
	}
	return data, nil
}

// applyEnv overlays secrets that never live in the toml file.
func (c *Config) applyEnv() error {
	var err error

	if c.Redis.Host = os.Getenv(envRedisHost); c.Redis.Host != "" {
		c.Redis.Enabled = true
		c.Redis.Port, err = strconv.Atoi(os.Getenv(envRedisPort))
		if err != nil {
			return fmt.Errorf("redis port must be int value: %w", err)
		}
		c.Redis.Password = os.Getenv(envRedisPass)
		c.Redis.User = os.Getenv(envRedisUser)
	}

	c.JWT.Token = os.Getenv(envJWTSecret)

	if v := os.Getenv(envStorageAccessKey); v != "" {
		c.Storage.AccessKey = v
	}
	if v := os.Getenv(envStorageSecretKey); v != "" {
		c.Storage.SecretKey = v
	}
	if v := os.Getenv(envSMTPUser); v != "" {
		c.Mail.Username = v
	}
	if v := os.Getenv(envSMTPPass); v != "" {
		c.Mail.Password = v
	}
	if v := os.Getenv(envAsyncKey); v != "" {
		c.Async.SecretKey = v
	}
	return nil
}

func (c *Config) normalize() error {
	if c.JWT.Token == "" {
		return errors.New("JWT_SECRET is not set")
	}
	c.JWT.SigningMethod = jwt.SigningMethodHS256

	if c.Tax.GSTRate.IsZero() && c.Tax.QSTRate.IsZero() {
		c.Tax.GSTRate = decimal.NewFromInt(5)
		c.Tax.QSTRate = decimal.RequireFromString("9.975")
	}
	if c.Tax.DefaultMarkup.IsZero() {
		c.Tax.DefaultMarkup = decimal.NewFromInt(30)
	}

	switch c.Storage.Driver {
	case "minio", "s3", "":
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	return nil
}
