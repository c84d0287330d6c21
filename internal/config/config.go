package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ProviderLocal  = "local"
	ProviderGDrive = "gdrive"

	BlobFS = "fs"
	BlobS3 = "s3"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	DB      DBConfig      `mapstructure:"db"`
	JWT     JWTConfig     `mapstructure:"jwt"`
	Storage StorageConfig `mapstructure:"storage"`
	CORS    CORSConfig    `mapstructure:"cors"`
	Log     LogConfig     `mapstructure:"log"`
}

type ServerConfig struct {
	Addr           string `mapstructure:"addr" validate:"required"`
	PublicURL      string `mapstructure:"public_url" validate:"required,url"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes" validate:"min=1"`
}

type DBConfig struct {
	Source string `mapstructure:"source" validate:"required"`
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret" validate:"required,min=16"`
	AccessTTL  time.Duration `mapstructure:"access_ttl" validate:"required"`
	RefreshTTL time.Duration `mapstructure:"refresh_ttl" validate:"required"`
}

type StorageConfig struct {
	DefaultQuota int64        `mapstructure:"default_quota" validate:"min=1"`
	Provider     string       `mapstructure:"provider" validate:"required,oneof=local gdrive"`
	Local        LocalConfig  `mapstructure:"local"`
	GDrive       GDriveConfig `mapstructure:"gdrive"`
}

type LocalConfig struct {
	IndexPath string   `mapstructure:"index_path"`
	Blob      string   `mapstructure:"blob" validate:"omitempty,oneof=fs s3"`
	Path      string   `mapstructure:"path"`
	S3        S3Config `mapstructure:"s3"`
}

type S3Config struct {
	Endpoint     string `mapstructure:"endpoint"`
	Region       string `mapstructure:"region"`
	Bucket       string `mapstructure:"bucket"`
	AccessKey    string `mapstructure:"access_key"`
	SecretKey    string `mapstructure:"secret_key"`
	UsePathStyle bool   `mapstructure:"use_path_style"`
}

type GDriveConfig struct {
	ServiceAccountBase64 string `mapstructure:"service_account_base64"`
	ParentFolderID       string `mapstructure:"parent_folder_id"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=text json"`
}

var flagToViperKey = map[string]string{
	"addr":       "server.addr",
	"db-source":  "db.source",
	"provider":   "storage.provider",
	"log-level":  "log.level",
	"log-format": "log.format",
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		key, ok := flagToViperKey[f.Name]
		if !ok || !f.Changed {
			return
		}
		_ = v.BindPFlag(key, f)
	})
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.public_url", "http://localhost:8080")
	v.SetDefault("server.max_upload_bytes", 512<<20)

	// Keys without a real default are still registered so that DRIVE_* variables
	// reach Unmarshal when no settings file exists.
	v.SetDefault("db.source", "")
	v.SetDefault("jwt.secret", "")

	v.SetDefault("jwt.access_ttl", time.Hour)
	v.SetDefault("jwt.refresh_ttl", 7*24*time.Hour)

	v.SetDefault("storage.default_quota", 5<<30)
	v.SetDefault("storage.provider", ProviderLocal)
	v.SetDefault("storage.local.index_path", "./data/index.db")
	v.SetDefault("storage.local.blob", BlobFS)
	v.SetDefault("storage.local.path", "./data/blobs")
	v.SetDefault("storage.local.s3.endpoint", "")
	v.SetDefault("storage.local.s3.region", "us-east-1")
	v.SetDefault("storage.local.s3.bucket", "")
	v.SetDefault("storage.local.s3.access_key", "")
	v.SetDefault("storage.local.s3.secret_key", "")
	v.SetDefault("storage.local.s3.use_path_style", false)
	v.SetDefault("storage.gdrive.service_account_base64", "")
	v.SetDefault("storage.gdrive.parent_folder_id", "")

	v.SetDefault("cors.allowed_origins", []string{"*"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads settings.yml from ./configs or /configs (or the explicit file when
// configFile is set), then applies DRIVE_* environment variables and changed flags.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath("./configs")
		v.AddConfigPath("/configs")
		v.SetConfigName("settings")
		v.SetConfigType("yml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix("DRIVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		bindFlags(v, flags)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	switch c.Storage.Provider {
	case ProviderGDrive:
		if c.Storage.GDrive.ServiceAccountBase64 == "" || c.Storage.GDrive.ParentFolderID == "" {
			return errors.New("validate config: storage.gdrive requires service_account_base64 and parent_folder_id")
		}
	case ProviderLocal:
		if c.Storage.Local.IndexPath == "" {
			return errors.New("validate config: storage.local.index_path is required")
		}
		if c.Storage.Local.Blob == BlobS3 && c.Storage.Local.S3.Bucket == "" {
			return errors.New("validate config: storage.local.s3.bucket is required for the s3 blob store")
		}
		if c.Storage.Local.Blob != BlobS3 && c.Storage.Local.Path == "" {
			return errors.New("validate config: storage.local.path is required for the fs blob store")
		}
	}

	return nil
}
