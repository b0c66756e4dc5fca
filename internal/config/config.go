package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Config holds the configuration for the portfolio server.
type Config struct {
	// Listen is the address the server will listen on.
	Listen string `yaml:"listen" mapstructure:"listen"`
	// SessionKey is the secret used to sign the session cookie.
	SessionKey string `yaml:"session_key" mapstructure:"session_key"`
	// SessionMaxAge is the lifetime of the session cookie in seconds.
	SessionMaxAge int `yaml:"session_max_age" mapstructure:"session_max_age"`
	// SecureCookies marks the session cookie as https-only.
	SecureCookies bool `yaml:"secure_cookies" mapstructure:"secure_cookies"`
	// Database holds the database configuration.
	Database *DatabaseConfig `yaml:"database" mapstructure:"database"`
	// Email holds the operator mailbox used for contact notifications.
	Email *EmailConfig `yaml:"email" mapstructure:"email"`
	// Gravatar holds the configuration for Gravatar profile pictures.
	Gravatar *GravatarConfig `yaml:"gravatar" mapstructure:"gravatar"`
	// Resume holds the biography data rendered on the resume page.
	Resume *ResumeConfig `yaml:"resume" mapstructure:"resume"`
}

// DatabaseConfig holds the database configuration.
type DatabaseConfig struct {
	// DSN is either a sqlite file path or a postgres:// connection string.
	DSN string `yaml:"dsn" mapstructure:"dsn"`
}

// EmailConfig holds the operator mail relay configuration.
type EmailConfig struct {
	// Enabled indicates whether notification emails are sent.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// SMTPHost is the SMTP relay host.
	SMTPHost string `yaml:"smtp_host" mapstructure:"smtp_host"`
	// SMTPPort is the SMTP relay port.
	SMTPPort int `yaml:"smtp_port" mapstructure:"smtp_port"`
	// Username is the operator mailbox. It authenticates against the relay and receives notifications.
	Username string `yaml:"username" mapstructure:"username"`
	// Password is the operator mailbox password.
	Password string `yaml:"password" mapstructure:"password"`
	// InsecureSkipVerify indicates whether to skip TLS certificate verification.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify" mapstructure:"insecure_skip_verify"`
	// ConnectTimeout bounds the TCP connect and STARTTLS handshake.
	ConnectTimeout time.Duration `yaml:"connect_timeout" mapstructure:"connect_timeout"`
	// SendTimeout bounds the message transmission.
	SendTimeout time.Duration `yaml:"send_timeout" mapstructure:"send_timeout"`
}

// GravatarConfig holds the configuration for Gravatar profile pictures.
type GravatarConfig struct {
	// Enabled indicates whether Gravatar profile pictures are enabled.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// DefaultImage is the default image to use when no Gravatar is found.
	DefaultImage string `yaml:"default_image" mapstructure:"default_image"`
	// Rating is the maximum rating for Gravatar images (g, pg, r, x).
	Rating string `yaml:"rating" mapstructure:"rating"`
	// Size is the size of the Gravatar image in pixels (1-2048).
	Size int `yaml:"size" mapstructure:"size"`
}

// ResumeConfig is the biography data shown on the resume page. It is passed to the template unmodified.
type ResumeConfig struct {
	Schooling []Education `yaml:"schooling" mapstructure:"schooling"`
	College   []Education `yaml:"college" mapstructure:"college"`
	Skills    []string    `yaml:"skills" mapstructure:"skills"`
	Projects  []Project   `yaml:"projects" mapstructure:"projects"`
}

// Education is a single school or college entry.
type Education struct {
	Institution string `yaml:"institution" mapstructure:"institution"`
	Degree      string `yaml:"degree" mapstructure:"degree"`
	Period      string `yaml:"period" mapstructure:"period"`
	Details     string `yaml:"details" mapstructure:"details"`
}

// Project is a single portfolio project.
type Project struct {
	Name        string   `yaml:"name" mapstructure:"name"`
	Description string   `yaml:"description" mapstructure:"description"`
	URL         string   `yaml:"url" mapstructure:"url"`
	Tags        []string `yaml:"tags" mapstructure:"tags"`
}

// Load reads the configuration from the specified path and returns a Config struct.
// If path is empty, it will use default search paths for config files.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigType("yaml")
	v.SetEnvPrefix("FOLIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var configFileFound bool
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.folio")
		v.AddConfigPath("/etc/folio")
	}

	if err := v.ReadInConfig(); err != nil {
		// If no config file is found, use defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		configFileFound = true
	}

	if configFileFound {
		log.Debug("Using config file", "file", v.ConfigFileUsed())
		log.Debug("Some environment variables can be set with the FOLIO_ prefix to override config file values")
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	sanitizeConfig(&c)

	if err := validateConfig(&c); err != nil {
		return nil, err
	}

	return &c, nil
}

// setDefaults sets default values for the configuration.
func setDefaults(v *viper.Viper) {
	v.SetDefault("listen", "0.0.0.0:5000")
	v.SetDefault("session_key", "")
	v.SetDefault("session_max_age", 172800) // 48 hour
	v.SetDefault("secure_cookies", false)

	// Database defaults
	v.SetDefault("database.dsn", "./data/folio.db")

	// Email defaults
	v.SetDefault("email.enabled", false)
	v.SetDefault("email.smtp_host", "smtp.gmail.com")
	v.SetDefault("email.smtp_port", 587)
	v.SetDefault("email.username", "")
	v.SetDefault("email.password", "")
	v.SetDefault("email.insecure_skip_verify", false)
	v.SetDefault("email.connect_timeout", 10*time.Second)
	v.SetDefault("email.send_timeout", 10*time.Second)

	// Gravatar defaults
	v.SetDefault("gravatar.enabled", false)
	v.SetDefault("gravatar.default_image", "identicon")
	v.SetDefault("gravatar.rating", "g")
	v.SetDefault("gravatar.size", 80)

	// Resume defaults
	v.SetDefault("resume.schooling", []Education{})
	v.SetDefault("resume.college", []Education{})
	v.SetDefault("resume.skills", []string{})
	v.SetDefault("resume.projects", []Project{})
}

var (
	validDefaultImages = []string{"404", "mp", "identicon", "monsterid", "wavatar", "retro", "robohash", "blank"}
	validRatings       = []string{"g", "pg", "r", "x"}
)

// validateConfig validates the configuration.
func validateConfig(c *Config) error {
	if c == nil {
		return fmt.Errorf("missing config")
	}

	if c.Listen == "" {
		return fmt.Errorf("listen address is required")
	}

	if c.SessionKey == "" {
		return fmt.Errorf("session key is required")
	}
	if len(c.SessionKey) < 32 {
		log.Warn("session key is shorter than 32 bytes, consider generating a new one with 'folio generate-session-key'")
	}

	if c.Database == nil || c.Database.DSN == "" {
		return fmt.Errorf("database dsn is required")
	}

	if c.Email != nil && c.Email.Enabled {
		if c.Email.SMTPHost == "" {
			return fmt.Errorf("SMTP host is required when email is enabled")
		}
		if c.Email.SMTPPort <= 0 || c.Email.SMTPPort > 65535 {
			return fmt.Errorf("SMTP port must be between 1 and 65535")
		}
		if c.Email.Username == "" {
			return fmt.Errorf("email username is required when email is enabled")
		}
		if c.Email.Password == "" {
			return fmt.Errorf("email password is required when email is enabled")
		}
	}

	if c.Gravatar != nil && c.Gravatar.Enabled {
		if c.Gravatar.DefaultImage != "" && !lo.Contains(validDefaultImages, c.Gravatar.DefaultImage) {
			return fmt.Errorf("invalid gravatar default image %q", c.Gravatar.DefaultImage)
		}
		if c.Gravatar.Rating != "" && !lo.Contains(validRatings, c.Gravatar.Rating) {
			return fmt.Errorf("invalid gravatar rating %q", c.Gravatar.Rating)
		}
		if c.Gravatar.Size < 1 || c.Gravatar.Size > 2048 {
			return fmt.Errorf("gravatar size must be between 1 and 2048")
		}
	}

	return nil
}

// sanitizeConfig trims user supplied values.
func sanitizeConfig(c *Config) {
	c.Listen = strings.TrimSpace(c.Listen)
	if c.Database != nil {
		c.Database.DSN = strings.TrimSpace(c.Database.DSN)
	}
	if c.Email != nil {
		c.Email.SMTPHost = strings.TrimSpace(c.Email.SMTPHost)
		c.Email.Username = strings.TrimSpace(c.Email.Username)
	}
	if c.Resume != nil {
		c.Resume.Skills = lo.Compact(lo.Map(c.Resume.Skills, func(s string, _ int) string {
			return strings.TrimSpace(s)
		}))
	}
}
