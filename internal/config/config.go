package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/gdnc/invoice-automation/internal/registration"
)

// Config holds all application configuration
type Config struct {
	Paths         PathsConfig         `mapstructure:"paths"`
	Ledger        WorkbookConfig      `mapstructure:"ledger"`
	Journal       JournalConfig       `mapstructure:"journal"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Conversion    ConversionConfig    `mapstructure:"conversion"`
	Invoice       InvoiceConfig       `mapstructure:"invoice"`
	Registrations RegistrationsConfig `mapstructure:"registrations"`
	Mail          MailConfig          `mapstructure:"mail"`
	Server        ServerConfig        `mapstructure:"server"`
	Logger        LoggerConfig        `mapstructure:"logger"`
	Debug         bool                `mapstructure:"debug"`
}

// PathsConfig locates catalogs, templates and generated invoices
type PathsConfig struct {
	Catalog         string `mapstructure:"catalog"`
	SportsCatalog   string `mapstructure:"sports_catalog"`
	TemplatesDir    string `mapstructure:"templates_dir"`
	TemplatePattern string `mapstructure:"template_pattern"`
	OutputDir       string `mapstructure:"output_dir"`
}

// WorkbookConfig points at one sheet of an xlsx file
type WorkbookConfig struct {
	Path  string `mapstructure:"path"`
	Sheet string `mapstructure:"sheet"`
}

// JournalConfig holds the numbering journal workbook
type JournalConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
	Sheet   string `mapstructure:"sheet"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// ConversionConfig holds the PDF conversion settings
type ConversionConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Binary  string `mapstructure:"binary"`
}

// InvoiceConfig holds invoice layout and dating rules
type InvoiceConfig struct {
	FontFace          string   `mapstructure:"font_face"`
	EmphasisTokens    []string `mapstructure:"emphasis_tokens"`
	PaymentTermDays   int      `mapstructure:"payment_term_days"`
	SponsorIssueDelay int      `mapstructure:"sponsor_issue_delay_days"`
	Currency          string   `mapstructure:"currency"`
}

// RegistrationsConfig holds the sports registration workbook
type RegistrationsConfig struct {
	File   string               `mapstructure:"file"`
	Sheets []registration.Sheet `mapstructure:"sheets"`
}

// MailConfig holds SMTP delivery configuration
type MailConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Host      string        `mapstructure:"host"`
	Port      int           `mapstructure:"port"`
	Username  string        `mapstructure:"username"`
	Password  string        `mapstructure:"password"`
	From      string        `mapstructure:"from"`
	Bcc       string        `mapstructure:"bcc"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Event     string        `mapstructure:"event"`
	Signature []string      `mapstructure:"signature"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
	RunLogDir  string `mapstructure:"run_log_dir"`
}

// Load loads configuration from file and environment variables.
// An empty configPath uses the defaults and environment only.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("INVOICER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults
	setDefaults(v)

	// Read config file
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Override with environment variables
	if err := bindEnvVars(v); err != nil {
		return nil, fmt.Errorf("failed to bind environment: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Paths defaults
	v.SetDefault("paths.catalog", "data/default_product_catalog.json")
	v.SetDefault("paths.sports_catalog", "data/sports_catalog.json")
	v.SetDefault("paths.templates_dir", "templates")
	v.SetDefault("paths.template_pattern", "InvoiceModel_CH95_DefaultProducts_%d.docx")
	v.SetDefault("paths.output_dir", "invoices")

	// Workbook defaults
	v.SetDefault("ledger.path", "data/sponsor_database.xlsx")
	v.SetDefault("ledger.sheet", "Sheet1")
	v.SetDefault("journal.enabled", true)
	v.SetDefault("journal.path", "data/num_facture.xlsx")
	v.SetDefault("journal.sheet", "Facturation")

	// Database defaults
	v.SetDefault("database.path", "data/invoicer.db")
	v.SetDefault("database.max_open_conns", 1)
	v.SetDefault("database.max_idle_conns", 1)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	// Conversion defaults
	v.SetDefault("conversion.enabled", true)
	v.SetDefault("conversion.binary", "soffice")

	// Invoice defaults
	v.SetDefault("invoice.font_face", "Times New Roman")
	v.SetDefault("invoice.emphasis_tokens", []string{"[TOTAL]", "[COMPANY]"})
	v.SetDefault("invoice.payment_term_days", 30)
	v.SetDefault("invoice.sponsor_issue_delay_days", 1)
	v.SetDefault("invoice.currency", "CHF")

	// Registrations defaults
	v.SetDefault("registrations.file", "data/registrations.xlsx")

	// Mail defaults
	v.SetDefault("mail.enabled", false)
	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.timeout", 10*time.Second)

	// Server defaults
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 120*time.Second)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.format", "console")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars(v *viper.Viper) error {
	// Sensitive credentials from environment
	bindings := map[string]string{
		"mail.username": "SMTP_USERNAME",
		"mail.password": "SMTP_PASSWORD",
		"debug":         "INVOICER_DEBUG",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return err
		}
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	var errs []error
	required := []struct {
		key   string
		value string
	}{
		{"paths.catalog", c.Paths.Catalog},
		{"paths.templates_dir", c.Paths.TemplatesDir},
		{"paths.output_dir", c.Paths.OutputDir},
		{"ledger.path", c.Ledger.Path},
		{"database.path", c.Database.Path},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs = append(errs, fmt.Errorf("%s is required", r.key))
		}
	}

	if !strings.Contains(c.Paths.TemplatePattern, "%d") {
		errs = append(errs, errors.New("paths.template_pattern must contain %d"))
	}
	if c.Journal.Enabled && c.Journal.Path == "" {
		errs = append(errs, errors.New("journal.path is required when the journal is enabled"))
	}
	if c.Conversion.Enabled && c.Conversion.Binary == "" {
		errs = append(errs, errors.New("conversion.binary is required when conversion is enabled"))
	}
	if c.Invoice.PaymentTermDays < 0 {
		errs = append(errs, errors.New("invoice.payment_term_days must not be negative"))
	}
	if c.Mail.Enabled {
		if c.Mail.Host == "" {
			errs = append(errs, errors.New("mail.host is required when mail is enabled"))
		}
		if c.Mail.From == "" {
			errs = append(errs, errors.New("mail.from is required when mail is enabled"))
		}
	}
	for i, s := range c.Registrations.Sheets {
		if s.Name == "" || s.Sport == "" {
			errs = append(errs, fmt.Errorf("registrations.sheets[%d] needs a name and a sport", i))
		}
	}

	return errors.Join(errs...)
}

// Addr returns the HTTP listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LedgerPath is the ledger workbook in use. Debug runs keep a separate
// ledger so test invoices never consume real numbers.
func (c *Config) LedgerPath() string {
	if !c.Debug {
		return c.Ledger.Path
	}
	ext := filepath.Ext(c.Ledger.Path)
	return strings.TrimSuffix(c.Ledger.Path, ext) + "_DEBUG" + ext
}
