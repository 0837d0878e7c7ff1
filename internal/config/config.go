// Package config loads nbxwatch configuration from two layers: process-level
// runtime settings from NBXWATCH_* environment variables, and the service
// configuration from an INI file with one [global] section plus zero or more
// [wallet <id>] sections.
package config

import (
	"fmt"
	"os"
	"strings"

	"nbxwatch/internal/pkg/validator"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

// cookieDefaultUser is assumed when the cookie file holds a bare secret
// without a "name:secret" pair.
const cookieDefaultUser = "__cookie__"

// Runtime holds process-level settings sourced from the environment.
type Runtime struct {
	ConfigPath       string `envconfig:"CONFIG" default:"/mnt/hdd/app-data/nbxwatch/nbxwatch.conf"`
	LogLevel         string `envconfig:"LOG_LEVEL" default:"info"`
	TelemetryEnabled bool   `envconfig:"TELEMETRY_ENABLED" default:"false"`
	ServiceName      string `envconfig:"SERVICE_NAME" default:"nbxwatch"`
}

// LoadRuntime reads Runtime from NBXWATCH_* environment variables.
func LoadRuntime() (Runtime, error) {
	var rt Runtime
	if err := envconfig.Process("nbxwatch", &rt); err != nil {
		return Runtime{}, fmt.Errorf("loading runtime settings: %w", err)
	}
	return rt, nil
}

// Wallet is one [wallet <id>] section. A wallet is watchable when it carries
// either an xpub (registered by us) or a derivation (managed elsewhere,
// assumed pre-registered).
type Wallet struct {
	SectionID  string
	Name       string `validate:"required"`
	XPub       string
	Derivation string
}

// Descriptor returns the string the tracking service knows this wallet by.
// The managed derivation wins over the xpub when both are set.
func (w Wallet) Descriptor() string {
	if w.Derivation != "" {
		return w.Derivation
	}
	return w.XPub
}

// IsManaged reports whether the wallet uses a pre-registered derivation.
func (w Wallet) IsManaged() bool {
	return w.Derivation != ""
}

// SMTP holds the mail submission settings.
type SMTP struct {
	Server string
	Port   int
	User   string
	Pass   string
	From   string
	To     string
}

// Complete reports whether every field needed to send mail is present.
func (s SMTP) Complete() bool {
	return s.Server != "" && s.User != "" && s.Pass != "" && s.From != "" && s.To != ""
}

// PGP holds the optional encryption settings.
type PGP struct {
	Enabled   bool
	Recipient string
}

// File is the parsed INI configuration.
type File struct {
	NBXURL  string `validate:"required,url"`
	NBXUser string
	NBXPass string

	LocalExplorerURL  string
	PublicExplorerURL string

	TimezoneOffsetHours float64
	TimezoneLabel       string

	DedupBackend string `validate:"oneof=memory redis"`
	RedisAddr    string
	RedisUser    string
	RedisPass    string
	RedisDB      int

	PGP  PGP
	SMTP SMTP

	Wallets []Wallet
}

// Load parses the INI file at path, resolves credentials (cookie file wins
// over static user/pass) and validates the result. Any error here is fatal:
// the watch loop must not start on a broken configuration.
func Load(path string) (File, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("ini")

	if err := v.ReadInConfig(); err != nil {
		return File{}, fmt.Errorf("reading config file %s: %w", path, err)
	}

	cfg := File{
		NBXURL:              strings.TrimRight(v.GetString("global.nbx_url"), "/"),
		NBXUser:             v.GetString("global.nbx_user"),
		NBXPass:             v.GetString("global.nbx_pass"),
		LocalExplorerURL:    v.GetString("global.local_explorer_url"),
		PublicExplorerURL:   v.GetString("global.explorer_url"),
		TimezoneOffsetHours: v.GetFloat64("global.timezone_offset_hours"),
		TimezoneLabel:       v.GetString("global.timezone_label"),
		DedupBackend:        v.GetString("global.dedup_backend"),
		RedisAddr:           v.GetString("global.redis_addr"),
		RedisUser:           v.GetString("global.redis_user"),
		RedisPass:           v.GetString("global.redis_pass"),
		RedisDB:             v.GetInt("global.redis_db"),
		PGP: PGP{
			Enabled:   v.GetBool("global.pgp_enabled"),
			Recipient: v.GetString("global.pgp_recipient"),
		},
		SMTP: SMTP{
			Server: v.GetString("global.smtp_server"),
			Port:   v.GetInt("global.smtp_port"),
			User:   v.GetString("global.smtp_user"),
			Pass:   v.GetString("global.smtp_pass"),
			From:   v.GetString("global.mail_from"),
			To:     v.GetString("global.mail_to"),
		},
	}

	if cfg.TimezoneLabel == "" {
		cfg.TimezoneLabel = "Local"
	}
	if cfg.SMTP.Port == 0 {
		cfg.SMTP.Port = 587
	}
	if cfg.DedupBackend == "" {
		cfg.DedupBackend = "memory"
	}

	if cookiePath := v.GetString("global.nbx_cookiefile"); cookiePath != "" {
		user, pass, err := readCookieFile(cookiePath)
		if err != nil {
			return File{}, err
		}
		cfg.NBXUser, cfg.NBXPass = user, pass
	}

	wallets, err := parseWalletSections(v)
	if err != nil {
		return File{}, err
	}
	cfg.Wallets = wallets

	if err := validator.Validate(cfg); err != nil {
		return File{}, err
	}

	return cfg, nil
}

// readCookieFile parses a "name:secret" credential cookie. A file holding a
// bare secret maps to the __cookie__ user.
func readCookieFile(path string) (user, pass string, err error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("reading cookie file %s: %w", path, err)
	}

	line := strings.TrimSpace(string(raw))
	if user, pass, ok := strings.Cut(line, ":"); ok {
		return user, pass, nil
	}
	return cookieDefaultUser, line, nil
}

// parseWalletSections extracts every [wallet <id>] section. Viper lowercases
// section names, so the prefix match is case-insensitive by construction.
func parseWalletSections(v *viper.Viper) ([]Wallet, error) {
	var wallets []Wallet
	for section := range v.AllSettings() {
		id, ok := strings.CutPrefix(section, "wallet ")
		if !ok {
			continue
		}

		w := Wallet{
			SectionID:  id,
			Name:       v.GetString(section + ".name"),
			XPub:       strings.TrimSpace(v.GetString(section + ".xpub")),
			Derivation: strings.TrimSpace(v.GetString(section + ".derivation")),
		}
		if w.Name == "" {
			w.Name = section
		}

		if err := validator.Validate(w); err != nil {
			return nil, fmt.Errorf("wallet section %q: %w", section, err)
		}

		wallets = append(wallets, w)
	}

	return wallets, nil
}
