// Package config loads service configuration from a YAML file, a .env file
// and the environment, in increasing order of precedence. Every attribute
// remembers which of those sources set it.
package config

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/friendsofgo/errors"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/nrfta/realestates-go"
	"github.com/nrfta/realestates-go/throttle"
)

const (
	// DefaultPath is read when no path is given and the file exists.
	DefaultPath = "realestates.yml"

	EnvDevelopment = "development"
	EnvProduction  = "production"

	SourceDefault = "default"
	SourceFile    = "file"
	SourceEnv     = "env"
)

const developmentSecret = "development-secret"

type Server struct {
	Addr         string        `yaml:"addr"`
	Prefix       string        `yaml:"prefix"`
	PublicURL    string        `yaml:"publicURL"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	MaxBodyBytes int64         `yaml:"maxBodyBytes"`
}

type Store struct {
	// Driver is memory, postgres or mongo.
	Driver        string        `yaml:"driver"`
	DatabaseURL   string        `yaml:"databaseURL"`
	MongoURL      string        `yaml:"mongoURL"`
	MongoDatabase string        `yaml:"mongoDatabase"`
	Timeout       time.Duration `yaml:"timeout"`
}

type Auth struct {
	Secret string `yaml:"secret"`
	Issuer string `yaml:"issuer"`
}

type Throttle struct {
	// Backend is memory or redis.
	Backend  string `yaml:"backend"`
	RedisURL string `yaml:"redisURL"`

	throttle.Config `yaml:",inline"`
}

type Log struct {
	Level string `yaml:"level"`
	// Format is text or json.
	Format string `yaml:"format"`
	Color  bool   `yaml:"color"`
	// Access is the access log destination: stdout, stderr or off.
	Access string `yaml:"access"`
}

type Paging struct {
	DefaultCount int `yaml:"defaultCount"`
	MaxCount     int `yaml:"maxCount"`
}

// Config is the complete service configuration.
type Config struct {
	Env      string   `yaml:"env"`
	Server   Server   `yaml:"server"`
	Store    Store    `yaml:"store"`
	Auth     Auth     `yaml:"auth"`
	Throttle Throttle `yaml:"throttle"`
	Log      Log      `yaml:"log"`
	Paging   Paging   `yaml:"paging"`

	sources map[string]string
	path    string
}

// Attribute is one configuration value and where it came from.
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Env: EnvDevelopment,
		Server: Server{
			Addr:         ":8080",
			Prefix:       "/apis/v/realestates",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			MaxBodyBytes: 1 << 20,
		},
		Store: Store{
			Driver:        "memory",
			MongoDatabase: "realestates",
			Timeout:       3 * time.Second,
		},
		Auth: Auth{
			Secret: developmentSecret,
			Issuer: "realestates",
		},
		Throttle: Throttle{
			Backend: "memory",
			Config: throttle.Config{
				APIs: throttle.Limits{
					"bumpup": {throttle.Second: 1, throttle.Day: 1, throttle.Month: 2},
				},
				IPs: throttle.Limits{
					"bumpup": {throttle.Second: 1, throttle.Minute: 1, throttle.Hour: 2, throttle.Day: 3},
				},
			},
		},
		Log: Log{
			Level:  "info",
			Format: "text",
			Color:  true,
			Access: "stdout",
		},
		Paging: Paging{
			DefaultCount: realestates.DefaultCount,
			MaxCount:     realestates.MaxCount,
		},
		sources: map[string]string{},
	}
}

type loader struct {
	lookup  func(string) (string, bool)
	dotenvs []string
}

// Option configures Load.
type Option func(*loader)

// WithLookup replaces os.LookupEnv.
func WithLookup(lookup func(string) (string, bool)) Option {
	return func(l *loader) {
		l.lookup = lookup
	}
}

// WithDotenv replaces the .env files read. No arguments disables them.
func WithDotenv(paths ...string) Option {
	return func(l *loader) {
		l.dotenvs = paths
	}
}

// Load builds the configuration. An empty path reads DefaultPath when it
// exists. Missing .env files are ignored; a missing explicit path is not.
func Load(path string, opts ...Option) (*Config, error) {
	l := &loader{lookup: os.LookupEnv, dotenvs: []string{".env"}}
	for _, opt := range opts {
		opt(l)
	}

	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		cfg.path = path
		if err := cfg.applyFile(data); err != nil {
			return nil, errors.Wrapf(err, "parse config file %s", path)
		}
	case explicit || !errors.Is(err, fs.ErrNotExist):
		return nil, errors.Wrapf(err, "read config file %s", path)
	}

	dotenv := map[string]string{}
	for _, p := range l.dotenvs {
		vars, err := godotenv.Read(p)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "read %s", p)
		}
		for k, v := range vars {
			if _, ok := dotenv[k]; !ok {
				dotenv[k] = v
			}
		}
	}

	lookup := func(name string) (string, bool) {
		if v, ok := l.lookup(name); ok {
			return v, true
		}
		v, ok := dotenv[name]
		return v, ok
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyFile decodes data over cfg and marks every key it sets.
func (c *Config) applyFile(data []byte) error {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return err
	}
	c.markFile("", raw)
	return nil
}

func (c *Config) markFile(prefix string, m map[string]any) {
	for k, v := range m {
		name := k
		if prefix != "" {
			name = prefix + "." + k
		}
		// Throttle limits are tracked per scope.
		if sub, ok := v.(map[string]any); ok && prefix != "throttle" {
			c.markFile(name, sub)
			continue
		}
		c.sources[name] = SourceFile
	}
}

type envVar struct {
	name string
	attr string
	set  func(c *Config, v string) error
}

var envVars = []envVar{
	{"REALESTATES_ENV", "env", func(c *Config, v string) error { c.Env = v; return nil }},
	{"REALESTATES_ADDR", "server.addr", func(c *Config, v string) error { c.Server.Addr = v; return nil }},
	{"REALESTATES_PREFIX", "server.prefix", func(c *Config, v string) error { c.Server.Prefix = v; return nil }},
	{"REALESTATES_PUBLIC_URL", "server.publicURL", func(c *Config, v string) error { c.Server.PublicURL = v; return nil }},
	{"REALESTATES_STORE", "store.driver", func(c *Config, v string) error { c.Store.Driver = v; return nil }},
	{"DATABASE_URL", "store.databaseURL", func(c *Config, v string) error { c.Store.DatabaseURL = v; return nil }},
	{"MONGO_URL", "store.mongoURL", func(c *Config, v string) error { c.Store.MongoURL = v; return nil }},
	{"REALESTATES_MONGO_DATABASE", "store.mongoDatabase", func(c *Config, v string) error { c.Store.MongoDatabase = v; return nil }},
	{"JWT_SECRET", "auth.secret", func(c *Config, v string) error { c.Auth.Secret = v; return nil }},
	{"REALESTATES_JWT_ISSUER", "auth.issuer", func(c *Config, v string) error { c.Auth.Issuer = v; return nil }},
	{"REALESTATES_THROTTLE", "throttle.backend", func(c *Config, v string) error { c.Throttle.Backend = v; return nil }},
	{"REDIS_URL", "throttle.redisURL", func(c *Config, v string) error { c.Throttle.RedisURL = v; return nil }},
	{"REALESTATES_LOG_LEVEL", "log.level", func(c *Config, v string) error { c.Log.Level = v; return nil }},
	{"REALESTATES_LOG_FORMAT", "log.format", func(c *Config, v string) error { c.Log.Format = v; return nil }},
	{"REALESTATES_LOG_COLOR", "log.color", func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		c.Log.Color = b
		return err
	}},
	{"REALESTATES_LOG_ACCESS", "log.access", func(c *Config, v string) error { c.Log.Access = v; return nil }},
	{"REALESTATES_PAGING_DEFAULT_COUNT", "paging.defaultCount", func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		c.Paging.DefaultCount = n
		return err
	}},
	{"REALESTATES_PAGING_MAX_COUNT", "paging.maxCount", func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		c.Paging.MaxCount = n
		return err
	}},
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	for _, ev := range envVars {
		v, ok := lookup(ev.name)
		if !ok || v == "" {
			continue
		}
		if err := ev.set(c, v); err != nil {
			return errors.Wrapf(err, "%s", ev.name)
		}
		c.sources[ev.attr] = SourceEnv
	}
	return nil
}

// Path returns the config file that was read, "" for none.
func (c *Config) Path() string {
	return c.path
}

// Source returns where the named attribute was set.
func (c *Config) Source(name string) string {
	if s, ok := c.sources[name]; ok {
		return s
	}
	return SourceDefault
}

// Validate rejects incomplete or contradictory configurations.
func (c *Config) Validate() error {
	if c.Env != EnvDevelopment && c.Env != EnvProduction {
		return errors.Errorf("env: unknown environment %q", c.Env)
	}
	if !strings.HasPrefix(c.Server.Prefix, "/") || strings.HasSuffix(c.Server.Prefix, "/") {
		return errors.Errorf("server.prefix: %q must start and not end with /", c.Server.Prefix)
	}
	if c.Server.PublicURL != "" {
		if _, err := url.Parse(c.Server.PublicURL); err != nil {
			return errors.Wrap(err, "server.publicURL")
		}
	}

	switch c.Store.Driver {
	case "memory":
	case "postgres":
		if c.Store.DatabaseURL == "" {
			return errors.New("store.databaseURL: required by the postgres driver")
		}
	case "mongo":
		if c.Store.MongoURL == "" {
			return errors.New("store.mongoURL: required by the mongo driver")
		}
	default:
		return errors.Errorf("store.driver: unknown driver %q", c.Store.Driver)
	}

	if c.Auth.Secret == "" {
		return errors.New("auth.secret: required")
	}
	if c.Env == EnvProduction && c.Auth.Secret == developmentSecret {
		return errors.New("auth.secret: the development secret cannot be used in production")
	}

	switch c.Throttle.Backend {
	case "memory":
	case "redis":
		if c.Throttle.RedisURL == "" {
			return errors.New("throttle.redisURL: required by the redis backend")
		}
	default:
		return errors.Errorf("throttle.backend: unknown backend %q", c.Throttle.Backend)
	}
	if err := c.Throttle.Config.Validate(); err != nil {
		return err
	}

	if _, err := c.LogLevel(); err != nil {
		return err
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return errors.Errorf("log.format: unknown format %q", c.Log.Format)
	}
	if !slices.Contains([]string{"stdout", "stderr", "off"}, c.Log.Access) {
		return errors.Errorf("log.access: unknown destination %q", c.Log.Access)
	}

	if c.Paging.MaxCount < realestates.MinCount {
		return errors.Errorf("paging.maxCount: must be at least %d", realestates.MinCount)
	}
	if c.Paging.DefaultCount < realestates.MinCount || c.Paging.DefaultCount > c.Paging.MaxCount {
		return errors.Errorf("paging.defaultCount: must be between %d and %d", realestates.MinCount, c.Paging.MaxCount)
	}
	return nil
}

// LogLevel parses Log.Level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return level, errors.Errorf("log.level: unknown level %q", c.Log.Level)
	}
	return level, nil
}

// PageConfig returns the paging limits for the query decoder.
func (c *Config) PageConfig() *realestates.PageConfig {
	return realestates.NewPageConfig().
		WithDefaultCount(c.Paging.DefaultCount).
		WithMaxCount(c.Paging.MaxCount)
}

// Attributes lists every scalar attribute with its source. Secrets and URL
// passwords are masked.
func (c *Config) Attributes() []Attribute {
	attr := func(name, value string) Attribute {
		return Attribute{Name: name, Value: value, Source: c.Source(name)}
	}
	secret := ""
	if c.Auth.Secret != "" {
		secret = "********"
	}
	return []Attribute{
		attr("env", c.Env),
		attr("server.addr", c.Server.Addr),
		attr("server.prefix", c.Server.Prefix),
		attr("server.publicURL", c.Server.PublicURL),
		attr("server.readTimeout", c.Server.ReadTimeout.String()),
		attr("server.writeTimeout", c.Server.WriteTimeout.String()),
		attr("server.maxBodyBytes", strconv.FormatInt(c.Server.MaxBodyBytes, 10)),
		attr("store.driver", c.Store.Driver),
		attr("store.databaseURL", redact(c.Store.DatabaseURL)),
		attr("store.mongoURL", redact(c.Store.MongoURL)),
		attr("store.mongoDatabase", c.Store.MongoDatabase),
		attr("store.timeout", c.Store.Timeout.String()),
		attr("auth.secret", secret),
		attr("auth.issuer", c.Auth.Issuer),
		attr("throttle.backend", c.Throttle.Backend),
		attr("throttle.redisURL", redact(c.Throttle.RedisURL)),
		attr("throttle.apis", limits(c.Throttle.APIs)),
		attr("throttle.ips", limits(c.Throttle.IPs)),
		attr("log.level", c.Log.Level),
		attr("log.format", c.Log.Format),
		attr("log.color", strconv.FormatBool(c.Log.Color)),
		attr("log.access", c.Log.Access),
		attr("paging.defaultCount", strconv.Itoa(c.Paging.DefaultCount)),
		attr("paging.maxCount", strconv.Itoa(c.Paging.MaxCount)),
	}
}

// FormatText renders Attributes as a table.
func (c *Config) FormatText() string {
	var sb strings.Builder
	path := c.path
	if path == "" {
		path = "(none)"
	}
	fmt.Fprintf(&sb, "Config file: %s\n\n", path)
	fmt.Fprintf(&sb, "%-22s %-44s %s\n", "NAME", "VALUE", "SOURCE")
	fmt.Fprintf(&sb, "%-22s %-44s %s\n", "----", "-----", "------")
	for _, a := range c.Attributes() {
		value := a.Value
		if value == "" {
			value = "(not set)"
		}
		fmt.Fprintf(&sb, "%-22s %-44s %s\n", a.Name, value, a.Source)
	}
	return sb.String()
}

// FormatJSON renders Attributes as JSON.
func (c *Config) FormatJSON() (string, error) {
	data, err := json.MarshalIndent(map[string]any{
		"config_file": c.path,
		"attributes":  c.Attributes(),
	}, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func redact(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "(invalid url)"
	}
	return u.Redacted()
}

func limits(l throttle.Limits) string {
	actions := make([]string, 0, len(l))
	for action := range l {
		actions = append(actions, action)
	}
	slices.Sort(actions)

	parts := make([]string, 0, len(actions))
	for _, action := range actions {
		windows := make([]string, 0, len(l[action]))
		for _, w := range []throttle.Window{throttle.Second, throttle.Minute, throttle.Hour, throttle.Day, throttle.Month} {
			if n, ok := l[action][w]; ok {
				windows = append(windows, fmt.Sprintf("%s:%d", w, n))
			}
		}
		parts = append(parts, action+"{"+strings.Join(windows, " ")+"}")
	}
	return strings.Join(parts, ", ")
}
