package config

import (
	"fmt"
	"os"

	"github.com/go-yaml/yaml"
)

type Config struct {
	Server   Server   `yaml:"server"`
	Provider Provider `yaml:"provider"`
	Crypto   Crypto   `yaml:"crypto"`
}

type Server struct {
	Listen        string `yaml:"listen"`
	PostgresDsn   string `yaml:"postgresDsn"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisDB       int    `yaml:"redisDB"`
	EnableTrace   bool   `yaml:"enableTrace"`
	TraceEndpoint string `yaml:"traceEndpoint"`
}

type Provider struct {
	Endpoint   string   `yaml:"endpoint"`
	APIKey     string   `yaml:"apikey"`
	Buckets    []string `yaml:"buckets"`
	MaxResults int      `yaml:"maxResults"`

	// Provider-imposed rate limits, in seconds: pause after the search call
	// and after every content fetch.
	SearchDelaySeconds int `yaml:"searchDelaySeconds"`
	FetchDelaySeconds  int `yaml:"fetchDelaySeconds"`

	// Raw lines longer than this are treated as malformed and skipped.
	MaxLineLength int `yaml:"maxLineLength"`
}

type Crypto struct {
	Passphrase string `yaml:"passphrase"`
	KDFSalt    string `yaml:"kdfSalt"`
	IndexSalt  string `yaml:"indexSalt"`
}

func Load(path string) (Config, error) {

	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	err = yaml.NewDecoder(file).Decode(&config)
	if err != nil {
		return Config{}, err
	}

	if config.Crypto.Passphrase == "" {
		return Config{}, fmt.Errorf("crypto.passphrase is required")
	}
	if config.Crypto.IndexSalt == "" {
		return Config{}, fmt.Errorf("crypto.indexSalt is required")
	}

	if config.Server.Listen == "" {
		config.Server.Listen = ":8000"
	}
	if config.Provider.SearchDelaySeconds == 0 {
		config.Provider.SearchDelaySeconds = 1
	}
	if config.Provider.FetchDelaySeconds == 0 {
		config.Provider.FetchDelaySeconds = 3
	}
	if config.Provider.MaxLineLength == 0 {
		config.Provider.MaxLineLength = 1024
	}
	if config.Provider.MaxResults == 0 {
		config.Provider.MaxResults = 100
	}
	if len(config.Provider.Buckets) == 0 {
		config.Provider.Buckets = DefaultBuckets
	}

	return config, nil
}

// DefaultBuckets is the provider-side source-category selection used when
// the config does not narrow it down.
var DefaultBuckets = []string{
	"leaks.public", "dumpster", "buckets", "pastespro", "darknet.tor",
	"darknet.i2p", "whois", "usenet", "leaks", "leaks.bro", "bot.logs",
	"wikileaks", "sci-hub",
}
