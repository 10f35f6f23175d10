package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/paradim/paradoid/datacite"
	"github.com/paradim/paradoid/orcid"
)

// Configuration is used to store and pass the configuration settings
// throughout the service.
type Configuration struct {
	// Port for the service to listen on
	Port uint16 `yaml:"port"`
	// Debug enables debug logging
	Debug bool `yaml:"debug"`
	// Publisher written into every assembled document
	Publisher string `yaml:"publisher"`
	// LandingBase is the URL prefix of the dataset landing pages
	LandingBase string `yaml:"landingbase"`
	// Assets is the directory with the static files of the form
	Assets string `yaml:"assets"`
	// Timeout for requests to the external services
	Timeout time.Duration `yaml:"timeout"`
	// DataCite REST API account used for minting
	DataCite struct {
		URL      string `yaml:"url"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		Prefix   string `yaml:"prefix"`
	} `yaml:"datacite"`
	// ORCID public API
	ORCID struct {
		URL string `yaml:"url"`
		// RateLimit in requests per second; 0 disables pacing
		RateLimit float64 `yaml:"ratelimit"`
	} `yaml:"orcid"`
}

// defaultConfig returns the configuration used when nothing is set.
func defaultConfig() *Configuration {
	cfg := &Configuration{
		Port:        8080,
		Publisher:   datacite.DefaultPublisher,
		LandingBase: datacite.DefaultLandingBase,
		Assets:      "assets",
		Timeout:     30 * time.Second,
	}
	cfg.DataCite.URL = datacite.APIURL
	cfg.ORCID.URL = orcid.BaseURL
	cfg.ORCID.RateLimit = orcid.RateLimit
	return cfg
}

// readConf returns the value of an environment variable.
func readConf(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

// readConfDefault returns the value of an environment variable or the
// default if it is not set.
func readConfDefault(key, defval string) string {
	if value := readConf(key); value != "" {
		return value
	}
	return defval
}

// loadconfig reads the configuration. Defaults are overridden by the YAML file
// at cfgpath (if given), which in turn is overridden by environment variables.
// Environment variables are also read from envpath, or from .env in the
// working directory if envpath is empty and the file exists.
func loadconfig(cfgpath, envpath string) (*Configuration, error) {
	cfg := defaultConfig()

	if cfgpath != "" {
		contents, err := readFileAtPath(cfgpath)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.UnmarshalStrict(contents, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %q: %w", cfgpath, err)
		}
	}

	if envpath != "" {
		if err := godotenv.Load(envpath); err != nil {
			return nil, fmt.Errorf("reading env file: %w", err)
		}
	} else if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			log.WithFields(log.Fields{
				"source": lpConfig,
				"error":  err,
			}).Warn("Could not load .env file")
		}
	}

	cfg.DataCite.URL = readConfDefault("DATACITE_API_URL", cfg.DataCite.URL)
	cfg.DataCite.Username = readConfDefault("DATACITE_USERNAME", cfg.DataCite.Username)
	cfg.DataCite.Password = readConfDefault("DATACITE_PASSWORD", cfg.DataCite.Password)
	cfg.DataCite.Prefix = readConfDefault("DATACITE_PREFIX", cfg.DataCite.Prefix)
	cfg.ORCID.URL = readConfDefault("ORCID_API_URL", cfg.ORCID.URL)
	cfg.Publisher = readConfDefault("PARADOID_PUBLISHER", cfg.Publisher)
	cfg.LandingBase = readConfDefault("PARADOID_LANDINGBASE", cfg.LandingBase)
	cfg.Assets = readConfDefault("PARADOID_ASSETS", cfg.Assets)

	if portstr := readConf("PARADOID_PORT"); portstr != "" {
		port, err := strconv.ParseUint(portstr, 10, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid port %q: %w", portstr, err)
		}
		cfg.Port = uint16(port)
	}

	if debugstr := readConf("PARADOID_DEBUG"); debugstr != "" {
		debug, err := strconv.ParseBool(debugstr)
		if err != nil {
			log.WithFields(log.Fields{
				"source": lpConfig,
				"value":  debugstr,
			}).Warn("Error while parsing PARADOID_DEBUG; using default")
		} else {
			cfg.Debug = debug
		}
	}

	if ratestr := readConf("ORCID_RATE_LIMIT"); ratestr != "" {
		rate, err := strconv.ParseFloat(ratestr, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ORCID rate limit %q: %w", ratestr, err)
		}
		cfg.ORCID.RateLimit = rate
	}

	if cfg.Port == 0 {
		return nil, fmt.Errorf("invalid port 0")
	}

	return cfg, nil
}

// missingMintSettings returns the names of the settings required for minting
// that are not set. The slice is empty if minting is possible.
func (cfg *Configuration) missingMintSettings() []string {
	missing := make([]string, 0, 3)
	if cfg.DataCite.Username == "" {
		missing = append(missing, "DATACITE_USERNAME")
	}
	if cfg.DataCite.Password == "" {
		missing = append(missing, "DATACITE_PASSWORD")
	}
	if cfg.DataCite.Prefix == "" {
		missing = append(missing, "DATACITE_PREFIX")
	}
	return missing
}

// hidden returns a copy of the configuration that is safe to print.
func (cfg Configuration) hidden() Configuration {
	if cfg.DataCite.Password != "" {
		cfg.DataCite.Password = "[HIDDEN]"
	}
	return cfg
}

// newDataCiteClient sets up the minting client for the configured account.
func (cfg *Configuration) newDataCiteClient() *datacite.Client {
	client := datacite.NewClient(cfg.DataCite.URL, cfg.DataCite.Username, cfg.DataCite.Password, cfg.DataCite.Prefix)
	client.SetHTTPClient(newHTTPClient(cfg.Timeout))
	return client
}

// newORCIDClient sets up the ORCID lookup client.
func (cfg *Configuration) newORCIDClient() *orcid.Client {
	return orcid.NewClient(
		orcid.WithBaseURL(cfg.ORCID.URL),
		orcid.WithRateLimit(cfg.ORCID.RateLimit),
		orcid.WithHTTPClient(newHTTPClient(cfg.Timeout)),
	)
}
