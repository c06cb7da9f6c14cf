package commands

import (
	"listingscraper/internal/listing"
	"listingscraper/internal/runner"
	"listingscraper/lib/configutil"
	configlibsql "listingscraper/lib/configutil/libsql"
	"time"
)

type Config struct {
	BaseUrl   string `json:"base_url"`
	UserAgent string `json:"user_agent"`
	Cookie    string `json:"cookie"`
	// milliseconds
	Timeout int `json:"timeout"`
	// milliseconds waited after every pair
	Delay int `json:"delay"`

	LocationsFile  string `json:"locations_file"`
	CategoriesFile string `json:"categories_file"`
	OutputFile     string `json:"output_file"`

	// optional mirror of every appended row
	Database    configlibsql.Struct `json:"database"`
	HttpDumpDir string              `json:"http_dump_dir"`
}

func defaultConfig() Config {
	return Config{
		BaseUrl:        listing.DefaultBaseUrl,
		UserAgent:      listing.DefaultUserAgent,
		Cookie:         listing.DefaultCookie,
		Timeout:        int(listing.DefaultTimeout / time.Millisecond),
		Delay:          int(runner.DefaultDelay / time.Millisecond),
		LocationsFile:  "blinkit_locations.csv",
		CategoriesFile: "blinkit_categories.csv",
		OutputFile:     "output.csv",
	}
}

func (c Config) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Millisecond
}

func (c Config) DelayDuration() time.Duration {
	return time.Duration(c.Delay) * time.Millisecond
}

func loadConfig(path string) (Config, error) {
	return configutil.ReadWithDefaults(path, defaultConfig())
}
