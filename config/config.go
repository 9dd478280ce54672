package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/holiman/uint256"

	"posttree/native/post"
)

// Config is the daemon configuration.
type Config struct {
	RPCAddress     string     `toml:"RPCAddress"`
	MetricsAddress string     `toml:"MetricsAddress"`
	DataDir        string     `toml:"DataDir"`
	Environment    string     `toml:"Environment"`
	Post           PostConfig `toml:"post"`
}

// PostConfig seeds the post on first boot.
type PostConfig struct {
	Denom        string    `toml:"Denom"`
	Operator     string    `toml:"Operator"`
	FeeRecipient string    `toml:"FeeRecipient"`
	RootTitle    string    `toml:"RootTitle"`
	RootBody     string    `toml:"RootBody"`
	RootTags     []string  `toml:"RootTags"`
	Fees         FeeConfig `toml:"fees"`
}

// FeeConfig mirrors post.FeeParams with plain integers for TOML. TipPct is
// parts per million.
type FeeConfig struct {
	Creation uint64 `toml:"Creation"`
	Reaction uint64 `toml:"Reaction"`
	Link     uint64 `toml:"Link"`
	Text     uint64 `toml:"Text"`
	Tag      uint64 `toml:"Tag"`
	TipPct   uint64 `toml:"TipPct"`
}

// Load reads the configuration at path, creating a default file when none
// exists yet.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}
	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	applyDefaults(cfg)
	return cfg, nil
}

// PostConfig converts the seed section into the engine's config type.
func (c *Config) EngineConfig() post.Config {
	return post.Config{
		Denom:        c.Post.Denom,
		FeeRecipient: post.Address(strings.TrimSpace(c.Post.FeeRecipient)),
		Fees: post.FeeParams{
			Creation: uint256.NewInt(c.Post.Fees.Creation),
			Reaction: uint256.NewInt(c.Post.Fees.Reaction),
			Link:     uint256.NewInt(c.Post.Fees.Link),
			Text:     uint256.NewInt(c.Post.Fees.Text),
			Tag:      uint256.NewInt(c.Post.Fees.Tag),
			TipPct:   uint256.NewInt(c.Post.Fees.TipPct),
		},
	}
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.RPCAddress) == "" {
		cfg.RPCAddress = "127.0.0.1:8645"
	}
	if strings.TrimSpace(cfg.MetricsAddress) == "" {
		cfg.MetricsAddress = "127.0.0.1:9645"
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = "./posttree-data"
	}
	if strings.TrimSpace(cfg.Post.Denom) == "" {
		cfg.Post.Denom = "upost"
	}
	if strings.TrimSpace(cfg.Post.RootTitle) == "" {
		cfg.Post.RootTitle = "root"
	}
}

func createDefault(path string) (*Config, error) {
	cfg := &Config{}
	applyDefaults(cfg)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create config dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create default config %s: %w", path, err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return nil, fmt.Errorf("write default config %s: %w", path, err)
	}
	return cfg, nil
}
