package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tsingjyujing/fastlang/detect"
)

type Envelope struct {
	Server   Server   `yaml:"server"`
	Detector Detector `yaml:"detector"`
}

type Server struct {
	Address string   `yaml:"address"`
	Tokens  []string `yaml:"tokens"`
}

// Detector mirrors detect.Config for the YAML config file. Pointer fields
// distinguish an absent key from an explicit false, so absent keeps the
// library default.
type Detector struct {
	CacheDir       string `yaml:"cache_dir"`
	CustomModel    string `yaml:"custom_model"`
	Proxy          string `yaml:"proxy"`
	VerifyHash     string `yaml:"verify_hash"`
	DisableVerify  bool   `yaml:"disable_verify"`
	AllowFallback  *bool  `yaml:"allow_fallback"`
	NormalizeInput *bool  `yaml:"normalize_input"`
	NormalizeCJK   bool   `yaml:"normalize_cjk"`
	MaxInputLength int    `yaml:"max_input_length"`
	DefaultTier    string `yaml:"default_tier"`
	MemoryBudgetMB int64  `yaml:"memory_budget_mb"`
}

func LoadConfigFromFile(path string) (*Envelope, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var envelope Envelope
	if err := yaml.Unmarshal(data, &envelope); err != nil {
		return nil, err
	}
	return &envelope, nil
}

// ToDetectConfig lowers the YAML section onto the library defaults.
func (d Detector) ToDetectConfig() (*detect.Config, error) {
	cfg := detect.DefaultConfig()
	if d.CacheDir != "" {
		cfg.CacheDir = d.CacheDir
	}
	cfg.CustomModelPath = d.CustomModel
	cfg.Proxy = d.Proxy
	cfg.VerifyHash = d.VerifyHash
	cfg.DisableVerify = d.DisableVerify
	if d.AllowFallback != nil {
		cfg.AllowFallback = *d.AllowFallback
	}
	if d.NormalizeInput != nil {
		cfg.NormalizeInput = *d.NormalizeInput
	}
	cfg.NormalizeCJK = d.NormalizeCJK
	cfg.MaxInputLength = d.MaxInputLength
	if d.DefaultTier != "" {
		tier, err := detect.ParseTier(d.DefaultTier)
		if err != nil {
			return nil, err
		}
		cfg.DefaultTier = tier
	}
	cfg.MemoryBudgetMB = d.MemoryBudgetMB
	return cfg, nil
}
