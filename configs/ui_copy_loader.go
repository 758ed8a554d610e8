package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// UICopyConfig はui_copy.yamlの構造を定義
type UICopyConfig struct {
	Widget struct {
		Greeting          string `yaml:"greeting"`
		StatusAvailable   string `yaml:"status_available"`
		StatusUnavailable string `yaml:"status_unavailable"`
		ConnectionFailure string `yaml:"connection_failure"`
		FallbackNotice    string `yaml:"fallback_notice"`
	} `yaml:"widget"`

	Dashboard struct {
		DefaultEvent   string `yaml:"default_event"`
		DefaultWeather string `yaml:"default_weather"`
		RangeDays      int    `yaml:"range_days"`
	} `yaml:"dashboard"`
}

// DefaultUICopy はファイルが無い場合に使用する文言とデフォルト値
func DefaultUICopy() *UICopyConfig {
	var c UICopyConfig
	c.applyDefaults()
	return &c
}

// LoadUICopy はYAMLファイルから文言を読み込み、未設定の項目はデフォルト値で補完する
func LoadUICopy(path string) (*UICopyConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("UI文言設定ファイルの読み込みに失敗: %w", err)
	}

	var c UICopyConfig
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("YAMLのパースに失敗: %w", err)
	}

	c.applyDefaults()
	return &c, nil
}

func (c *UICopyConfig) applyDefaults() {
	if c.Widget.Greeting == "" {
		c.Widget.Greeting = "Hi! I'm the dining hall assistant. Ask me about staffing, weather or upcoming events."
	}
	if c.Widget.StatusAvailable == "" {
		c.Widget.StatusAvailable = "AI assistant online"
	}
	if c.Widget.StatusUnavailable == "" {
		c.Widget.StatusUnavailable = "AI assistant unavailable - basic mode"
	}
	if c.Widget.ConnectionFailure == "" {
		c.Widget.ConnectionFailure = "Sorry, I'm having trouble connecting right now. Please try again in a moment."
	}
	if c.Widget.FallbackNotice == "" {
		c.Widget.FallbackNotice = "The AI assistant is running in fallback mode, so responses may be limited."
	}
	if c.Dashboard.DefaultEvent == "" {
		c.Dashboard.DefaultEvent = "regular_day"
	}
	if c.Dashboard.DefaultWeather == "" {
		c.Dashboard.DefaultWeather = "sunny"
	}
	if c.Dashboard.RangeDays <= 0 {
		c.Dashboard.RangeDays = 7
	}
}
