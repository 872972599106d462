package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Settings reads per-participant settings. A value under players.<slot>.<name>
// overrides the global <name>; unset keys yield the caller's default.
type Settings struct{}

func (Settings) key(slot int, name string) (string, bool) {
	if k := fmt.Sprintf("players.%d.%s", slot, name); viper.IsSet(k) {
		return k, true
	}
	if viper.IsSet(name) {
		return name, true
	}
	return "", false
}

func (s Settings) Int(slot int, name string, def int) int {
	if k, ok := s.key(slot, name); ok {
		return viper.GetInt(k)
	}
	return def
}

func (s Settings) Bool(slot int, name string, def bool) bool {
	if k, ok := s.key(slot, name); ok {
		return viper.GetBool(k)
	}
	return def
}

func (s Settings) Float(slot int, name string, def float64) float64 {
	if k, ok := s.key(slot, name); ok {
		return viper.GetFloat64(k)
	}
	return def
}

func (s Settings) String(slot int, name string, def string) string {
	if k, ok := s.key(slot, name); ok {
		return viper.GetString(k)
	}
	return def
}
