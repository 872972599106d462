// Package parser converts the raw argument vectors the host passes to the
// extension into typed events and objective requests.
package parser

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/OCAP2/objectives/internal/util"
)

// ErrMissingArgs is returned when a command carries fewer arguments than it needs.
var ErrMissingArgs = errors.New("missing arguments")

// parseUintFromFloat parses a string that may be an integer ("32") or float ("32.00") into uint64.
// The host scripting layer has no integer type, so numbers may arrive as floats.
func parseUintFromFloat(s string) (uint64, error) {
	if v, err := strconv.ParseUint(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f < 0 || f != float64(uint64(f)) {
		return 0, fmt.Errorf("parseUintFromFloat: %q is not a valid uint64", s)
	}
	return uint64(f), nil
}

// parseIntFromFloat parses a string that may be an integer or float into int64.
func parseIntFromFloat(s string) (int64, error) {
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != float64(int64(f)) {
		return 0, fmt.Errorf("parseIntFromFloat: %q is not a valid int64", s)
	}
	return int64(f), nil
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

func parseInt(s string) (int, error) {
	v, err := parseIntFromFloat(s)
	return int(v), err
}

// intOr parses s, returning def when s is empty.
func intOr(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	return parseInt(s)
}

// Parser provides pure []string -> typed struct conversion.
// It has zero external dependencies beyond a logger.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a new parser with only a logger dependency
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// clean fixes received data and checks the argument count.
func clean(data []string, need int) ([]string, error) {
	if len(data) < need {
		return nil, fmt.Errorf("%w: got %d, need %d", ErrMissingArgs, len(data), need)
	}
	out := make([]string, len(data))
	for i, v := range data {
		out[i] = util.CleanArg(v)
	}
	return out, nil
}

// arg returns data[i] or "" past the end.
func arg(data []string, i int) string {
	if i < len(data) {
		return strings.TrimSpace(data[i])
	}
	return ""
}
