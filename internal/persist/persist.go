// Package persist writes a collected Report to disk and reads it back.
package persist

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dm/ecemon/internal/model"
)

// Format is an output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ErrUnknownFormat is returned by ParseFormat for unsupported encodings.
var ErrUnknownFormat = errors.New("unknown output format")

// ParseFormat accepts "json", "yaml" or "yml", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w %q (want json or yaml)", ErrUnknownFormat, s)
	}
}

// Encode serialises report. JSON output is indented by four spaces and keeps
// non-ASCII and HTML characters unescaped.
func Encode(report *model.Report, f Format) ([]byte, error) {
	switch f {
	case FormatJSON, "":
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "    ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(report); err != nil {
			return nil, fmt.Errorf("encode report as json: %w", err)
		}
		return buf.Bytes(), nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(4)
		if err := enc.Encode(report); err != nil {
			return nil, fmt.Errorf("encode report as yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode report as yaml: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownFormat, f)
	}
}

// Write encodes report and writes it to path, replacing any existing file.
func Write(path string, report *model.Report, f Format) error {
	data, err := Encode(report, f)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report to %s: %w", path, err)
	}
	return nil
}

// Read loads a JSON report written by Write.
func Read(path string) (*model.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report %s: %w", path, err)
	}
	return Decode(data)
}

// Decode parses a JSON report. Numbers are kept as json.Number so a decoded
// report equals the one that was written.
func Decode(data []byte) (*model.Report, error) {
	report := model.NewReport()
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(report); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	if report.Deployments == nil {
		report.Deployments = []*model.Deployment{}
	}
	return report, nil
}
