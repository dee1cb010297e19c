package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ErrorKind classifies a failed fetch.
type ErrorKind string

const (
	// KindHTTPError is a response with status >= 400.
	KindHTTPError ErrorKind = "HTTPError"
	// KindRequestException is a transport-level failure (DNS, connect, timeout, bad body).
	KindRequestException ErrorKind = "RequestException"
)

// ErrorRecord stands in for a response body whenever a fetch fails, so that
// the report keeps a value at every position and aggregation treats it as absent.
type ErrorRecord struct {
	Kind       ErrorKind `json:"error" yaml:"error"`
	StatusCode int       `json:"status_code,omitempty" yaml:"status_code,omitempty"`
	Details    string    `json:"details" yaml:"details"`
}

// Error implements the error interface.
func (e *ErrorRecord) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %d: %s", e.Kind, e.StatusCode, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Details)
}

// Result is the outcome of one fetch: a decoded JSON body or an ErrorRecord.
// Exactly one of Body and Err is meaningful; Err takes precedence.
type Result struct {
	Body any
	Err  *ErrorRecord
}

// OK returns a successful Result.
func OK(body any) Result {
	return Result{Body: body}
}

// Failed returns a Result carrying an error record.
func Failed(kind ErrorKind, statusCode int, details string) Result {
	return Result{Err: &ErrorRecord{Kind: kind, StatusCode: statusCode, Details: details}}
}

// Failed reports whether the fetch produced an error record.
func (r Result) Failed() bool {
	return r.Err != nil
}

// Value returns the body for navigation. Error records navigate as absent.
func (r Result) Value() Value {
	if r.Err != nil {
		return Value{}
	}
	return V(r.Body)
}

// MarshalJSON writes the body, or the error record in its place.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Err != nil {
		return marshalJSON(r.Err)
	}
	return marshalJSON(r.Body)
}

// UnmarshalJSON restores a Result written by MarshalJSON. Objects whose "error"
// key names a known ErrorKind decode as error records.
func (r *Result) UnmarshalJSON(data []byte) error {
	body, err := decodeJSON(data)
	if err != nil {
		return err
	}
	if rec, ok := asErrorRecord(body); ok {
		*r = Result{Err: rec}
		return nil
	}
	*r = Result{Body: body}
	return nil
}

// MarshalYAML emits the same shape as MarshalJSON with numbers converted to
// native YAML scalars.
func (r Result) MarshalYAML() (any, error) {
	if r.Err != nil {
		return r.Err, nil
	}
	return plain(r.Body), nil
}

func asErrorRecord(body any) (*ErrorRecord, bool) {
	obj, ok := body.(map[string]any)
	if !ok {
		return nil, false
	}
	kind, _ := obj["error"].(string)
	switch ErrorKind(kind) {
	case KindHTTPError, KindRequestException:
	default:
		return nil, false
	}
	rec := &ErrorRecord{
		Kind:       ErrorKind(kind),
		StatusCode: int(V(obj["status_code"]).Int()),
		Details:    V(obj["details"]).String(""),
	}
	return rec, true
}

// decodeJSON decodes data into generic values, keeping numbers as json.Number.
func decodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// marshalJSON encodes v like json.Marshal but leaves <, > and & as they are,
// so HTML error pages from proxies are stored readable.
func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// plain converts json.Number leaves to int64 or float64.
func plain(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = plain(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = plain(e)
		}
		return out
	default:
		return v
	}
}
