package stove

import (
	"strconv"
	"strings"
)

// defaultErrorKeys are the params keys checked, in order, for the device
// error/result code. Firmware revisions disagree on the key name, so the
// list is configurable via WithErrorKeys.
var defaultErrorKeys = []string{"error", "err", "codigo", "code", "resultado", "result"}

// Response is the immutable result of one request-response exchange with
// the stove CGI endpoint.
type Response struct {
	// OperationID echoes the idOperacion value that was sent.
	OperationID int

	// StatusOK is true iff the device reported no error code (or an
	// explicit zero) and the body parsed into at least one key=value pair.
	StatusOK bool

	// ErrorCode is the non-zero device error code, or nil when the device
	// reported success or no code at all. StatusOK==true implies nil.
	ErrorCode *int

	// Params holds every parsed key=value line. Values are kept as strings
	// exactly as received (trimmed). Last occurrence wins on duplicates.
	Params map[string]string

	// Lines holds the non-empty, trimmed body lines in order, including
	// lines that did not parse as key=value. Useful for diagnostics and
	// tolerant handling of legacy firmware.
	Lines []string

	// Raw is the complete unmodified response body.
	Raw string
}

// Param returns the value for key, or def when the key is absent.
func (r *Response) Param(key, def string) string {
	if v, ok := r.Params[key]; ok {
		return v
	}
	return def
}

// IntParam returns the value for key parsed as an integer, or def when the
// key is absent or not numeric.
func (r *Response) IntParam(key string, def int) int {
	if v, ok := r.Params[key]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// FloatParam returns the value for key parsed as a float, or def when the
// key is absent or not numeric.
func (r *Response) FloatParam(key string, def float64) float64 {
	if v, ok := r.Params[key]; ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

// parseResponse converts a raw CGI body into a Response. It is a pure
// function of its inputs: the same body always yields the same result.
//
// Malformed lines are tolerated and retained in Lines; the whole body only
// fails (protocol error) when it is empty or when not a single line parses
// as key=value.
func parseResponse(operationID int, raw string, errorKeys []string) (*Response, error) {
	if raw == "" {
		return nil, NewProtocolError("empty response body", nil)
	}

	var lines []string
	for _, ln := range strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n") {
		ln = strings.TrimSpace(ln)
		if ln != "" {
			lines = append(lines, ln)
		}
	}

	params := make(map[string]string, len(lines))
	for _, ln := range lines {
		k, v, ok := strings.Cut(ln, "=")
		if !ok {
			continue
		}
		k = strings.TrimSpace(k)
		if k != "" {
			params[k] = strings.TrimSpace(v)
		}
	}

	// A nonempty body with zero parseable lines is structurally
	// unrecognizable, which is distinct from a body that parses but
	// signals a device error.
	if len(params) == 0 {
		return nil, NewProtocolError("no key=value line in response body", nil)
	}

	errorCode := findErrorCode(lines, params, errorKeys)

	resp := &Response{
		OperationID: operationID,
		StatusOK:    true,
		Params:      params,
		Lines:       lines,
		Raw:         raw,
	}
	if errorCode != nil && *errorCode != 0 {
		resp.StatusOK = false
		resp.ErrorCode = errorCode
	}
	return resp, nil
}

// findErrorCode looks for an integer error/result code under the
// configured keys, then falls back to a standalone integer line, which
// some firmware versions emit instead of a keyed code.
func findErrorCode(lines []string, params map[string]string, errorKeys []string) *int {
	if len(errorKeys) == 0 {
		errorKeys = defaultErrorKeys
	}
	for _, key := range errorKeys {
		if v, ok := params[key]; ok {
			if n, err := strconv.Atoi(v); err == nil {
				return &n
			}
			// Non-numeric value under an error key: keep searching.
		}
	}
	for _, ln := range lines {
		if strings.Contains(ln, "=") {
			continue
		}
		if n, err := strconv.Atoi(ln); err == nil {
			return &n
		}
	}
	return nil
}
