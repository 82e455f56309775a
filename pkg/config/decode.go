package config

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// escapedEquals is how '=' survives being embedded in a double-quoted,
// shell-escaped positional argument upstream.
const escapedEquals = "&equals;"

// decodeBase64Payload strips the surrounding double quotes a positional
// argument arrives wrapped in, restores literal '=' padding, and
// base64-decodes the result. It is the shared first half of both the
// flat and the nested decode pipelines.
func decodeBase64Payload(raw string) ([]byte, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, `"`)
	s = strings.TrimSuffix(s, `"`)
	s = strings.ReplaceAll(s, escapedEquals, "=")

	if s == "" {
		return nil, nil
	}

	decoded, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("base64 decode: %w", err)
	}
	return decoded, nil
}

// DecodeJVMOpts decodes the flat instance_jvm_opts positional argument:
// strip quotes, un-escape '=', base64-decode.
func DecodeJVMOpts(raw string) (string, error) {
	decoded, err := decodeBase64Payload(raw)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

// DecodeComponentJVMOpts decodes the component_jvm_opts positional
// argument: strip quotes, un-escape '=', base64-decode, JSON-parse into
// a component-name -> opts map whose keys and values are themselves
// base64-encoded, and decode each of those in turn.
func DecodeComponentJVMOpts(raw string) (map[string]string, error) {
	decoded, err := decodeBase64Payload(raw)
	if err != nil {
		return nil, err
	}
	if len(decoded) == 0 {
		return map[string]string{}, nil
	}

	var encoded map[string]string
	if err := json.Unmarshal(decoded, &encoded); err != nil {
		return nil, fmt.Errorf("json unmarshal component opts: %w", err)
	}

	result := make(map[string]string, len(encoded))
	for k, v := range encoded {
		component, err := base64.StdEncoding.DecodeString(k)
		if err != nil {
			return nil, fmt.Errorf("base64 decode component name %q: %w", k, err)
		}
		opts, err := base64.StdEncoding.DecodeString(v)
		if err != nil {
			return nil, fmt.Errorf("base64 decode opts for %q: %w", component, err)
		}
		result[string(component)] = string(opts)
	}

	return result, nil
}

// ParseComponentRAMMap parses "comp:bytes,comp:bytes,..." into a
// component-name -> byte-count map.
func ParseComponentRAMMap(raw string) (map[string]int64, error) {
	result := map[string]int64{}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return result, nil
	}

	for _, entry := range strings.Split(raw, ",") {
		parts := strings.SplitN(entry, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("component_ram_map: malformed entry %q", entry)
		}
		bytes, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("component_ram_map: %q: %w", entry, err)
		}
		result[parts[0]] = bytes
	}

	return result, nil
}
