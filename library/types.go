package library

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/Laisky/errors/v2"
)

// FlexString is a string that tolerates loosely typed JSON.
//
// Upstream payloads (LLM output, discovery APIs) are not consistent about
// whether a value is a string, a number, or a one-element list. FlexString
// accepts all of those and keeps the first non-empty scalar.
type FlexString string

// String returns the trimmed value.
func (s FlexString) String() string {
	return strings.TrimSpace(string(s))
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}

	if data[0] == '[' {
		var list FlexStrings
		if err := json.Unmarshal(data, &list); err != nil {
			return errors.Wrap(err, "decode list value")
		}
		*s = FlexString(list.First())
		return nil
	}

	v, err := scalarToString(data)
	if err != nil {
		return err
	}
	*s = FlexString(v)
	return nil
}

// FlexStrings is a string list that also accepts a single scalar.
type FlexStrings []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *FlexStrings) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}

	if data[0] != '[' {
		v, err := scalarToString(data)
		if err != nil {
			return err
		}
		if v == "" {
			*l = nil
			return nil
		}
		*l = FlexStrings{v}
		return nil
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return errors.Wrap(err, "decode list")
	}

	out := make(FlexStrings, 0, len(raws))
	for _, raw := range raws {
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 || raw[0] == '[' || raw[0] == '{' {
			// nested structures carry no displayable scalar
			continue
		}
		v, err := scalarToString(raw)
		if err != nil {
			return err
		}
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}

	*l = out
	return nil
}

// First returns the first non-empty element, or "".
func (l FlexStrings) First() string {
	for _, v := range l {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// Join concatenates the non-empty elements with sep.
func (l FlexStrings) Join(sep string) string {
	parts := make([]string, 0, len(l))
	for _, v := range l {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, sep)
}

func scalarToString(data []byte) (string, error) {
	switch data[0] {
	case '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return "", errors.Wrap(err, "decode string value")
		}
		return strings.TrimSpace(v), nil
	case '{':
		return "", nil
	case 't', 'f':
		var v bool
		if err := json.Unmarshal(data, &v); err != nil {
			return "", errors.Wrap(err, "decode bool value")
		}
		return strconv.FormatBool(v), nil
	default:
		var v json.Number
		if err := json.Unmarshal(data, &v); err != nil {
			return "", errors.Wrapf(err, "decode scalar %q", string(data))
		}
		return v.String(), nil
	}
}
