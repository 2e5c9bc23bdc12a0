package library

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFirstNonEmpty(t *testing.T) {
	cases := map[string]struct {
		input    []string
		expected string
	}{
		"none":       {input: nil, expected: ""},
		"all blank":  {input: []string{"", "  ", "\t"}, expected: ""},
		"first":      {input: []string{"a", "b"}, expected: "a"},
		"skip blank": {input: []string{" ", "b"}, expected: "b"},
		"trimmed":    {input: []string{"  c  "}, expected: "c"},
	}

	for name, tc := range cases {
		if got := FirstNonEmpty(tc.input...); got != tc.expected {
			t.Fatalf("%s: expected %q, got %q", name, tc.expected, got)
		}
	}
}

func TestTruncateForLog(t *testing.T) {
	got, truncated := TruncateForLog([]byte("abcdef"), 3)
	require.Equal(t, "abc", got)
	require.True(t, truncated)

	got, truncated = TruncateForLog([]byte("ab"), 3)
	require.Equal(t, "ab", got)
	require.False(t, truncated)
}

func TestHTMLToText(t *testing.T) {
	require.Equal(t, "plain text", HTMLToText("  plain text "))
	require.Equal(t, "climate resilience in cities",
		HTMLToText(`<span class="searchword">climate</span> resilience <b>in</b>  cities`))
	require.Equal(t, "R&D", HTMLToText("R&amp;D"))
}

func TestFlexStringUnmarshal(t *testing.T) {
	var v struct {
		A FlexString `json:"a"`
		B FlexString `json:"b"`
		C FlexString `json:"c"`
		D FlexString `json:"d"`
		E FlexString `json:"e"`
	}

	err := json.Unmarshal([]byte(`{"a":"2019","b":2024,"c":null,"d":["", "eng"],"e":{"x":1}}`), &v)
	require.NoError(t, err)
	require.Equal(t, "2019", v.A.String())
	require.Equal(t, "2024", v.B.String())
	require.Equal(t, "", v.C.String())
	require.Equal(t, "eng", v.D.String())
	require.Equal(t, "", v.E.String())
}

func TestFlexStringsUnmarshal(t *testing.T) {
	var v struct {
		List   FlexStrings `json:"list"`
		Scalar FlexStrings `json:"scalar"`
		Mixed  FlexStrings `json:"mixed"`
		Null   FlexStrings `json:"null"`
	}

	err := json.Unmarshal([]byte(`{"list":["X","Y"],"scalar":"Z","mixed":[1," ",{"a":1},"W"],"null":null}`), &v)
	require.NoError(t, err)
	require.Equal(t, "X, Y", v.List.Join(", "))
	require.Equal(t, "X", v.List.First())
	require.Equal(t, FlexStrings{"Z"}, v.Scalar)
	require.Equal(t, FlexStrings{"1", "W"}, v.Mixed)
	require.Empty(t, v.Null)
	require.Equal(t, "", v.Null.First())
}
