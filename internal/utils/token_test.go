package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeToken(t *testing.T) {
	cases := map[string]string{
		"Boliña el Viejo": "boli_a_el_viejo",
		"Casa Pepe":       "casa_pepe",
		"ABC123":          "abc123",
		"a-b.c/d":         "a_b_c_d",
		"":                "",
	}
	for in, want := range cases {
		assert.Equal(t, want, SafeToken(in), in)
	}
}
