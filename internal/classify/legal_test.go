package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsLegal(t *testing.T) {
	cases := []struct {
		name string
		text string
		want bool
	}{
		{"whereas", "WHEREAS the lessor owns the premises", true},
		{"witness", "IN WITNESS WHEREOF the parties sign", true},
		{"agreement", "THIS AGREEMENT is made on", true},
		{"embedded", "preamble...WHEREAS...", true},
		{"lower case", "whereas the lessor", false},
		{"plain", "Meeting notes for Tuesday", false},
		{"empty", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsLegal(tc.text))
		})
	}
}
