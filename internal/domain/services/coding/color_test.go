package coding

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHexColor(t *testing.T) {
	tests := []struct {
		value string
		valid bool
	}{
		{"", true},
		{"#3B82F6", true},
		{"#abc", true},
		{"3B82F6", false},
		{"#3B82F", false},
		{"blue", false},
		{"#GGGGGG", false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			err := HexColor.Validate(tt.value)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}

	color := "3B82F6"
	assert.Error(t, HexColor.Validate(&color))
	var missing *string
	assert.NoError(t, HexColor.Validate(missing))
}
