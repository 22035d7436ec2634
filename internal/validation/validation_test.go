package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"localhost", "http://localhost:3000/", false},
		{"https with base", "https://docs.example.com/acme/", false},
		{"ipv6", "http://[::1]:3000/", false},
		{"file scheme", "file:///etc/passwd", true},
		{"javascript scheme", "javascript:alert(1)", true},
		{"command injection", "http://localhost:3000/;rm -rf /", true},
		{"backticks", "http://localhost/`id`", true},
		{"spaces", "http://localhost/a b", true},
		{"no host", "http:///path", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidURL)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateTagName(t *testing.T) {
	valid := []string{"button-preview", "ui-button", "preview-3f2a9c", "x-a.b_c", "my-el-"}
	for _, name := range valid {
		assert.NoError(t, ValidateTagName(name), name)
	}

	invalid := []string{"button", "", "Button-preview", "1-button", "-button", "ui button", "font-face", "ui-Button"}
	for _, name := range invalid {
		assert.ErrorIs(t, ValidateTagName(name), ErrInvalidTagName, name)
	}
}
