package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	p := &Prompt{
		Name:    "verification",
		Content: `Orientation {orientation}.{text_check}` + "\n" + `{"pass": bool, {text_field}"issues": []}`,
	}

	tests := []struct {
		name string
		vars map[string]string
		want string
	}{
		{
			name: "no vars",
			vars: nil,
			want: p.Content,
		},
		{
			name: "all tokens",
			vars: map[string]string{
				"orientation": "standing",
				"text_check":  ` Text "ACME" intact?`,
				"text_field":  `"text_ok": bool, `,
			},
			want: `Orientation standing. Text "ACME" intact?` + "\n" + `{"pass": bool, "text_ok": bool, "issues": []}`,
		},
		{
			name: "missing token kept",
			vars: map[string]string{"orientation": "flat_lay"},
			want: `Orientation flat_lay.{text_check}` + "\n" + `{"pass": bool, {text_field}"issues": []}`,
		},
		{
			name: "empty replacement",
			vars: map[string]string{"orientation": "angled", "text_check": "", "text_field": ""},
			want: `Orientation angled.` + "\n" + `{"pass": bool, "issues": []}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Render(tt.vars))
		})
	}
}
