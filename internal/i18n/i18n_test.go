package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Lang
		ok   bool
	}{
		{"en", En, true},
		{"English", En, true},
		{"zh", Zh, true},
		{"cn", Zh, true},
		{"Chinese", Zh, true},
		{"中文", Zh, true},
		{" zh ", Zh, true},
		{"fr", En, false},
		{"", En, false},
	}
	for _, tt := range tests {
		got, ok := Parse(tt.in)
		assert.Equal(t, tt.ok, ok, "Parse(%q)", tt.in)
		assert.Equal(t, tt.want, got, "Parse(%q)", tt.in)
	}
}

func TestT(t *testing.T) {
	assert.Equal(t, "Hello", En.T("Hello", "你好"))
	assert.Equal(t, "你好", Zh.T("Hello", "你好"))
}

func TestResolvePriority(t *testing.T) {
	t.Setenv("OPENTUNNEL_LANG", "zh")
	t.Setenv("LANG", "en_US.UTF-8")

	assert.Equal(t, En, Resolve("en", "zh"), "CLI flag wins")
	assert.Equal(t, Zh, Resolve("", "en"), "env beats config")

	t.Setenv("OPENTUNNEL_LANG", "")
	assert.Equal(t, Zh, Resolve("", "zh"), "config beats locale")
	assert.Equal(t, En, Resolve("", ""))

	t.Setenv("LANG", "zh_CN.UTF-8")
	assert.Equal(t, Zh, Resolve("", ""), "locale fallback")
}
