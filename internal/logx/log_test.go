package logx_test

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/ethshell/ethshell/internal/logx"
)

func TestConfigureLogLevel(t *testing.T) {
	cases := []struct {
		in   string
		want zerolog.Level
	}{
		{"all", zerolog.TraceLevel},
		{"WARNING", zerolog.WarnLevel},
		{" error ", zerolog.ErrorLevel},
		{"none", zerolog.Disabled},
		{"bogus", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}
	for _, c := range cases {
		logx.Configure(c.in)
		if got := zerolog.GlobalLevel(); got != c.want {
			t.Errorf("Configure(%q): global level %s, want %s", c.in, got, c.want)
		}
	}
}
