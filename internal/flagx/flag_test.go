package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		allowedFlags []string
		want         []string
	}{
		{
			name:         "separate value",
			args:         []string{"-d", "postgres://x", "-a", ":8080"},
			allowedFlags: []string{"-d"},
			want:         []string{"-d", "postgres://x"},
		},
		{
			name:         "equals form",
			args:         []string{"-n=20", "-a", ":8080"},
			allowedFlags: []string{"-n"},
			want:         []string{"-n=20"},
		},
		{
			name:         "unknown flags ignored",
			args:         []string{"-x", "1", "--y=2", "positional"},
			allowedFlags: []string{"-c"},
			want:         []string{},
		},
		{
			name:         "trailing flag without value",
			args:         []string{"-c"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c"},
		},
		{
			name:         "next flag is not a value",
			args:         []string{"-c", "-m", "memory"},
			allowedFlags: []string{"-c", "-m"},
			want:         []string{"-c", "-m", "memory"},
		},
		{
			name:         "repeated flag keeps order",
			args:         []string{"-c", "one.json", "-c", "two.json"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c", "one.json", "-c", "two.json"},
		},
		{
			name:         "empty",
			args:         []string{},
			allowedFlags: []string{"-c"},
			want:         []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowedFlags))
		})
	}
}

func TestConfigFilePath(t *testing.T) {
	assert.Equal(t, "/etc/followhub.json", ConfigFilePath([]string{"-c", "/etc/followhub.json"}))
	assert.Equal(t, "/tmp/a.json", ConfigFilePath([]string{"-a", ":8080", "-config", "/tmp/a.json"}))
	assert.Equal(t, "/tmp/2.json", ConfigFilePath([]string{"-c", "/tmp/1.json", "-config=/tmp/2.json"}))
	assert.Empty(t, ConfigFilePath([]string{"-m", "memory"}))
}

func TestPositional(t *testing.T) {
	known := []string{"-a", "-f", "-c"}

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{name: "no flags", args: []string{"follow", "abc"}, want: []string{"follow", "abc"}},
		{name: "flags before command", args: []string{"-a", "host:1", "-f=s.db", "feed", "2"}, want: []string{"feed", "2"}},
		{name: "flags after command", args: []string{"whoami", "-c", "cfg.json"}, want: []string{"whoami"}},
		{name: "unknown flag kept", args: []string{"-x", "ping"}, want: []string{"-x", "ping"}},
		{name: "empty", args: nil, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Positional(tt.args, known))
		})
	}
}
