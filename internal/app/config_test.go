package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	testCases := []struct {
		name    string
		in      Config
		want    Config
		wantErr string
	}{
		{
			name: "defaults",
			in:   Config{},
			want: Config{Profile: "fedora", LogFormat: "text", LogLevel: "info"},
		},
		{
			name: "normalizes case",
			in:   Config{Profile: "rhel", LogFormat: "JSON", LogLevel: "Debug"},
			want: Config{Profile: "rhel", LogFormat: "json", LogLevel: "debug"},
		},
		{
			name: "remote user defaults to root",
			in:   Config{RemoteHost: "builder.example.com", SSHKey: "/keys/id_rsa"},
			want: Config{
				Profile: "fedora", LogFormat: "text", LogLevel: "info",
				RemoteHost: "builder.example.com", RemoteUser: "root", SSHKey: "/keys/id_rsa",
			},
		},
		{name: "bad format", in: Config{LogFormat: "xml"}, wantErr: "invalid log-format"},
		{name: "bad level", in: Config{LogLevel: "trace"}, wantErr: "invalid log-level"},
		{name: "remote without key", in: Config{RemoteHost: "builder"}, wantErr: "requires an ssh key"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NewConfig(tc.in)
			if tc.wantErr != "" {
				require.ErrorContains(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, *got)
		})
	}
}
