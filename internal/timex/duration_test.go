package timex

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDuration_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    time.Duration
		wantErr bool
	}{
		{name: "string", in: `"1m30s"`, want: 90 * time.Second},
		{name: "nanoseconds", in: `1000000000`, want: time.Second},
		{name: "bad string", in: `"soon"`, wantErr: true},
		{name: "bool", in: `true`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := json.Unmarshal([]byte(tt.in), &d)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Duration)
		})
	}
}

func TestDuration_UnmarshalYAML(t *testing.T) {
	var cfg struct {
		Timeout Duration `yaml:"timeout"`
		Grace   Duration `yaml:"grace"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("timeout: 5s\ngrace: 2000000000\n"), &cfg))
	assert.Equal(t, 5*time.Second, cfg.Timeout.Duration)
	assert.Equal(t, 2*time.Second, cfg.Grace.Duration)
}

func TestDuration_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(Duration{Duration: 3 * time.Second})
	require.NoError(t, err)
	assert.Equal(t, `"3s"`, string(b))
}
