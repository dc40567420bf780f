package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{in: "light", want: Light},
		{in: "dark", want: Dark},
		{in: " DARK ", want: Dark},
		{in: "Light", want: Light},
		{in: "", wantErr: true},
		{in: "auto", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestModeToggle(t *testing.T) {
	assert.Equal(t, Dark, Light.Toggle())
	assert.Equal(t, Light, Dark.Toggle())
	assert.Equal(t, Dark, FromPrefersDark(true))
	assert.Equal(t, Light, FromPrefersDark(false))
}

func TestSchemeSignal_SubscribeOrder(t *testing.T) {
	s := NewSchemeSignal()
	_, err := s.PrefersDark()
	require.ErrorIs(t, err, ErrNoSignal)

	var order []string
	s.Subscribe(func(Mode) { order = append(order, "a") })
	unsub := s.Subscribe(func(Mode) { order = append(order, "b") })
	s.Subscribe(func(Mode) { order = append(order, "c") })

	s.Set(Dark)
	unsub()
	s.Set(Light)

	assert.Equal(t, []string{"a", "b", "c", "a", "c"}, order)
	dark, err := s.PrefersDark()
	require.NoError(t, err)
	assert.False(t, dark)
}
