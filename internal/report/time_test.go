package report

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTo24Hour(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"bare 24-hour passes through", "09:15", "09:15"},
		{"morning", "09:15 AM", "09:15"},
		{"afternoon", "01:30 PM", "13:30"},
		{"midnight hour", "12:05 AM", "00:05"},
		{"noon stays 12", "12:45 PM", "12:45"},
		{"single digit hour", "9:05 AM", "09:05"},
		{"lowercase suffix", "9:05 pm", "21:05"},
		{"surrounding whitespace", "  09:15 AM  ", "09:15"},
		{"no minutes", "9 AM", ""},
		{"garbage hour", "ab:15 PM", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, To24Hour(tc.in))
		})
	}
}

func TestTo12Hour(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"after midnight", "00:30", "12:30 AM"},
		{"noon", "12:00", "12:00 PM"},
		{"last minute", "23:59", "11:59 PM"},
		{"morning", "09:15", "09:15 AM"},
		{"afternoon", "13:05", "01:05 PM"},
		{"no colon", "0930", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, To12Hour(tc.in))
		})
	}
}

func TestTimeConversionRoundTrip(t *testing.T) {
	for h := 0; h < 24; h++ {
		for m := 0; m < 60; m++ {
			t24 := fmt.Sprintf("%02d:%02d", h, m)
			if got := To24Hour(To12Hour(t24)); got != t24 {
				t.Fatalf("round trip %s: got %s via %s", t24, got, To12Hour(t24))
			}
		}
	}
}
