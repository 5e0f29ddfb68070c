package cli

import (
	"reflect"
	"testing"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantMode string
		wantRest []string
		wantErr  bool
	}{
		{
			"mode flag",
			[]string{"--mode=booking-service", "--max-concurrent=150"},
			ModeBooking, []string{"--max-concurrent=150"}, false,
		},
		{
			"mode flag alias",
			[]string{"--mode=rt"},
			ModeRealtime, nil, false,
		},
		{
			"subcommand shorthand",
			[]string{"notify", "--prefetch=16"},
			ModeNotify, []string{"--prefetch=16"}, false,
		},
		{
			"single letter shorthand",
			[]string{"b"},
			ModeBooking, nil, false,
		},
		{
			"no mode",
			[]string{"--max-concurrent=150"},
			"", []string{"--max-concurrent=150"}, true,
		},
		{
			"unknown value stays in leftover args",
			[]string{"something", "realtime"},
			ModeRealtime, []string{"something"}, false,
		},
		{
			"only first mode-like arg is consumed",
			[]string{"booking", "notify"},
			ModeBooking, []string{"notify"}, false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mode, rest, err := ParseMode(tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if mode != tt.wantMode {
				t.Errorf("mode = %q, want %q", mode, tt.wantMode)
			}
			if !reflect.DeepEqual(rest, tt.wantRest) {
				t.Errorf("leftover args = %v, want %v", rest, tt.wantRest)
			}
		})
	}
}
