package status

import "testing"

func TestIsError(t *testing.T) {
	cases := []struct {
		code Code
		want bool
	}{
		{Ok, false},
		{Again, false},
		{Noop, false},
		{ZeroLength, false},
		{ArcTooShort, false},
		{Err, true},
		{ParseBadNumberFormat, true},
		{ErrConvergenceFailure, true},
	}
	for _, c := range cases {
		if got := c.code.IsError(); got != c.want {
			t.Errorf("%v.IsError() = %v, want %v", c.code, got, c.want)
		}
	}
}

func TestStringKnownAndUnknown(t *testing.T) {
	if Ok.String() != "ok" {
		t.Errorf("Ok.String() = %q", Ok.String())
	}
	if Code(9999).String() != "unknown-status" {
		t.Errorf("unknown code did not fall back: %q", Code(9999).String())
	}
}
