package model

import (
	"encoding/json"
	"testing"
)

func TestNumberUnmarshal(t *testing.T) {
	cases := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{`500`, 500, false},
		{`"500"`, 500, false},
		{`"1500.50"`, 1500.5, false},
		{`0.01`, 0.01, false},
		{`null`, 0, true},
		{`""`, 0, true},
		{`"abc"`, 0, true},
		{`{}`, 0, true},
	}

	for _, tc := range cases {
		var n Number
		err := json.Unmarshal([]byte(tc.in), &n)
		if tc.wantErr {
			if err == nil {
				t.Errorf("unmarshal %s: expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("unmarshal %s: %v", tc.in, err)
			continue
		}
		if float64(n) != tc.want {
			t.Errorf("unmarshal %s = %v, want %v", tc.in, float64(n), tc.want)
		}
	}
}

func TestNumberPositive(t *testing.T) {
	cases := []struct {
		n    float64
		want bool
	}{
		{500, true},
		{0.01, true},
		{0, false},
		{-1, false},
	}
	for _, tc := range cases {
		if got := Number(tc.n).Positive(); got != tc.want {
			t.Errorf("Number(%v).Positive() = %v, want %v", tc.n, got, tc.want)
		}
	}

	var nan Number
	json.Unmarshal([]byte(`"NaN"`), &nan) // strconv may accept NaN spellings
	if nan.Positive() {
		t.Error("NaN must never be positive")
	}
}

func TestValidCondition(t *testing.T) {
	for _, label := range Conditions {
		if !ValidCondition(label) {
			t.Errorf("ValidCondition(%q) = false", label)
		}
	}
	if ValidCondition("Mint") {
		t.Error("unknown labels must be rejected")
	}
	if ValidCondition("") {
		t.Error("empty label must be rejected")
	}
}

func TestListingPatchIsEmpty(t *testing.T) {
	if empty := (&ListingPatch{}); !empty.IsEmpty() {
		t.Error("zero patch should be empty")
	}

	sold := true
	if p := (&ListingPatch{IsSold: &sold}); p.IsEmpty() {
		t.Error("patch with a field should not be empty")
	}
}
