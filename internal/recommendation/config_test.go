package recommendation

import (
	"strings"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got: %v", err)
	}
}

func TestValidateWeightSum(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "exact_sum",
			mutate: func(c *Config) {},
		},
		{
			name: "within_tolerance",
			mutate: func(c *Config) {
				c.UserInterestWeight += 0.0005
			},
		},
		{
			name: "sum_too_low",
			mutate: func(c *Config) {
				c.SocialSignalWeight = 0.10
			},
			wantErr: true,
		},
		{
			name: "sum_too_high",
			mutate: func(c *Config) {
				c.ViewCountWeight = 0.30
			},
			wantErr: true,
		},
		{
			name: "just_outside_tolerance",
			mutate: func(c *Config) {
				c.RecencyWeight += 0.0011
			},
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Fatalf("expected validation error for weight sum %.4f", cfg.WeightSum())
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestValidateRejectsNegativeWeight(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UserInterestWeight = -0.05
	cfg.SocialSignalWeight = 0.50 // keep the sum at 1.0
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error for negative weight")
	}
}

func TestValidateRejectsZeroKnobs(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BatchProcessingSize = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for zero batch size")
	}

	cfg = DefaultConfig()
	cfg.FeedVersion = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for empty feed version")
	}
}

func TestWeightSumErrorMentionsActualSum(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TotalRatingsWeight = 0
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "0.92") {
		t.Fatalf("error should report the actual sum, got: %v", err)
	}
}
