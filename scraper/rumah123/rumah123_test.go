package rumah123

import (
	"testing"
	"time"

	"rumah123-etl/config"
	"rumah123-etl/utils"
)

func TestValidateParams(t *testing.T) {
	tests := []struct {
		adsType      string
		propertyType string
		numPages     int
		wantErr      bool
	}{
		{"jual", "rumah", 1, false},
		{"sewa", "apartemen", 10, false},
		{"beli", "rumah", 1, true},
		{"jual", "kantor", 1, true},
		{"jual", "rumah", 0, true},
		{"jual", "rumah", -3, true},
	}

	for _, tt := range tests {
		err := ValidateParams(tt.adsType, tt.propertyType, tt.numPages)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateParams(%q, %q, %d) error = %v; wantErr %v",
				tt.adsType, tt.propertyType, tt.numPages, err, tt.wantErr)
		}
	}
}

func TestPageURL(t *testing.T) {
	cfg := &config.Config{BaseSleepMs: 1000, MaxRetries: 1}
	region := &config.Region{Name: "jakarta", ID: "dki-jakarta"}

	s, err := New(cfg, region, "jual", "rumah", 3, utils.NewLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	got := s.pageURL(2)
	want := "https://www.rumah123.com/jual/dki-jakarta/rumah/?sort=posted-desc&page=2"
	if got != want {
		t.Errorf("pageURL(2) = %q; want %q", got, want)
	}
}

func TestPickLocation(t *testing.T) {
	admins := []string{"Jakarta Selatan", "Jakarta Barat"}

	tests := []struct {
		spans []string
		want  string
	}{
		{[]string{"3", "2", "Kebayoran Baru, Jakarta Selatan"}, "Kebayoran Baru, Jakarta Selatan"},
		{[]string{"jakarta barat", "Jakarta Selatan"}, "jakarta barat"},
		{[]string{"3", "2", "Bandung"}, ""},
		{nil, ""},
	}

	for _, tt := range tests {
		if got := pickLocation(tt.spans, admins); got != tt.want {
			t.Errorf("pickLocation(%v) = %q; want %q", tt.spans, got, tt.want)
		}
	}
}

func TestCleanBadgeText(t *testing.T) {
	tests := []struct {
		badge string
		want  string
	}{
		// First item is the property-type label and gets dropped.
		{"RumahKolam RenangCarport", "Kolam Renang, Carport"},
		{"Rumah", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := cleanBadgeText(tt.badge); got != tt.want {
			t.Errorf("cleanBadgeText(%q) = %q; want %q", tt.badge, got, tt.want)
		}
	}
}

func TestRateLimiterSuccessShrinksTowardFloor(t *testing.T) {
	r := NewRateLimiter(8*time.Second, utils.NewLogger())
	r.minSleep = time.Second
	r.sleepFn = func(time.Duration) {}

	for i := 0; i < 20; i++ {
		r.HandleSuccess()
	}

	if r.Base() != time.Second {
		t.Errorf("base after long success streak = %v; want floor %v", r.Base(), time.Second)
	}
}

func TestRateLimiterBackoffGrowsAndCaps(t *testing.T) {
	r := NewRateLimiter(time.Second, utils.NewLogger())
	r.maxSleep = 4 * time.Second
	r.sleepFn = func(time.Duration) {}

	prev := r.Base()
	r.HandleRateLimit()
	if r.Base() <= prev {
		t.Errorf("base should grow after a 429: %v -> %v", prev, r.Base())
	}

	for i := 0; i < 10; i++ {
		r.HandleRateLimit()
	}
	if r.Base() != 4*time.Second {
		t.Errorf("base should cap at maxSleep, got %v", r.Base())
	}
}

func TestRateLimiterSuccessResetsAfter429(t *testing.T) {
	r := NewRateLimiter(time.Second, utils.NewLogger())
	r.sleepFn = func(time.Duration) {}

	r.HandleRateLimit()
	if r.consecutive429s != 1 {
		t.Fatalf("consecutive429s = %d; want 1", r.consecutive429s)
	}

	r.HandleSuccess()
	if r.consecutive429s != 0 {
		t.Errorf("a success should reset the 429 counter, got %d", r.consecutive429s)
	}
}
