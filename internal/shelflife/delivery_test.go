package shelflife

import (
	"testing"
	"time"
)

var (
	testPickupZone   = time.FixedZone("UTC+5", 5*60*60)
	testDeliveryZone = time.FixedZone("UTC+3", 3*60*60)
)

// 2025-06-16 is a Monday; the following week covers all seven weekdays.
func pickupOn(day int) time.Time {
	return time.Date(2025, time.June, day, 9, 30, 0, 0, testPickupZone)
}

func TestResolveDelivery_AllWeekdays(t *testing.T) {
	tests := []struct {
		name     string
		pickup   time.Time
		wantDay  int
		deferred bool
	}{
		{"monday_same_date", pickupOn(16), 16, false},
		{"tuesday_same_date", pickupOn(17), 17, false},
		{"wednesday_same_date", pickupOn(18), 18, false},
		{"thursday_next_monday", pickupOn(19), 23, true},
		{"friday_next_monday", pickupOn(20), 23, true},
		{"saturday_next_monday", pickupOn(21), 23, true},
		// Sunday is the formula boundary: must be +1, not +8
		{"sunday_next_monday", pickupOn(22), 23, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveDelivery(tt.pickup, testPickupZone, testDeliveryZone)

			if got.Day() != tt.wantDay || got.Month() != time.June || got.Year() != 2025 {
				t.Errorf("ResolveDelivery(%v) = %v, want June %d", tt.pickup, got, tt.wantDay)
			}
			if got.Location() != testDeliveryZone {
				t.Errorf("result location = %v, want delivery zone", got.Location())
			}
			if got.Hour() != 12 {
				t.Errorf("result hour = %d, want fixed display hour 12", got.Hour())
			}

			if tt.deferred {
				if got.Weekday() != time.Monday {
					t.Errorf("deferred delivery weekday = %v, want Monday", got.Weekday())
				}
				pickupDate := time.Date(tt.pickup.Year(), tt.pickup.Month(), tt.pickup.Day(), 0, 0, 0, 0, time.UTC)
				gotDate := time.Date(got.Year(), got.Month(), got.Day(), 0, 0, 0, 0, time.UTC)
				diff := gotDate.Sub(pickupDate)
				if diff <= 0 || diff > 7*24*time.Hour {
					t.Errorf("deferred delivery is %v after pickup, want within (0, 7d]", diff)
				}
			} else if got.Weekday() != tt.pickup.Weekday() {
				t.Errorf("same-date delivery changed weekday: %v -> %v", tt.pickup.Weekday(), got.Weekday())
			}
		})
	}
}

// All four deferred weekdays of one week must land on the same Monday.
func TestResolveDelivery_DeferredDaysAgree(t *testing.T) {
	want := time.Date(2025, time.June, 23, 12, 0, 0, 0, testDeliveryZone)

	for day := 19; day <= 22; day++ {
		got := ResolveDelivery(pickupOn(day), testPickupZone, testDeliveryZone)
		if !got.Equal(want) {
			t.Errorf("pickup June %d resolved to %v, want %v", day, got, want)
		}
	}
}

func TestResolveDelivery_ZoneConversion(t *testing.T) {
	// 01:00 Tuesday in the pickup zone is still Monday 23:00 in the delivery
	// zone; the rule operates on the pickup zone's calendar date.
	pickup := time.Date(2025, time.June, 17, 1, 0, 0, 0, testPickupZone)

	got := ResolveDelivery(pickup, testPickupZone, testDeliveryZone)
	if got.Day() != 17 {
		t.Errorf("delivery day = %d, want 17 (pickup zone calendar)", got.Day())
	}
}
