package shelflife

import "time"

// deliveryHour is the fixed display hour for resolved delivery dates. It
// carries no computational meaning; only the calendar date matters.
const deliveryHour = 12

// ResolveDelivery determines the effective delivery date for a pickup
// (assembly) date. Pickups on Monday through Wednesday are delivered the same
// calendar date; Thursday through Sunday defer to the next Monday. The result
// is expressed in the delivery zone's calendar at 12:00.
//
// Sunday is the boundary case: time.Weekday numbers Sunday as 0, so the
// "days until next Monday" formula for Thu-Sat (8 - weekday) would yield 8
// for Sunday instead of 1. Sunday is therefore handled explicitly; the
// exhaustive weekday test pins both formulas to the same Monday.
func ResolveDelivery(pickup time.Time, pickupZone, deliveryZone *time.Location) time.Time {
	local := pickup.In(pickupZone)

	var deferDays int
	switch wd := local.Weekday(); wd {
	case time.Sunday:
		deferDays = 1
	case time.Thursday, time.Friday, time.Saturday:
		deferDays = 8 - int(wd)
	default:
		deferDays = 0
	}

	d := local.AddDate(0, 0, deferDays)
	return time.Date(d.Year(), d.Month(), d.Day(), deliveryHour, 0, 0, 0, deliveryZone)
}
