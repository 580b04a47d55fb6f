package availability

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/clinicops/clinicops/internal/domain/branch"
	"github.com/clinicops/clinicops/internal/platform/cache"
)

// HoursResolver produces the discrete time points at which appointment slots
// may open for a branch over a date range, together with each point's booking
// capacity. Results are cached: the inputs are admin-configured reference
// data that changes rarely relative to booking traffic.
type HoursResolver struct {
	hours     HoursSource
	apptHours AppointmentHoursSource
	holidays  HolidaySource
	blockoffs BlockoffSource
	store     cache.Store
	interval  time.Duration
}

func NewHoursResolver(hours HoursSource, apptHours AppointmentHoursSource,
	holidays HolidaySource, blockoffs BlockoffSource,
	store cache.Store, interval time.Duration) *HoursResolver {
	return &HoursResolver{
		hours:     hours,
		apptHours: apptHours,
		holidays:  holidays,
		blockoffs: blockoffs,
		store:     store,
		interval:  interval,
	}
}

func (r *HoursResolver) Interval() time.Duration { return r.interval }

type resolvedHours struct {
	Points   []time.Time       `json:"points"`
	Capacity map[time.Time]int `json:"capacity"`
}

// OperatingHours resolves the bookable time points for branchID across the
// inclusive date range [from, to]:
//
//  1. discretize each general operating-hour window (minus cutoff) per
//     weekday and union windows of the same day,
//  2. discretize appointment operating hours likewise, keeping max_bookings,
//  3. intersect appointment points with general points per weekday,
//  4. walk each calendar date, substituting the PUBLIC_HOLIDAY pseudo-day for
//     holiday dates, and subtract blockoff-covered points for that date.
//
// A date whose resolved weekday has no appointment-hours entry contributes
// nothing. Absence of configuration means closed, not an error.
func (r *HoursResolver) OperatingHours(ctx context.Context, branchID uuid.UUID, from, to time.Time) ([]time.Time, map[time.Time]int, error) {
	key := cache.Key("hours", branchID.String(),
		from.Format(time.RFC3339), to.Format(time.RFC3339))
	if raw, ok := r.store.Get(ctx, key); ok {
		var cached resolvedHours
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached.Points, cached.Capacity, nil
		}
		r.store.Delete(ctx, key)
	}

	points, capacity, err := r.resolve(ctx, branchID, from, to)
	if err != nil {
		return nil, nil, err
	}

	if raw, err := json.Marshal(resolvedHours{Points: points, Capacity: capacity}); err == nil {
		r.store.Set(ctx, key, raw)
	} else {
		log.Warn().Err(err).Str("branch_id", branchID.String()).Msg("failed to cache resolved hours")
	}
	return points, capacity, nil
}

func (r *HoursResolver) resolve(ctx context.Context, branchID uuid.UUID, from, to time.Time) ([]time.Time, map[time.Time]int, error) {
	general, err := r.hours.OperatingHoursByBranch(ctx, branchID)
	if err != nil {
		return nil, nil, fmt.Errorf("load operating hours: %w", err)
	}
	appt, err := r.apptHours.AppointmentHoursByBranch(ctx, branchID)
	if err != nil {
		return nil, nil, fmt.Errorf("load appointment hours: %w", err)
	}

	intervalMin := int(r.interval / time.Minute)

	// Minute-of-day points per weekday for the general table.
	generalByDay := make(map[branch.DayOfWeek]map[int]bool)
	for _, oh := range general {
		day := generalByDay[oh.Day]
		if day == nil {
			day = make(map[int]bool)
			generalByDay[oh.Day] = day
		}
		for _, m := range discretizeMinutes(oh.StartMinute, oh.EndMinute-oh.CutoffMinutes, intervalMin) {
			day[m] = true
		}
	}

	// Appointment points per weekday, intersected with the general table.
	// Overlapping appointment windows keep the highest capacity for a point.
	type dayPoints struct {
		minutes  []int
		capacity map[int]int
	}
	apptByDay := make(map[branch.DayOfWeek]*dayPoints)
	for _, ah := range appt {
		open := generalByDay[ah.Day]
		if open == nil {
			continue
		}
		dp := apptByDay[ah.Day]
		if dp == nil {
			dp = &dayPoints{capacity: make(map[int]int)}
			apptByDay[ah.Day] = dp
		}
		for _, m := range discretizeMinutes(ah.StartMinute, ah.EndMinute-ah.CutoffMinutes, intervalMin) {
			if !open[m] {
				continue
			}
			if _, seen := dp.capacity[m]; !seen {
				dp.minutes = append(dp.minutes, m)
			}
			if ah.MaxBookings > dp.capacity[m] {
				dp.capacity[m] = ah.MaxBookings
			}
		}
	}

	holidayDates, err := r.holidayDates(ctx, from, to)
	if err != nil {
		return nil, nil, err
	}
	blocked, err := r.blockedPoints(ctx, branchID, from, to, intervalMin)
	if err != nil {
		return nil, nil, err
	}

	var points []time.Time
	capacity := make(map[time.Time]int)
	for date := startOfDay(from); !date.After(to); date = date.AddDate(0, 0, 1) {
		day := branch.DayOf(date)
		if holidayDates[date.Format("2006-01-02")] {
			day = branch.PublicHoliday
		}
		dp := apptByDay[day]
		if dp == nil {
			continue
		}
		for _, m := range dp.minutes {
			t := atMinute(date, m)
			if t.Before(from) || t.After(to) {
				continue
			}
			if blocked[t.Unix()] {
				continue
			}
			points = append(points, t)
			capacity[t] = dp.capacity[m]
		}
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Before(points[j]) })
	return points, capacity, nil
}

func (r *HoursResolver) holidayDates(ctx context.Context, from, to time.Time) (map[string]bool, error) {
	hols, err := r.holidays.HolidaysInRange(ctx, startOfDay(from), endOfDay(to))
	if err != nil {
		return nil, fmt.Errorf("load public holidays: %w", err)
	}
	dates := make(map[string]bool, len(hols))
	for _, h := range hols {
		dates[h.Date.Format("2006-01-02")] = true
	}
	return dates, nil
}

// blockedPoints expands enabled, non-deleted blockoffs into the concrete
// time points they cover, keyed by unix second.
func (r *HoursResolver) blockedPoints(ctx context.Context, branchID uuid.UUID, from, to time.Time, intervalMin int) (map[int64]bool, error) {
	blocks, err := r.blockoffs.BlockoffsInRange(ctx, branchID, startOfDay(from), endOfDay(to))
	if err != nil {
		return nil, fmt.Errorf("load blockoffs: %w", err)
	}
	blocked := make(map[int64]bool)
	for _, b := range blocks {
		for _, m := range discretizeMinutes(b.StartMinute, b.EndMinute, intervalMin) {
			blocked[atMinute(b.Date, m).Unix()] = true
		}
	}
	return blocked, nil
}
