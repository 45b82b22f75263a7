// Package marketdata turns raw provider payloads into clean time series and
// runs the source fallback chain that keeps data flowing when individual
// providers fail or return nothing.
package marketdata

import (
	"math"
	"sort"
	"time"

	"github.com/stocklens/stocklens/internal/models"
)

// NormalizeChart converts a raw chart payload into an ascending bar series.
// Rows with a missing or non-finite close are dropped; missing low/high/open
// backfill from close; missing volume reads as zero. Timestamps keep the
// exchange-local wall clock, no timezone conversion.
func NormalizeChart(chart *models.ChartData) []models.Bar {
	if chart == nil {
		return nil
	}

	n := len(chart.Timestamps)
	bars := make([]models.Bar, 0, n)
	for i := 0; i < n; i++ {
		closeV := colValue(chart.Close, i)
		if closeV == nil || !isFinite(*closeV) {
			continue
		}

		bar := models.Bar{
			Time:  time.Unix(chart.Timestamps[i], 0).UTC(),
			Close: *closeV,
		}

		if v := colValue(chart.Open, i); v != nil && isFinite(*v) {
			bar.Open = *v
		} else {
			bar.Open = bar.Close
		}
		if v := colValue(chart.Low, i); v != nil && isFinite(*v) {
			bar.Low = *v
		} else {
			bar.Low = bar.Close
		}
		if v := colValue(chart.High, i); v != nil && isFinite(*v) {
			bar.High = *v
		} else {
			bar.High = bar.Close
		}
		if v := colValue(chart.Volume, i); v != nil && isFinite(*v) {
			bar.Volume = *v
		}

		bars = append(bars, bar)
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars
}

func colValue(col []*float64, i int) *float64 {
	if i >= len(col) {
		return nil
	}
	return col[i]
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Resample aggregates daily bars into weekly (buckets labeled by their
// Friday) or monthly (labeled by the last calendar day of the month) bars
// with Open=first, High=max, Low=min, Close=last, Volume=sum. A trailing
// bucket whose calendar period has not yet finished at `now` is dropped.
func Resample(bars []models.Bar, interval models.Interval, now time.Time) []models.Bar {
	if len(bars) == 0 {
		return nil
	}

	var label func(time.Time) time.Time
	switch interval {
	case models.IntervalWeekly:
		label = weekEndingFriday
	case models.IntervalMonth:
		label = monthEnd
	default:
		return bars
	}

	var out []models.Bar
	for _, b := range bars {
		key := label(b.Time)
		if len(out) > 0 && out[len(out)-1].Time.Equal(key) {
			last := &out[len(out)-1]
			last.High = math.Max(last.High, b.High)
			last.Low = math.Min(last.Low, b.Low)
			last.Close = b.Close
			last.Volume += b.Volume
			continue
		}
		out = append(out, models.Bar{
			Time:   key,
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		})
	}

	// Drop the in-progress trailing bucket
	if len(out) > 0 {
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		if !out[len(out)-1].Time.Before(today) {
			out = out[:len(out)-1]
		}
	}

	return out
}

// weekEndingFriday returns the Friday on or after t, at midnight UTC.
func weekEndingFriday(t time.Time) time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	days := (int(time.Friday) - int(d.Weekday()) + 7) % 7
	return d.AddDate(0, 0, days)
}

// monthEnd returns the last calendar day of t's month, at midnight UTC.
func monthEnd(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC)
}
