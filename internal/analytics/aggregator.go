package analytics

import (
	"LinkGate-Backend/internal/domain"
	"LinkGate-Backend/internal/repository"
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultTopN = 10
	unknown     = "unknown"
)

// EventSource is the read side of click storage.
type EventSource interface {
	ListClickEvents(ctx context.Context, filter repository.ClickFilter) ([]domain.ClickEvent, error)
}

// Query selects the events to aggregate. A nil LinkID means every link in the workspace.
type Query struct {
	LinkID      *int64
	WorkspaceID string
	From        time.Time
	To          time.Time
	IncludeBots bool
	Country     *string
	Compare     bool
}

// Bucket is one value of a breakdown dimension.
type Bucket struct {
	Value      string `json:"value"`
	Count      int64  `json:"count"`
	Percentage int    `json:"percentage"`
}

// DailyPoint is one UTC calendar day of the time series.
type DailyPoint struct {
	Date   string `json:"date"`
	Clicks int64  `json:"clicks"`
}

// PeakTime is the busiest heatmap cell. Day is 0 for Sunday.
type PeakTime struct {
	Day    int   `json:"day"`
	Hour   int   `json:"hour"`
	Clicks int64 `json:"clicks"`
}

// Comparison relates the window to the equal-length window right before it.
type Comparison struct {
	PreviousFrom   time.Time `json:"previousFrom"`
	PreviousTo     time.Time `json:"previousTo"`
	PreviousClicks int64     `json:"previousClicks"`
	PreviousUnique int64     `json:"previousUniqueVisitors"`
	ClicksChange   int       `json:"clicksChangePercent"`
	UniqueChange   int       `json:"uniqueVisitorsChangePercent"`
}

// UTMBreakdown holds one breakdown per UTM parameter.
type UTMBreakdown struct {
	Source   []Bucket `json:"source"`
	Medium   []Bucket `json:"medium"`
	Campaign []Bucket `json:"campaign"`
	Term     []Bucket `json:"term"`
	Content  []Bucket `json:"content"`
}

// Report is the aggregated view of a window.
type Report struct {
	From           time.Time    `json:"from"`
	To             time.Time    `json:"to"`
	TotalClicks    int64        `json:"totalClicks"`
	UniqueVisitors int64        `json:"uniqueVisitors"`
	Devices        []Bucket     `json:"devices"`
	Browsers       []Bucket     `json:"browsers"`
	OS             []Bucket     `json:"os"`
	Countries      []Bucket     `json:"countries"`
	Sources        []Bucket     `json:"sources"`
	Referrers      []Bucket     `json:"referrers"`
	UTM            UTMBreakdown `json:"utm"`
	Daily          []DailyPoint `json:"daily"`
	Heatmap        [7][24]int64 `json:"heatmap"`
	Peak           *PeakTime    `json:"peak,omitempty"`
	Comparison     *Comparison  `json:"comparison,omitempty"`
}

// Aggregator computes reports synchronously over the full matching event set.
type Aggregator struct {
	events EventSource
	topN   int
	log    *zap.Logger
}

func NewAggregator(events EventSource, topN int, log *zap.Logger) *Aggregator {
	if topN <= 0 {
		topN = DefaultTopN
	}
	return &Aggregator{events: events, topN: topN, log: log}
}

// Aggregate builds the report for q. It performs no writes.
func (a *Aggregator) Aggregate(ctx context.Context, q Query) (*Report, error) {
	if !q.From.Before(q.To) {
		return nil, fmt.Errorf("%w: from must be before to", domain.ErrValidation)
	}

	report, err := a.aggregateWindow(ctx, q, q.From, q.To)
	if err != nil {
		return nil, err
	}

	if q.Compare {
		length := q.To.Sub(q.From)
		prevFrom, prevTo := q.From.Add(-length), q.From
		prev, err := a.aggregateWindow(ctx, q, prevFrom, prevTo)
		if err != nil {
			return nil, err
		}
		report.Comparison = &Comparison{
			PreviousFrom:   prevFrom,
			PreviousTo:     prevTo,
			PreviousClicks: prev.TotalClicks,
			PreviousUnique: prev.UniqueVisitors,
			ClicksChange:   changePercent(report.TotalClicks, prev.TotalClicks),
			UniqueChange:   changePercent(report.UniqueVisitors, prev.UniqueVisitors),
		}
	}

	return report, nil
}

func (a *Aggregator) aggregateWindow(ctx context.Context, q Query, from, to time.Time) (*Report, error) {
	events, err := a.events.ListClickEvents(ctx, repository.ClickFilter{
		LinkID:      q.LinkID,
		WorkspaceID: q.WorkspaceID,
		From:        from,
		To:          to,
		IncludeBots: q.IncludeBots,
		Country:     q.Country,
	})
	if err != nil {
		a.log.Error("failed to load click events", zap.Error(err))
		return nil, fmt.Errorf("load click events: %w", err)
	}
	return a.build(events, from, to), nil
}

type counter map[string]int64

func (c counter) add(v string) { c[v]++ }

func (c counter) addOpt(v *string) {
	if v != nil && *v != "" {
		c[*v]++
	}
}

func (c counter) addOrUnknown(v string) {
	if v == "" {
		v = unknown
	}
	c[v]++
}

func (a *Aggregator) build(events []domain.ClickEvent, from, to time.Time) *Report {
	r := &Report{From: from, To: to, TotalClicks: int64(len(events))}

	visitors := make(map[string]struct{})
	devices, browsers, oses, countries := counter{}, counter{}, counter{}, counter{}
	sources, referrers := counter{}, counter{}
	utmSource, utmMedium, utmCampaign, utmTerm, utmContent := counter{}, counter{}, counter{}, counter{}, counter{}
	daily := make(map[string]int64)

	for i := range events {
		e := &events[i]
		visitors[e.IPHash] = struct{}{}

		devices.addOrUnknown(e.DeviceType)
		browsers.addOrUnknown(e.Browser)
		oses.addOrUnknown(e.OS)
		if e.Country != nil {
			countries.addOrUnknown(*e.Country)
		} else {
			countries.add(unknown)
		}
		sources.addOrUnknown(e.Source)
		referrers.addOpt(e.ReferrerHost)

		utmSource.addOpt(e.UTM.Source)
		utmMedium.addOpt(e.UTM.Medium)
		utmCampaign.addOpt(e.UTM.Campaign)
		utmTerm.addOpt(e.UTM.Term)
		utmContent.addOpt(e.UTM.Content)

		at := e.ClickedAt.UTC()
		daily[at.Format(time.DateOnly)]++
		r.Heatmap[int(at.Weekday())][at.Hour()]++
	}

	r.UniqueVisitors = int64(len(visitors))
	total := r.TotalClicks
	r.Devices = a.top(devices, total)
	r.Browsers = a.top(browsers, total)
	r.OS = a.top(oses, total)
	r.Countries = a.top(countries, total)
	r.Sources = a.top(sources, total)
	r.Referrers = a.top(referrers, total)
	r.UTM = UTMBreakdown{
		Source:   a.top(utmSource, total),
		Medium:   a.top(utmMedium, total),
		Campaign: a.top(utmCampaign, total),
		Term:     a.top(utmTerm, total),
		Content:  a.top(utmContent, total),
	}
	r.Daily = dailySeries(daily, from, to)
	r.Peak = peakOf(&r.Heatmap)
	return r
}

// top sorts by count desc then value asc and truncates to topN.
func (a *Aggregator) top(c counter, total int64) []Bucket {
	buckets := make([]Bucket, 0, len(c))
	for v, n := range c {
		buckets = append(buckets, Bucket{Value: v, Count: n, Percentage: percentage(n, total)})
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Count != buckets[j].Count {
			return buckets[i].Count > buckets[j].Count
		}
		return buckets[i].Value < buckets[j].Value
	})
	if len(buckets) > a.topN {
		buckets = buckets[:a.topN]
	}
	return buckets
}

func percentage(n, total int64) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(n) / float64(total) * 100))
}

// dailySeries emits every UTC day touched by [from, to), zero-filled.
func dailySeries(counts map[string]int64, from, to time.Time) []DailyPoint {
	start := from.UTC().Truncate(24 * time.Hour)
	end := to.UTC()

	var points []DailyPoint
	for day := start; day.Before(end); day = day.AddDate(0, 0, 1) {
		key := day.Format(time.DateOnly)
		points = append(points, DailyPoint{Date: key, Clicks: counts[key]})
	}
	return points
}

// peakOf returns the highest cell; ties go to the earliest (day, hour). Nil when empty.
func peakOf(h *[7][24]int64) *PeakTime {
	var peak *PeakTime
	for day := 0; day < 7; day++ {
		for hour := 0; hour < 24; hour++ {
			n := h[day][hour]
			if n > 0 && (peak == nil || n > peak.Clicks) {
				peak = &PeakTime{Day: day, Hour: hour, Clicks: n}
			}
		}
	}
	return peak
}

func changePercent(cur, prev int64) int {
	if prev == 0 {
		if cur > 0 {
			return 100
		}
		return 0
	}
	return int(math.Round(float64(cur-prev) / float64(prev) * 100))
}
