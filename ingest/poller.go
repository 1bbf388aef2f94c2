package ingest

import (
	"context"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/alibukhari13/slack-attendance/entity"
	"github.com/alibukhari13/slack-attendance/platform"
	"github.com/alibukhari13/slack-attendance/relay"
	"github.com/alibukhari13/slack-attendance/service"
	"github.com/alibukhari13/slack-attendance/telemetry"
)

// Poller sweeps the watched channels on a fixed interval and turns new
// messages into attendance upserts. It reads with the workspace bot token,
// not an impersonated identity.
type Poller struct {
	client     platform.Client
	watches    *service.WatchService
	attendance service.AttendanceService
	interval   time.Duration

	lastSeen map[string]string // channel id -> newest ts already ingested
}

func NewPoller(client platform.Client, watches *service.WatchService, attendance service.AttendanceService, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Poller{
		client:     client,
		watches:    watches,
		attendance: attendance,
		interval:   interval,
		lastSeen:   make(map[string]string),
	}
}

// Run polls until the context is cancelled. The first sweep of a channel
// only records the high-water mark so a restart does not re-ingest history.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.sweep(ctx)
		}
	}
}

func (p *Poller) sweep(ctx context.Context) {
	watched, err := p.watches.List()
	if err != nil {
		log.Printf("ingest: watch list failed: %v", err)
		return
	}
	if len(watched) == 0 {
		return
	}
	dir := relay.ResolveDirectory(ctx, p.client)
	for _, w := range watched {
		p.sweepChannel(ctx, w, dir)
	}
}

func (p *Poller) sweepChannel(ctx context.Context, w entity.WatchedChannel, dir relay.Directory) {
	page, err := p.client.History(ctx, w.ChannelID, "", 50)
	if err != nil {
		log.Printf("ingest: history failed for %s: %v", w.ChannelID, err)
		return
	}
	mark, seeded := p.lastSeen[w.ChannelID]
	newest := mark
	for _, m := range page.Messages { // newest first
		if newest == "" || tsAfter(m.Ts, newest) {
			newest = m.Ts
		}
		if !seeded {
			continue
		}
		if m.User == "" || !tsAfter(m.Ts, mark) {
			continue
		}
		p.record(w, m, dir)
	}
	p.lastSeen[w.ChannelID] = newest
}

func (p *Poller) record(w entity.WatchedChannel, m platform.Message, dir relay.Directory) {
	rec := entity.AttendanceRecord{
		UserID:    m.User,
		Date:      tsDate(m.Ts),
		ChannelID: w.ChannelID,
	}
	if entry, ok := dir[m.User]; ok {
		rec.UserName = entry.Name
	}
	if w.Purpose == "out" {
		rec.CheckOut = m.Ts
	} else {
		rec.CheckIn = m.Ts
	}
	if err := p.attendance.Upsert(rec); err != nil {
		log.Printf("ingest: upsert failed for %s/%s: %v", m.User, rec.Date, err)
		return
	}
	telemetry.IngestEvents.Inc()
}

// tsAfter compares two platform ts strings numerically.
func tsAfter(a, b string) bool {
	af, err1 := strconv.ParseFloat(a, 64)
	bf, err2 := strconv.ParseFloat(b, 64)
	if err1 != nil || err2 != nil {
		return strings.Compare(a, b) > 0
	}
	return af > bf
}

// tsDate renders the event's local calendar date (YYYY-MM-DD).
func tsDate(ts string) string {
	f, err := strconv.ParseFloat(ts, 64)
	if err != nil {
		return ""
	}
	return time.Unix(int64(f), 0).Format("2006-01-02")
}
