package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// JobState tracks where a managed job is in its lifecycle. Cooldown marks a
// job that finished its run and has not yet been re-evaluated.
type JobState int

const (
	StateIdle JobState = iota
	StateRunning
	StateCooldown
)

// Trigger decides whether a job is due at a poll instant. consume marks the
// firing as taken, whether or not the job actually ran.
type Trigger interface {
	due(now time.Time) bool
	consume(now time.Time)
}

// Interval fires every fixed period measured from a wall-clock origin, not
// from the previous fire, so slow runs do not accumulate drift.
type Interval struct {
	every time.Duration
	next  time.Time
}

// NewInterval anchors the schedule to period boundaries derived from origin.
func NewInterval(every time.Duration, origin time.Time) *Interval {
	next := origin.Truncate(every)
	for !next.After(origin) {
		next = next.Add(every)
	}
	return &Interval{every: every, next: next}
}

func (t *Interval) due(now time.Time) bool {
	return !now.Before(t.next)
}

func (t *Interval) consume(now time.Time) {
	for !t.next.After(now) {
		t.next = t.next.Add(t.every)
	}
}

// calendarGrace bounds how late a calendar fire may still happen. A process
// that was down past the window skips that fire for the day.
const calendarGrace = 5 * time.Minute

// Calendar fires at most once per operating-day at hour:minute. The fired
// date is remembered explicitly, so sub-minute polling cannot double-fire
// and polling jitter cannot miss the minute.
type Calendar struct {
	hour      int
	minute    int
	lastFired string
}

// NewCalendar builds a daily HH:MM trigger.
func NewCalendar(hour, minute int) *Calendar {
	return &Calendar{hour: hour, minute: minute}
}

func (t *Calendar) due(now time.Time) bool {
	fireAt := time.Date(now.Year(), now.Month(), now.Day(), t.hour, t.minute, 0, 0, now.Location())
	if now.Before(fireAt) || now.Sub(fireAt) > calendarGrace {
		return false
	}
	return t.lastFired != now.Format("2006-01-02")
}

func (t *Calendar) consume(now time.Time) {
	t.lastFired = now.Format("2006-01-02")
}

// Job pairs a name with its trigger and work function.
type Job struct {
	Name    string
	Trigger Trigger
	Run     func(ctx context.Context)
}

type managedJob struct {
	mu    sync.Mutex
	job   Job
	state JobState
}

// Driver evaluates every job's trigger on a short fixed polling period and
// dispatches due jobs. Invocations of the same named job never overlap: a job
// still Running at its next trigger is skipped for that trigger. Distinct
// jobs run independently and may overlap.
type Driver struct {
	jobs   []*managedJob
	poll   time.Duration
	loc    *time.Location
	now    func() time.Time
	logger *slog.Logger

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewDriver builds a driver; now is injectable for trigger tests.
func NewDriver(poll time.Duration, loc *time.Location, logger *slog.Logger, now func() time.Time) *Driver {
	if poll <= 0 {
		poll = 5 * time.Second
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &Driver{poll: poll, loc: loc, logger: logger, now: now}
}

// Add registers a job; call before Start.
func (d *Driver) Add(job Job) {
	d.jobs = append(d.jobs, &managedJob{job: job})
}

// Start launches the polling loop. A driver starts once; restarting after
// Stop is not supported.
func (d *Driver) Start(ctx context.Context) {
	if d.stop != nil {
		return
	}
	d.stop = make(chan struct{})
	stop := d.stop

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ticker := time.NewTicker(d.poll)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				d.evaluate(ctx)
			case <-ctx.Done():
				return
			case <-stop:
				return
			}
		}
	}()
}

// Stop halts the polling loop and waits for in-flight jobs to finish. Safe to
// call more than once.
func (d *Driver) Stop() {
	if d.stop == nil {
		return
	}
	d.stopOnce.Do(func() { close(d.stop) })
	d.wg.Wait()
}

func (d *Driver) evaluate(ctx context.Context) {
	now := d.now().In(d.loc)

	for _, mj := range d.jobs {
		mj.mu.Lock()

		if !mj.job.Trigger.due(now) {
			if mj.state == StateCooldown {
				mj.state = StateIdle
			}
			mj.mu.Unlock()
			continue
		}

		// The firing is consumed even when the job is skipped.
		mj.job.Trigger.consume(now)

		if mj.state == StateRunning {
			d.logger.Warn("job still running, trigger skipped", "job", mj.job.Name)
			mj.mu.Unlock()
			continue
		}
		mj.state = StateRunning
		mj.mu.Unlock()

		d.wg.Add(1)
		go func(mj *managedJob) {
			defer d.wg.Done()
			start := d.now()
			mj.job.Run(ctx)
			d.logger.Debug("job finished", "job", mj.job.Name, "took", d.now().Sub(start))

			mj.mu.Lock()
			mj.state = StateCooldown
			mj.mu.Unlock()
		}(mj)
	}
}
