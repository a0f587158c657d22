// Package archive stores the rides that drop off the board at the end of a day.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"carpool/internal/clock"
	"carpool/internal/events"
	"carpool/internal/models"
	"carpool/internal/queue"
	"carpool/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// KeyPrefix is the object key prefix for archived boards.
const KeyPrefix = "rides"

// Document is the archived payload for one day.
type Document struct {
	Day        string        `json:"day"`
	ArchivedAt time.Time     `json:"archivedAt"`
	Rides      []models.Ride `json:"rides"`
}

// ObjectKey returns the storage key for a job.
func ObjectKey(job queue.ArchiveJob) string {
	return fmt.Sprintf("%s/%s/%s.json", KeyPrefix, job.Day, job.ID)
}

// Uploader writes archive jobs to object storage.
type Uploader struct {
	storage storage.Storage
	now     func() time.Time
}

// NewUploader creates an Uploader.
func NewUploader(s storage.Storage, now func() time.Time) *Uploader {
	if now == nil {
		now = time.Now
	}
	return &Uploader{storage: s, now: now}
}

// Archive uploads job as a JSON document.
func (u *Uploader) Archive(ctx context.Context, job queue.ArchiveJob) error {
	body, err := json.Marshal(Document{Day: job.Day, ArchivedAt: u.now(), Rides: job.Rides})
	if err != nil {
		return fmt.Errorf("encode archive: %w", err)
	}
	return u.storage.PutObject(ctx, ObjectKey(job), bytes.NewReader(body), "application/json")
}

var _ queue.Archiver = (*Uploader)(nil)

// Enqueuer turns RidesExpired events into archive jobs, one per calendar day.
type Enqueuer struct {
	queue queue.Queue
	loc   *time.Location
	log   *zap.Logger
	newID func() string
}

// NewEnqueuer creates an Enqueuer. Days are computed in loc.
func NewEnqueuer(q queue.Queue, loc *time.Location, log *zap.Logger) *Enqueuer {
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Enqueuer{queue: q, loc: loc, log: log.Named("archive"), newID: uuid.NewString}
}

// Handle is an events.Handler.
func (e *Enqueuer) Handle(ev events.Event) {
	if ev.Kind != events.RidesExpired || len(ev.Rides) == 0 {
		return
	}

	byDay := make(map[string][]models.Ride)
	for _, r := range ev.Rides {
		day := clock.DayKey(r.CreatedAt, e.loc)
		byDay[day] = append(byDay[day], r.Clone())
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)

	for _, day := range days {
		job := queue.ArchiveJob{ID: e.newID(), Day: day, Rides: byDay[day]}
		if err := e.queue.Enqueue(job); err != nil {
			e.log.Error("failed to enqueue archive job",
				zap.String("day", day),
				zap.Int("rides", len(job.Rides)),
				zap.Int("queue_len", e.queue.Len()),
				zap.Int("queue_capacity", e.queue.Capacity()),
				zap.Error(err),
			)
			continue
		}
		e.log.Debug("archive job enqueued", zap.String("day", day), zap.String("job_id", job.ID))
	}
}
