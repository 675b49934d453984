package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/aditya/go-gigs/internal/models"
	"github.com/aditya/go-gigs/internal/realtime"
	"github.com/aditya/go-gigs/internal/repository"
)

// clock hands out strictly increasing timestamps so ordering is stable.
type clock struct {
	mu  sync.Mutex
	now time.Time
	seq int
}

func newClock() *clock {
	return &clock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *clock) tick() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func (c *clock) id(prefix string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return fmt.Sprintf("%s-%d", prefix, c.seq)
}

type fakeUserRepo struct {
	clock    *clock
	users    map[string]*models.User
	statsErr error
}

func newFakeUserRepo(c *clock) *fakeUserRepo {
	return &fakeUserRepo{clock: c, users: make(map[string]*models.User)}
}

func (r *fakeUserRepo) add(u *models.User) *models.User {
	r.users[u.ID] = u
	return u
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = r.clock.id("user")
	}
	user.CreatedAt = r.clock.tick()
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.users[id], nil
}

func (r *fakeUserRepo) GetByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	out := []*models.User{}
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) UpdateProfile(ctx context.Context, user *models.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) UpdateStats(ctx context.Context, id string, stats models.UserStats) error {
	if r.statsErr != nil {
		return r.statsErr
	}
	u, ok := r.users[id]
	if !ok {
		return fmt.Errorf("user %s not found", id)
	}
	u.JobsCompleted = stats.JobsCompleted
	u.AverageRating = stats.AverageRating
	u.IsElite = stats.IsElite
	return nil
}

type fakeJobRepo struct {
	clock *clock
	jobs  map[string]*models.Job
}

func newFakeJobRepo(c *clock) *fakeJobRepo {
	return &fakeJobRepo{clock: c, jobs: make(map[string]*models.Job)}
}

func (r *fakeJobRepo) add(j *models.Job) *models.Job {
	if j.CreatedAt.IsZero() {
		j.CreatedAt = r.clock.tick()
	}
	r.jobs[j.ID] = j
	return j
}

func (r *fakeJobRepo) Create(ctx context.Context, job *models.Job) error {
	if job.ID == "" {
		job.ID = r.clock.id("job")
	}
	job.Status = models.JobStatusOpen
	job.CreatedAt = r.clock.tick()
	r.jobs[job.ID] = job
	return nil
}

func (r *fakeJobRepo) GetByID(ctx context.Context, id string) (*models.Job, error) {
	j, ok := r.jobs[id]
	if !ok {
		return nil, nil
	}
	cp := *j
	return &cp, nil
}

func (r *fakeJobRepo) GetByIDs(ctx context.Context, ids []string) ([]*models.Job, error) {
	out := []*models.Job{}
	for _, id := range ids {
		if j, ok := r.jobs[id]; ok {
			cp := *j
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeJobRepo) ListByStatus(ctx context.Context, status string) ([]*models.Job, error) {
	out := []*models.Job{}
	for _, j := range r.jobs {
		if j.Status == status {
			cp := *j
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].CreatedAt.After(out[k].CreatedAt) })
	return out, nil
}

func (r *fakeJobRepo) UpdateStatus(ctx context.Context, id, status string) error {
	r.jobs[id].Status = status
	return nil
}

func (r *fakeJobRepo) AssignProvider(ctx context.Context, jobID, providerID, status string) error {
	p := providerID
	r.jobs[jobID].ProviderID = &p
	r.jobs[jobID].Status = status
	return nil
}

func (r *fakeJobRepo) CountCompletedByProvider(ctx context.Context, providerID string) (int, error) {
	n := 0
	for _, j := range r.jobs {
		if j.ProviderID != nil && *j.ProviderID == providerID && j.Status == models.JobStatusCompleted {
			n++
		}
	}
	return n, nil
}

type fakeApplicationRepo struct {
	clock *clock
	apps  map[string]*models.Application
}

func newFakeApplicationRepo(c *clock) *fakeApplicationRepo {
	return &fakeApplicationRepo{clock: c, apps: make(map[string]*models.Application)}
}

func (r *fakeApplicationRepo) Create(ctx context.Context, app *models.Application) error {
	for _, a := range r.apps {
		if a.JobID == app.JobID && a.ProviderID == app.ProviderID {
			return repository.ErrDuplicate
		}
	}
	if app.ID == "" {
		app.ID = r.clock.id("app")
	}
	app.Status = models.ApplicationStatusPending
	app.CreatedAt = r.clock.tick()
	cp := *app
	r.apps[app.ID] = &cp
	return nil
}

func (r *fakeApplicationRepo) GetByID(ctx context.Context, id string) (*models.Application, error) {
	a, ok := r.apps[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *fakeApplicationRepo) GetByJobAndProvider(ctx context.Context, jobID, providerID string) (*models.Application, error) {
	for _, a := range r.apps {
		if a.JobID == jobID && a.ProviderID == providerID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeApplicationRepo) ListByJob(ctx context.Context, jobID string) ([]*models.Application, error) {
	out := []*models.Application{}
	for _, a := range r.apps {
		if a.JobID == jobID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].CreatedAt.Before(out[k].CreatedAt) })
	return out, nil
}

func (r *fakeApplicationRepo) UpdateStatus(ctx context.Context, id, status string) error {
	r.apps[id].Status = status
	return nil
}

type fakeReviewRepo struct {
	clock     *clock
	reviews   []*models.Review
	createErr error
}

func (r *fakeReviewRepo) Create(ctx context.Context, review *models.Review) error {
	if r.createErr != nil {
		return r.createErr
	}
	if review.ID == "" {
		review.ID = r.clock.id("review")
	}
	review.CreatedAt = r.clock.tick()
	r.reviews = append(r.reviews, review)
	return nil
}

func (r *fakeReviewRepo) ListRatingsByReviewee(ctx context.Context, revieweeID string) ([]int, error) {
	var ratings []int
	for _, rv := range r.reviews {
		if rv.RevieweeID == revieweeID {
			ratings = append(ratings, rv.Rating)
		}
	}
	return ratings, nil
}

func (r *fakeReviewRepo) ListByReviewee(ctx context.Context, revieweeID string) ([]*models.ReviewWithReviewer, error) {
	out := []*models.ReviewWithReviewer{}
	for i := len(r.reviews) - 1; i >= 0; i-- {
		if r.reviews[i].RevieweeID == revieweeID {
			out = append(out, &models.ReviewWithReviewer{Review: *r.reviews[i]})
		}
	}
	return out, nil
}

type fakeNotificationRepo struct {
	clock         *clock
	notifications []*models.Notification
	createErr     error
}

func (r *fakeNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	if r.createErr != nil {
		return r.createErr
	}
	if n.ID == "" {
		n.ID = r.clock.id("notification")
	}
	n.CreatedAt = r.clock.tick()
	r.notifications = append(r.notifications, n)
	return nil
}

func (r *fakeNotificationRepo) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	for _, n := range r.notifications {
		if n.ID == id {
			return n, nil
		}
	}
	return nil, nil
}

func (r *fakeNotificationRepo) ListByUser(ctx context.Context, userID string) ([]*models.Notification, error) {
	out := []*models.Notification{}
	for i := len(r.notifications) - 1; i >= 0; i-- {
		if r.notifications[i].UserID == userID {
			out = append(out, r.notifications[i])
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) MarkRead(ctx context.Context, id string) (bool, error) {
	for _, n := range r.notifications {
		if n.ID == id {
			n.Read = true
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeNotificationRepo) ofType(notificationType string) []*models.Notification {
	var out []*models.Notification
	for _, n := range r.notifications {
		if n.Type == notificationType {
			out = append(out, n)
		}
	}
	return out
}

type fakeMessageRepo struct {
	clock     *clock
	messages  []*models.Message
	createErr error
}

func (r *fakeMessageRepo) Create(ctx context.Context, msg *models.Message) error {
	if r.createErr != nil {
		return r.createErr
	}
	if msg.ID == "" {
		msg.ID = r.clock.id("msg")
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = r.clock.tick()
	}
	r.messages = append(r.messages, msg)
	return nil
}

func (r *fakeMessageRepo) ListForUser(ctx context.Context, userID string) ([]*models.Message, error) {
	out := []*models.Message{}
	for _, m := range r.messages {
		if m.SenderID == userID || m.ReceiverID == userID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].CreatedAt.After(out[k].CreatedAt) })
	return out, nil
}

func (r *fakeMessageRepo) ListBetween(ctx context.Context, userID, otherUserID string) ([]*models.Message, error) {
	out := []*models.Message{}
	for _, m := range r.messages {
		if (m.SenderID == userID && m.ReceiverID == otherUserID) ||
			(m.SenderID == otherUserID && m.ReceiverID == userID) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].CreatedAt.Before(out[k].CreatedAt) })
	return out, nil
}

type fakeSavedJobRepo struct {
	clock *clock
	saved []*models.SavedJob
}

func (r *fakeSavedJobRepo) Create(ctx context.Context, saved *models.SavedJob) error {
	for _, s := range r.saved {
		if s.UserID == saved.UserID && s.JobID == saved.JobID {
			return repository.ErrDuplicate
		}
	}
	saved.ID = r.clock.id("saved")
	saved.CreatedAt = r.clock.tick()
	r.saved = append(r.saved, saved)
	return nil
}

func (r *fakeSavedJobRepo) Get(ctx context.Context, userID, jobID string) (*models.SavedJob, error) {
	for _, s := range r.saved {
		if s.UserID == userID && s.JobID == jobID {
			return s, nil
		}
	}
	return nil, nil
}

func (r *fakeSavedJobRepo) Delete(ctx context.Context, id string) error {
	for i, s := range r.saved {
		if s.ID == id {
			r.saved = append(r.saved[:i], r.saved[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *fakeSavedJobRepo) ListJobIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	for i := len(r.saved) - 1; i >= 0; i-- {
		if r.saved[i].UserID == userID {
			ids = append(ids, r.saved[i].JobID)
		}
	}
	return ids, nil
}

type fakeTransactionRepo struct {
	clock        *clock
	transactions []*models.Transaction
	createErr    error
}

func (r *fakeTransactionRepo) Create(ctx context.Context, txn *models.Transaction) error {
	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.transactions {
		if existing.JobID == txn.JobID {
			return repository.ErrDuplicate
		}
	}
	txn.ID = r.clock.id("txn")
	txn.CreatedAt = r.clock.tick()
	r.transactions = append(r.transactions, txn)
	return nil
}

func (r *fakeTransactionRepo) GetByJobID(ctx context.Context, jobID string) (*models.Transaction, error) {
	for i := len(r.transactions) - 1; i >= 0; i-- {
		if r.transactions[i].JobID == jobID {
			return r.transactions[i], nil
		}
	}
	return nil, nil
}

type published struct {
	channel string
	event   realtime.Event
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, channel string, evt realtime.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, published{channel: channel, event: evt})
	return nil
}

type recordingDispatcher struct {
	calls []string
}

func (d *recordingDispatcher) Dispatch(ctx context.Context, userID string) {
	d.calls = append(d.calls, userID)
}

type fakePaymentProvider struct {
	amountCents int64
	currency    string
	metadata    map[string]string
	err         error
}

func (p *fakePaymentProvider) CreatePaymentIntent(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	p.amountCents = amountCents
	p.currency = currency
	p.metadata = metadata
	return "pi_secret_123", nil
}

type memoryStorage struct {
	files map[string][]byte
	types map[string]string
	err   error
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{files: make(map[string][]byte), types: make(map[string]string)}
}

func (s *memoryStorage) Save(ctx context.Context, name string, reader io.Reader, contentType string) error {
	if s.err != nil {
		return s.err
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	s.files[name] = data
	s.types[name] = contentType
	return nil
}

func (s *memoryStorage) URL(name string) string {
	return "https://cdn.test/" + name
}
