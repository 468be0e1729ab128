package services

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/goer-app/goer/backend/internal/mailer"
	"github.com/goer-app/goer/backend/internal/models"
	"github.com/goer-app/goer/backend/internal/repositories"
)

// In-memory stand-ins for the MongoDB repositories. Sessions and
// notifications use the gorm repositories on SQLite.

func newSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	if err := repositories.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func page[T any](items []T, p int) []T {
	if p < 1 {
		p = 1
	}
	start := (p - 1) * models.PageSize
	if start >= len(items) {
		return []T{}
	}
	end := start + models.PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// tick hands out strictly increasing timestamps so ordering is deterministic.
var (
	tickMu sync.Mutex
	tickAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
)

func tick() time.Time {
	tickMu.Lock()
	defer tickMu.Unlock()
	tickAt = tickAt.Add(time.Second)
	return tickAt
}

type fakeAccounts struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]models.Account
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{byID: map[primitive.ObjectID]models.Account{}}
}

// add stores an account directly and returns it.
func (f *fakeAccounts) add(a models.Account) *models.Account {
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	if a.Language == "" {
		a.Language = models.LanguageEnglish
	}
	f.mu.Lock()
	f.byID[a.ID] = a
	f.mu.Unlock()
	return &a
}

func (f *fakeAccounts) emailTaken(email string, except primitive.ObjectID) bool {
	for id, a := range f.byID {
		if id != except && a.Email == email {
			return true
		}
	}
	return false
}

func (f *fakeAccounts) Create(_ context.Context, a *models.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.emailTaken(a.Email, primitive.NilObjectID) {
		return repositories.ErrDuplicate
	}
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	a.CreatedAt, a.UpdatedAt = tick(), tick()
	f.byID[a.ID] = *a
	return nil
}

func (f *fakeAccounts) find(match func(models.Account) bool) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.byID {
		if match(a) {
			return &a, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeAccounts) GetByID(_ context.Context, id primitive.ObjectID) (*models.Account, error) {
	return f.find(func(a models.Account) bool { return a.ID == id })
}

func (f *fakeAccounts) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	return f.find(func(a models.Account) bool { return a.Email == email })
}

func (f *fakeAccounts) GetByFirebaseUID(_ context.Context, uid string) (*models.Account, error) {
	return f.find(func(a models.Account) bool { return a.FirebaseUID != "" && a.FirebaseUID == uid })
}

func (f *fakeAccounts) GetMany(_ context.Context, ids []primitive.ObjectID) ([]models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Account{}
	for _, id := range ids {
		if a, ok := f.byID[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAccounts) Update(_ context.Context, a *models.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[a.ID]; !ok {
		return repositories.ErrNotFound
	}
	if f.emailTaken(a.Email, a.ID) {
		return repositories.ErrDuplicate
	}
	a.UpdatedAt = tick()
	f.byID[a.ID] = *a
	return nil
}

func (f *fakeAccounts) SetRating(_ context.Context, id primitive.ObjectID, rating float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[id]
	if !ok {
		return repositories.ErrNotFound
	}
	a.Rating = rating
	f.byID[id] = a
	return nil
}

func (f *fakeAccounts) Delete(_ context.Context, id primitive.ObjectID) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	delete(f.byID, id)
	return &a, nil
}

func (f *fakeAccounts) filter(match func(models.Account) bool, p int) []models.Account {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Account{}
	for _, a := range f.byID {
		if match(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, p)
}

func (f *fakeAccounts) ListByRole(_ context.Context, role models.Role, p int) ([]models.Account, error) {
	return f.filter(func(a models.Account) bool { return a.Role == role }, p), nil
}

func (f *fakeAccounts) Search(_ context.Context, query string, role models.Role, p int) ([]models.Account, error) {
	q := strings.ToLower(query)
	return f.filter(func(a models.Account) bool {
		if !a.Confirmed || (role != "" && a.Role != role) {
			return false
		}
		return strings.Contains(strings.ToLower(a.Name.Full()), q)
	}, p), nil
}

type followKey struct{ follower, followee primitive.ObjectID }

type fakeFollows struct {
	mu    sync.Mutex
	edges map[followKey]models.Follow
}

func newFakeFollows() *fakeFollows {
	return &fakeFollows{edges: map[followKey]models.Follow{}}
}

func (f *fakeFollows) Create(_ context.Context, follow *models.Follow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := followKey{follow.Follower, follow.Followee}
	if _, ok := f.edges[key]; ok {
		return repositories.ErrDuplicate
	}
	follow.ID = primitive.NewObjectID()
	follow.CreatedAt, follow.UpdatedAt = tick(), tick()
	f.edges[key] = *follow
	return nil
}

func (f *fakeFollows) Get(_ context.Context, follower, followee primitive.ObjectID) (*models.Follow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.edges[followKey{follower, followee}]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &e, nil
}

func (f *fakeFollows) Transition(_ context.Context, follower, followee primitive.ObjectID, from, to models.FollowStatus) (*models.Follow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := followKey{follower, followee}
	e, ok := f.edges[key]
	if !ok || e.Status != from {
		return nil, repositories.ErrNotFound
	}
	e.Status = to
	e.UpdatedAt = tick()
	f.edges[key] = e
	return &e, nil
}

func (f *fakeFollows) Delete(_ context.Context, follower, followee primitive.ObjectID, status models.FollowStatus) (*models.Follow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := followKey{follower, followee}
	e, ok := f.edges[key]
	if !ok || (status != "" && e.Status != status) {
		return nil, repositories.ErrNotFound
	}
	delete(f.edges, key)
	return &e, nil
}

func (f *fakeFollows) DeleteByAccount(_ context.Context, account primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k := range f.edges {
		if k.follower == account || k.followee == account {
			delete(f.edges, k)
		}
	}
	return nil
}

func (f *fakeFollows) List(_ context.Context, account primitive.ObjectID, listType models.FollowListType, p int) ([]models.Follow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Follow{}
	for _, e := range f.edges {
		switch listType {
		case models.FollowListFollowers:
			if e.Followee == account && e.Status == models.FollowAccepted {
				out = append(out, e)
			}
		case models.FollowListFollowing:
			if e.Follower == account && e.Status == models.FollowAccepted {
				out = append(out, e)
			}
		case models.FollowListRequests:
			if e.Followee == account && e.Status == models.FollowRequested {
				out = append(out, e)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return page(out, p), nil
}

func (f *fakeFollows) FolloweeIDs(_ context.Context, follower primitive.ObjectID) ([]primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []primitive.ObjectID
	for k, e := range f.edges {
		if k.follower == follower && e.Status == models.FollowAccepted {
			ids = append(ids, k.followee)
		}
	}
	return ids, nil
}

type fakePosts struct {
	mu    sync.Mutex
	posts map[primitive.ObjectID]models.Post
}

func newFakePosts() *fakePosts {
	return &fakePosts{posts: map[primitive.ObjectID]models.Post{}}
}

func (f *fakePosts) Create(_ context.Context, p *models.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = primitive.NewObjectID()
	p.CreatedAt, p.UpdatedAt = tick(), tick()
	f.posts[p.ID] = *p
	return nil
}

func (f *fakePosts) GetByID(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &p, nil
}

func (f *fakePosts) ListByUsers(_ context.Context, users []primitive.ObjectID, p int) ([]models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	want := map[primitive.ObjectID]bool{}
	for _, u := range users {
		want[u] = true
	}
	out := []models.Post{}
	for _, post := range f.posts {
		if want[post.User] {
			out = append(out, post)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, p), nil
}

func (f *fakePosts) Update(_ context.Context, p *models.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.posts[p.ID]; !ok {
		return repositories.ErrNotFound
	}
	p.UpdatedAt = tick()
	f.posts[p.ID] = *p
	return nil
}

func (f *fakePosts) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.posts[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.posts, id)
	return nil
}

type fakeReviews struct {
	mu      sync.Mutex
	reviews map[primitive.ObjectID]models.Review
}

func newFakeReviews() *fakeReviews {
	return &fakeReviews{reviews: map[primitive.ObjectID]models.Review{}}
}

func (f *fakeReviews) Create(_ context.Context, r *models.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r.ID = primitive.NewObjectID()
	r.CreatedAt, r.UpdatedAt = tick(), tick()
	f.reviews[r.ID] = *r
	return nil
}

func (f *fakeReviews) UpsertRating(_ context.Context, user, business primitive.ObjectID, rating int) (*models.Review, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, r := range f.reviews {
		if r.User == user && r.Business == business && r.Text == "" {
			r.Rating = rating
			r.UpdatedAt = tick()
			f.reviews[id] = r
			return &r, false, nil
		}
	}
	r := models.Review{ID: primitive.NewObjectID(), User: user, Business: business, Rating: rating, CreatedAt: tick()}
	f.reviews[r.ID] = r
	return &r, true, nil
}

func (f *fakeReviews) GetByID(_ context.Context, id primitive.ObjectID) (*models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reviews[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &r, nil
}

func (f *fakeReviews) ListByBusiness(_ context.Context, business primitive.ObjectID, p int) ([]models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Review{}
	for _, r := range f.reviews {
		if r.Business == business && r.Text != "" {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, p), nil
}

func (f *fakeReviews) Update(_ context.Context, r *models.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.reviews[r.ID]; !ok {
		return repositories.ErrNotFound
	}
	f.reviews[r.ID] = *r
	return nil
}

func (f *fakeReviews) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.reviews[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.reviews, id)
	return nil
}

func (f *fakeReviews) AverageRating(_ context.Context, business primitive.ObjectID) (float64, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var sum, n int64
	for _, r := range f.reviews {
		if r.Business == business {
			sum += int64(r.Rating)
			n++
		}
	}
	if n == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(n), n, nil
}

type fakeComments struct {
	mu       sync.Mutex
	comments map[primitive.ObjectID]models.Comment
}

func newFakeComments() *fakeComments {
	return &fakeComments{comments: map[primitive.ObjectID]models.Comment{}}
}

func (f *fakeComments) Create(_ context.Context, c *models.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.ID = primitive.NewObjectID()
	c.CreatedAt, c.UpdatedAt = tick(), tick()
	f.comments[c.ID] = *c
	return nil
}

func (f *fakeComments) GetByID(_ context.Context, id primitive.ObjectID) (*models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.comments[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &c, nil
}

func (f *fakeComments) ListByItem(_ context.Context, item models.ItemRef, p int) ([]models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Comment{}
	for _, c := range f.comments {
		if c.Item == item {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return page(out, p), nil
}

func (f *fakeComments) Update(_ context.Context, c *models.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.comments[c.ID]; !ok {
		return repositories.ErrNotFound
	}
	f.comments[c.ID] = *c
	return nil
}

func (f *fakeComments) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.comments[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.comments, id)
	return nil
}

func (f *fakeComments) DeleteByItem(_ context.Context, item models.ItemRef) ([]primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []primitive.ObjectID
	for id, c := range f.comments {
		if c.Item == item {
			ids = append(ids, id)
			delete(f.comments, id)
		}
	}
	return ids, nil
}

type reactionKey struct {
	user primitive.ObjectID
	item models.ItemRef
}

type fakeReactions struct {
	mu        sync.Mutex
	reactions map[reactionKey]models.Reaction
}

func newFakeReactions() *fakeReactions {
	return &fakeReactions{reactions: map[reactionKey]models.Reaction{}}
}

func (f *fakeReactions) Create(_ context.Context, r *models.Reaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := reactionKey{r.User, r.Item}
	if _, ok := f.reactions[key]; ok {
		return repositories.ErrDuplicate
	}
	r.ID = primitive.NewObjectID()
	r.CreatedAt = tick()
	f.reactions[key] = *r
	return nil
}

func (f *fakeReactions) Get(_ context.Context, user primitive.ObjectID, item models.ItemRef) (*models.Reaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reactions[reactionKey{user, item}]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &r, nil
}

func (f *fakeReactions) SetType(_ context.Context, user primitive.ObjectID, item models.ItemRef, t models.ReactionType) (*models.Reaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := reactionKey{user, item}
	r, ok := f.reactions[key]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	r.Type = t
	f.reactions[key] = r
	return &r, nil
}

func (f *fakeReactions) Delete(_ context.Context, user primitive.ObjectID, item models.ItemRef) (*models.Reaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := reactionKey{user, item}
	r, ok := f.reactions[key]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	delete(f.reactions, key)
	return &r, nil
}

func (f *fakeReactions) DeleteByItem(_ context.Context, item models.ItemRef) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k := range f.reactions {
		if k.item == item {
			delete(f.reactions, k)
		}
	}
	return nil
}

func (f *fakeReactions) Counts(_ context.Context, item models.ItemRef) (int64, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var likes, dislikes int64
	for k, r := range f.reactions {
		if k.item != item {
			continue
		}
		if r.Type == models.ReactionLike {
			likes++
		} else {
			dislikes++
		}
	}
	return likes, dislikes, nil
}

type fakeThreads struct {
	mu      sync.Mutex
	threads map[primitive.ObjectID]models.Thread
}

func newFakeThreads() *fakeThreads {
	return &fakeThreads{threads: map[primitive.ObjectID]models.Thread{}}
}

func (f *fakeThreads) Create(_ context.Context, t *models.Thread) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t.ID = primitive.NewObjectID()
	t.CreatedAt, t.UpdatedAt = tick(), tick()
	f.threads[t.ID] = *t
	return nil
}

func (f *fakeThreads) GetByID(_ context.Context, id primitive.ObjectID) (*models.Thread, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.threads[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &t, nil
}

func (f *fakeThreads) FindByMembers(_ context.Context, users []primitive.ObjectID) (*models.Thread, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.threads {
		if len(t.Users) != len(users) {
			continue
		}
		all := true
		for _, u := range users {
			if !t.HasMember(u) {
				all = false
				break
			}
		}
		if all {
			return &t, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeThreads) ListByMember(_ context.Context, user primitive.ObjectID, p int) ([]models.Thread, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Thread{}
	for _, t := range f.threads {
		if t.HasMember(user) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return page(out, p), nil
}

func (f *fakeThreads) SetTitle(_ context.Context, id primitive.ObjectID, title string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.threads[id]
	if !ok {
		return repositories.ErrNotFound
	}
	t.Title = title
	f.threads[id] = t
	return nil
}

func (f *fakeThreads) Touch(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.threads[id]
	if !ok {
		return repositories.ErrNotFound
	}
	t.UpdatedAt = tick()
	f.threads[id] = t
	return nil
}

func (f *fakeThreads) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.threads[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.threads, id)
	return nil
}

type fakeMessages struct {
	mu       sync.Mutex
	messages []models.Message
}

func (f *fakeMessages) Create(_ context.Context, m *models.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m.ID = primitive.NewObjectID()
	m.CreatedAt = tick()
	f.messages = append(f.messages, *m)
	return nil
}

func (f *fakeMessages) ListByThread(_ context.Context, thread primitive.ObjectID, p int) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Message{}
	for i := len(f.messages) - 1; i >= 0; i-- {
		if f.messages[i].Thread == thread {
			out = append(out, f.messages[i])
		}
	}
	return page(out, p), nil
}

func (f *fakeMessages) DeleteByThread(_ context.Context, thread primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.messages[:0]
	for _, m := range f.messages {
		if m.Thread != thread {
			kept = append(kept, m)
		}
	}
	f.messages = kept
	return nil
}

type fakeEvents struct {
	mu     sync.Mutex
	events map[primitive.ObjectID]models.Event
}

func newFakeEvents() *fakeEvents {
	return &fakeEvents{events: map[primitive.ObjectID]models.Event{}}
}

func (f *fakeEvents) Create(_ context.Context, e *models.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e.ID = primitive.NewObjectID()
	e.CreatedAt, e.UpdatedAt = tick(), tick()
	f.events[e.ID] = *e
	return nil
}

func (f *fakeEvents) GetByID(_ context.Context, id primitive.ObjectID) (*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &e, nil
}

func (f *fakeEvents) ListByThread(_ context.Context, thread primitive.ObjectID, p int) ([]models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Event{}
	for _, e := range f.events {
		if e.Thread == thread {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return page(out, p), nil
}

func (f *fakeEvents) Update(_ context.Context, e *models.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.events[e.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	e.Going, e.Declined = stored.Going, stored.Declined
	f.events[e.ID] = *e
	return nil
}

func (f *fakeEvents) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.events[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.events, id)
	return nil
}

func (f *fakeEvents) DeleteByThread(_ context.Context, thread primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, e := range f.events {
		if e.Thread == thread {
			delete(f.events, id)
		}
	}
	return nil
}

func without(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := []primitive.ObjectID{}
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}

func addToSet(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	for _, x := range ids {
		if x == id {
			return ids
		}
	}
	return append(ids, id)
}

// SetRSVP mirrors the $pull/$addToSet update of the MongoDB repository.
func (f *fakeEvents) SetRSVP(_ context.Context, id, user primitive.ObjectID, choice models.RSVP) (*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	switch choice {
	case models.RSVPGoing:
		e.Declined = without(e.Declined, user)
		e.Going = addToSet(e.Going, user)
	case models.RSVPDeclined:
		e.Going = without(e.Going, user)
		e.Declined = addToSet(e.Declined, user)
	default:
		e.Going = without(e.Going, user)
		e.Declined = without(e.Declined, user)
	}
	f.events[id] = e
	return &e, nil
}

// recordingPusher collects pushes and can be told to fail.
type recordingPusher struct {
	mu     sync.Mutex
	sent   []pushed
	failOn string
}

type pushed struct{ token, title, body string }

func (p *recordingPusher) SendToDevice(_ context.Context, token, title, body string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if token == p.failOn {
		return errPushFailed
	}
	p.sent = append(p.sent, pushed{token, title, body})
	return nil
}

func (p *recordingPusher) pushes() []pushed {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]pushed(nil), p.sent...)
}

// world wires every service over fakes.
type world struct {
	t             *testing.T
	accounts      *fakeAccounts
	follows       *fakeFollows
	posts         *fakePosts
	reviews       *fakeReviews
	comments      *fakeComments
	reactions     *fakeReactions
	threads       *fakeThreads
	messages      *fakeMessages
	events        *fakeEvents
	notifications repositories.NotificationRepository
	sessions      repositories.SessionRepository
	pusher        *recordingPusher
	notifier      *Notifier

	follow   *FollowService
	review   *ReviewService
	reaction *ReactionService
	content  *ContentService
	thread   *ThreadService
	event    *EventService
}

func newWorld(t *testing.T) *world {
	t.Helper()
	db := newSQLite(t)
	w := &world{
		t:             t,
		accounts:      newFakeAccounts(),
		follows:       newFakeFollows(),
		posts:         newFakePosts(),
		reviews:       newFakeReviews(),
		comments:      newFakeComments(),
		reactions:     newFakeReactions(),
		threads:       newFakeThreads(),
		messages:      &fakeMessages{},
		events:        newFakeEvents(),
		notifications: repositories.NewPostgresNotificationRepository(db),
		sessions:      repositories.NewPostgresSessionRepository(db),
		pusher:        &recordingPusher{},
	}
	w.notifier = NewNotifier(w.notifications, w.sessions, w.accounts, w.pusher)
	w.follow = NewFollowService(w.follows, w.accounts, w.notifier)
	w.review = NewReviewService(w.reviews, w.accounts, w.posts, w.comments, w.reactions, w.notifier)
	w.reaction = NewReactionService(w.reactions, w.posts, w.reviews, w.comments, w.accounts, w.follows, w.notifier)
	w.content = NewContentService(w.posts, w.reviews, w.comments, w.reactions, w.accounts, w.follows, w.notifier, newMemStorage())
	w.thread = NewThreadService(w.threads, w.messages, w.events, w.accounts, w.notifier)
	w.event = NewEventService(w.events, w.threads)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		w.notifier.Wait(ctx)
	})
	return w
}

// user adds an approved, confirmed account of role user.
func (w *world) user(name string) *models.Account {
	return w.accounts.add(models.Account{
		Role:      models.RoleUser,
		Name:      models.Name{First: name, Last: "Test"},
		Email:     strings.ToLower(name) + "@example.com",
		Approved:  true,
		Confirmed: true,
	})
}

func (w *world) business(name string) *models.Account {
	return w.accounts.add(models.Account{
		Role:      models.RoleBusiness,
		Name:      models.Name{First: name},
		Email:     strings.ToLower(name) + "@biz.example.com",
		Approved:  true,
		Confirmed: true,
	})
}

// notificationsOf returns every notification received by account.
func (w *world) notificationsOf(account *models.Account) []models.Notification {
	w.t.Helper()
	list, _, err := w.notifications.ListByReceiver(context.Background(), account.ID.Hex(), 1)
	if err != nil {
		w.t.Fatalf("list notifications: %v", err)
	}
	return list
}

func countType(list []models.Notification, typ models.NotificationType) int {
	n := 0
	for _, x := range list {
		if x.Type == typ {
			n++
		}
	}
	return n
}

var errPushFailed = errors.New("device unreachable")

// memStorage keeps uploaded blobs in memory.
type memStorage struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newMemStorage() *memStorage {
	return &memStorage{blobs: map[string][]byte{}}
}

const memBase = "mem://blobs/"

func (m *memStorage) Store(_ context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	m.blobs[key] = data
	m.mu.Unlock()
	return memBase + key, nil
}

func (m *memStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.blobs, key)
	m.mu.Unlock()
	return nil
}

func (m *memStorage) KeyOf(url string) (string, bool) {
	if !strings.HasPrefix(url, memBase) {
		return "", false
	}
	return strings.TrimPrefix(url, memBase), true
}

func (m *memStorage) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.blobs)
}

// recordingMailer keeps sent emails and can be told to fail.
type recordingMailer struct {
	mu   sync.Mutex
	sent []mailer.Email
	err  error
}

func (m *recordingMailer) Send(_ context.Context, e mailer.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, e)
	return nil
}

func (m *recordingMailer) last() mailer.Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return mailer.Email{}
	}
	return m.sent[len(m.sent)-1]
}
