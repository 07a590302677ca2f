package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aayush4jha/kirayawale-beta-version/internal/model"
	"github.com/aayush4jha/kirayawale-beta-version/internal/repository"
)

type fakeListingStore struct {
	mu         sync.Mutex
	listings   map[string]model.Listing
	fetchCalls int
	calls      int
	nextID     int
	fetchErr   error
	createGate chan struct{}
	fetchGate  chan struct{} // holds FetchAll after it has read the listings
}

func newFakeListingStore(listings ...model.Listing) *fakeListingStore {
	s := &fakeListingStore{listings: map[string]model.Listing{}}
	for _, l := range listings {
		s.listings[l.ID] = l
	}
	return s
}

func (s *fakeListingStore) FetchAll(ctx context.Context) ([]model.Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.calls++
	s.fetchCalls++
	if s.fetchErr != nil {
		s.mu.Unlock()
		return nil, s.fetchErr
	}
	out := make([]model.Listing, 0, len(s.listings))
	for _, l := range s.listings {
		out = append(out, l)
	}
	gate := s.fetchGate
	s.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return out, nil
}

func (s *fakeListingStore) fetchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetchCalls
}

func (s *fakeListingStore) FetchByOwner(ctx context.Context, ownerID string) ([]model.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	var out []model.Listing
	for _, l := range s.listings {
		if l.OwnerID == ownerID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *fakeListingStore) GetByID(ctx context.Context, id string) (*model.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	l, ok := s.listings[id]
	if !ok {
		return nil, fmt.Errorf("fake %s: %w", id, repository.ErrNotFound)
	}
	return &l, nil
}

func (s *fakeListingStore) Create(ctx context.Context, l *model.Listing) (string, error) {
	if s.createGate != nil {
		<-s.createGate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.nextID++
	id := fmt.Sprintf("l%d", s.nextID)
	stored := *l
	stored.ID = id
	stored.CreatedAt = time.Now()
	s.listings[id] = stored
	return id, nil
}

func (s *fakeListingStore) Update(ctx context.Context, id string, u model.ListingUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	l, ok := s.listings[id]
	if !ok {
		return repository.ErrNotFound
	}
	if u.Title != nil {
		l.Title = *u.Title
	}
	if u.PricePerDay != nil {
		l.PricePerDay = *u.PricePerDay
	}
	if u.IsRented != nil {
		l.IsRented = *u.IsRented
	}
	if u.IsActive != nil {
		l.IsActive = *u.IsActive
	}
	if u.Description != nil {
		l.Description = *u.Description
	}
	s.listings[id] = l
	return nil
}

func (s *fakeListingStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if _, ok := s.listings[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.listings, id)
	return nil
}

func (s *fakeListingStore) AppendPhoto(ctx context.Context, id, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	l, ok := s.listings[id]
	if !ok {
		return repository.ErrNotFound
	}
	l.Photos = append(l.Photos, url)
	s.listings[id] = l
	return nil
}

func (s *fakeListingStore) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type fakeRatingStore struct {
	inserted []model.Rating
	summary  model.RatingSummary
}

func (s *fakeRatingStore) Insert(ctx context.Context, r *model.Rating) error {
	r.ID = fmt.Sprintf("r%d", len(s.inserted)+1)
	r.CreatedAt = time.Now()
	s.inserted = append(s.inserted, *r)
	return nil
}

func (s *fakeRatingStore) FindByListing(ctx context.Context, listingID string) ([]model.Rating, error) {
	var out []model.Rating
	for _, r := range s.inserted {
		if r.ListingID == listingID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeRatingStore) FindByRatedUser(ctx context.Context, userID string) ([]model.Rating, error) {
	var out []model.Rating
	for i := len(s.inserted) - 1; i >= 0; i-- {
		if s.inserted[i].RatedUserID == userID {
			out = append(out, s.inserted[i])
		}
	}
	return out, nil
}

func (s *fakeRatingStore) UserSummary(ctx context.Context, userID string) (*model.RatingSummary, error) {
	sum := s.summary
	return &sum, nil
}

type fakeUserDirectory struct {
	users    []model.User
	countErr error
	limits   []int
}

func (d *fakeUserDirectory) Search(ctx context.Context, term string, limit int) ([]model.User, error) {
	d.limits = append(d.limits, limit)
	term = strings.ToLower(term)
	var out []model.User
	for _, u := range d.users {
		if len(out) == limit {
			break
		}
		if strings.Contains(strings.ToLower(u.FullName), term) || strings.Contains(strings.ToLower(u.Username), term) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (d *fakeUserDirectory) Count(ctx context.Context) (int, error) {
	if d.countErr != nil {
		return 0, d.countErr
	}
	return len(d.users), nil
}
