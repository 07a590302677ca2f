package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/aayush4jha/kirayawale-beta-version/internal/events"
	"github.com/aayush4jha/kirayawale-beta-version/internal/model"
	"github.com/aayush4jha/kirayawale-beta-version/internal/repository"
)

// ListingStore is the listing persistence collaborator.
type ListingStore interface {
	FetchAll(ctx context.Context) ([]model.Listing, error)
	FetchByOwner(ctx context.Context, ownerID string) ([]model.Listing, error)
	GetByID(ctx context.Context, id string) (*model.Listing, error)
	Create(ctx context.Context, l *model.Listing) (string, error)
	Update(ctx context.Context, id string, u model.ListingUpdate) error
	Delete(ctx context.Context, id string) error
	AppendPhoto(ctx context.Context, id, url string) error
}

// OwnerLookup resolves the profile attached to a listing.
type OwnerLookup interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// ListingInput is what an owner submits to create a listing.
type ListingInput struct {
	OwnerID               string     `json:"user_id"`
	Title                 string     `json:"title"`
	Category              string     `json:"category"`
	Description           string     `json:"description"`
	PricePerDay           float64    `json:"price_per_day"`
	AvailabilityStartDate *time.Time `json:"availability_start_date"`
	AvailabilityEndDate   *time.Time `json:"availability_end_date"`
	Location              string     `json:"location"`
	Photos                []string   `json:"photos"`
}

// ListingService fronts the listing collaborator: it validates writes,
// restricts them to the owner, and serves filtered browse results from a
// short-lived snapshot of all listings.
type ListingService struct {
	store   ListingStore
	owners  OwnerLookup
	changes *events.Bus[events.ListingChanged]
	log     *zap.Logger
	ttl     time.Duration
	now     func() time.Time

	fetches  singleflight.Group
	creating sync.Map

	mu        sync.RWMutex
	snapshot  []model.Listing
	fetchedAt time.Time
	gen       uint64 // bumped on every invalidation
}

// fetchTimeout bounds a shared snapshot fetch. The fetch is detached from
// any single caller's context since other callers may be waiting on it.
const fetchTimeout = 15 * time.Second

func NewListingService(store ListingStore, owners OwnerLookup, changes *events.Bus[events.ListingChanged], ttl time.Duration, log *zap.Logger) *ListingService {
	s := &ListingService{
		store:   store,
		owners:  owners,
		changes: changes,
		log:     log,
		ttl:     ttl,
		now:     time.Now,
	}
	changes.Subscribe(func(events.ListingChanged) { s.invalidate() })
	return s
}

// Browse returns the eligible listings, newest first, narrowed by c.
func (s *ListingService) Browse(ctx context.Context, c model.FilterCriteria) ([]model.Listing, error) {
	all, err := s.eligible(ctx)
	if err != nil {
		return nil, err
	}
	return FilterListings(all, c), nil
}

const (
	defaultFeatured = 10
	maxFeatured     = 50
)

// Featured returns the newest eligible listings. limit below 1 means the
// default and is capped at maxFeatured.
func (s *ListingService) Featured(ctx context.Context, limit int) ([]model.Listing, error) {
	if limit < 1 {
		limit = defaultFeatured
	}
	limit = min(limit, maxFeatured)
	all, err := s.eligible(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.Listing, min(limit, len(all)))
	copy(out, all)
	return out, nil
}

// Stats counts every listing, eligible or not.
func (s *ListingService) Stats(ctx context.Context) (*model.ListingStats, error) {
	all, err := s.store.FetchAll(ctx)
	if err != nil {
		return nil, s.collaboratorErr("ListingService.Stats", err)
	}
	stats := &model.ListingStats{
		TotalListings:  len(all),
		CategoryCounts: map[model.Category]int{},
	}
	for _, l := range all {
		if l.Eligible() {
			stats.ActiveListings++
		}
		if l.IsRented {
			stats.RentedListings++
		}
		stats.CategoryCounts[l.Category]++
	}
	return stats, nil
}

// Get returns one listing with its owner's profile when available.
func (s *ListingService) Get(ctx context.Context, id string) (*model.Listing, error) {
	l, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, s.collaboratorErr("ListingService.Get", err)
	}
	if l.OwnerID != "" && s.owners != nil {
		owner, err := s.owners.GetByID(ctx, l.OwnerID)
		if err != nil {
			s.log.Warn("owner profile unavailable", zap.String("listing_id", id), zap.Error(err))
		} else {
			l.Owner = owner
		}
	}
	return l, nil
}

// ListByOwner returns all of the owner's listings, newest first.
func (s *ListingService) ListByOwner(ctx context.Context, ownerID string) ([]model.Listing, error) {
	list, err := s.store.FetchByOwner(ctx, ownerID)
	if err != nil {
		return nil, s.collaboratorErr("ListingService.ListByOwner", err)
	}
	sortNewestFirst(list)
	return list, nil
}

// Create validates in and stores a new active, unrented listing owned by
// actorID. A second create by the same owner while one is in flight is
// rejected with ErrConflict.
func (s *ListingService) Create(ctx context.Context, actorID string, in ListingInput) (*model.Listing, error) {
	if actorID == "" {
		return nil, fmt.Errorf("ListingService.Create: %w", ErrUnauthenticated)
	}
	if in.OwnerID == "" {
		in.OwnerID = actorID
	}
	if in.OwnerID != actorID {
		return nil, fmt.Errorf("ListingService.Create: owner mismatch: %w", ErrPermissionDenied)
	}
	l, err := s.validateInput(in)
	if err != nil {
		return nil, err
	}

	if _, busy := s.creating.LoadOrStore(actorID, struct{}{}); busy {
		return nil, fmt.Errorf("ListingService.Create: create already in progress: %w", ErrConflict)
	}
	defer s.creating.Delete(actorID)

	id, err := s.store.Create(ctx, l)
	if err != nil {
		return nil, s.collaboratorErr("ListingService.Create", err)
	}
	l.ID = id
	s.changes.Publish(events.ListingChanged{ListingID: id, OwnerID: actorID, Op: events.ListingCreated})
	s.log.Info("listing created", zap.String("listing_id", id), zap.String("owner_id", actorID))
	return l, nil
}

// Update applies a partial update to a listing owned by actorID.
func (s *ListingService) Update(ctx context.Context, actorID, id string, u model.ListingUpdate) (*model.Listing, error) {
	current, err := s.ownedListing(ctx, "ListingService.Update", actorID, id)
	if err != nil {
		return nil, err
	}
	if err := validateUpdate(current, &u); err != nil {
		return nil, err
	}
	if u.Empty() {
		return current, nil
	}
	if err := s.store.Update(ctx, id, u); err != nil {
		return nil, s.collaboratorErr("ListingService.Update", err)
	}
	s.changes.Publish(events.ListingChanged{ListingID: id, OwnerID: actorID, Op: events.ListingUpdated})

	updated, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, s.collaboratorErr("ListingService.Update", err)
	}
	return updated, nil
}

// Delete removes a listing owned by actorID.
func (s *ListingService) Delete(ctx context.Context, actorID, id string) error {
	if _, err := s.ownedListing(ctx, "ListingService.Delete", actorID, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return s.collaboratorErr("ListingService.Delete", err)
	}
	s.changes.Publish(events.ListingChanged{ListingID: id, OwnerID: actorID, Op: events.ListingDeleted})
	s.log.Info("listing deleted", zap.String("listing_id", id))
	return nil
}

// AddPhoto appends a stored photo's URL to a listing owned by actorID.
func (s *ListingService) AddPhoto(ctx context.Context, actorID, id, url string) error {
	if _, err := s.ownedListing(ctx, "ListingService.AddPhoto", actorID, id); err != nil {
		return err
	}
	if err := s.store.AppendPhoto(ctx, id, url); err != nil {
		return s.collaboratorErr("ListingService.AddPhoto", err)
	}
	s.changes.Publish(events.ListingChanged{ListingID: id, OwnerID: actorID, Op: events.ListingUpdated})
	return nil
}

// CheckOwner returns ErrPermissionDenied unless actorID owns listing id.
func (s *ListingService) CheckOwner(ctx context.Context, actorID, id string) error {
	_, err := s.ownedListing(ctx, "ListingService.CheckOwner", actorID, id)
	return err
}

func (s *ListingService) ownedListing(ctx context.Context, op, actorID, id string) (*model.Listing, error) {
	if actorID == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}
	l, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, s.collaboratorErr(op, err)
	}
	if l.OwnerID != actorID {
		return nil, fmt.Errorf("%s: listing %s: %w", op, id, ErrPermissionDenied)
	}
	return l, nil
}

// eligible serves the cached snapshot or refetches it. Concurrent
// refetches share one collaborator call. A fetch that overlaps an
// invalidation still answers its callers but is not cached.
func (s *ListingService) eligible(ctx context.Context) ([]model.Listing, error) {
	s.mu.RLock()
	if s.snapshot != nil && s.now().Sub(s.fetchedAt) < s.ttl {
		list := s.snapshot
		s.mu.RUnlock()
		return list, nil
	}
	s.mu.RUnlock()

	ch := s.fetches.DoChan("all", func() (interface{}, error) {
		s.mu.RLock()
		gen := s.gen
		s.mu.RUnlock()

		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
		defer cancel()
		all, err := s.store.FetchAll(fctx)
		if err != nil {
			return nil, err
		}
		list := make([]model.Listing, 0, len(all))
		for _, l := range all {
			if l.Eligible() {
				list = append(list, l)
			}
		}
		sortNewestFirst(list)

		s.mu.Lock()
		if s.gen == gen {
			s.snapshot = list
			s.fetchedAt = s.now()
		}
		s.mu.Unlock()
		return list, nil
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("ListingService.Browse: %w", ctx.Err())
	case r := <-ch:
		if r.Err != nil {
			return nil, s.collaboratorErr("ListingService.Browse", r.Err)
		}
		return r.Val.([]model.Listing), nil
	}
}

// invalidate drops the snapshot and detaches any in-flight fetch so the
// next reader starts a fresh one.
func (s *ListingService) invalidate() {
	s.mu.Lock()
	s.snapshot = nil
	s.gen++
	s.mu.Unlock()
	s.fetches.Forget("all")
}

func (s *ListingService) validateInput(in ListingInput) (*model.Listing, error) {
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	location := strings.TrimSpace(in.Location)
	category := model.Category(in.Category)

	switch {
	case title == "":
		return nil, invalid("title", "Title is required")
	case in.Category == "":
		return nil, invalid("category", "Category is required")
	case !category.Valid():
		return nil, invalid("category", fmt.Sprintf("Unknown category %q", in.Category))
	case description == "":
		return nil, invalid("description", "Description is required")
	case in.PricePerDay <= 0:
		return nil, invalid("price_per_day", "Valid price per day is required")
	case location == "":
		return nil, invalid("location", "Location is required")
	}

	start := s.now().UTC()
	if in.AvailabilityStartDate != nil {
		start = *in.AvailabilityStartDate
	}
	if in.AvailabilityEndDate != nil && in.AvailabilityEndDate.Before(start) {
		return nil, invalid("availability_end_date", "End date must not be before the start date")
	}
	photos := in.Photos
	if photos == nil {
		photos = []string{}
	}
	return &model.Listing{
		OwnerID:               in.OwnerID,
		Title:                 title,
		Category:              category,
		Description:           description,
		PricePerDay:           in.PricePerDay,
		AvailabilityStartDate: start,
		AvailabilityEndDate:   in.AvailabilityEndDate,
		Location:              location,
		Photos:                photos,
		IsActive:              true,
		IsRented:              false,
	}, nil
}

func validateUpdate(current *model.Listing, u *model.ListingUpdate) error {
	if u.Title != nil {
		t := strings.TrimSpace(*u.Title)
		if t == "" {
			return invalid("title", "Title is required")
		}
		u.Title = &t
	}
	if u.Category != nil && !u.Category.Valid() {
		return invalid("category", fmt.Sprintf("Unknown category %q", *u.Category))
	}
	if u.Description != nil {
		d := strings.TrimSpace(*u.Description)
		if d == "" {
			return invalid("description", "Description is required")
		}
		u.Description = &d
	}
	if u.PricePerDay != nil && *u.PricePerDay <= 0 {
		return invalid("price_per_day", "Valid price per day is required")
	}
	if u.Location != nil {
		loc := strings.TrimSpace(*u.Location)
		if loc == "" {
			return invalid("location", "Location is required")
		}
		u.Location = &loc
	}

	start := current.AvailabilityStartDate
	if u.AvailabilityStartDate != nil {
		start = *u.AvailabilityStartDate
	}
	end := current.AvailabilityEndDate
	if u.AvailabilityEndDate != nil {
		end = u.AvailabilityEndDate
	}
	if end != nil && end.Before(start) {
		return invalid("availability_end_date", "End date must not be before the start date")
	}
	return nil
}

// collaboratorErr keeps ErrNotFound distinguishable and reports every
// other collaborator failure as ErrUnavailable.
func (s *ListingService) collaboratorErr(op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	s.log.Error("listing collaborator failed", zap.String("op", op), zap.Error(err))
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}

func sortNewestFirst(list []model.Listing) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
}
