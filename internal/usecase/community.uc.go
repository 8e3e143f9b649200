package usecase

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/internal/domain"
	xerrors "github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/pkg/errors"
)

// Repositories the community usecase orchestrates. Reads are open to any
// signed-in member; writes require a verified profile.

type EventStore interface {
	List(ctx context.Context, kind domain.EventKind) ([]*domain.Event, error)
	Get(ctx context.Context, id string) (*domain.Event, error)
	Create(ctx context.Context, e *domain.Event) (*domain.Event, error)
}

type JobStore interface {
	List(ctx context.Context) ([]*domain.Job, error)
	Create(ctx context.Context, j *domain.Job) (*domain.Job, error)
}

type DonorStore interface {
	List(ctx context.Context, f domain.DonorFilter) ([]*domain.BloodDonor, error)
	Register(ctx context.Context, d *domain.BloodDonor) (*domain.BloodDonor, error)
}

type DonationStore interface {
	List(ctx context.Context) ([]*domain.Donation, error)
	Record(ctx context.Context, d *domain.Donation) (*domain.Donation, error)
}

type MatrimonialStore interface {
	List(ctx context.Context, f domain.MatrimonialFilter) ([]*domain.MatrimonialProfile, error)
	Get(ctx context.Context, id string) (*domain.MatrimonialProfile, error)
	Create(ctx context.Context, m *domain.MatrimonialProfile) (*domain.MatrimonialProfile, error)
	CreateContactRequest(ctx context.Context, profileID, requesterID string) (*domain.ContactRequest, error)
}

type PostHolderStore interface {
	List(ctx context.Context) ([]*domain.PostHolder, error)
}

// DirectoryStore lists the verified-member directory.
type DirectoryStore interface {
	ListVerified(ctx context.Context) ([]*domain.Profile, error)
}

// Publisher fans a content notification out to connected clients.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload interface{}) error
}

// HomeFeed is the aggregate the home screen renders in one round trip.
type HomeFeed struct {
	Events        []*domain.Event      `json:"events"`
	Announcements []*domain.Event      `json:"announcements"`
	Jobs          []*domain.Job        `json:"jobs"`
	PostHolders   []*domain.PostHolder `json:"post_holders"`
}

// Identity answers the two questions write paths care about: who is acting and
// whether they are verified. The auth reconciler satisfies it.
type Identity interface {
	Snapshot() domain.AuthorizationState
}

type CommunityUsecase struct {
	events      EventStore
	jobs        JobStore
	donors      DonorStore
	donations   DonationStore
	matrimonial MatrimonialStore
	postHolders PostHolderStore
	directory   DirectoryStore
	identity    Identity
	publisher   Publisher
	logger      *zap.Logger
}

func NewCommunityUsecase(
	events EventStore,
	jobs JobStore,
	donors DonorStore,
	donations DonationStore,
	matrimonial MatrimonialStore,
	postHolders PostHolderStore,
	directory DirectoryStore,
	identity Identity,
	publisher Publisher,
	logger *zap.Logger,
) *CommunityUsecase {
	return &CommunityUsecase{
		events:      events,
		jobs:        jobs,
		donors:      donors,
		donations:   donations,
		matrimonial: matrimonial,
		postHolders: postHolders,
		directory:   directory,
		identity:    identity,
		publisher:   publisher,
		logger:      logger,
	}
}

// Home loads the home-screen sections concurrently; one slow or failing
// section fails the whole aggregate so the screen can fall back to cached
// content instead of rendering a partial page.
func (u *CommunityUsecase) Home(ctx context.Context) (*HomeFeed, error) {
	if err := u.requireSession(); err != nil {
		return nil, err
	}

	feed := &HomeFeed{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		events, err := u.events.List(gctx, domain.EventsOnly)
		if err != nil {
			return err
		}
		feed.Events = events
		return nil
	})
	g.Go(func() error {
		ann, err := u.events.List(gctx, domain.EventsAnnouncements)
		if err != nil {
			return err
		}
		feed.Announcements = ann
		return nil
	})
	g.Go(func() error {
		jobs, err := u.jobs.List(gctx)
		if err != nil {
			return err
		}
		feed.Jobs = jobs
		return nil
	})
	g.Go(func() error {
		holders, err := u.postHolders.List(gctx)
		if err != nil {
			return err
		}
		feed.PostHolders = holders
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return feed, nil
}

func (u *CommunityUsecase) ListEvents(ctx context.Context, kind domain.EventKind) ([]*domain.Event, error) {
	if err := u.requireSession(); err != nil {
		return nil, err
	}
	return u.events.List(ctx, kind)
}

func (u *CommunityUsecase) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	if err := u.requireSession(); err != nil {
		return nil, err
	}
	return u.events.Get(ctx, id)
}

// CreateEvent submits an event for approval. Ordinary verified members post
// into the moderation queue; admins publish directly.
func (u *CommunityUsecase) CreateEvent(ctx context.Context, e *domain.Event) (*domain.Event, error) {
	state, err := u.requireVerified()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(e.Title) == "" {
		return nil, xerrors.NewValidation("title", xerrors.ErrTitleRequired)
	}
	e.CreatedBy = state.User.UserID
	e.Status = "pending"
	if state.IsAdmin {
		e.Status = "approved"
	}

	created, err := u.events.Create(ctx, e)
	if err != nil {
		return nil, err
	}
	u.announce(ctx, "events", created)
	return created, nil
}

func (u *CommunityUsecase) ListJobs(ctx context.Context) ([]*domain.Job, error) {
	if err := u.requireSession(); err != nil {
		return nil, err
	}
	return u.jobs.List(ctx)
}

func (u *CommunityUsecase) CreateJob(ctx context.Context, j *domain.Job) (*domain.Job, error) {
	state, err := u.requireVerified()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(j.Title) == "" {
		return nil, xerrors.NewValidation("title", xerrors.ErrTitleRequired)
	}
	j.PostedBy = state.User.UserID
	j.Status = "pending"
	if state.IsAdmin {
		j.Status = "approved"
	}

	created, err := u.jobs.Create(ctx, j)
	if err != nil {
		return nil, err
	}
	u.announce(ctx, "jobs", created)
	return created, nil
}

func (u *CommunityUsecase) ListDonors(ctx context.Context, f domain.DonorFilter) ([]*domain.BloodDonor, error) {
	if err := u.requireSession(); err != nil {
		return nil, err
	}
	return u.donors.List(ctx, f)
}

// RegisterDonor upserts the caller's own donor record; members may only
// register themselves.
func (u *CommunityUsecase) RegisterDonor(ctx context.Context, d *domain.BloodDonor) (*domain.BloodDonor, error) {
	state, err := u.requireVerified()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(d.BloodGroup) == "" {
		return nil, xerrors.NewValidation("blood_group", xerrors.ErrBloodGroupRequired)
	}
	d.UserID = state.User.UserID
	return u.donors.Register(ctx, d)
}

func (u *CommunityUsecase) ListDonations(ctx context.Context) ([]*domain.Donation, error) {
	if err := u.requireSession(); err != nil {
		return nil, err
	}
	return u.donations.List(ctx)
}

// RecordDonation is an admin-only ledger write.
func (u *CommunityUsecase) RecordDonation(ctx context.Context, d *domain.Donation) (*domain.Donation, error) {
	if err := u.requireSession(); err != nil {
		return nil, err
	}
	if !u.identity.Snapshot().IsAdmin {
		return nil, xerrors.ErrNotVerified
	}
	return u.donations.Record(ctx, d)
}

func (u *CommunityUsecase) ListMatrimonial(ctx context.Context, f domain.MatrimonialFilter) ([]*domain.MatrimonialProfile, error) {
	if err := u.requireSession(); err != nil {
		return nil, err
	}
	return u.matrimonial.List(ctx, f)
}

func (u *CommunityUsecase) GetMatrimonial(ctx context.Context, id string) (*domain.MatrimonialProfile, error) {
	if err := u.requireSession(); err != nil {
		return nil, err
	}
	return u.matrimonial.Get(ctx, id)
}

func (u *CommunityUsecase) CreateMatrimonial(ctx context.Context, m *domain.MatrimonialProfile) (*domain.MatrimonialProfile, error) {
	state, err := u.requireVerified()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(m.FullName) == "" {
		return nil, xerrors.NewValidation("full_name", xerrors.ErrFullNameRequired)
	}
	m.UserID = state.User.UserID
	m.Status = "pending"
	return u.matrimonial.Create(ctx, m)
}

// RequestContact records interest in a matrimonial profile. The contact
// details are released out of band once the profile owner approves.
func (u *CommunityUsecase) RequestContact(ctx context.Context, profileID string) (*domain.ContactRequest, error) {
	state, err := u.requireVerified()
	if err != nil {
		return nil, err
	}
	return u.matrimonial.CreateContactRequest(ctx, profileID, state.User.UserID)
}

// ListMembers returns the verified-member directory.
func (u *CommunityUsecase) ListMembers(ctx context.Context) ([]*domain.Profile, error) {
	if err := u.requireSession(); err != nil {
		return nil, err
	}
	return u.directory.ListVerified(ctx)
}

func (u *CommunityUsecase) ListPostHolders(ctx context.Context) ([]*domain.PostHolder, error) {
	if err := u.requireSession(); err != nil {
		return nil, err
	}
	return u.postHolders.List(ctx)
}

// requireSession gates reads: a session and a completed profile.
func (u *CommunityUsecase) requireSession() error {
	state := u.identity.Snapshot()
	if !state.HasSession() {
		return xerrors.ErrNoSession
	}
	if !state.HasProfile() {
		return xerrors.ErrNoProfile
	}
	return nil
}

func (u *CommunityUsecase) requireVerified() (domain.AuthorizationState, error) {
	state := u.identity.Snapshot()
	if !state.HasSession() {
		return state, xerrors.ErrNoSession
	}
	if !state.IsVerified {
		return state, xerrors.ErrNotVerified
	}
	return state, nil
}

// announce pushes a best-effort notification; delivery failures never fail
// the write that triggered them.
func (u *CommunityUsecase) announce(ctx context.Context, channel string, payload interface{}) {
	if u.publisher == nil {
		return
	}
	if err := u.publisher.Publish(ctx, channel, payload); err != nil {
		u.logger.Warn("content notification failed",
			zap.String("channel", channel), zap.Error(err))
	}
}
