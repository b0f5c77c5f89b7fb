package services

import (
	"context"
	"testing"
	"time"

	"kort.link/models"
	"kort.link/pkg/queryparams"
	"kort.link/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSessionRepo ISessionRepository'nin bellek içi sürümüdür.
type fakeSessionRepo struct {
	nextID uint
	rows   map[uint]*models.Session

	// createConflicts kaç Create çağrısının ErrConflict ile düşeceğini söyler.
	createConflicts int
	createCalls     int
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{nextID: 1, rows: make(map[uint]*models.Session)}
}

func (f *fakeSessionRepo) seed(s models.Session) *models.Session {
	s.ID = f.nextID
	f.nextID++
	stored := s
	f.rows[s.ID] = &stored
	return &stored
}

func (f *fakeSessionRepo) Create(ctx context.Context, session *models.Session) error {
	f.createCalls++
	if f.createConflicts > 0 {
		f.createConflicts--
		return repositories.ErrConflict
	}
	session.ID = f.nextID
	f.nextID++
	stored := *session
	f.rows[session.ID] = &stored
	return nil
}

func (f *fakeSessionRepo) FindByID(ctx context.Context, id uint) (*models.Session, error) {
	row, ok := f.rows[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	c := *row
	return &c, nil
}

func (f *fakeSessionRepo) FindByPublicCode(ctx context.Context, code string) (*models.Session, error) {
	for _, row := range f.rows {
		if row.PublicCode == code {
			c := *row
			return &c, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeSessionRepo) FindByHostSlug(ctx context.Context, slug string) (*models.Session, error) {
	for _, row := range f.rows {
		if row.HostSlug == slug {
			c := *row
			return &c, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeSessionRepo) FindAllByHostPaginated(ctx context.Context, hostUserID uint, params queryparams.ListParams) ([]models.Session, int64, error) {
	var out []models.Session
	for _, row := range f.rows {
		if row.HostUserID == hostUserID {
			out = append(out, *row)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeSessionRepo) Update(ctx context.Context, session *models.Session) error {
	if _, ok := f.rows[session.ID]; !ok {
		return repositories.ErrNotFound
	}
	stored := *session
	f.rows[session.ID] = &stored
	return nil
}

func (f *fakeSessionRepo) UpdateStatus(ctx context.Context, id uint, status models.SessionStatus) error {
	row, ok := f.rows[id]
	if !ok {
		return repositories.ErrNotFound
	}
	row.Status = status
	return nil
}

func (f *fakeSessionRepo) CountByHost(ctx context.Context, hostUserID uint) (int64, error) {
	var count int64
	for _, row := range f.rows {
		if row.HostUserID == hostUserID {
			count++
		}
	}
	return count, nil
}

var _ repositories.ISessionRepository = (*fakeSessionRepo)(nil)

// fakeTypeRepo ITypeRepository'nin bellek içi sürümüdür.
type fakeTypeRepo struct {
	types []models.Type
}

func newFakeTypeRepo() *fakeTypeRepo {
	badminton := models.Type{Name: models.TypeNameBadminton}
	badminton.ID = 1
	pickleball := models.Type{Name: models.TypeNamePickleball}
	pickleball.ID = 2
	return &fakeTypeRepo{types: []models.Type{badminton, pickleball}}
}

func (f *fakeTypeRepo) FindByName(ctx context.Context, name string) (*models.Type, error) {
	for i := range f.types {
		if f.types[i].Name == name {
			c := f.types[i]
			return &c, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeTypeRepo) FindAll(ctx context.Context) ([]models.Type, error) {
	return f.types, nil
}

var _ repositories.ITypeRepository = (*fakeTypeRepo)(nil)

func newSessionFixture() (*SessionService, *fakeSessionRepo) {
	repo := newFakeSessionRepo()
	svc := &SessionService{
		repo:     repo,
		typeRepo: newFakeTypeRepo(),
		now:      func() time.Time { return testEpoch },
	}
	return svc, repo
}

func validSessionInput() SessionInput {
	return SessionInput{
		TypeName:          models.TypeNameBadminton,
		Title:             "Perşembe badminton",
		StartsAt:          testEpoch.Add(48 * time.Hour),
		Capacity:          capOf(8),
		WaitlistEnabled:   true,
		PricePerHeadCents: 12500,
	}
}

func TestLoadJoinableSession(t *testing.T) {
	svc, repo := newSessionFixture()
	ctx := context.Background()

	open := repo.seed(models.Session{
		HostUserID: testHostID,
		PublicCode: "acik1234567",
		HostSlug:   "slug-acik",
		Title:      "Açık oturum",
		StartsAt:   testEpoch.Add(2 * time.Hour),
		Status:     models.SessionStatusOpen,
	})
	repo.seed(models.Session{
		HostUserID: testHostID,
		PublicCode: "taslak12345",
		HostSlug:   "slug-taslak",
		Title:      "Taslak oturum",
		StartsAt:   testEpoch.Add(2 * time.Hour),
		Status:     models.SessionStatusDraft,
	})
	repo.seed(models.Session{
		HostUserID: testHostID,
		PublicCode: "gecmis12345",
		HostSlug:   "slug-gecmis",
		Title:      "Başlamış oturum",
		StartsAt:   testEpoch.Add(-time.Minute),
		Status:     models.SessionStatusOpen,
	})

	got, err := svc.LoadJoinableSession(ctx, "acik1234567")
	require.NoError(t, err)
	assert.Equal(t, open.ID, got.ID)

	_, err = svc.LoadJoinableSession(ctx, "hicyok12345")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = svc.LoadJoinableSession(ctx, "taslak12345")
	assert.ErrorIs(t, err, ErrSessionNotOpen)

	_, err = svc.LoadJoinableSession(ctx, "gecmis12345")
	assert.ErrorIs(t, err, ErrSessionAlreadyStarted)
}

func TestLoadJoinableSessionAtExactStart(t *testing.T) {
	svc, repo := newSessionFixture()

	// StartsAt == now sınır durumu: katılım kapalıdır.
	repo.seed(models.Session{
		HostUserID: testHostID,
		PublicCode: "tamsaat1234",
		HostSlug:   "slug-tam",
		Title:      "Tam saatinde",
		StartsAt:   testEpoch,
		Status:     models.SessionStatusOpen,
	})

	_, err := svc.LoadJoinableSession(context.Background(), "tamsaat1234")
	assert.ErrorIs(t, err, ErrSessionAlreadyStarted)
}

func TestCreateSession(t *testing.T) {
	svc, repo := newSessionFixture()

	session, err := svc.CreateSession(context.Background(), testHostID, validSessionInput())
	require.NoError(t, err)

	assert.Equal(t, models.SessionStatusOpen, session.Status)
	assert.Len(t, session.PublicCode, 11)
	assert.NotEmpty(t, session.HostSlug)
	assert.Equal(t, "TRY", session.Currency)
	assert.Equal(t, models.TypeNameBadminton, session.Type.Name)
	assert.Equal(t, 1, repo.createCalls)
}

func TestCreateSessionRetriesOnCodeConflict(t *testing.T) {
	svc, repo := newSessionFixture()
	repo.createConflicts = 2

	session, err := svc.CreateSession(context.Background(), testHostID, validSessionInput())
	require.NoError(t, err)
	assert.Equal(t, 3, repo.createCalls, "çakışan kodlar yeni kodla tekrar denenir")
	assert.NotZero(t, session.ID)
}

func TestCreateSessionGivesUpAfterMaxAttempts(t *testing.T) {
	svc, repo := newSessionFixture()
	repo.createConflicts = publicCodeMaxAttempts

	_, err := svc.CreateSession(context.Background(), testHostID, validSessionInput())
	assert.ErrorIs(t, err, ErrSessionCreationFailed)
	assert.Equal(t, publicCodeMaxAttempts, repo.createCalls)
}

func TestCreateSessionValidation(t *testing.T) {
	svc, _ := newSessionFixture()
	ctx := context.Background()

	input := validSessionInput()
	input.Title = ""
	_, err := svc.CreateSession(ctx, testHostID, input)
	assert.ErrorIs(t, err, ErrSessionInvalidInput)

	input = validSessionInput()
	input.StartsAt = time.Time{}
	_, err = svc.CreateSession(ctx, testHostID, input)
	assert.ErrorIs(t, err, ErrSessionInvalidInput)

	input = validSessionInput()
	input.Capacity = capOf(0)
	_, err = svc.CreateSession(ctx, testHostID, input)
	assert.ErrorIs(t, err, ErrSessionInvalidInput)

	input = validSessionInput()
	input.TypeName = "curling"
	_, err = svc.CreateSession(ctx, testHostID, input)
	assert.ErrorIs(t, err, ErrSessionTypeNotFound)

	_, err = svc.CreateSession(ctx, 0, validSessionInput())
	assert.ErrorIs(t, err, ErrSessionInvalidInput)
}

func TestGetSessionForHostOwnership(t *testing.T) {
	svc, repo := newSessionFixture()
	ctx := context.Background()

	repo.seed(models.Session{
		HostUserID: testHostID,
		PublicCode: "sahipli1234",
		HostSlug:   "slug-sahipli",
		Title:      "Sahipli oturum",
		StartsAt:   testEpoch.Add(time.Hour),
		Status:     models.SessionStatusOpen,
	})

	got, err := svc.GetSessionForHost(ctx, "slug-sahipli", testHostID)
	require.NoError(t, err)
	assert.Equal(t, "sahipli1234", got.PublicCode)

	_, err = svc.GetSessionForHost(ctx, "slug-sahipli", testOtherUID)
	assert.ErrorIs(t, err, ErrSessionForbidden)

	_, err = svc.GetSessionForHost(ctx, "slug-yok", testHostID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestUpdateSessionStatus(t *testing.T) {
	svc, repo := newSessionFixture()
	ctx := context.Background()

	seeded := repo.seed(models.Session{
		HostUserID: testHostID,
		PublicCode: "durum123456",
		HostSlug:   "slug-durum",
		Title:      "Durum oturumu",
		StartsAt:   testEpoch.Add(time.Hour),
		Status:     models.SessionStatusOpen,
	})

	err := svc.UpdateSessionStatus(ctx, "slug-durum", testHostID, models.SessionStatusClosed)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusClosed, repo.rows[seeded.ID].Status)

	err = svc.UpdateSessionStatus(ctx, "slug-durum", testHostID, models.SessionStatus("bozuk"))
	assert.ErrorIs(t, err, ErrSessionInvalidInput)
}

func TestUpdateSession(t *testing.T) {
	svc, repo := newSessionFixture()
	ctx := context.Background()

	seeded := repo.seed(models.Session{
		HostUserID: testHostID,
		PublicCode: "gncl1234567",
		HostSlug:   "slug-gncl",
		Title:      "Eski başlık",
		StartsAt:   testEpoch.Add(time.Hour),
		Status:     models.SessionStatusOpen,
		Currency:   "TRY",
	})

	input := validSessionInput()
	input.Title = "Yeni başlık"
	input.Capacity = nil

	updated, err := svc.UpdateSession(ctx, "slug-gncl", testHostID, input)
	require.NoError(t, err)
	assert.Equal(t, "Yeni başlık", updated.Title)
	assert.Nil(t, updated.Capacity)
	assert.Equal(t, "Yeni başlık", repo.rows[seeded.ID].Title)
}
