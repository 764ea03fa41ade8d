package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Skotchmaster/monster_tracker/internal/config"
	"github.com/Skotchmaster/monster_tracker/internal/db"
	"github.com/Skotchmaster/monster_tracker/internal/hash"
	"github.com/Skotchmaster/monster_tracker/internal/models"
	"github.com/Skotchmaster/monster_tracker/internal/mykafka"
	"github.com/Skotchmaster/monster_tracker/internal/repo"
	"github.com/Skotchmaster/monster_tracker/internal/tokens"
)

func TestMain(m *testing.M) {
	hash.Cost = bcrypt.MinCost
	os.Exit(m.Run())
}

var dbSeq atomic.Int64

func newStore(t *testing.T) *repo.GormRepo {
	t.Helper()

	dsn := fmt.Sprintf("file:service_test_%d?mode=memory&cache=shared", dbSeq.Add(1))
	gdb, err := db.Open(context.Background(), config.DriverSQLite, dsn)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	r := &repo.GormRepo{DB: gdb}
	t.Cleanup(func() { _ = r.Close(context.Background()) })
	return r
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []mykafka.Event
	err    error
}

func (p *recordingPublisher) PublishEvent(_ context.Context, _ string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ev, ok := event.(mykafka.Event); ok {
		p.events = append(p.events, ev)
	}
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

var errBroken = errors.New("connection refused")

type brokenStore struct{}

func (brokenStore) CreateUser(context.Context, *models.User) error { return errBroken }
func (brokenStore) FindUser(context.Context, string) (*models.User, error) {
	return nil, errBroken
}
func (brokenStore) ListConsumption(context.Context, string) ([]models.ConsumptionRecord, error) {
	return nil, errBroken
}
func (brokenStore) UpsertConsumption(context.Context, *models.ConsumptionRecord) error {
	return errBroken
}
func (brokenStore) GetOrCreateGoals(context.Context, models.Goals) (*models.Goals, error) {
	return nil, errBroken
}
func (brokenStore) SaveGoals(context.Context, *models.Goals) error { return errBroken }
func (brokenStore) GetOrCreateSettings(context.Context, models.Settings) (*models.Settings, error) {
	return nil, errBroken
}
func (brokenStore) SaveSettings(context.Context, *models.Settings) error { return errBroken }

func newAuth(t *testing.T, store repo.Users, pub mykafka.Publisher) *AuthService {
	t.Helper()
	return &AuthService{
		Repo:   store,
		Tokens: tokens.NewIssuer([]byte("service-test-secret"), tokens.DefaultTTL),
		Events: pub,
	}
}

func TestAuthService_RegisterLoginVerify(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc := newAuth(t, newStore(t), pub)

	res, err := svc.Register(ctx, "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "alice", res.Username)

	sub, err := svc.VerifyToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", sub)

	_, err = svc.Register(ctx, "alice", "other")
	assert.ErrorIs(t, err, ErrConflict)

	res, err = svc.Login(ctx, "alice", "s3cret")
	require.NoError(t, err)
	sub, err = svc.VerifyToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", sub)

	assert.Equal(t, []string{mykafka.EventUserRegistered, mykafka.EventUserLoggedIn}, pub.types())
}

func TestAuthService_Register_StoresHash(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	svc := newAuth(t, store, nil)

	_, err := svc.Register(ctx, "alice", "s3cret")
	require.NoError(t, err)

	u, err := store.FindUser(ctx, "alice")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", u.PasswordHash)
	assert.True(t, hash.CheckPassword(u.PasswordHash, "s3cret"))
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc := newAuth(t, newStore(t), nil)

	for _, tc := range []struct{ name, user, pass string }{
		{"empty username", "", "pw"},
		{"blank username", "   ", "pw"},
		{"empty password", "alice", ""},
		{"password over 72 bytes", "alice", strings.Repeat("a", 73)},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tc.user, tc.pass)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestAuthService_Login_Unauthorized(t *testing.T) {
	ctx := context.Background()
	svc := newAuth(t, newStore(t), nil)

	_, err := svc.Register(ctx, "alice", "s3cret")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Login(ctx, "nobody", "s3cret")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Login(ctx, "Alice", "s3cret")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthService_VerifyToken_Rejects(t *testing.T) {
	svc := newAuth(t, newStore(t), nil)

	other := tokens.NewIssuer([]byte("someone-else"), tokens.DefaultTTL)
	foreign, _, err := other.Issue("alice")
	require.NoError(t, err)

	expiredIssuer := tokens.NewIssuer([]byte("service-test-secret"), -time.Minute)
	expired, _, err := expiredIssuer.Issue("alice")
	require.NoError(t, err)

	for _, tok := range []string{"", "garbage", foreign, expired} {
		_, err := svc.VerifyToken(tok)
		assert.ErrorIs(t, err, ErrUnauthorized)
	}
}

func TestAuthService_StorageErrors(t *testing.T) {
	svc := newAuth(t, brokenStore{}, nil)

	_, err := svc.Register(context.Background(), "alice", "pw")
	assert.ErrorIs(t, err, ErrStorage)

	_, err = svc.Login(context.Background(), "alice", "pw")
	assert.ErrorIs(t, err, ErrStorage)
}

func TestAuthService_PublishFailureDoesNotFail(t *testing.T) {
	svc := newAuth(t, newStore(t), &recordingPublisher{err: errors.New("broker down")})

	res, err := svc.Register(context.Background(), "alice", "pw")
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
}

func TestConsumptionService_SaveAndList(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc := &ConsumptionService{Repo: newStore(t), Events: pub}

	empty, err := svc.List(ctx, "alice")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	saved, err := svc.Save(ctx, "alice", models.ConsumptionRecord{
		Username:      "mallory",
		Date:          "2024-05-01",
		Drinks:        []models.DrinkItem{{ID: "ultra-white", Price: 2.5}},
		TotalCaffeine: 150,
		TotalCost:     2.5,
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", saved.Username)

	_, err = svc.Save(ctx, "alice", models.ConsumptionRecord{Date: "2024-05-01", TotalCaffeine: 300, TotalCost: 5})
	require.NoError(t, err)

	items, err := svc.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 300.0, items[0].TotalCaffeine)
	assert.NotNil(t, items[0].Drinks)
	assert.Empty(t, items[0].Drinks)

	spoofed, err := svc.List(ctx, "mallory")
	require.NoError(t, err)
	assert.Empty(t, spoofed)

	assert.Equal(t, []string{mykafka.EventConsumptionSaved, mykafka.EventConsumptionSaved}, pub.types())
	assert.Equal(t, "2024-05-01", pub.events[0].Date)
}

func TestConsumptionService_Errors(t *testing.T) {
	svc := &ConsumptionService{Repo: brokenStore{}}

	_, err := svc.List(context.Background(), "alice")
	assert.ErrorIs(t, err, ErrStorage)

	_, err = svc.Save(context.Background(), "alice", models.ConsumptionRecord{Date: "2024-05-01"})
	assert.ErrorIs(t, err, ErrStorage)

	_, err = svc.Save(context.Background(), "alice", models.ConsumptionRecord{})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPreferencesService_Goals(t *testing.T) {
	ctx := context.Background()
	svc := &PreferencesService{Repo: newStore(t)}

	first, err := svc.GetGoals(ctx)
	require.NoError(t, err)
	second, err := svc.GetGoals(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 400.0, first.DailyLimit)

	updated, err := svc.UpdateGoals(ctx, models.Goals{EnableDailyLimit: false, DailyLimit: 120, LimitType: "weekly"})
	require.NoError(t, err)
	assert.Equal(t, 120.0, updated.DailyLimit)

	got, err := svc.GetGoals(ctx)
	require.NoError(t, err)
	assert.Equal(t, updated, got)
}

func TestPreferencesService_Settings(t *testing.T) {
	ctx := context.Background()
	svc := &PreferencesService{Repo: newStore(t)}

	st, err := svc.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "normal", st.DarkModeContrast)
	assert.False(t, st.ReducedMotion)
	assert.True(t, st.AutoRefresh)

	_, err = svc.UpdateSettings(ctx, models.Settings{DarkModeContrast: "high", AnimationIntensity: "low", ReducedMotion: true})
	require.NoError(t, err)

	st, err = svc.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "high", st.DarkModeContrast)
	assert.True(t, st.ReducedMotion)
	assert.False(t, st.AutoRefresh)
}

func TestPreferencesService_Errors(t *testing.T) {
	ctx := context.Background()
	svc := &PreferencesService{Repo: brokenStore{}}

	_, err := svc.GetGoals(ctx)
	assert.ErrorIs(t, err, ErrStorage)
	_, err = svc.UpdateGoals(ctx, models.DefaultGoals())
	assert.ErrorIs(t, err, ErrStorage)
	_, err = svc.GetSettings(ctx)
	assert.ErrorIs(t, err, ErrStorage)
	_, err = svc.UpdateSettings(ctx, models.DefaultSettings())
	assert.ErrorIs(t, err, ErrStorage)
}
