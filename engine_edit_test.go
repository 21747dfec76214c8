package passedit

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/credforge/passedit/directory"
	"github.com/credforge/passedit/password"
)

type mockDirectory struct {
	mu       sync.Mutex
	accounts map[string]*directory.AccountIdentity // by name
	fields   map[string]map[string]string          // by id
	findErr  error
	writeErr error

	findCalls   int
	updateCalls int
}

func (m *mockDirectory) FindByName(ctx context.Context, name string) (*directory.AccountIdentity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.findCalls++

	if m.findErr != nil {
		return nil, m.findErr
	}

	identity, ok := m.accounts[name]
	if !ok {
		return nil, directory.ErrNotFound
	}
	cloned := *identity
	return &cloned, nil
}

func (m *mockDirectory) UpdateFields(ctx context.Context, id string, fields map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateCalls++

	if m.writeErr != nil {
		return m.writeErr
	}

	if m.fields == nil {
		m.fields = make(map[string]map[string]string)
	}
	if m.fields[id] == nil {
		m.fields[id] = make(map[string]string)
	}
	for field, value := range fields {
		m.fields[id][field] = value
	}
	return nil
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, client
}

func newTestEngine(t *testing.T, rdb *redis.Client, dir Directory) *Engine {
	t.Helper()

	engine, err := New().
		WithRedis(rdb).
		WithDirectory(dir).
		WithPermissions([]string{CapabilityEditPassword}).
		WithRoles(map[string][]string{
			"steward": {CapabilityEditPassword},
			"clerk":   {},
		}).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return engine
}

func newTestHasher(t *testing.T) *password.Argon2 {
	t.Helper()

	h, err := password.NewArgon2(password.Config{
		Memory:      65536,
		Time:        3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	})
	if err != nil {
		t.Fatalf("NewArgon2 failed: %v", err)
	}
	return h
}

// openSession creates an operator session and returns the operator and a
// freshly issued edit token.
func openSession(t *testing.T, engine *Engine, role string) (Operator, string) {
	t.Helper()

	ctx := context.Background()
	sid, err := engine.OpenOperatorSession(ctx, "op1", role)
	if err != nil {
		t.Fatalf("OpenOperatorSession failed: %v", err)
	}

	operator := Operator{UserID: "op1", Role: role, SessionID: sid}

	token, err := engine.IssueEditToken(ctx, operator)
	if err != nil {
		t.Fatalf("IssueEditToken failed: %v", err)
	}
	return operator, token
}

func aliceDirectory() *mockDirectory {
	return &mockDirectory{
		accounts: map[string]*directory.AccountIdentity{
			"alice": {ID: "u1", Name: "alice"},
		},
	}
}

func TestIssueEditTokenStableAcrossRenders(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	engine := newTestEngine(t, rdb, aliceDirectory())
	operator, first := openSession(t, engine, "steward")

	second, err := engine.IssueEditToken(context.Background(), operator)
	if err != nil {
		t.Fatalf("second IssueEditToken failed: %v", err)
	}
	if second != first {
		t.Fatal("expected the same token across repeated renders")
	}
}

func TestIssueEditTokenDeniedWithoutCapability(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	engine := newTestEngine(t, rdb, aliceDirectory())

	ctx := context.Background()
	sid, err := engine.OpenOperatorSession(ctx, "op1", "clerk")
	if err != nil {
		t.Fatalf("OpenOperatorSession failed: %v", err)
	}

	_, err = engine.IssueEditToken(ctx, Operator{UserID: "op1", Role: "clerk", SessionID: sid})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if got := engine.MetricsSnapshot().Counters[MetricEditUnauthorized]; got != 1 {
		t.Fatalf("expected unauthorized metric 1, got %d", got)
	}
}

func TestIssueEditTokenUnknownRole(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	engine := newTestEngine(t, rdb, aliceDirectory())

	_, err := engine.IssueEditToken(context.Background(), Operator{UserID: "op1", Role: "ghost", SessionID: "s1"})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestEditCredentialsPasswordAndEmail(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	dir := aliceDirectory()
	engine := newTestEngine(t, rdb, dir)
	operator, token := openSession(t, engine, "steward")

	err := engine.EditCredentials(context.Background(), operator, Submission{
		EditToken:       token,
		Username:        "alice",
		Password:        "correct horse battery",
		PasswordConfirm: "correct horse battery",
		Email:           "alice@example.org",
	})
	if err != nil {
		t.Fatalf("EditCredentials failed: %v", err)
	}

	stored := dir.fields["u1"]
	if stored[directory.FieldEmail] != "alice@example.org" {
		t.Fatalf("expected email stored verbatim, got %q", stored[directory.FieldEmail])
	}

	hash := stored[directory.FieldPasswordHash]
	if hash == "" || hash == "correct horse battery" {
		t.Fatal("expected a password hash, not the plaintext")
	}

	ok, err := newTestHasher(t).Verify("correct horse battery", hash)
	if err != nil || !ok {
		t.Fatalf("stored hash does not verify, ok=%v err=%v", ok, err)
	}

	if got := engine.MetricsSnapshot().Counters[MetricEditSuccess]; got != 1 {
		t.Fatalf("expected success metric 1, got %d", got)
	}
}

func TestEditCredentialsPasswordOnly(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	dir := aliceDirectory()
	engine := newTestEngine(t, rdb, dir)
	operator, token := openSession(t, engine, "steward")

	err := engine.EditCredentials(context.Background(), operator, Submission{
		EditToken:       token,
		Username:        "alice",
		Password:        "new-password-123",
		PasswordConfirm: "new-password-123",
	})
	if err != nil {
		t.Fatalf("EditCredentials failed: %v", err)
	}

	stored := dir.fields["u1"]
	if _, ok := stored[directory.FieldEmail]; ok {
		t.Fatal("expected blank email to be left untouched")
	}
	if stored[directory.FieldPasswordHash] == "" {
		t.Fatal("expected password hash to be written")
	}
}

func TestEditCredentialsEmailOnly(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	dir := aliceDirectory()
	engine := newTestEngine(t, rdb, dir)
	operator, token := openSession(t, engine, "steward")

	err := engine.EditCredentials(context.Background(), operator, Submission{
		EditToken: token,
		Username:  "alice",
		Email:     "alice@example.org",
	})
	if err != nil {
		t.Fatalf("EditCredentials failed: %v", err)
	}

	stored := dir.fields["u1"]
	if _, ok := stored[directory.FieldPasswordHash]; ok {
		t.Fatal("expected blank password to be left untouched")
	}
	if stored[directory.FieldEmail] != "alice@example.org" {
		t.Fatalf("unexpected email: %q", stored[directory.FieldEmail])
	}
}

func TestEditCredentialsDeniedWithoutCapability(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	dir := aliceDirectory()
	engine := newTestEngine(t, rdb, dir)

	ctx := context.Background()
	sid, err := engine.OpenOperatorSession(ctx, "op1", "clerk")
	if err != nil {
		t.Fatalf("OpenOperatorSession failed: %v", err)
	}

	err = engine.EditCredentials(ctx, Operator{UserID: "op1", Role: "clerk", SessionID: sid}, Submission{
		Username:        "alice",
		Password:        "p",
		PasswordConfirm: "p",
	})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if dir.findCalls != 0 || dir.updateCalls != 0 {
		t.Fatal("expected directory untouched on capability refusal")
	}
}

func TestEditCredentialsForgedToken(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	dir := aliceDirectory()
	engine := newTestEngine(t, rdb, dir)
	operator, token := openSession(t, engine, "steward")

	err := engine.EditCredentials(context.Background(), operator, Submission{
		EditToken:       "not-" + token,
		Username:        "alice",
		Password:        "p",
		PasswordConfirm: "p",
	})
	if !errors.Is(err, ErrSessionForgery) {
		t.Fatalf("expected ErrSessionForgery, got %v", err)
	}
	if dir.findCalls != 0 || dir.updateCalls != 0 {
		t.Fatal("expected directory untouched on token mismatch")
	}
	if got := engine.MetricsSnapshot().Counters[MetricSessionForgery]; got != 1 {
		t.Fatalf("expected forgery metric 1, got %d", got)
	}
}

func TestEditCredentialsTokenSurvivesFailedAttempt(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	dir := aliceDirectory()
	engine := newTestEngine(t, rdb, dir)
	operator, token := openSession(t, engine, "steward")

	ctx := context.Background()

	err := engine.EditCredentials(ctx, operator, Submission{
		EditToken:       "forged",
		Username:        "alice",
		Password:        "p",
		PasswordConfirm: "p",
	})
	if !errors.Is(err, ErrSessionForgery) {
		t.Fatalf("expected ErrSessionForgery, got %v", err)
	}

	// the genuine token is still valid after a forged attempt
	err = engine.EditCredentials(ctx, operator, Submission{
		EditToken:       token,
		Username:        "alice",
		Password:        "p-longer-pass",
		PasswordConfirm: "p-longer-pass",
	})
	if err != nil {
		t.Fatalf("expected genuine token to still work, got %v", err)
	}
}

func TestEditCredentialsPasswordMismatch(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	dir := aliceDirectory()
	engine := newTestEngine(t, rdb, dir)
	operator, token := openSession(t, engine, "steward")

	err := engine.EditCredentials(context.Background(), operator, Submission{
		EditToken:       token,
		Username:        "alice",
		Password:        "one-password",
		PasswordConfirm: "another-password",
	})
	if !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected ErrPasswordMismatch, got %v", err)
	}
	if dir.findCalls != 0 || dir.updateCalls != 0 {
		t.Fatal("expected directory untouched on password mismatch")
	}
}

func TestEditCredentialsBlankPasswordWithConfirmMismatch(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	dir := aliceDirectory()
	engine := newTestEngine(t, rdb, dir)
	operator, token := openSession(t, engine, "steward")

	// equality is exact: a blank password with a non-blank confirmation
	// is a mismatch, not a skip
	err := engine.EditCredentials(context.Background(), operator, Submission{
		EditToken:       token,
		Username:        "alice",
		Password:        "",
		PasswordConfirm: "stray-confirmation",
	})
	if !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected ErrPasswordMismatch, got %v", err)
	}
}

func TestEditCredentialsCaseSensitivePasswords(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	dir := aliceDirectory()
	engine := newTestEngine(t, rdb, dir)
	operator, token := openSession(t, engine, "steward")

	err := engine.EditCredentials(context.Background(), operator, Submission{
		EditToken:       token,
		Username:        "alice",
		Password:        "Password-123",
		PasswordConfirm: "password-123",
	})
	if !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected ErrPasswordMismatch, got %v", err)
	}
}

func TestEditCredentialsInvalidEmail(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	dir := aliceDirectory()
	engine := newTestEngine(t, rdb, dir)
	operator, token := openSession(t, engine, "steward")

	err := engine.EditCredentials(context.Background(), operator, Submission{
		EditToken: token,
		Username:  "alice",
		Email:     "not-an-email",
	})
	if !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
	if dir.findCalls != 0 {
		t.Fatal("expected email validation to run before target resolution")
	}
}

func TestEditCredentialsUnknownTarget(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	dir := aliceDirectory()
	engine := newTestEngine(t, rdb, dir)
	operator, token := openSession(t, engine, "steward")

	err := engine.EditCredentials(context.Background(), operator, Submission{
		EditToken:       token,
		Username:        "nobody",
		Password:        "p",
		PasswordConfirm: "p",
	})
	if !errors.Is(err, ErrUnknownTarget) {
		t.Fatalf("expected ErrUnknownTarget, got %v", err)
	}
	if dir.updateCalls != 0 {
		t.Fatal("expected no write for an unknown target")
	}
}

func TestEditCredentialsAnonymousTarget(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	dir := &mockDirectory{
		accounts: map[string]*directory.AccountIdentity{
			"ghost": {ID: "u9", Name: "ghost", Anonymous: true},
		},
	}
	engine := newTestEngine(t, rdb, dir)
	operator, token := openSession(t, engine, "steward")

	err := engine.EditCredentials(context.Background(), operator, Submission{
		EditToken:       token,
		Username:        "ghost",
		Password:        "p",
		PasswordConfirm: "p",
	})
	if !errors.Is(err, ErrUnknownTarget) {
		t.Fatalf("expected ErrUnknownTarget, got %v", err)
	}
	if dir.updateCalls != 0 {
		t.Fatal("expected no write for an anonymous target")
	}
}

func TestEditCredentialsBlankUsername(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	dir := aliceDirectory()
	engine := newTestEngine(t, rdb, dir)
	operator, token := openSession(t, engine, "steward")

	err := engine.EditCredentials(context.Background(), operator, Submission{
		EditToken:       token,
		Username:        "",
		Password:        "p",
		PasswordConfirm: "p",
	})
	if !errors.Is(err, ErrUnknownTarget) {
		t.Fatalf("expected ErrUnknownTarget for blank username, got %v", err)
	}
}

func TestEditCredentialsNothingToUpdate(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	dir := aliceDirectory()
	engine := newTestEngine(t, rdb, dir)
	operator, token := openSession(t, engine, "steward")

	err := engine.EditCredentials(context.Background(), operator, Submission{
		EditToken: token,
		Username:  "alice",
	})
	if !errors.Is(err, ErrNothingToUpdate) {
		t.Fatalf("expected ErrNothingToUpdate, got %v", err)
	}
	if dir.updateCalls != 0 {
		t.Fatal("expected no write for an empty submission")
	}
	if got := engine.MetricsSnapshot().Counters[MetricNothingToUpdate]; got != 1 {
		t.Fatalf("expected nothing-to-update metric 1, got %d", got)
	}
}

func TestEditCredentialsStoreFailure(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	dir := aliceDirectory()
	dir.writeErr = errors.New("backend down")
	engine := newTestEngine(t, rdb, dir)
	operator, token := openSession(t, engine, "steward")

	err := engine.EditCredentials(context.Background(), operator, Submission{
		EditToken:       token,
		Username:        "alice",
		Password:        "p",
		PasswordConfirm: "p",
	})
	if !errors.Is(err, ErrNotUpdated) {
		t.Fatalf("expected ErrNotUpdated, got %v", err)
	}
	if got := engine.MetricsSnapshot().Counters[MetricStoreFailure]; got != 1 {
		t.Fatalf("expected store failure metric 1, got %d", got)
	}
}

func TestEditCredentialsResolutionBackendFailure(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	dir := aliceDirectory()
	dir.findErr = errors.New("backend down")
	engine := newTestEngine(t, rdb, dir)
	operator, token := openSession(t, engine, "steward")

	err := engine.EditCredentials(context.Background(), operator, Submission{
		EditToken:       token,
		Username:        "alice",
		Password:        "p",
		PasswordConfirm: "p",
	})
	if !errors.Is(err, ErrNotUpdated) {
		t.Fatalf("expected ErrNotUpdated, got %v", err)
	}
	if dir.updateCalls != 0 {
		t.Fatal("expected no write when resolution fails")
	}
}

func TestEditCredentialsRotatesTokenAfterSuccess(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	dir := aliceDirectory()
	engine := newTestEngine(t, rdb, dir)
	operator, token := openSession(t, engine, "steward")

	ctx := context.Background()

	err := engine.EditCredentials(ctx, operator, Submission{
		EditToken:       token,
		Username:        "alice",
		Password:        "new-password-123",
		PasswordConfirm: "new-password-123",
	})
	if err != nil {
		t.Fatalf("EditCredentials failed: %v", err)
	}

	// the consumed token no longer verifies; the next render gets a new one
	err = engine.EditCredentials(ctx, operator, Submission{
		EditToken:       token,
		Username:        "alice",
		Password:        "another-pass-456",
		PasswordConfirm: "another-pass-456",
	})
	if !errors.Is(err, ErrSessionForgery) {
		t.Fatalf("expected ErrSessionForgery after rotation, got %v", err)
	}

	fresh, err := engine.IssueEditToken(ctx, operator)
	if err != nil {
		t.Fatalf("IssueEditToken after rotation failed: %v", err)
	}
	if fresh == token {
		t.Fatal("expected a different token after a successful edit")
	}
}

func TestEditCredentialsRedisDownFailsClosed(t *testing.T) {
	mr, rdb := newTestRedis(t)

	dir := aliceDirectory()
	engine := newTestEngine(t, rdb, dir)
	operator, token := openSession(t, engine, "steward")

	mr.Close()

	err := engine.EditCredentials(context.Background(), operator, Submission{
		EditToken:       token,
		Username:        "alice",
		Password:        "p",
		PasswordConfirm: "p",
	})
	if !errors.Is(err, ErrSessionForgery) {
		t.Fatalf("expected ErrSessionForgery when the token store is down, got %v", err)
	}
	if dir.updateCalls != 0 {
		t.Fatal("expected no write when token verification is unavailable")
	}
}
