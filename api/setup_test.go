package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"github.com/festivo-org/concierge/clients"
	"github.com/festivo-org/concierge/models"
	"github.com/festivo-org/concierge/team"
	"github.com/festivo-org/concierge/templates"
	"github.com/festivo-org/concierge/testutil"
)

const (
	testing_token_owner    = "a.fake.token.for.the.owner"
	testing_token_invitee  = "a.fake.token.for.the.invitee"
	testing_token_stranger = "a.fake.token.for.a.stranger"

	testing_uid_owner    = "UID123"
	testing_uid_invitee  = "UID999"
	testing_uid_stranger = "UID777"

	testing_owner_email   = "owner@example.org"
	testing_invitee_email = "invitee@example.org"
)

type (
	//common test structure
	toTest struct {
		desc     string
		method   string
		url      string
		body     testJSONObject
		token    string
		respCode int
	}
	// testJSONObject makes it easier to define blobs of json inline.
	testJSONObject map[string]interface{}
)

// mockAuth resolves well-known fake bearer tokens to identities.
type mockAuth struct {
	tokens map[string]*models.TokenData
}

func newMockAuth() *mockAuth {
	return &mockAuth{
		tokens: map[string]*models.TokenData{
			testing_token_owner:    {UserID: testing_uid_owner, Email: testing_owner_email},
			testing_token_invitee:  {UserID: testing_uid_invitee, Email: testing_invitee_email},
			testing_token_stranger: {UserID: testing_uid_stranger, Email: "stranger@example.org"},
		},
	}
}

func (m *mockAuth) Authenticate(req *http.Request) *models.TokenData {
	header := req.Header.Get("Authorization")
	raw := strings.TrimPrefix(header, "Bearer ")
	if raw == header || raw == "" {
		return nil
	}
	return m.tokens[raw]
}

type mockPlans struct {
	tier models.PlanTier
}

func (m *mockPlans) GetPlan(ctx context.Context, userID string) (models.PlanTier, error) {
	return m.tier, nil
}

type testFixture struct {
	rtr      *mux.Router
	store    *clients.MockStoreClient
	notifier *clients.MockNotifier
	audit    *clients.MockAuditRecorder
	plans    *mockPlans
}

func newTestFixture(t *testing.T, storeDoBad bool) *testFixture {
	t.Helper()

	emailTemplates, err := templates.New()
	require.NoError(t, err)

	f := &testFixture{
		store:    clients.NewMockStoreClient(storeDoBad),
		notifier: clients.NewMockNotifier(),
		audit:    clients.NewMockAuditRecorder(),
		plans:    &mockPlans{tier: models.PlanExclusive},
	}

	logger := testutil.NewLogger(t)
	cfg := team.Config{WebUrl: "https://app.festivo.test", AssetUrl: "https://assets.festivo.test"}
	svc := team.NewService(cfg, f.store, f.notifier, f.audit, f.plans, emailTemplates, logger)

	a := NewApi(Config{}, svc, newMockAuth(), logger)
	f.rtr = mux.NewRouter()
	a.SetHandlers("", f.rtr)

	return f
}

// seedPendingInvite plants an invite directly in the store so handler tests
// can control every field, including the expiry.
func (f *testFixture) seedPendingInvite(t *testing.T, mutate func(*models.Invite)) *models.Invite {
	t.Helper()
	invite, err := models.NewInvite(testing_uid_owner, testing_owner_email, testing_invitee_email, models.RoleEditor)
	require.NoError(t, err)
	if mutate != nil {
		mutate(invite)
	}
	require.NoError(t, f.store.InsertInvite(context.Background(), invite))
	return invite
}

func (f *testFixture) perform(t *testing.T, method, url, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, url, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	f.rtr.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, into interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), into))
}
