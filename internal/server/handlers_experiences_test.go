package server

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apischemas "github.com/ghosthawk/ghosthawk/schemas"

	"github.com/ghosthawk/ghosthawk/internal/types"
)

func validSubmission() map[string]any {
	return map[string]any{
		"companyName":          "Acme Corp",
		"companyType":          "company",
		"companyIndustry":      "Tech",
		"position":             "Backend Engineer",
		"applicationDate":      "2024-05-01",
		"receivedResponse":     true,
		"responseTime":         "1_week",
		"communicationQuality": "good",
		"interviewOffered":     "yes",
		"interviewStages":      []string{"phone", "onsite"},
		"jobOffered":           "pending",
		"ghostJob":             false,
	}
}

func violationFields(t *testing.T, body errorBody) []string {
	t.Helper()
	fields := make([]string, 0, len(body.Errors))
	for _, v := range body.Errors {
		fields = append(fields, v.Field)
	}
	return fields
}

func TestSubmitExperience(t *testing.T) {
	store := newMemStore()
	s := newTestServer(t, store)
	userID := uuid.New()
	token := tokenFor(t, s, userID)

	w := do(t, s, http.MethodPost, "/api/experiences", validSubmission(), token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assertSchema(t, s, apischemas.Experience, w)

	created := decodeBody[types.UserExperience](t, w)
	assert.NotEqual(t, uuid.Nil, created.ID)
	require.NotNil(t, created.UserID)
	assert.Equal(t, userID, *created.UserID)
	assert.True(t, created.IsAnonymous, "anonymous unless stated otherwise")
	assert.Equal(t, "Acme Corp", created.Company.Name)
	assert.Equal(t, types.ResponseTime("1_week"), created.ResponseTime())
	assert.Equal(t, []types.InterviewStage{types.StagePhone, types.StageOnsite}, created.Interview.Stages)

	t.Run("second report reuses the company", func(t *testing.T) {
		body := validSubmission()
		body["companyName"] = "  acme   CORP "
		w := do(t, s, http.MethodPost, "/api/experiences", body, token)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		again := decodeBody[types.UserExperience](t, w)
		assert.Equal(t, created.Company.ID, again.Company.ID)
		assert.Len(t, store.companies, 1)
	})
}

func TestSubmitExperience_RequiresAuth(t *testing.T) {
	store := newMemStore()
	s := newTestServer(t, store)

	for _, token := range []string{"", "not-a-token"} {
		w := do(t, s, http.MethodPost, "/api/experiences", validSubmission(), token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
	assert.Zero(t, store.calls, "rejected before any data access")
	assert.Empty(t, store.experiences)
}

func TestSubmitExperience_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(map[string]any)
		field  string
	}{
		{"missing company name", func(b map[string]any) { delete(b, "companyName") }, "companyName"},
		{"blank company name", func(b map[string]any) { b["companyName"] = "   " }, "companyName"},
		{"unknown company type", func(b map[string]any) { b["companyType"] = "agency" }, "companyType"},
		{"missing receivedResponse", func(b map[string]any) { delete(b, "receivedResponse") }, "receivedResponse"},
		{"receivedResponse wrong type", func(b map[string]any) { b["receivedResponse"] = "yes" }, "receivedResponse"},
		{"future application date", func(b map[string]any) { b["applicationDate"] = "2030-01-01" }, "applicationDate"},
		{"unparseable application date", func(b map[string]any) { b["applicationDate"] = "May 1st 2024" }, "applicationDate"},
		{"response fields without response", func(b map[string]any) { b["receivedResponse"] = false }, "responseTime"},
		{"stages without interview", func(b map[string]any) {
			b["interviewOffered"] = "no"
			delete(b, "jobOffered")
		}, "interviewStages"},
		{"duplicate stages", func(b map[string]any) { b["interviewStages"] = []string{"phone", "phone"} }, "interviewStages"},
		{"unknown stage", func(b map[string]any) { b["interviewStages"] = []string{"lunch"} }, "interviewStages.0"},
		{"comments too long", func(b map[string]any) { b["comments"] = strings.Repeat("x", 5001) }, "comments"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			s := newTestServer(t, store)
			body := validSubmission()
			tt.mutate(body)

			w := do(t, s, http.MethodPost, "/api/experiences", body, tokenFor(t, s, uuid.New()))
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Contains(t, violationFields(t, decodeBody[errorBody](t, w)), tt.field)
			assert.Empty(t, store.experiences, "nothing persisted")
			assert.Empty(t, store.companies)
		})
	}
}

func TestSubmitExperience_MalformedBody(t *testing.T) {
	s := newTestServer(t, newMemStore())
	w := do(t, s, http.MethodPost, "/api/experiences", `{"companyName":`, tokenFor(t, s, uuid.New()))
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"(root)"}, violationFields(t, decodeBody[errorBody](t, w)))
}

func TestSubmitExperience_StoreFailure(t *testing.T) {
	store := newMemStore()
	store.err = errors.New("tx aborted")
	s := newTestServer(t, store)

	w := do(t, s, http.MethodPost, "/api/experiences", validSubmission(), tokenFor(t, s, uuid.New()))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "tx aborted")
}

func TestUserExperiences(t *testing.T) {
	store := newMemStore()
	s := newTestServer(t, store)
	alice, bob := uuid.New(), uuid.New()

	t.Run("empty list, not null", func(t *testing.T) {
		w := do(t, s, http.MethodGet, "/api/experiences/user", nil, tokenFor(t, s, alice))
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("anonymous submissions stay visible to their reporter", func(t *testing.T) {
		body := validSubmission()
		body["isAnonymous"] = true
		w := do(t, s, http.MethodPost, "/api/experiences", body, tokenFor(t, s, alice))
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		created := decodeBody[types.UserExperience](t, w)

		other := validSubmission()
		other["companyName"] = "Other Co"
		w = do(t, s, http.MethodPost, "/api/experiences", other, tokenFor(t, s, bob))
		require.Equal(t, http.StatusCreated, w.Code)

		w = do(t, s, http.MethodGet, "/api/experiences/user", nil, tokenFor(t, s, alice))
		require.Equal(t, http.StatusOK, w.Code)
		assertSchema(t, s, apischemas.UserExperiences, w)

		mine := decodeBody[[]types.UserExperience](t, w)
		require.Len(t, mine, 1)
		assert.Equal(t, created.ID, mine[0].ID)
		assert.True(t, mine[0].IsAnonymous)
		assert.Equal(t, "Acme Corp", mine[0].Company.Name)

		// The company page never shows who filed it.
		w = do(t, s, http.MethodGet, "/api/companies/"+created.Company.ID.String(), nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), alice.String())
	})

	t.Run("requires auth", func(t *testing.T) {
		w := do(t, s, http.MethodGet, "/api/experiences/user", nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
