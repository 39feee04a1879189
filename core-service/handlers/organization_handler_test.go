package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"orghierarchy-backend/core-service/middleware"
	"orghierarchy-backend/shared/database/models"
	"orghierarchy-backend/shared/hierarchy"
	"orghierarchy-backend/shared/hierarchy/hierarchytest"
	"orghierarchy-backend/shared/utils/auth"
	"orghierarchy-backend/shared/utils/permission"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := RegisterValidators(); err != nil {
		panic(err)
	}
}

var pngLogo = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

type mockLogoStore struct {
	mock.Mock
}

func (m *mockLogoStore) PutLogo(ctx context.Context, orgID uuid.UUID, data []byte, contentType, ext string) (string, error) {
	args := m.Called(ctx, orgID, data, contentType, ext)
	return args.String(0), args.Error(1)
}

type apiFixture struct {
	store  *hierarchytest.MemoryStore
	audit  *hierarchytest.AuditRecorder
	logos  *mockLogoStore
	router *gin.Engine
}

func newAPIFixture(t *testing.T, maxDepth int) *apiFixture {
	t.Helper()
	log, _ := test.NewNullLogger()

	f := &apiFixture{
		store: hierarchytest.NewMemoryStore(),
		audit: &hierarchytest.AuditRecorder{},
		logos: &mockLogoStore{},
	}
	svc := hierarchy.NewService(f.store, f.audit, permission.NewRoleChecker(), maxDepth,
		hierarchy.WithLogger(log),
		hierarchy.WithClock(func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }),
	)

	f.router = gin.New()
	noLimit := func(c *gin.Context) { c.Next() }
	RegisterRoutes(f.router, NewOrganizationHandler(svc, f.logos, 1024, log), nil, middleware.AuthMiddleware("session_token"), noLimit)
	return f
}

func (f *apiFixture) root(name string, orgType models.OrgType, settings map[string]interface{}) models.Organization {
	return f.store.Put(models.Organization{
		Name:           name,
		Slug:           hierarchy.Slugify(name),
		OrgType:        orgType,
		AllowChildOrgs: true,
		PlanTier:       models.PlanTierEnterprise,
		Settings:       settings,
	})
}

func token(t *testing.T, role string) string {
	t.Helper()
	tok, err := auth.GenerateJWT(uuid.New(), role+"@acme.test", uuid.Nil, role)
	require.NoError(t, err)
	return tok
}

func (f *apiFixture) do(t *testing.T, method, path, tok string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Data json.RawMessage `json:"data"`
	Meta json.RawMessage `json:"meta"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dest), w.Body.String())
}

func TestCreateChildAcmeScenario(t *testing.T) {
	f := newAPIFixture(t, 10)
	parent := f.root("Acme Group", models.OrgTypeHoldingCompany, map[string]interface{}{"currency": "USD", "features": map[string]interface{}{"sso": true}})

	w := f.do(t, http.MethodPost, "/api/organizations/"+parent.ID.String()+"/children", token(t, permission.RoleOwner), map[string]interface{}{
		"name":     "Acme Widgets",
		"orgType":  "SUBSIDIARY",
		"planTier": "PROFESSIONAL",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var env envelope
	decode(t, w, &env)
	var created models.Organization
	require.NoError(t, json.Unmarshal(env.Data, &created))

	assert.Equal(t, "acme-widgets", created.Slug)
	assert.Equal(t, 1, created.HierarchyLevel)
	require.NotNil(t, created.ParentOrgID)
	assert.Equal(t, parent.ID, *created.ParentOrgID)
	assert.Equal(t, "USD", created.Settings["currency"])

	records := f.audit.Records()
	require.Len(t, records, 1)
	assert.Equal(t, hierarchy.AuditActionChildCreated, records[0].Action)
	assert.Equal(t, created.ID, records[0].OrganizationID)
	assert.Equal(t, parent.ID, *records[0].ParentOrgID)
}

func TestCreateChildErrorMapping(t *testing.T) {
	f := newAPIFixture(t, 1)
	parent := f.root("Mapping Group", models.OrgTypeHoldingCompany, nil)
	closed := f.store.Put(models.Organization{Name: "Closed", Slug: "closed", OrgType: models.OrgTypeDepartment})
	f.store.Put(models.Organization{Name: "Taken", Slug: "taken", OrgType: models.OrgTypeBrand})
	deep := f.store.Put(models.Organization{Name: "Deep", Slug: "deep", OrgType: models.OrgTypeDivision, ParentOrgID: &parent.ID, HierarchyLevel: 1, AllowChildOrgs: true})

	ownerTok := token(t, permission.RoleOwner)
	valid := map[string]interface{}{"name": "Child", "orgType": "BRAND"}

	tests := []struct {
		name   string
		parent uuid.UUID
		tok    string
		body   map[string]interface{}
		status int
		kind   hierarchy.ErrorKind
	}{
		{"unauthenticated", parent.ID, "", valid, http.StatusUnauthorized, ""},
		{"viewer before validation", parent.ID, token(t, permission.RoleViewer), map[string]interface{}{}, http.StatusForbidden, hierarchy.KindForbidden},
		{"missing name", parent.ID, ownerTok, map[string]interface{}{"orgType": "BRAND"}, http.StatusBadRequest, hierarchy.KindValidation},
		{"unknown type", parent.ID, ownerTok, map[string]interface{}{"name": "Child", "orgType": "GUILD"}, http.StatusBadRequest, hierarchy.KindValidation},
		{"bad brand color", parent.ID, ownerTok, map[string]interface{}{"name": "Child", "orgType": "BRAND", "brandColor": "blue"}, http.StatusBadRequest, hierarchy.KindValidation},
		{"parent missing", uuid.New(), ownerTok, valid, http.StatusNotFound, hierarchy.KindNotFound},
		{"children closed", closed.ID, ownerTok, valid, http.StatusBadRequest, hierarchy.KindPolicyViolation},
		{"too deep", deep.ID, ownerTok, valid, http.StatusBadRequest, hierarchy.KindPolicyViolation},
		{"slug taken", parent.ID, ownerTok, map[string]interface{}{"name": "Child", "orgType": "BRAND", "slug": "taken"}, http.StatusConflict, hierarchy.KindConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := f.store.Len()
			w := f.do(t, http.MethodPost, "/api/organizations/"+tt.parent.String()+"/children", tt.tok, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())

			var resp ErrorResponse
			decode(t, w, &resp)
			assert.NotEmpty(t, resp.Error)
			assert.Equal(t, string(tt.kind), resp.Kind)
			assert.Equal(t, before, f.store.Len())
		})
	}
}

func TestCreateChildRejectsMalformedID(t *testing.T) {
	f := newAPIFixture(t, 10)
	w := f.do(t, http.MethodPost, "/api/organizations/not-a-uuid/children", token(t, permission.RoleOwner), map[string]interface{}{"name": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetHierarchy(t *testing.T) {
	f := newAPIFixture(t, 10)
	root := f.root("Tree Root", models.OrgTypeHoldingCompany, nil)
	a := f.store.Put(models.Organization{Name: "A", Slug: "a", OrgType: models.OrgTypeSubsidiary, ParentOrgID: &root.ID, HierarchyLevel: 1})
	f.store.Put(models.Organization{Name: "A1", Slug: "a1", OrgType: models.OrgTypeDivision, ParentOrgID: &a.ID, HierarchyLevel: 2})

	w := f.do(t, http.MethodGet, "/api/organizations/"+root.ID.String()+"/hierarchy", token(t, permission.RoleOwner), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var env envelope
	decode(t, w, &env)
	var tree hierarchy.TreeNode
	require.NoError(t, json.Unmarshal(env.Data, &tree))
	assert.Equal(t, 3, tree.Size())

	var meta hierarchy.ChildMeta
	require.NoError(t, json.Unmarshal(env.Meta, &meta))
	assert.True(t, meta.CanCreateChildren)
	assert.Equal(t, hierarchy.GetRecommendedChildTypes(models.OrgTypeHoldingCompany), meta.RecommendedChildTypes)

	w = f.do(t, http.MethodGet, "/api/organizations/"+root.ID.String()+"/hierarchy?depth=1", token(t, permission.RoleViewer), nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &env)
	tree = hierarchy.TreeNode{}
	require.NoError(t, json.Unmarshal(env.Data, &tree))
	assert.Equal(t, 2, tree.Size())
	require.NoError(t, json.Unmarshal(env.Meta, &meta))
	assert.False(t, meta.CanCreateChildren)

	w = f.do(t, http.MethodGet, "/api/organizations/"+root.ID.String()+"/hierarchy?depth=0", token(t, permission.RoleOwner), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = f.do(t, http.MethodGet, "/api/organizations/"+root.ID.String()+"/hierarchy?depth=-2", token(t, permission.RoleOwner), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetChildrenFilters(t *testing.T) {
	f := newAPIFixture(t, 10)
	root := f.root("Filter Root", models.OrgTypeAgency, nil)
	f.store.Put(models.Organization{Name: "Client", Slug: "client", OrgType: models.OrgTypeClient, ParentOrgID: &root.ID, HierarchyLevel: 1, PlanTier: models.PlanTierFree})
	f.store.Put(models.Organization{Name: "Brand", Slug: "brand", OrgType: models.OrgTypeBrand, ParentOrgID: &root.ID, HierarchyLevel: 1, PlanTier: models.PlanTierStarter})
	tok := token(t, permission.RoleOwner)
	base := "/api/organizations/" + root.ID.String() + "/children"

	var env envelope
	var children []models.Organization

	w := f.do(t, http.MethodGet, base, tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &env)
	require.NoError(t, json.Unmarshal(env.Data, &children))
	assert.Len(t, children, 2)

	w = f.do(t, http.MethodGet, base+"?orgTypes=client", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &env)
	require.NoError(t, json.Unmarshal(env.Data, &children))
	require.Len(t, children, 1)
	assert.Equal(t, "client", children[0].Slug)

	w = f.do(t, http.MethodGet, base+"?planTiers=STARTER,ENTERPRISE", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &env)
	require.NoError(t, json.Unmarshal(env.Data, &children))
	require.Len(t, children, 1)
	assert.Equal(t, "brand", children[0].Slug)

	w = f.do(t, http.MethodGet, base+"?orgTypes=GUILD", tok, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = f.do(t, http.MethodGet, "/api/organizations/"+uuid.NewString()+"/children", tok, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListAndRoots(t *testing.T) {
	f := newAPIFixture(t, 10)
	first := f.root("Alpha", models.OrgTypeStandard, nil)
	f.root("Beta", models.OrgTypeStandard, nil)
	f.store.Put(models.Organization{Name: "Alpha Child", Slug: "alpha-child", OrgType: models.OrgTypeDivision, ParentOrgID: &first.ID, HierarchyLevel: 1})
	tok := token(t, permission.RoleViewer)

	w := f.do(t, http.MethodGet, "/api/organizations?limit=2&sort[field]=name&sort[order]=asc", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var env envelope
	decode(t, w, &env)
	var orgs []models.Organization
	require.NoError(t, json.Unmarshal(env.Data, &orgs))
	require.Len(t, orgs, 2)
	assert.Equal(t, "Alpha", orgs[0].Name)

	var meta OrganizationListMeta
	require.NoError(t, json.Unmarshal(env.Meta, &meta))
	assert.Equal(t, int64(3), meta.Pagination.Total)
	assert.True(t, meta.Pagination.HasNext)

	w = f.do(t, http.MethodGet, "/api/organizations/roots", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &env)
	require.NoError(t, json.Unmarshal(env.Data, &orgs))
	assert.Len(t, orgs, 2)
}

func TestAncestorsAndDelete(t *testing.T) {
	f := newAPIFixture(t, 10)
	root := f.root("Anc Root", models.OrgTypeStandard, nil)
	leaf := f.store.Put(models.Organization{Name: "Leaf", Slug: "leaf", OrgType: models.OrgTypeDepartment, ParentOrgID: &root.ID, HierarchyLevel: 1})
	ownerTok := token(t, permission.RoleOwner)

	w := f.do(t, http.MethodGet, "/api/organizations/"+leaf.ID.String()+"/ancestors", ownerTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var env envelope
	decode(t, w, &env)
	var chain []models.Organization
	require.NoError(t, json.Unmarshal(env.Data, &chain))
	require.Len(t, chain, 1)
	assert.Equal(t, root.ID, chain[0].ID)

	w = f.do(t, http.MethodDelete, "/api/organizations/"+root.ID.String(), ownerTok, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodDelete, "/api/organizations/"+leaf.ID.String(), token(t, permission.RoleMember), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(t, http.MethodDelete, "/api/organizations/"+leaf.ID.String(), ownerTok, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 1, f.store.Len())
}

func TestStatsEndpoint(t *testing.T) {
	f := newAPIFixture(t, 10)
	f.root("S1", models.OrgTypeAgency, nil)
	f.root("S2", models.OrgTypeAgency, nil)

	w := f.do(t, http.MethodGet, "/api/admin/hierarchy/stats", token(t, permission.RoleOwner), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var env envelope
	decode(t, w, &env)
	var stats StatsResponse
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, int64(2), stats.Total)
	assert.Equal(t, int64(2), stats.ByType[models.OrgTypeAgency])

	w = f.do(t, http.MethodGet, "/api/admin/hierarchy/stats", token(t, permission.RoleManager), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func uploadRequest(t *testing.T, path, tok string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("logo", "logo.bin")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+tok)
	return req
}

func TestUploadLogo(t *testing.T) {
	f := newAPIFixture(t, 10)
	org := f.root("Logo Org", models.OrgTypeStandard, nil)
	path := "/api/organizations/" + org.ID.String() + "/logo"
	ownerTok := token(t, permission.RoleOwner)

	f.logos.On("PutLogo", mock.Anything, org.ID, pngLogo, "image/png", ".png").
		Return("http://cdn.test/organization-logos/logos/x.png", nil).Once()

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, uploadRequest(t, path, ownerTok, pngLogo))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	stored, err := f.store.Get(context.Background(), org.ID)
	require.NoError(t, err)
	assert.Equal(t, "http://cdn.test/organization-logos/logos/x.png", stored.LogoURL)

	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, uploadRequest(t, path, ownerTok, []byte("%PDF-1.7\n")))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, uploadRequest(t, path, ownerTok, bytes.Repeat([]byte{0x89}, 2048)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, uploadRequest(t, path, token(t, permission.RoleViewer), pngLogo))
	assert.Equal(t, http.StatusForbidden, w.Code)

	f.logos.AssertExpectations(t)
}

func TestBindingMessage(t *testing.T) {
	f := newAPIFixture(t, 10)
	parent := f.root("Msg Root", models.OrgTypeHoldingCompany, nil)

	w := f.do(t, http.MethodPost, "/api/organizations/"+parent.ID.String()+"/children", token(t, permission.RoleOwner), map[string]interface{}{
		"name":    "Child",
		"orgType": "BRAND",
		"country": "USA",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp ErrorResponse
	decode(t, w, &resp)
	assert.Equal(t, "country is invalid", resp.Error)
}
