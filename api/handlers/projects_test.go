package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"

	"github.com/Arshmittal/Ai-social-media/store"
)

const testProjectID = "68a1b2c3d4e5f6a7b8c9d0e1"

type fakeProjectStore struct {
	createFn func(ctx context.Context, p *store.Project) (string, error)
	getFn    func(ctx context.Context, id string) (*store.Project, error)
	listFn   func(ctx context.Context) ([]store.Project, error)
	updateFn func(ctx context.Context, id string, upd store.ProjectUpdate) error
	deleteFn func(ctx context.Context, id string) error
}

func (f *fakeProjectStore) CreateProject(ctx context.Context, p *store.Project) (string, error) {
	if f.createFn != nil {
		return f.createFn(ctx, p)
	}
	return "", errors.New("createFn not set")
}

func (f *fakeProjectStore) GetProject(ctx context.Context, id string) (*store.Project, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return nil, errors.New("getFn not set")
}

func (f *fakeProjectStore) ListProjects(ctx context.Context) ([]store.Project, error) {
	if f.listFn != nil {
		return f.listFn(ctx)
	}
	return nil, errors.New("listFn not set")
}

func (f *fakeProjectStore) UpdateProject(ctx context.Context, id string, upd store.ProjectUpdate) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, upd)
	}
	return errors.New("updateFn not set")
}

func (f *fakeProjectStore) DeleteProject(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return errors.New("deleteFn not set")
}

type fakeProjectIndex struct {
	mu        sync.Mutex
	ensured   []string
	dropped   []string
	ensureErr error
	dropErr   error
}

func (f *fakeProjectIndex) EnsureProject(_ context.Context, projectID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensured = append(f.ensured, projectID)
	return f.ensureErr
}

func (f *fakeProjectIndex) DeleteProject(_ context.Context, projectID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dropped = append(f.dropped, projectID)
	return f.dropErr
}

func TestHandleCreateProject(t *testing.T) {
	var created *store.Project
	fs := &fakeProjectStore{
		createFn: func(_ context.Context, p *store.Project) (string, error) {
			created = p
			return testProjectID, nil
		},
	}
	ix := &fakeProjectIndex{}
	h := NewProjectHandler(fs, ix, nil, zap.NewNop())

	req := newJSONRequest(t, http.MethodPost, "/create_project", map[string]any{
		"name":            "Acme Launch",
		"description":     "Product launch push",
		"brand_voice":     "bold",
		"platforms":       []string{"X", "LinkedIn", "twitter"},
		"industry":        "saas",
		"target_audience": "founders",
	})
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeResponse(t, rec)
	require.True(t, resp.Success)
	assert.Equal(t, testProjectID, dataMap(t, resp)["project_id"])

	require.NotNil(t, created)
	assert.Equal(t, "Acme Launch", created.Name)
	assert.Equal(t, "bold", created.BrandVoice)
	assert.Equal(t, "founders", created.TargetAudience)
	assert.Equal(t, []string{"twitter", "linkedin"}, created.Platforms,
		"platforms are normalized and deduplicated")

	assert.Equal(t, []string{testProjectID}, ix.ensured,
		"the vector collection is created with the project")
}

func TestHandleCreateProjectValidation(t *testing.T) {
	h := NewProjectHandler(&fakeProjectStore{}, &fakeProjectIndex{}, nil, zap.NewNop())

	t.Run("missing name", func(t *testing.T) {
		req := newJSONRequest(t, http.MethodPost, "/create_project", map[string]any{
			"name":      "   ",
			"platforms": []string{"twitter"},
		})
		rec := httptest.NewRecorder()
		h.HandleCreate(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "name is required", decodeResponse(t, rec).Error.Message)
	})

	t.Run("no platforms", func(t *testing.T) {
		req := newJSONRequest(t, http.MethodPost, "/create_project", map[string]any{
			"name": "Acme",
		})
		rec := httptest.NewRecorder()
		h.HandleCreate(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "at least one platform is required", decodeResponse(t, rec).Error.Message)
	})

	t.Run("unsupported platform", func(t *testing.T) {
		req := newJSONRequest(t, http.MethodPost, "/create_project", map[string]any{
			"name":      "Acme",
			"platforms": []string{"myspace"},
		})
		rec := httptest.NewRecorder()
		h.HandleCreate(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeResponse(t, rec).Error.Message, "unsupported platform: myspace")
	})

	t.Run("wrong content type", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/create_project", nil)
		req.Header.Set("Content-Type", "text/plain")
		rec := httptest.NewRecorder()
		h.HandleCreate(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleCreateProjectDuplicateName(t *testing.T) {
	fs := &fakeProjectStore{
		createFn: func(_ context.Context, p *store.Project) (string, error) {
			return "", fmt.Errorf("%w: %q", store.ErrDuplicateName, p.Name)
		},
	}
	h := NewProjectHandler(fs, &fakeProjectIndex{}, nil, zap.NewNop())

	req := newJSONRequest(t, http.MethodPost, "/create_project", map[string]any{
		"name":      "Acme",
		"platforms": []string{"twitter"},
	})
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, "ALREADY_EXISTS", resp.Error.Code)
}

func TestHandleCreateProjectSurvivesIndexFailure(t *testing.T) {
	fs := &fakeProjectStore{
		createFn: func(_ context.Context, _ *store.Project) (string, error) {
			return testProjectID, nil
		},
	}
	ix := &fakeProjectIndex{ensureErr: errors.New("qdrant down")}
	h := NewProjectHandler(fs, ix, nil, zap.NewNop())

	req := newJSONRequest(t, http.MethodPost, "/create_project", map[string]any{
		"name":      "Acme",
		"platforms": []string{"twitter"},
	})
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	require.Equal(t, http.StatusOK, rec.Code,
		"a vector store outage must not undo the project")
}

func TestHandleListProjects(t *testing.T) {
	first := bson.NewObjectID()
	second := bson.NewObjectID()
	fs := &fakeProjectStore{
		listFn: func(context.Context) ([]store.Project, error) {
			return []store.Project{
				{ID: first, Name: "Acme", Description: "launches", Platforms: []string{"twitter"}, Status: store.ProjectStatusActive},
				{ID: second, Name: "Globex", Platforms: []string{"linkedin", "facebook"}, Status: store.ProjectStatusActive},
			}, nil
		},
	}
	h := NewProjectHandler(fs, &fakeProjectIndex{}, nil, zap.NewNop())

	rec := httptest.NewRecorder()
	h.HandleList(rec, httptest.NewRequest(http.MethodGet, "/projects", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	data := dataMap(t, decodeResponse(t, rec))
	assert.Equal(t, float64(2), data["total_count"])

	projects, ok := data["projects"].([]any)
	require.True(t, ok)
	require.Len(t, projects, 2)
	entry := projects[0].(map[string]any)
	assert.Equal(t, first.Hex(), entry["id"])
	assert.Equal(t, "Acme", entry["name"])
	assert.Equal(t, "active", entry["status"])
	assert.Equal(t, []any{"twitter"}, entry["platforms"])
}

func TestHandleGetProject(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		fs := &fakeProjectStore{
			getFn: func(_ context.Context, id string) (*store.Project, error) {
				require.Equal(t, testProjectID, id)
				return &store.Project{Name: "Acme", BrandVoice: "bold", Status: store.ProjectStatusActive}, nil
			},
		}
		h := NewProjectHandler(fs, &fakeProjectIndex{}, nil, zap.NewNop())

		req := httptest.NewRequest(http.MethodGet, "/projects/"+testProjectID, nil)
		req.SetPathValue("project_id", testProjectID)
		rec := httptest.NewRecorder()
		h.HandleGet(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		data := dataMap(t, decodeResponse(t, rec))
		assert.Equal(t, "Acme", data["name"])
		assert.Equal(t, "bold", data["brand_voice"])
	})

	t.Run("invalid id", func(t *testing.T) {
		fs := &fakeProjectStore{
			getFn: func(_ context.Context, id string) (*store.Project, error) {
				return nil, fmt.Errorf("%w: %q", store.ErrInvalidID, id)
			},
		}
		h := NewProjectHandler(fs, &fakeProjectIndex{}, nil, zap.NewNop())

		req := httptest.NewRequest(http.MethodGet, "/projects/zzz", nil)
		req.SetPathValue("project_id", "zzz")
		rec := httptest.NewRecorder()
		h.HandleGet(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing", func(t *testing.T) {
		fs := &fakeProjectStore{
			getFn: func(_ context.Context, id string) (*store.Project, error) {
				return nil, fmt.Errorf("project %s: %w", id, store.ErrNotFound)
			},
		}
		h := NewProjectHandler(fs, &fakeProjectIndex{}, nil, zap.NewNop())

		req := httptest.NewRequest(http.MethodGet, "/projects/"+testProjectID, nil)
		req.SetPathValue("project_id", testProjectID)
		rec := httptest.NewRecorder()
		h.HandleGet(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandleEditProject(t *testing.T) {
	var gotID string
	var gotUpd store.ProjectUpdate
	fs := &fakeProjectStore{
		updateFn: func(_ context.Context, id string, upd store.ProjectUpdate) error {
			gotID = id
			gotUpd = upd
			return nil
		},
	}
	h := NewProjectHandler(fs, &fakeProjectIndex{}, nil, zap.NewNop())

	req := newJSONRequest(t, http.MethodPost, "/edit_project/"+testProjectID, map[string]any{
		"name":      "Acme v2",
		"platforms": []string{"Facebook"},
	})
	req.SetPathValue("project_id", testProjectID)
	rec := httptest.NewRecorder()
	h.HandleEdit(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "updated", dataMap(t, decodeResponse(t, rec))["status"])

	assert.Equal(t, testProjectID, gotID)
	require.NotNil(t, gotUpd.Name)
	assert.Equal(t, "Acme v2", *gotUpd.Name)
	assert.Nil(t, gotUpd.Description, "absent fields stay untouched")
	assert.Nil(t, gotUpd.BrandVoice)
	assert.Equal(t, []string{"facebook"}, gotUpd.Platforms)
}

func TestHandleEditProjectValidation(t *testing.T) {
	h := NewProjectHandler(&fakeProjectStore{}, &fakeProjectIndex{}, nil, zap.NewNop())

	t.Run("platforms required", func(t *testing.T) {
		req := newJSONRequest(t, http.MethodPost, "/edit_project/"+testProjectID, map[string]any{
			"name": "Acme",
		})
		req.SetPathValue("project_id", testProjectID)
		rec := httptest.NewRecorder()
		h.HandleEdit(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("blank name rejected", func(t *testing.T) {
		req := newJSONRequest(t, http.MethodPost, "/edit_project/"+testProjectID, map[string]any{
			"name":      "  ",
			"platforms": []string{"twitter"},
		})
		req.SetPathValue("project_id", testProjectID)
		rec := httptest.NewRecorder()
		h.HandleEdit(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "name cannot be empty", decodeResponse(t, rec).Error.Message)
	})

	t.Run("unknown project", func(t *testing.T) {
		fs := &fakeProjectStore{
			updateFn: func(_ context.Context, id string, _ store.ProjectUpdate) error {
				return fmt.Errorf("project %s: %w", id, store.ErrNotFound)
			},
		}
		h := NewProjectHandler(fs, &fakeProjectIndex{}, nil, zap.NewNop())

		req := newJSONRequest(t, http.MethodPost, "/edit_project/"+testProjectID, map[string]any{
			"platforms": []string{"twitter"},
		})
		req.SetPathValue("project_id", testProjectID)
		rec := httptest.NewRecorder()
		h.HandleEdit(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandleDeleteProject(t *testing.T) {
	var deleted []string
	fs := &fakeProjectStore{
		deleteFn: func(_ context.Context, id string) error {
			deleted = append(deleted, id)
			return nil
		},
	}
	ix := &fakeProjectIndex{}
	cacheFake := newFakeCache()
	cacheFake.entries[analyticsCacheKey(testProjectID)] = `{"project_id":"stale"}`
	h := NewProjectHandler(fs, ix, cacheFake, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/delete_project/"+testProjectID, nil)
	req.SetPathValue("project_id", testProjectID)
	rec := httptest.NewRecorder()
	h.HandleDelete(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "deleted", dataMap(t, decodeResponse(t, rec))["status"])

	assert.Equal(t, []string{testProjectID}, deleted)
	assert.Equal(t, []string{testProjectID}, ix.dropped,
		"the vector collection goes with the project")
	assert.Contains(t, cacheFake.deleted, analyticsCacheKey(testProjectID),
		"cached analytics are invalidated")
}

func TestHandleDeleteProjectSurvivesIndexFailure(t *testing.T) {
	fs := &fakeProjectStore{
		deleteFn: func(context.Context, string) error { return nil },
	}
	ix := &fakeProjectIndex{dropErr: errors.New("qdrant down")}
	h := NewProjectHandler(fs, ix, nil, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/delete_project/"+testProjectID, nil)
	req.SetPathValue("project_id", testProjectID)
	rec := httptest.NewRecorder()
	h.HandleDelete(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
