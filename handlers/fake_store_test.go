package handlers

import (
	"context"
	"io"
	"sync"

	"staygrow/database"
	"staygrow/models"

	"github.com/google/uuid"
)

// fakeStore records what handlers pass in and returns canned results.
type fakeStore struct {
	mu sync.Mutex

	pingErr error

	listSpec   database.ListingSpec
	listResult []models.ProjectSummary
	listTotal  int64
	listErr    error

	created   models.CreateProjectRequest
	createdBy uuid.UUID

	project    *models.ProjectSummary
	projectErr error
	viewedBy   models.Viewer
	viewErr    error
	recorded   bool

	deleteAny bool
	deleteErr error

	statusTo  models.Status
	statusErr error

	toggled   string
	toggleErr error

	appeal        *models.Appeal
	appealErr     error
	appealStatus  models.AppealStatus
	resolveResult models.AppealStatus
}

var _ ShowcaseStore = (*fakeStore)(nil)

func (f *fakeStore) Ping(ctx context.Context) error { return f.pingErr }

func (f *fakeStore) ListProjects(ctx context.Context, spec database.ListingSpec) ([]models.ProjectSummary, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listSpec = spec
	return f.listResult, f.listTotal, f.listErr
}

func (f *fakeStore) CreateProject(ctx context.Context, ownerID uuid.UUID, req models.CreateProjectRequest) (*models.ProjectSummary, error) {
	f.created = req
	f.createdBy = ownerID
	return &models.ProjectSummary{ID: uuid.New(), Title: req.Title, Status: models.StatusPublished, IsOwner: true}, nil
}

func (f *fakeStore) GetProject(ctx context.Context, id uuid.UUID, viewer models.Viewer) (*models.ProjectSummary, error) {
	if f.projectErr != nil {
		return nil, f.projectErr
	}
	p := *f.project
	return &p, nil
}

func (f *fakeStore) UpdateProject(ctx context.Context, id uuid.UUID, viewer models.Identified, req models.UpdateProjectRequest) (*models.ProjectSummary, error) {
	if f.projectErr != nil {
		return nil, f.projectErr
	}
	p := *f.project
	if req.Title != nil {
		p.Title = *req.Title
	}
	return &p, nil
}

func (f *fakeStore) DeleteProject(ctx context.Context, id uuid.UUID, viewer models.Identified, deleteAny bool) error {
	f.deleteAny = deleteAny
	return f.deleteErr
}

func (f *fakeStore) SetProjectStatus(ctx context.Context, id uuid.UUID, to models.Status, admin models.Identified) (*models.ProjectSummary, error) {
	f.statusTo = to
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	return &models.ProjectSummary{ID: id, Status: to}, nil
}

func (f *fakeStore) ToggleLike(ctx context.Context, projectID uuid.UUID, viewer models.Identified) (models.ToggleResult, error) {
	f.toggled = "like"
	return models.ToggleResult{Active: true, Count: 3}, f.toggleErr
}

func (f *fakeStore) ToggleBookmark(ctx context.Context, projectID uuid.UUID, viewer models.Identified) (models.ToggleResult, error) {
	f.toggled = "bookmark"
	return models.ToggleResult{Active: false, Count: 0}, f.toggleErr
}

func (f *fakeStore) RecordView(ctx context.Context, projectID uuid.UUID, viewer models.Viewer) (bool, error) {
	f.viewedBy = viewer
	return f.recorded, f.viewErr
}

func (f *fakeStore) CreateAppeal(ctx context.Context, projectID uuid.UUID, viewer models.Identified, reason string) (*models.Appeal, error) {
	if f.appealErr != nil {
		return nil, f.appealErr
	}
	return &models.Appeal{ID: uuid.New(), ProjectID: projectID, UserID: viewer.UserID, Reason: reason, Status: models.AppealPending}, nil
}

func (f *fakeStore) ListAppeals(ctx context.Context, status models.AppealStatus) ([]models.Appeal, error) {
	f.appealStatus = status
	return []models.Appeal{}, nil
}

func (f *fakeStore) ResolveAppeal(ctx context.Context, appealID uuid.UUID, admin models.Identified, decision models.AppealStatus, note string) (*models.Appeal, error) {
	f.resolveResult = decision
	if f.appealErr != nil {
		return nil, f.appealErr
	}
	return &models.Appeal{ID: appealID, Status: decision}, nil
}

type fakeUploader struct {
	contentType string
	body        []byte
	err         error
}

func (f *fakeUploader) Upload(ctx context.Context, name string, reader io.Reader, size int64, contentType string) (models.UploadResult, error) {
	if f.err != nil {
		return models.UploadResult{}, f.err
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return models.UploadResult{}, err
	}
	f.contentType = contentType
	f.body = body
	return models.UploadResult{URL: "http://cdn/showcase/x.png", Key: "showcase/x.png", Size: size}, nil
}
