package service

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/Mathew1304/Expense-Tracker-sub000/internal/domain/model"
	"github.com/Mathew1304/Expense-Tracker-sub000/internal/repository"
)

const (
	testOwner     = "owner-1"
	testProjectID = "6f1c2a3e-8b4d-4c2a-9e1f-0a1b2c3d4e5f"
)

// testLogger — логгер без вывода.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixedClock — управляемые часы для тестов.
type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *fixedClock {
	return &fixedClock{now: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// --- In-memory ShareLinkRepository ---

// memLinkRepo — in-memory реализация ShareLinkRepository.
type memLinkRepo struct {
	mu          sync.Mutex
	links       map[string]*model.ShareLink
	createCalls int

	createErr    error
	getErr       error
	incrementErr error
	appendErr    error
}

func newMemLinkRepo() *memLinkRepo {
	return &memLinkRepo{links: make(map[string]*model.ShareLink)}
}

func cloneLink(l *model.ShareLink) *model.ShareLink {
	c := *l
	c.Comments = slices.Clone(l.Comments)
	return &c
}

func (r *memLinkRepo) Create(_ context.Context, link *model.ShareLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createCalls++
	if r.createErr != nil {
		return r.createErr
	}
	if _, ok := r.links[link.ID]; ok {
		return repository.ErrConflict
	}
	r.links[link.ID] = cloneLink(link)
	return nil
}

func (r *memLinkRepo) GetByID(_ context.Context, id string) (*model.ShareLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	l, ok := r.links[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneLink(l), nil
}

func (r *memLinkRepo) ListByProject(_ context.Context, projectID, createdBy string) ([]*model.ShareLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := []*model.ShareLink{}
	for _, l := range r.links {
		if l.ProjectID == projectID && l.CreatedBy == createdBy {
			result = append(result, cloneLink(l))
		}
	}
	return result, nil
}

func (r *memLinkRepo) SetActive(_ context.Context, id, createdBy string, active bool) (*model.ShareLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.links[id]
	if !ok || l.CreatedBy != createdBy {
		return nil, repository.ErrNotFound
	}
	l.IsActive = active
	return cloneLink(l), nil
}

func (r *memLinkRepo) Delete(_ context.Context, id, createdBy string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.links[id]
	if !ok || l.CreatedBy != createdBy {
		return repository.ErrNotFound
	}
	delete(r.links, id)
	return nil
}

func (r *memLinkRepo) IncrementViewCount(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.incrementErr != nil {
		return r.incrementErr
	}
	l, ok := r.links[id]
	if !ok {
		return repository.ErrNotFound
	}
	l.ViewCount++
	return nil
}

func (r *memLinkRepo) AppendComment(_ context.Context, id string, comment model.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.appendErr != nil {
		return r.appendErr
	}
	l, ok := r.links[id]
	if !ok {
		return repository.ErrNotFound
	}
	l.Comments = append(l.Comments, comment)
	return nil
}

// --- Mock ProjectRepository ---

// mockProjectRepo — мок ProjectRepository с функциями-полями.
// Без заданной функции возвращает пустой результат.
type mockProjectRepo struct {
	getByIDFn          func(ctx context.Context, projectID string) (*model.Project, error)
	listPhasesFn       func(ctx context.Context, projectID string) ([]*model.Phase, error)
	listTransactionsFn func(ctx context.Context, projectID string, txType model.TransactionType) ([]*model.Transaction, error)
	listMaterialsFn    func(ctx context.Context, projectID string) ([]*model.Material, error)
	listPhotosFn       func(ctx context.Context, projectID string) ([]*model.PhasePhoto, error)
	listMembersFn      func(ctx context.Context, projectID string) ([]*model.TeamMember, error)

	mu    sync.Mutex
	calls []string
}

func (m *mockProjectRepo) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

func (m *mockProjectRepo) called(call string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Contains(m.calls, call)
}

func (m *mockProjectRepo) GetByID(ctx context.Context, projectID string) (*model.Project, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, projectID)
	}
	return &model.Project{ID: projectID, Name: "Green Villa", Status: "in_progress", CreatedBy: testOwner}, nil
}

func (m *mockProjectRepo) ListPhases(ctx context.Context, projectID string) ([]*model.Phase, error) {
	m.record("phases")
	if m.listPhasesFn != nil {
		return m.listPhasesFn(ctx, projectID)
	}
	return []*model.Phase{}, nil
}

func (m *mockProjectRepo) ListTransactions(ctx context.Context, projectID string, txType model.TransactionType) ([]*model.Transaction, error) {
	m.record(string(txType))
	if m.listTransactionsFn != nil {
		return m.listTransactionsFn(ctx, projectID, txType)
	}
	return []*model.Transaction{}, nil
}

func (m *mockProjectRepo) ListMaterials(ctx context.Context, projectID string) ([]*model.Material, error) {
	m.record("materials")
	if m.listMaterialsFn != nil {
		return m.listMaterialsFn(ctx, projectID)
	}
	return []*model.Material{}, nil
}

func (m *mockProjectRepo) ListPhasePhotos(ctx context.Context, projectID string) ([]*model.PhasePhoto, error) {
	m.record("photos")
	if m.listPhotosFn != nil {
		return m.listPhotosFn(ctx, projectID)
	}
	return []*model.PhasePhoto{}, nil
}

func (m *mockProjectRepo) ListTeamMembers(ctx context.Context, projectID string) ([]*model.TeamMember, error) {
	m.record("team")
	if m.listMembersFn != nil {
		return m.listMembersFn(ctx, projectID)
	}
	return []*model.TeamMember{}, nil
}

// populatedProjectRepo возвращает мок с данными во всех категориях.
func populatedProjectRepo() *mockProjectRepo {
	phaseID := "ph-1"
	ghostID := "ph-deleted"
	return &mockProjectRepo{
		listPhasesFn: func(context.Context, string) ([]*model.Phase, error) {
			return []*model.Phase{{ID: phaseID, Name: "Foundation", Status: "completed"}}, nil
		},
		listTransactionsFn: func(_ context.Context, _ string, txType model.TransactionType) ([]*model.Transaction, error) {
			if txType == model.TransactionExpense {
				return []*model.Transaction{
					{ID: "e1", Type: txType, PhaseID: &phaseID, Amount: 1000, GSTAmount: 180},
					{ID: "e2", Type: txType, Amount: 500},
					{ID: "e3", Type: txType, PhaseID: &ghostID, Amount: 10},
				}, nil
			}
			return []*model.Transaction{{ID: "i1", Type: txType, Amount: 5000}}, nil
		},
		listMaterialsFn: func(context.Context, string) ([]*model.Material, error) {
			return []*model.Material{{ID: "m1", Name: "Cement", UnitCost: 350, QtyRequired: 40}}, nil
		},
		listPhotosFn: func(context.Context, string) ([]*model.PhasePhoto, error) {
			return []*model.PhasePhoto{{ID: "f1", PhaseID: &phaseID, PhotoURL: "https://img/1.jpg"}}, nil
		},
		listMembersFn: func(context.Context, string) ([]*model.TeamMember, error) {
			return []*model.TeamMember{{ID: "t1", Name: "Ravi", Active: true}}, nil
		},
	}
}

// testServices собирает сервисы поверх in-memory репозитория и общих часов.
type testServices struct {
	links    *memLinkRepo
	projects *mockProjectRepo
	clock    *fixedClock
	share    *ShareLinkService
	resolver *ResolverService
	comments *CommentService
}

func newTestServices(projects *mockProjectRepo) *testServices {
	links := newMemLinkRepo()
	clock := newClock()
	hasher := NewPasswordHasher(4)
	logger := testLogger()

	share := NewShareLinkService(links, projects, hasher, "https://app.example.com", 24*time.Hour, logger)
	share.now = clock.Now
	resolver := NewResolverService(links, projects, NewProjectDataLoader(projects, logger), hasher, nil, logger)
	resolver.now = clock.Now
	comments := NewCommentService(resolver, links, logger)
	comments.now = clock.Now

	return &testServices{
		links:    links,
		projects: projects,
		clock:    clock,
		share:    share,
		resolver: resolver,
		comments: comments,
	}
}

func strPtr(s string) *string { return &s }
