package service

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Mathew1304/Expense-Tracker-sub000/internal/domain/model"
)

func TestCreate_PublicLink(t *testing.T) {
	s := newTestServices(&mockProjectRepo{})

	created, err := s.share.Create(context.Background(), testOwner, CreateShareLinkInput{
		ProjectID: testProjectID,
		ShareType: model.ShareTypePublic,
		Password:  "ignored",
		Options:   model.ShareOptions{PhaseDetails: true},
	})
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}

	link := created.Link
	if created.URL != "https://app.example.com/shared/"+link.ID {
		t.Errorf("URL = %q", created.URL)
	}
	if link.PasswordHash != nil {
		t.Error("у публичной ссылки не должно быть пароля")
	}
	if !link.ShareOptions.AllowComments {
		t.Error("allowComments должен быть true")
	}
	if !link.IsActive || link.ViewCount != 0 || len(link.Comments) != 0 {
		t.Errorf("неверное начальное состояние: active=%v views=%d comments=%d",
			link.IsActive, link.ViewCount, len(link.Comments))
	}
	if link.CreatedBy != testOwner {
		t.Errorf("CreatedBy = %q", link.CreatedBy)
	}
	want := s.clock.Now().Add(24 * time.Hour)
	if !link.ExpiresAt.Equal(want) {
		t.Errorf("ExpiresAt = %v, ожидалось %v (срок по умолчанию)", link.ExpiresAt, want)
	}
}

func TestCreate_LinkIDIsOpaque(t *testing.T) {
	s := newTestServices(&mockProjectRepo{})
	in := CreateShareLinkInput{ProjectID: testProjectID, ShareType: model.ShareTypePublic}

	a, err := s.share.Create(context.Background(), testOwner, in)
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	b, err := s.share.Create(context.Background(), testOwner, in)
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}

	if a.Link.ID == b.Link.ID {
		t.Error("повторное создание должно давать новую ссылку")
	}
	raw, err := base64.RawURLEncoding.DecodeString(a.Link.ID)
	if err != nil {
		t.Fatalf("ID не в base64url: %v", err)
	}
	if len(raw) != linkIDBytes {
		t.Errorf("длина ID = %d байт, ожидалось %d", len(raw), linkIDBytes)
	}
	if strings.Contains(a.Link.ID, testProjectID) {
		t.Error("ID не должен содержать идентификатор проекта")
	}
}

func TestCreate_PrivateLinkHashesPassword(t *testing.T) {
	s := newTestServices(&mockProjectRepo{})

	created, err := s.share.Create(context.Background(), testOwner, CreateShareLinkInput{
		ProjectID: testProjectID,
		ShareType: model.ShareTypePrivate,
		Password:  "s3cret",
		Expiry:    &ExpiryInput{Amount: 30, Unit: model.ExpiryMinutes},
	})
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}

	hash := created.Link.PasswordHash
	if hash == nil || *hash == "s3cret" {
		t.Fatal("пароль должен храниться в виде хэша")
	}
	if !NewPasswordHasher(4).Verify(*hash, "s3cret") {
		t.Error("хэш не соответствует паролю")
	}
	want := s.clock.Now().Add(30 * time.Minute)
	if !created.Link.ExpiresAt.Equal(want) {
		t.Errorf("ExpiresAt = %v, ожидалось %v", created.Link.ExpiresAt, want)
	}
}

// TestCreate_MaxLifetime проверяет, что годовой срок принимается
// и ссылка сразу разрешается.
func TestCreate_MaxLifetime(t *testing.T) {
	s := newTestServices(&mockProjectRepo{})
	created, err := s.share.Create(context.Background(), testOwner, CreateShareLinkInput{
		ProjectID: testProjectID,
		ShareType: model.ShareTypePublic,
		Expiry:    &ExpiryInput{Amount: 8760, Unit: model.ExpiryHours},
	})
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	want := s.clock.Now().Add(model.MaxLinkLifetime)
	if !created.Link.ExpiresAt.Equal(want) {
		t.Errorf("ExpiresAt = %v, ожидалось %v", created.Link.ExpiresAt, want)
	}
	if !created.Link.ExpiresAt.After(created.Link.CreatedAt) {
		t.Error("expires_at должен быть позже created_at")
	}
	if _, err := s.resolver.Resolve(context.Background(), created.Link.ID, nil); err != nil {
		t.Fatalf("ссылка должна разрешаться сразу после создания: %v", err)
	}
}

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name string
		in   CreateShareLinkInput
	}{
		{"private без пароля", CreateShareLinkInput{ProjectID: testProjectID, ShareType: model.ShareTypePrivate}},
		{"неизвестный тип", CreateShareLinkInput{ProjectID: testProjectID, ShareType: "internal"}},
		{"пустой тип", CreateShareLinkInput{ProjectID: testProjectID}},
		{"project_id не UUID", CreateShareLinkInput{ProjectID: "p-1", ShareType: model.ShareTypePublic}},
		{"нулевой срок", CreateShareLinkInput{
			ProjectID: testProjectID, ShareType: model.ShareTypePublic,
			Expiry: &ExpiryInput{Amount: 0, Unit: model.ExpiryHours},
		}},
		{"отрицательный срок", CreateShareLinkInput{
			ProjectID: testProjectID, ShareType: model.ShareTypePublic,
			Expiry: &ExpiryInput{Amount: -5, Unit: model.ExpiryMinutes},
		}},
		{"неизвестная единица", CreateShareLinkInput{
			ProjectID: testProjectID, ShareType: model.ShareTypePublic,
			Expiry: &ExpiryInput{Amount: 1, Unit: "days"},
		}},
		{"срок больше года в минутах", CreateShareLinkInput{
			ProjectID: testProjectID, ShareType: model.ShareTypePublic,
			Expiry: &ExpiryInput{Amount: 525601, Unit: model.ExpiryMinutes},
		}},
		{"срок больше года в часах", CreateShareLinkInput{
			ProjectID: testProjectID, ShareType: model.ShareTypePublic,
			Expiry: &ExpiryInput{Amount: 8761, Unit: model.ExpiryHours},
		}},
		{"переполнение срока", CreateShareLinkInput{
			ProjectID: testProjectID, ShareType: model.ShareTypePublic,
			Expiry: &ExpiryInput{Amount: 3000000, Unit: model.ExpiryHours},
		}},
		{"слишком длинный пароль", CreateShareLinkInput{
			ProjectID: testProjectID, ShareType: model.ShareTypePrivate,
			Password: strings.Repeat("x", 73),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServices(&mockProjectRepo{})
			_, err := s.share.Create(context.Background(), testOwner, tt.in)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("ожидался ErrValidation, получено: %v", err)
			}
			if s.links.createCalls != 0 {
				t.Error("невалидная ссылка не должна сохраняться")
			}
		})
	}
}

func TestCreate_ForeignProject(t *testing.T) {
	s := newTestServices(&mockProjectRepo{
		getByIDFn: func(_ context.Context, id string) (*model.Project, error) {
			return &model.Project{ID: id, CreatedBy: "someone-else"}, nil
		},
	})

	_, err := s.share.Create(context.Background(), testOwner, CreateShareLinkInput{
		ProjectID: testProjectID,
		ShareType: model.ShareTypePublic,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("ожидался ErrNotFound, получено: %v", err)
	}
}

func TestCreate_PersistenceErrorNotRetried(t *testing.T) {
	s := newTestServices(&mockProjectRepo{})
	dbErr := errors.New("connection reset")
	s.links.createErr = dbErr

	_, err := s.share.Create(context.Background(), testOwner, CreateShareLinkInput{
		ProjectID: testProjectID,
		ShareType: model.ShareTypePublic,
	})
	if !errors.Is(err, dbErr) {
		t.Fatalf("ожидалась ошибка хранилища, получено: %v", err)
	}
	if s.links.createCalls != 1 {
		t.Errorf("Create вызван %d раз, ожидался 1", s.links.createCalls)
	}
}

func TestGet_OtherOwner(t *testing.T) {
	s := newTestServices(&mockProjectRepo{})
	created := mustCreate(t, s, CreateShareLinkInput{ProjectID: testProjectID, ShareType: model.ShareTypePublic})

	if _, err := s.share.Get(context.Background(), "intruder", created.Link.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("ожидался ErrNotFound, получено: %v", err)
	}
	if _, err := s.share.Get(context.Background(), testOwner, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ожидался ErrNotFound, получено: %v", err)
	}
}

func TestList(t *testing.T) {
	s := newTestServices(&mockProjectRepo{})
	in := CreateShareLinkInput{ProjectID: testProjectID, ShareType: model.ShareTypePublic}
	mustCreate(t, s, in)
	mustCreate(t, s, in)

	links, err := s.share.List(context.Background(), testOwner, testProjectID)
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if len(links) != 2 {
		t.Errorf("ожидалось 2 ссылки, получено %d", len(links))
	}
}

func TestRevoke_OtherLinksKeepWorking(t *testing.T) {
	s := newTestServices(&mockProjectRepo{})
	in := CreateShareLinkInput{ProjectID: testProjectID, ShareType: model.ShareTypePublic}
	first := mustCreate(t, s, in)
	second := mustCreate(t, s, in)

	if err := s.share.Revoke(context.Background(), testOwner, first.Link.ID); err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}

	if _, err := s.resolver.Resolve(context.Background(), first.Link.ID, nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("отозванная ссылка: ожидался ErrNotFound, получено: %v", err)
	}
	if _, err := s.resolver.Resolve(context.Background(), second.Link.ID, nil); err != nil {
		t.Errorf("вторая ссылка должна работать: %v", err)
	}
	if err := s.share.Revoke(context.Background(), testOwner, first.Link.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("повторный отзыв: ожидался ErrNotFound, получено: %v", err)
	}
}

func TestSetActive_DisabledLinkIsNotFound(t *testing.T) {
	s := newTestServices(&mockProjectRepo{})
	created := mustCreate(t, s, CreateShareLinkInput{ProjectID: testProjectID, ShareType: model.ShareTypePublic})

	link, err := s.share.SetActive(context.Background(), testOwner, created.Link.ID, false)
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if link.IsActive {
		t.Error("ссылка должна быть отключена")
	}
	if _, err := s.resolver.Resolve(context.Background(), created.Link.ID, nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("ожидался ErrNotFound, получено: %v", err)
	}

	if _, err := s.share.SetActive(context.Background(), testOwner, created.Link.ID, true); err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if _, err := s.resolver.Resolve(context.Background(), created.Link.ID, nil); err != nil {
		t.Errorf("включённая ссылка должна работать: %v", err)
	}

	if _, err := s.share.SetActive(context.Background(), "intruder", created.Link.ID, false); !errors.Is(err, ErrNotFound) {
		t.Errorf("чужая ссылка: ожидался ErrNotFound, получено: %v", err)
	}
}

func TestSortCommentsNewestFirst(t *testing.T) {
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	comments := []model.Comment{
		{ID: "c1", CreatedAt: base},
		{ID: "c3", CreatedAt: base.Add(2 * time.Minute)},
		{ID: "c2", CreatedAt: base.Add(time.Minute)},
	}

	sorted := SortCommentsNewestFirst(comments)

	got := []string{sorted[0].ID, sorted[1].ID, sorted[2].ID}
	want := []string{"c3", "c2", "c1"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("порядок = %v, ожидался %v", got, want)
		}
	}
	if comments[0].ID != "c1" {
		t.Error("исходный срез не должен изменяться")
	}
	if empty := SortCommentsNewestFirst(nil); empty == nil || len(empty) != 0 {
		t.Error("для nil ожидался пустой срез")
	}
}

func mustCreate(t *testing.T, s *testServices, in CreateShareLinkInput) *CreatedShareLink {
	t.Helper()
	created, err := s.share.Create(context.Background(), testOwner, in)
	if err != nil {
		t.Fatalf("создание ссылки: %v", err)
	}
	return created
}
