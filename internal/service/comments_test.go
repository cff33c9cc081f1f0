package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Mathew1304/Expense-Tracker-sub000/internal/domain/model"
)

func TestAddComment_OrderAndAppendOnly(t *testing.T) {
	s := newTestServices(&mockProjectRepo{})
	created := mustCreate(t, s, CreateShareLinkInput{ProjectID: testProjectID, ShareType: model.ShareTypePublic})
	id := created.Link.ID

	c1, err := s.comments.Add(context.Background(), id, nil, "Asha", "Looks good")
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	s.clock.Advance(time.Minute)
	c2, err := s.comments.Add(context.Background(), id, nil, "Vikram", "When is the slab poured?")
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}

	comments, err := s.share.Comments(context.Background(), testOwner, id)
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if len(comments) != 2 {
		t.Fatalf("ожидалось 2 комментария, получено %d", len(comments))
	}
	if comments[0].ID != c2.ID || comments[1].ID != c1.ID {
		t.Errorf("порядок = [%s %s], ожидался [%s %s]", comments[0].ID, comments[1].ID, c2.ID, c1.ID)
	}
	if comments[1].Comment != "Looks good" || comments[1].AuthorName != "Asha" {
		t.Errorf("первый комментарий изменён: %+v", comments[1])
	}
}

func TestAddComment_DefaultsAndValidation(t *testing.T) {
	s := newTestServices(&mockProjectRepo{})
	created := mustCreate(t, s, CreateShareLinkInput{ProjectID: testProjectID, ShareType: model.ShareTypePublic})

	c, err := s.comments.Add(context.Background(), created.Link.ID, nil, "   ", "  hello  ")
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if c.AuthorName != AnonymousAuthor {
		t.Errorf("AuthorName = %q, ожидалось %q", c.AuthorName, AnonymousAuthor)
	}
	if c.Comment != "hello" {
		t.Errorf("Comment = %q", c.Comment)
	}
	if !c.CreatedAt.Equal(s.clock.Now()) {
		t.Errorf("CreatedAt = %v", c.CreatedAt)
	}

	if _, err := s.comments.Add(context.Background(), created.Link.ID, nil, "Asha", " \n "); !errors.Is(err, ErrValidation) {
		t.Errorf("пустой комментарий: ожидался ErrValidation, получено: %v", err)
	}
}

func TestAddComment_RequiresAccess(t *testing.T) {
	s := newTestServices(&mockProjectRepo{})
	private := mustCreate(t, s, CreateShareLinkInput{
		ProjectID: testProjectID,
		ShareType: model.ShareTypePrivate,
		Password:  "pw",
		Expiry:    &ExpiryInput{Amount: 5, Unit: model.ExpiryMinutes},
	})
	id := private.Link.ID

	if _, err := s.comments.Add(context.Background(), id, nil, "", "hi"); !errors.Is(err, ErrPasswordRequired) {
		t.Errorf("ожидался ErrPasswordRequired, получено: %v", err)
	}
	if _, err := s.comments.Add(context.Background(), id, strPtr("bad"), "", "hi"); !errors.Is(err, ErrInvalidPassword) {
		t.Errorf("ожидался ErrInvalidPassword, получено: %v", err)
	}
	if _, err := s.comments.Add(context.Background(), id, strPtr("pw"), "", "hi"); err != nil {
		t.Errorf("неожиданная ошибка: %v", err)
	}

	s.clock.Advance(5 * time.Minute)
	if _, err := s.comments.Add(context.Background(), id, strPtr("pw"), "", "late"); !errors.Is(err, ErrExpired) {
		t.Errorf("ожидался ErrExpired, получено: %v", err)
	}

	link, err := s.share.Get(context.Background(), testOwner, id)
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if len(link.Comments) != 1 {
		t.Errorf("ожидался 1 комментарий, получено %d", len(link.Comments))
	}
}

func TestAddComment_Disabled(t *testing.T) {
	s := newTestServices(&mockProjectRepo{})
	created := mustCreate(t, s, CreateShareLinkInput{ProjectID: testProjectID, ShareType: model.ShareTypePublic})

	// Ссылки из старых записей могут хранить allowComments=false
	s.links.mu.Lock()
	s.links.links[created.Link.ID].ShareOptions.AllowComments = false
	s.links.mu.Unlock()

	if _, err := s.comments.Add(context.Background(), created.Link.ID, nil, "", "hi"); !errors.Is(err, ErrCommentsDisabled) {
		t.Errorf("ожидался ErrCommentsDisabled, получено: %v", err)
	}
}

func TestAddComment_StorageError(t *testing.T) {
	s := newTestServices(&mockProjectRepo{})
	created := mustCreate(t, s, CreateShareLinkInput{ProjectID: testProjectID, ShareType: model.ShareTypePublic})
	s.links.appendErr = errors.New("disk full")

	_, err := s.comments.Add(context.Background(), created.Link.ID, nil, "", "hi")
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("ожидалась внутренняя ошибка, получено: %v", err)
	}
}
