package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"todo-planner/internal/model"
)

func openTestDB(t *testing.T, models ...any) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := NewDB(dsn, models...)
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func TestIsPostgres(t *testing.T) {
	tests := map[string]bool{
		"postgres://u:p@localhost/db":       true,
		"postgresql://localhost/db":         true,
		"host=localhost user=u dbname=todo": true,
		"todo_planner.db":                   false,
		"file:test?mode=memory&cache=shared": false,
	}
	for dsn, want := range tests {
		if got := isPostgres(dsn); got != want {
			t.Errorf("isPostgres(%q) = %v", dsn, got)
		}
	}
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(openTestDB(t, &model.User{}))

	user := &model.User{Email: "a@example.com", PasswordHash: "hash"}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if user.ID == uuid.Nil {
		t.Fatal("id not assigned")
	}

	got, err := repo.FindByEmail(ctx, "a@example.com")
	if err != nil || got.ID != user.ID {
		t.Fatalf("FindByEmail = %+v, %v", got, err)
	}
	if _, err := repo.FindByID(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("FindByID missing = %v", err)
	}
	if err := repo.Create(ctx, &model.User{Email: "a@example.com", PasswordHash: "x"}); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate email = %v, want ErrDuplicate", err)
	}
}

func TestTaskRepositoryScopesByUser(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(openTestDB(t, &model.User{}, &model.Task{}))
	owner, other := uuid.New(), uuid.New()

	first := &model.Task{UserID: owner, Title: "first"}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("Create: %v", err)
	}
	second := &model.Task{UserID: owner, Title: "second", CreatedAt: first.CreatedAt.Add(time.Second)}
	if err := repo.Create(ctx, second); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(ctx, &model.Task{UserID: other, Title: "theirs"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	tasks, err := repo.ListByUser(ctx, owner)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(tasks) != 2 || tasks[0].ID != second.ID || tasks[1].ID != first.ID {
		t.Errorf("tasks = %+v", tasks)
	}

	if _, err := repo.FindByID(ctx, other, first.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("cross-user FindByID = %v", err)
	}
	if err := repo.Delete(ctx, other, first.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("cross-user Delete = %v", err)
	}
	if err := repo.Delete(ctx, owner, first.ID); err != nil {
		t.Errorf("Delete: %v", err)
	}
}

func TestTaskRepositorySaveClearsFields(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(openTestDB(t, &model.Task{}))
	user := uuid.New()
	desc := "notes"
	due := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)

	task := &model.Task{UserID: user, Title: "t", Description: &desc, DueDate: &due}
	if err := repo.Create(ctx, task); err != nil {
		t.Fatalf("Create: %v", err)
	}
	task.Description = nil
	task.IsCompleted = true
	if err := repo.Save(ctx, task); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := repo.FindByID(ctx, user, task.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.Description != nil || !got.IsCompleted || got.DueDate == nil || !got.DueDate.Equal(due) {
		t.Errorf("got %+v", got)
	}
}

func TestTaskRepositoryListDueBetween(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(openTestDB(t, &model.Task{}))
	user := uuid.New()

	at := func(d int) *time.Time {
		v := time.Date(2026, 2, d, 12, 0, 0, 0, time.UTC)
		return &v
	}
	for _, task := range []*model.Task{
		{UserID: user, Title: "before", DueDate: at(1)},
		{UserID: user, Title: "inside", DueDate: at(10)},
		{UserID: user, Title: "after", DueDate: at(20)},
		{UserID: user, Title: "undated"},
	} {
		if err := repo.Create(ctx, task); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	from := time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)
	tasks, err := repo.ListDueBetween(ctx, user, from, to)
	if err != nil {
		t.Fatalf("ListDueBetween: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Title != "inside" {
		t.Errorf("bounded = %+v", tasks)
	}

	open, err := repo.ListDueBetween(ctx, user, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("ListDueBetween open: %v", err)
	}
	if len(open) != 3 || open[0].Title != "before" || open[2].Title != "after" {
		t.Errorf("open = %+v", open)
	}
}

func TestChatRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewChatRepository(openTestDB(t, &model.ChatSession{}))

	chat, err := repo.UpsertFromTelegram(ctx, 100, 7, "Ann", "ann")
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if chat.SignedIn() || !chat.Reports {
		t.Errorf("new chat = %+v", chat)
	}
	if _, err := repo.UpsertFromTelegram(ctx, 100, 7, "Anna", "ann"); err != nil {
		t.Fatalf("Upsert again: %v", err)
	}

	if err := repo.SaveToken(ctx, 100, "ann@example.com", "tok"); err != nil {
		t.Fatalf("SaveToken: %v", err)
	}
	if err := repo.SaveToken(ctx, 999, "x", "y"); !errors.Is(err, ErrNotFound) {
		t.Errorf("SaveToken unknown chat = %v", err)
	}

	got, err := repo.FindByChatID(ctx, 100)
	if err != nil {
		t.Fatalf("FindByChatID: %v", err)
	}
	if got.FirstName != "Anna" || got.Token != "tok" || got.Email != "ann@example.com" {
		t.Errorf("chat = %+v", got)
	}

	chats, err := repo.ListReportable(ctx)
	if err != nil || len(chats) != 1 {
		t.Fatalf("ListReportable = %+v, %v", chats, err)
	}
	if err := repo.SetReports(ctx, 100, false); err != nil {
		t.Fatalf("SetReports: %v", err)
	}
	if chats, _ := repo.ListReportable(ctx); len(chats) != 0 {
		t.Errorf("reports disabled but listed: %+v", chats)
	}
}
