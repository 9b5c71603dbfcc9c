//go:build !integration

package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"aura-vcf-bot/internal/domain"
	"aura-vcf-bot/internal/domain/model"
	"aura-vcf-bot/internal/domain/ports/repository"
)

func TestStateRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewStateRepo()

	t.Run("should not leak the stored data map", func(t *testing.T) {
		st := &repository.ConversationState{Mode: "rename_files", Step: "awaiting_instruction"}
		st.Set("k", "v")
		if err := repo.SetState(ctx, 1, st); err != nil {
			t.Fatalf("SetState: %v", err)
		}
		st.Set("k", "changed")

		got, err := repo.GetState(ctx, 1)
		if err != nil {
			t.Fatalf("GetState: %v", err)
		}
		if got.Get("k") != "v" {
			t.Errorf("expected stored copy to be unchanged, got %q", got.Get("k"))
		}
	})

	t.Run("should return nil after clear", func(t *testing.T) {
		_ = repo.ClearState(ctx, 1)
		if got, err := repo.GetState(ctx, 1); got != nil || err != nil {
			t.Errorf("expected (nil, nil), got (%v, %v)", got, err)
		}
	})
}

func TestBatchRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewBatchRepo()
	_, _ = repo.Append(ctx, 1, model.InputFile{Name: "a"})
	n, _ := repo.Append(ctx, 1, model.InputFile{Name: "b"})
	if n != 2 {
		t.Fatalf("expected 2 files, got %d", n)
	}
	files, _ := repo.List(ctx, 1)
	if files[0].Name != "a" || files[1].Name != "b" {
		t.Errorf("expected upload order, got %+v", files)
	}
	_ = repo.Clear(ctx, 1)
	if files, _ := repo.List(ctx, 1); len(files) != 0 {
		t.Errorf("expected empty batch, got %d", len(files))
	}
}

func TestRateLimiter(t *testing.T) {
	ctx := context.Background()
	rl := NewRateLimiter()
	for i := 0; i < 2; i++ {
		if ok, _ := rl.Allow(ctx, "k", 2, time.Hour); !ok {
			t.Fatalf("call %d: expected allow", i+1)
		}
	}
	if ok, _ := rl.Allow(ctx, "k", 2, time.Hour); ok {
		t.Error("expected burst to be exhausted")
	}
	if ok, _ := rl.Allow(ctx, "other", 2, time.Hour); !ok {
		t.Error("expected keys to be independent")
	}
}

func TestLocker(t *testing.T) {
	ctx := context.Background()
	l := NewLocker()
	now := time.Now()
	l.now = func() time.Time { return now }

	token, err := l.TryLock(ctx, "batch:1", time.Minute)
	if err != nil {
		t.Fatalf("TryLock: %v", err)
	}
	if _, err := l.TryLock(ctx, "batch:1", time.Minute); !errors.Is(err, domain.ErrBatchLocked) {
		t.Errorf("expected ErrBatchLocked, got %v", err)
	}

	t.Run("should ignore unlock with a foreign token", func(t *testing.T) {
		_ = l.Unlock(ctx, "batch:1", "someone-else")
		if _, err := l.TryLock(ctx, "batch:1", time.Minute); err == nil {
			t.Error("expected lock to still be held")
		}
	})

	t.Run("should allow relock after expiry", func(t *testing.T) {
		now = now.Add(2 * time.Minute)
		if _, err := l.TryLock(ctx, "batch:1", time.Minute); err != nil {
			t.Errorf("expected expired lease to be replaced, got %v", err)
		}
	})

	_ = l.Unlock(ctx, "batch:1", token)
}

func TestUsageRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewUsageRepo(2)
	for _, op := range []model.Operation{model.OpCount, model.OpCount, model.OpRenameFiles} {
		rec, err := model.NewUsageRecord(9, op, 1, 2)
		if err != nil {
			t.Fatalf("NewUsageRecord: %v", err)
		}
		_ = repo.Record(ctx, rec)
	}
	sum, err := repo.Summary(ctx, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if sum.Users != 1 || sum.FilesOut != 2 || sum.ContactsOut != 4 {
		t.Errorf("unexpected summary %+v", sum)
	}
	if sum.Operations[model.OpCount] != 1 || sum.Operations[model.OpRenameFiles] != 1 {
		t.Errorf("expected only the last two records to be kept, got %v", sum.Operations)
	}
}
