package ports

import (
	"context"
	"testing"

	"github.com/aretw0/tally/pkg/domain"
)

// RunAccountStoreContract verifies that a store adapter honors the
// AccountStore semantics. Every adapter's test suite runs it.
func RunAccountStoreContract(t *testing.T, store AccountStore) {
	t.Helper()
	ctx := context.Background()

	owner := domain.NewAddress()
	list := &domain.Account{
		Address:  domain.NewAddress(),
		Lamports: 500,
		Data:     (&domain.TodoList{ListOwner: owner, Capacity: 4, Name: "contract"}).Encode(),
	}
	system := &domain.Account{Address: domain.NewAddress(), Lamports: 1000}

	t.Run("Get_NotFound", func(t *testing.T) {
		_, err := store.Get(ctx, domain.NewAddress())
		if err != domain.ErrAccountNotFound {
			t.Fatalf("expected ErrAccountNotFound, got %v", err)
		}
	})

	t.Run("Commit_And_Get", func(t *testing.T) {
		if err := store.Commit(ctx, []WriteOp{Put(list), Put(system)}); err != nil {
			t.Fatalf("commit failed: %v", err)
		}

		got, err := store.Get(ctx, list.Address)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got.Lamports != list.Lamports {
			t.Errorf("lamports: got %d, want %d", got.Lamports, list.Lamports)
		}
		if string(got.Data) != string(list.Data) {
			t.Error("data mismatch after round trip")
		}
	})

	t.Run("Get_ReturnsCopy", func(t *testing.T) {
		got, err := store.Get(ctx, list.Address)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		got.Lamports = 0
		if len(got.Data) > 0 {
			got.Data[0] = 0xEE
		}

		again, err := store.Get(ctx, list.Address)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if again.Lamports != list.Lamports || string(again.Data) != string(list.Data) {
			t.Error("store state mutated through a returned copy")
		}
	})

	t.Run("Scan_ByKindAndOwner", func(t *testing.T) {
		matches, err := store.Scan(ctx, Filter{
			Kind:   domain.KindTodoList,
			Offset: domain.TodoListOwnerOffset,
			Bytes:  owner.Bytes(),
		})
		if err != nil {
			t.Fatalf("scan failed: %v", err)
		}
		if len(matches) != 1 || matches[0].Address != list.Address {
			t.Fatalf("expected exactly the seeded list, got %d matches", len(matches))
		}

		none, err := store.Scan(ctx, Filter{
			Kind:   domain.KindTodoList,
			Offset: domain.TodoListOwnerOffset,
			Bytes:  domain.NewAddress().Bytes(),
		})
		if err != nil {
			t.Fatalf("scan failed: %v", err)
		}
		if len(none) != 0 {
			t.Errorf("expected no matches for a foreign owner, got %d", len(none))
		}
	})

	t.Run("Commit_Close", func(t *testing.T) {
		if err := store.Commit(ctx, []WriteOp{Close(system.Address)}); err != nil {
			t.Fatalf("commit failed: %v", err)
		}
		_, err := store.Get(ctx, system.Address)
		if err != domain.ErrAccountNotFound {
			t.Fatalf("expected ErrAccountNotFound after close, got %v", err)
		}
	})

	t.Run("Commit_Batch_IsAtomicallyVisible", func(t *testing.T) {
		a := &domain.Account{Address: domain.NewAddress(), Lamports: 1}
		b := &domain.Account{Address: domain.NewAddress(), Lamports: 2}
		if err := store.Commit(ctx, []WriteOp{Put(a), Put(b), Close(a.Address)}); err != nil {
			t.Fatalf("commit failed: %v", err)
		}

		if _, err := store.Get(ctx, a.Address); err != domain.ErrAccountNotFound {
			t.Errorf("close inside batch not applied: %v", err)
		}
		if _, err := store.Get(ctx, b.Address); err != nil {
			t.Errorf("put inside batch not applied: %v", err)
		}
	})
}
