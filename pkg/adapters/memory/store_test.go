package memory_test

import (
	"testing"

	"github.com/aretw0/tally/pkg/adapters/memory"
	"github.com/aretw0/tally/pkg/ports"
)

func TestMemoryStore_Contract(t *testing.T) {
	ports.RunAccountStoreContract(t, memory.NewStore())
}
