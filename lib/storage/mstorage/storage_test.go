package mstorage

import (
	"testing"

	"github.com/ValentinKolb/bracketd/lib/storage"
	storagetesting "github.com/ValentinKolb/bracketd/lib/storage/testing"
)

func Test(t *testing.T) {
	storagetesting.RunStorageTests(t, "MemoryStorage", func() (storage.IStorage, error) {
		return NewMemoryStorage(), nil
	})
}
