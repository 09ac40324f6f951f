package memory

import (
	"testing"

	"github.com/marmos91/dittodrive/pkg/content"
	contenttesting "github.com/marmos91/dittodrive/pkg/content/testing"
)

// TestMemoryContentStore runs the complete ContentStore test suite against
// the MemoryContentStore implementation.
func TestMemoryContentStore(t *testing.T) {
	suite := &contenttesting.StoreTestSuite{
		NewStore: func() content.ContentStore {
			return NewMemoryContentStore()
		},
	}

	suite.Run(t)
}
