package rubble

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeshSnapshotContainer_ConcurrentReaders(t *testing.T) {
	var c MeshSnapshotContainer
	assert.Nil(t, c.Get())

	var wg sync.WaitGroup
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var last uint64
			for i := 0; i < 1000; i++ {
				if s := c.Get(); s != nil {
					assert.GreaterOrEqual(t, s.Tick, last)
					last = s.Tick
				}
			}
		}()
	}
	for tick := uint64(1); tick <= 1000; tick++ {
		c.Update(&MeshSnapshot{Tick: tick, Blocks: &Mesh{}, Fragments: &Mesh{}})
	}
	wg.Wait()

	assert.Equal(t, uint64(1000), c.Get().Tick)
}
