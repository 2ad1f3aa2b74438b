package mysql

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The list column sets extend the base sets with the comment-count
// aggregate. They must own their backing arrays; if they aliased the base
// slices' spare capacity, concurrent list queries would write over each
// other's aggregate column.
func TestListColumnsOwnTheirBackingArrays(t *testing.T) {
	require.Len(t, postListColumns, len(postColumns)+1)
	require.Len(t, discussionListColumns, len(discussionColumns)+1)

	appended := append(postColumns, "sentinel")
	assert.Equal(t, "sentinel", appended[len(postColumns)])
	assert.NotEqual(t, "sentinel", postListColumns[len(postColumns)])

	appended = append(discussionColumns, "sentinel")
	assert.Equal(t, "sentinel", appended[len(discussionColumns)])
	assert.NotEqual(t, "sentinel", discussionListColumns[len(discussionColumns)])
}

func TestListColumnsStableUnderConcurrentReads(t *testing.T) {
	wantPost := append([]interface{}{}, postListColumns...)
	wantDiscussion := append([]interface{}{}, discussionListColumns...)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				cols := postListColumns
				_ = cols[len(cols)-1]
				cols = discussionListColumns
				_ = cols[len(cols)-1]
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, wantPost, postListColumns)
	assert.Equal(t, wantDiscussion, discussionListColumns)
}
