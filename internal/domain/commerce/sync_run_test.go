package commerce

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSyncSummary_Finish(t *testing.T) {
	tests := []struct {
		name     string
		fetched  int
		rowErrs  int
		fetchErr error
		want     RunStatus
	}{
		{"clean run", 10, 0, nil, RunStatusSuccess},
		{"empty run", 0, 0, nil, RunStatusSuccess},
		{"row errors", 10, 2, nil, RunStatusPartial},
		{"fetch error after rows", 5, 0, ErrRateLimited, RunStatusPartial},
		{"fetch error before rows", 0, 0, ErrUnauthorized, RunStatusFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSyncSummary(ResourceOrders)
			s.Fetched = tt.fetched
			for i := 0; i < tt.rowErrs; i++ {
				s.RecordError("row", errors.New("bad"))
			}
			s.Finish(tt.fetchErr)
			assert.Equal(t, tt.want, s.Status)
			assert.False(t, s.FinishedAt.Before(s.StartedAt))
		})
	}
}

func TestSyncSummary_CapsMessages(t *testing.T) {
	s := NewSyncSummary(ResourceOrders)
	for i := 0; i < MaxErrorMessages+20; i++ {
		s.RecordError(fmt.Sprintf("#%d", i), errors.New("mapping failed"))
	}
	assert.Equal(t, MaxErrorMessages+20, s.Errors)
	assert.Len(t, s.ErrorMessages, MaxErrorMessages)
	assert.Equal(t, "#0: mapping failed", s.ErrorMessages[0])
}

func TestPage_Next(t *testing.T) {
	since := time.Now()
	base := PageRequest{Limit: 50, UpdatedAtMin: &since, Fields: []string{"id"}}

	byCursor := (&Page{NextCursor: "abc", LastID: 9}).Next(base)
	assert.Equal(t, "abc", byCursor.Cursor)
	assert.Zero(t, byCursor.SinceID)
	assert.Nil(t, byCursor.UpdatedAtMin)
	assert.Equal(t, 50, byCursor.Limit)

	byID := (&ProductPage{LastID: 42}).Next(base)
	assert.Equal(t, int64(42), byID.SinceID)
	assert.Equal(t, "", byID.Cursor)
	assert.NotNil(t, byID.UpdatedAtMin)
}

func TestExternalCustomer_FullName(t *testing.T) {
	var nilCustomer *ExternalCustomer
	assert.Equal(t, "", nilCustomer.FullName())
	assert.Equal(t, "Ada Lovelace", (&ExternalCustomer{FirstName: "Ada", LastName: "Lovelace"}).FullName())
	assert.Equal(t, "Ada", (&ExternalCustomer{FirstName: "Ada"}).FullName())
}
