package ids_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/eventhub-auth/internal/ids"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/require"
)

func TestNewIsSortable(t *testing.T) {
	prev := ids.New()
	for i := 0; i < 100; i++ {
		next := ids.New()
		require.Less(t, prev, next)
		prev = next
	}
}

func TestNewAtCarriesTimestamp(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	id, err := ulid.Parse(ids.NewAt(at))
	require.NoError(t, err)
	require.Equal(t, at.UnixMilli(), int64(id.Time()))
}
