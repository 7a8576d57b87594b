package storage

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyralabs/lyra-backend/internal/models"
)

func newTestLog(t *testing.T) (*FileOrderLog, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "orders.jsonl")
	return openTestLog(t, path), path
}

func openTestLog(t *testing.T, path string) *FileOrderLog {
	t.Helper()
	log, err := OpenOrderLog(path, newTestCatalog(t))
	require.NoError(t, err)
	t.Cleanup(func() { log.Close() })
	return log
}

func TestPlaceRoundTrip(t *testing.T) {
	log, _ := newTestLog(t)

	order, err := log.Place([]models.OrderLineItem{{ProductID: "p1", Quantity: 2}})
	require.NoError(t, err)

	assert.Equal(t, int64(1), order.OrderID)
	assert.Equal(t, 25.00, order.Total)
	require.Len(t, order.LineItems, 1)
	assert.Equal(t, "Blue Mug", order.LineItems[0].Name)
	assert.Equal(t, 12.50, order.LineItems[0].UnitPrice)
	assert.False(t, order.Timestamp.IsZero())

	got, err := log.Get(1)
	require.NoError(t, err)
	assert.Equal(t, order, got)

	last, err := log.Last()
	require.NoError(t, err)
	assert.Equal(t, order, last)
}

func TestPlaceAssignsMonotonicIDs(t *testing.T) {
	log, _ := newTestLog(t)

	for want := int64(1); want <= 3; want++ {
		order, err := log.Place([]models.OrderLineItem{{ProductID: "p3", Quantity: 1}})
		require.NoError(t, err)
		assert.Equal(t, want, order.OrderID)
	}
	assert.Equal(t, 3, log.Count())
}

func TestPlaceValidation(t *testing.T) {
	log, _ := newTestLog(t)

	_, err := log.Place(nil)
	assert.Equal(t, models.CodeEmptyOrder, models.CodeOf(err))

	_, err = log.Place([]models.OrderLineItem{{ProductID: "ghost", Quantity: 1}})
	assert.Equal(t, models.CodeProductNotFound, models.CodeOf(err))
	var de *models.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "ghost", de.ProductID)

	_, err = log.Place([]models.OrderLineItem{{ProductID: "p1", Quantity: 0}})
	assert.Equal(t, models.CodeInvalidQuantity, models.CodeOf(err))

	// an unknown product wins over a bad quantity
	_, err = log.Place([]models.OrderLineItem{{ProductID: "ghost", Quantity: 0}})
	assert.Equal(t, models.CodeProductNotFound, models.CodeOf(err))

	// nothing was committed
	assert.Equal(t, 0, log.Count())
}

func TestEmptyStoreReads(t *testing.T) {
	log, _ := newTestLog(t)

	last, err := log.Last()
	require.NoError(t, err)
	assert.Nil(t, last)

	_, err = log.Get(1)
	assert.Equal(t, models.CodeOrderNotFound, models.CodeOf(err))
}

func TestReopenContinuesIDs(t *testing.T) {
	log, path := newTestLog(t)

	_, err := log.Place([]models.OrderLineItem{{ProductID: "p1", Quantity: 1}})
	require.NoError(t, err)
	_, err = log.Place([]models.OrderLineItem{{ProductID: "p2", Quantity: 3}})
	require.NoError(t, err)
	require.NoError(t, log.Close())

	reopened := openTestLog(t, path)
	assert.Equal(t, 2, reopened.Count())

	last, err := reopened.Last()
	require.NoError(t, err)
	assert.Equal(t, int64(2), last.OrderID)
	assert.Equal(t, 33.00, last.Total)

	next, err := reopened.Place([]models.OrderLineItem{{ProductID: "p3", Quantity: 1}})
	require.NoError(t, err)
	assert.Equal(t, int64(3), next.OrderID)
}

func TestRecoveryDropsTornTail(t *testing.T) {
	log, path := newTestLog(t)

	_, err := log.Place([]models.OrderLineItem{{ProductID: "p1", Quantity: 2}})
	require.NoError(t, err)
	_, err = log.Place([]models.OrderLineItem{{ProductID: "p2", Quantity: 1}})
	require.NoError(t, err)
	require.NoError(t, log.Close())

	// Simulate a crash mid-write: a record without its trailing newline.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(`{"order_id":3,"timestamp":"2026-08-23T10:`)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	reopened := openTestLog(t, path)
	assert.Equal(t, 2, reopened.Count())

	last, err := reopened.Last()
	require.NoError(t, err)
	assert.Equal(t, int64(2), last.OrderID)

	// The torn record never happened; the next order takes its id.
	next, err := reopened.Place([]models.OrderLineItem{{ProductID: "p3", Quantity: 1}})
	require.NoError(t, err)
	assert.Equal(t, int64(3), next.OrderID)
	require.NoError(t, reopened.Close())

	// A second recovery sees a fully consistent log.
	again := openTestLog(t, path)
	assert.Equal(t, 3, again.Count())
}

func TestRecoveryDropsMalformedTail(t *testing.T) {
	log, path := newTestLog(t)

	_, err := log.Place([]models.OrderLineItem{{ProductID: "p1", Quantity: 1}})
	require.NoError(t, err)
	require.NoError(t, log.Close())

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("this is not an order record\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	reopened := openTestLog(t, path)
	assert.Equal(t, 1, reopened.Count())

	last, err := reopened.Last()
	require.NoError(t, err)
	assert.Equal(t, int64(1), last.OrderID)
}

func TestWriteFailureLeavesLogUnchanged(t *testing.T) {
	log, _ := newTestLog(t)

	first, err := log.Place([]models.OrderLineItem{{ProductID: "p1", Quantity: 1}})
	require.NoError(t, err)
	require.NoError(t, log.Close())

	// the file handle is closed, so the durable append must fail
	_, err = log.Place([]models.OrderLineItem{{ProductID: "p2", Quantity: 1}})
	assert.Equal(t, models.CodeStoreWriteFailure, models.CodeOf(err))

	// the failed order never happened: no id skipped, nothing committed
	assert.Equal(t, 1, log.Count())
	last, err := log.Last()
	require.NoError(t, err)
	assert.Equal(t, first.OrderID, last.OrderID)
}

func TestConcurrentPlacements(t *testing.T) {
	log, _ := newTestLog(t)

	const workers = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := make(map[int64]bool)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			order, err := log.Place([]models.OrderLineItem{{ProductID: "p5", Quantity: 1}})
			if err != nil {
				t.Errorf("place failed: %v", err)
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if seen[order.OrderID] {
				t.Errorf("duplicate order id %d", order.OrderID)
			}
			seen[order.OrderID] = true
		}()
	}
	wg.Wait()

	assert.Equal(t, workers, log.Count())
	last, err := log.Last()
	require.NoError(t, err)
	assert.Equal(t, int64(workers), last.OrderID)
}

func TestTotalFrozenAtPlacement(t *testing.T) {
	log, _ := newTestLog(t)

	order, err := log.Place([]models.OrderLineItem{
		{ProductID: "p3", Quantity: 2},
		{ProductID: "p5", Quantity: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, 21.25, order.Total)

	got, err := log.Get(order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, order.Total, got.Total)
}
