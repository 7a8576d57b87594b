package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/lyralabs/lyra-backend/internal/models"
)

// FileOrderLog is the durable order history: an append-only file with one
// JSON record per line. A record counts as committed once its line,
// including the trailing newline, has been fsynced. Recovery drops any torn
// tail, so a crash mid-write can never surface a partial order.
type FileOrderLog struct {
	finder ProductFinder

	mu     sync.RWMutex
	file   *os.File
	size   int64 // offset one past the last committed byte
	orders []*models.Order
	byID   map[int64]*models.Order
	lastID int64
}

// OpenOrderLog opens or creates the log at path and replays the committed
// records. Product ids in new orders are validated against finder.
func OpenOrderLog(path string, finder ProductFinder) (*FileOrderLog, error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open order log %s: %w", path, err)
	}

	l := &FileOrderLog{
		finder: finder,
		file:   file,
		byID:   make(map[int64]*models.Order),
	}
	if err := l.recover(); err != nil {
		file.Close()
		return nil, err
	}
	return l, nil
}

// recover replays the log, keeping every record that is newline-terminated
// and valid JSON, and truncates the file after the last such record. A
// trailing partial write is treated as if the order never happened.
func (l *FileOrderLog) recover() error {
	if _, err := l.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("seek order log: %w", err)
	}

	reader := bufio.NewReader(l.file)
	var committed int64
	for {
		line, err := reader.ReadBytes('\n')
		if err == io.EOF {
			// no trailing newline: torn write, drop it
			break
		}
		if err != nil {
			return fmt.Errorf("read order log: %w", err)
		}
		var order models.Order
		if json.Unmarshal(line, &order) != nil || order.OrderID <= 0 {
			break
		}
		committed += int64(len(line))
		l.orders = append(l.orders, &order)
		l.byID[order.OrderID] = &order
		if order.OrderID > l.lastID {
			l.lastID = order.OrderID
		}
	}

	if err := l.file.Truncate(committed); err != nil {
		return fmt.Errorf("truncate order log: %w", err)
	}
	l.size = committed
	return nil
}

// Place validates the line items against the catalog, assigns the next
// order id and durably appends the order. The append path is the one
// critical section in the subsystem: id assignment and the write happen
// under a single writer lock so concurrent placements never share an id or
// interleave partial records.
func (l *FileOrderLog) Place(items []models.OrderLineItem) (*models.Order, error) {
	if len(items) == 0 {
		return nil, models.ErrEmptyOrder()
	}

	resolved := make([]models.OrderLineItem, 0, len(items))
	var total float64
	for _, item := range items {
		// an unknown product is reported before a bad quantity
		product, err := l.finder.GetByID(item.ProductID)
		if err != nil {
			return nil, err
		}
		if item.Quantity < 1 {
			return nil, models.ErrInvalidQuantity(item.ProductID, item.Quantity)
		}
		resolved = append(resolved, models.OrderLineItem{
			ProductID: product.ID,
			Name:      product.Name,
			Quantity:  item.Quantity,
			UnitPrice: product.Price,
		})
		total += product.Price * float64(item.Quantity)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	order := &models.Order{
		OrderID:   l.lastID + 1,
		Timestamp: time.Now().UTC(),
		LineItems: resolved,
		Total:     models.RoundCents(total),
	}

	line, err := json.Marshal(order)
	if err != nil {
		return nil, models.ErrStoreWriteFailure(fmt.Errorf("encode order: %w", err))
	}
	line = append(line, '\n')

	if err := l.append(line); err != nil {
		return nil, models.ErrStoreWriteFailure(err)
	}

	l.lastID = order.OrderID
	l.orders = append(l.orders, order)
	l.byID[order.OrderID] = order
	return order, nil
}

// append writes and fsyncs one record, rolling the file back to the last
// committed offset when anything fails so the id is neither skipped nor
// duplicated.
func (l *FileOrderLog) append(line []byte) error {
	if _, err := l.file.WriteAt(line, l.size); err != nil {
		_ = l.file.Truncate(l.size)
		return fmt.Errorf("append order record: %w", err)
	}
	if err := l.file.Sync(); err != nil {
		_ = l.file.Truncate(l.size)
		return fmt.Errorf("sync order log: %w", err)
	}
	l.size += int64(len(line))
	return nil
}

// Last returns the most recently committed order, or nil when the store is
// empty. It reflects every order committed before the call, regardless of
// which session placed it.
func (l *FileOrderLog) Last() (*models.Order, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if len(l.orders) == 0 {
		return nil, nil
	}
	return l.orders[len(l.orders)-1], nil
}

// Get returns a committed order by id.
func (l *FileOrderLog) Get(id int64) (*models.Order, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	order, ok := l.byID[id]
	if !ok {
		return nil, models.ErrOrderNotFound(id)
	}
	return order, nil
}

// Count returns the number of committed orders.
func (l *FileOrderLog) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.orders)
}

// Close releases the underlying file.
func (l *FileOrderLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}
