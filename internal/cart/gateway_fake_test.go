package cart_test

import (
	"context"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/nikolayk812/cartcheckout/internal/domain"
)

// fakeGateway is an in-memory cart store with the (owner, product)
// uniqueness constraint of the real one.
type fakeGateway struct {
	mu     sync.Mutex
	nextID int
	lines  map[string][]domain.CartLine

	createErr error
	updateErr error
	deleteErr error
	listErr   error

	// conflictErr replaces domain.ErrConflict when set, to mimic text-only backends.
	conflictErr error

	calls map[string]int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		lines: make(map[string][]domain.CartLine),
		calls: make(map[string]int),
	}
}

func (g *fakeGateway) List(_ context.Context, ownerID string) ([]domain.CartLine, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls["list"]++
	if g.listErr != nil {
		return nil, g.listErr
	}
	out := make([]domain.CartLine, len(g.lines[ownerID]))
	copy(out, g.lines[ownerID])
	return out, nil
}

func (g *fakeGateway) Create(_ context.Context, ownerID string, line domain.CartLine) (domain.LineRef, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls["create"]++
	if g.createErr != nil {
		return domain.LineRef{}, g.createErr
	}
	for _, l := range g.lines[ownerID] {
		if l.ProductID == line.ProductID {
			if g.conflictErr != nil {
				return domain.LineRef{}, g.conflictErr
			}
			return domain.LineRef{}, domain.ErrConflict
		}
	}

	g.nextID++
	line.LineID = strconv.Itoa(g.nextID)
	line.Local = false
	g.lines[ownerID] = append(g.lines[ownerID], line)
	return domain.LineRef{LineID: line.LineID}, nil
}

func (g *fakeGateway) Update(_ context.Context, ownerID, lineID string, quantity int, unitPrice domain.Money) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls["update"]++
	if g.updateErr != nil {
		return g.updateErr
	}
	for i, l := range g.lines[ownerID] {
		if l.LineID == lineID {
			g.lines[ownerID][i].Quantity = quantity
			g.lines[ownerID][i].Price = unitPrice
			return nil
		}
	}
	return domain.ErrNotFound
}

func (g *fakeGateway) Delete(_ context.Context, ownerID, lineID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls["delete"]++
	if g.deleteErr != nil {
		return g.deleteErr
	}
	lines := g.lines[ownerID]
	for i, l := range lines {
		if l.LineID == lineID {
			g.lines[ownerID] = append(lines[:i], lines[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (g *fakeGateway) seed(ownerID string, line domain.CartLine) domain.CartLine {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextID++
	line.LineID = strconv.Itoa(g.nextID)
	g.lines[ownerID] = append(g.lines[ownerID], line)
	return line
}

func (g *fakeGateway) linesFor(ownerID string, productID uuid.UUID) []domain.CartLine {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []domain.CartLine
	for _, l := range g.lines[ownerID] {
		if l.ProductID == productID {
			out = append(out, l)
		}
	}
	return out
}

func (g *fakeGateway) callCount(op string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[op]
}
