package cart

import (
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/cartcheckout/internal/domain"
)

const localLinePrefix = "local-"

// View is the in-memory cart projection the UI renders. It is replaced from
// the authoritative store after every successful gateway call; the unexported
// mutators exist only for degraded mode.
type View struct {
	mu    sync.RWMutex
	lines []domain.CartLine
}

func NewView(lines ...domain.CartLine) *View {
	return &View{lines: slices.Clone(lines)}
}

func (v *View) Lines() []domain.CartLine {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return slices.Clone(v.lines)
}

func (v *View) ItemCount() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return domain.ItemCount(v.lines)
}

func (v *View) IsEmpty() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.lines) == 0
}

func (v *View) Find(lineID string) (domain.CartLine, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	i := v.indexOf(lineID)
	if i < 0 {
		return domain.CartLine{}, false
	}
	return v.lines[i], true
}

func (v *View) FindProduct(productID uuid.UUID) (domain.CartLine, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	for _, l := range v.lines {
		if l.ProductID == productID {
			return l, true
		}
	}
	return domain.CartLine{}, false
}

func (v *View) Clear() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.lines = nil
}

func (v *View) Replace(lines []domain.CartLine) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.lines = slices.Clone(lines)
}

func (v *View) authoritativeLine(productID uuid.UUID) (domain.CartLine, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	for _, l := range v.lines {
		if l.ProductID == productID && l.IsAuthoritative() {
			return l, true
		}
	}
	return domain.CartLine{}, false
}

// merge inserts line or replaces the entry with the same line id.
func (v *View) merge(line domain.CartLine) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if i := v.indexOf(line.LineID); i >= 0 {
		v.lines[i] = line
		return
	}
	v.lines = append(v.lines, line)
}

// addLocal increments the first line for the product or appends a local-only
// line whose identity is derived from now.
func (v *View) addLocal(draft domain.CartLine, now time.Time) domain.CartLine {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i, l := range v.lines {
		if l.ProductID == draft.ProductID {
			v.lines[i].Quantity += draft.Quantity
			return v.lines[i]
		}
	}

	draft.LineID = localLinePrefix + strconv.FormatInt(now.UnixNano(), 10)
	draft.Local = true
	draft.CreatedAt = now
	v.lines = append(v.lines, draft)
	return draft
}

func (v *View) setQuantity(lineID string, quantity int) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	i := v.indexOf(lineID)
	if i < 0 {
		return false
	}
	v.lines[i].Quantity = quantity
	return true
}

func (v *View) remove(lineID string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	i := v.indexOf(lineID)
	if i < 0 {
		return false
	}
	v.lines = slices.Delete(v.lines, i, i+1)
	return true
}

func (v *View) indexOf(lineID string) int {
	if lineID == "" {
		return -1
	}
	return slices.IndexFunc(v.lines, func(l domain.CartLine) bool {
		return l.LineID == lineID
	})
}
