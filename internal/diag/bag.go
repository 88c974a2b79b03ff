package diag

import (
	"fmt"
	"sort"
)

// Item is a diagnostic together with the file it was published for.
type Item struct {
	Path string
	Diagnostic
}

type Bag struct {
	items []Item
	max   int
}

// NewBag creates a bag holding at most max items (max <= 0 means unbounded).
func NewBag(max int) *Bag {
	capacity := max
	if capacity <= 0 {
		capacity = 16
	}
	return &Bag{
		items: make([]Item, 0, capacity),
		max:   max,
	}
}

// Collect flattens collections into a sorted bag. The limit applies after
// sorting, so the first max items in order are kept.
func Collect(max int, collections ...*Collection) *Bag {
	b := NewBag(0)
	for _, c := range collections {
		if c == nil {
			continue
		}
		snap := c.Snapshot()
		for _, path := range c.Files() {
			for _, d := range snap[path] {
				b.Add(Item{Path: path, Diagnostic: d})
			}
		}
	}
	b.Sort()
	if max > 0 && len(b.items) > max {
		b.items = b.items[:max]
	}
	b.max = max
	return b
}

// Add добавляет диагностику, учитывая лимит.
// Возвращает false, если диагностика не добавлена (достигнут лимит).
func (b *Bag) Add(it Item) bool {
	if b.max > 0 && len(b.items) >= b.max {
		return false
	}
	b.items = append(b.items, it)
	return true
}

// HasErrors возвращает true, если есть хотя бы одна диагностика с Severity >= Error
func (b *Bag) HasErrors() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

// HasWarnings возвращает true, если есть хотя бы одна диагностика с Severity >= Warning
func (b *Bag) HasWarnings() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevWarning {
			return true
		}
	}
	return false
}

func (b *Bag) Len() int {
	return len(b.items)
}

// Items возвращает read-only slice диагностик.
func (b *Bag) Items() []Item {
	return b.items
}

// Sort orders items by path, line, start column, severity (desc), source and message.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.Path != dj.Path {
			return di.Path < dj.Path
		}
		if di.Range.Start.Line != dj.Range.Start.Line {
			return di.Range.Start.Line < dj.Range.Start.Line
		}
		if di.Range.Start.Character != dj.Range.Start.Character {
			return di.Range.Start.Character < dj.Range.Start.Character
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		if di.Source != dj.Source {
			return di.Source < dj.Source
		}
		return di.Message < dj.Message
	})
}

// простая дедупликация (по Path+Range+Message)
func (b *Bag) Dedup() {
	seen := make(map[string]bool)
	out := make([]Item, 0, len(b.items))
	for _, it := range b.items {
		key := fmt.Sprintf("%s:%s:%s", it.Path, it.Range.String(), it.Message)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, it)
	}
	b.items = out
}

// Count returns the number of items per severity.
func (b *Bag) Count() (errors, warnings, infos int) {
	for i := range b.items {
		switch b.items[i].Severity {
		case SevError:
			errors++
		case SevWarning:
			warnings++
		default:
			infos++
		}
	}
	return errors, warnings, infos
}
