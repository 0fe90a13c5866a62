package model

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"untiscal/internal/apperrors"
)

// MergeTolerance is the largest gap between two periods that still lets them
// be merged into one block.
const MergeTolerance = 15 * time.Minute

// Period is one scheduled lesson occurrence. Classes, Subjects and Rooms are
// value snapshots taken when the period was denormalized.
type Period struct {
	ID        int       `json:"id"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	Classes   []Class   `json:"classes"`
	Subjects  []Subject `json:"subjects"`
	Rooms     []Room    `json:"rooms"`
}

func (p Period) EntityID() int { return p.ID }

func (p Period) String() string {
	return fmt.Sprintf("%s - %s: %s (%s)",
		p.StartTime.Format("2006-01-02 15:04"),
		p.EndTime.Format("2006-01-02 15:04"),
		JoinNames(p.Subjects),
		JoinNames(p.Rooms),
	)
}

func (p Period) Attr(name string) (any, bool) {
	switch name {
	case "id":
		return p.ID, true
	case "startTime":
		return p.StartTime, true
	case "endTime":
		return p.EndTime, true
	}
	return nil, false
}

// Mergeable reports whether next continues p: the gap between p's end and
// next's start is at most MergeTolerance and both carry the same classes,
// subjects and rooms (compared as id sets).
func (p Period) Mergeable(next Period) bool {
	return next.StartTime.Sub(p.EndTime) <= MergeTolerance &&
		sameIDs(p.Classes, next.Classes) &&
		sameIDs(p.Subjects, next.Subjects) &&
		sameIDs(p.Rooms, next.Rooms)
}

// Merge returns a new period spanning p and next. It keeps p's id and
// references; the end is the later of both ends.
func (p Period) Merge(next Period) (Period, error) {
	if !p.Mergeable(next) {
		return Period{}, apperrors.Invalid("periods %d and %d cannot be merged", p.ID, next.ID)
	}
	end := next.EndTime
	if p.EndTime.After(end) {
		end = p.EndTime
	}
	return Period{
		ID:        p.ID,
		StartTime: p.StartTime,
		EndTime:   end,
		Classes:   p.Classes,
		Subjects:  p.Subjects,
		Rooms:     p.Rooms,
	}, nil
}

func sameIDs[T Entity](a, b []T) bool {
	return slices.Equal(idSet(a), idSet(b))
}

func idSet[T Entity](items []T) []int {
	ids := make([]int, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.EntityID())
	}
	slices.Sort(ids)
	return slices.Compact(ids)
}

// JoinNames joins the String() form of each item with ", ".
func JoinNames[T fmt.Stringer](items []T) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, it.String())
	}
	return strings.Join(parts, ", ")
}
