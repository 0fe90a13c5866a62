package model

import (
	"time"
)

// Entity is anything a collection can hold: a record with a positive id that is
// unique within its own collection.
type Entity interface {
	EntityID() int
}

// Attributed entities expose their fields by JSON name for attribute predicates.
type Attributed interface {
	Attr(name string) (any, bool)
}

// Year is one school year.
type Year struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

func (y Year) EntityID() int { return y.ID }
func (y Year) String() string { return y.Name }

// Contains reports whether t lies within [StartDate, EndDate].
func (y Year) Contains(t time.Time) bool {
	return !t.Before(y.StartDate) && !t.After(y.EndDate)
}

func (y Year) Attr(name string) (any, bool) {
	switch name {
	case "id":
		return y.ID, true
	case "name":
		return y.Name, true
	case "startDate":
		return y.StartDate, true
	case "endDate":
		return y.EndDate, true
	}
	return nil, false
}

// Department groups classes.
type Department struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	LongName string `json:"longName"`
}

func (d Department) EntityID() int { return d.ID }
func (d Department) String() string { return d.LongName }

func (d Department) Attr(name string) (any, bool) {
	switch name {
	case "id":
		return d.ID, true
	case "name":
		return d.Name, true
	case "longName":
		return d.LongName, true
	}
	return nil, false
}

// Class is scoped to one school year. Department is nil when the upstream
// record has none.
type Class struct {
	ID         int         `json:"id"`
	Name       string      `json:"name"`
	LongName   string      `json:"longName"`
	Active     bool        `json:"active"`
	Department *Department `json:"department"`
}

func (c Class) EntityID() int { return c.ID }
func (c Class) String() string { return c.LongName }

func (c Class) Attr(name string) (any, bool) {
	switch name {
	case "id":
		return c.ID, true
	case "name":
		return c.Name, true
	case "longName":
		return c.LongName, true
	case "active":
		return c.Active, true
	case "department":
		if c.Department == nil {
			return nil, true
		}
		return c.Department.ID, true
	}
	return nil, false
}

type Subject struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	LongName string `json:"longName"`
	Active   bool   `json:"active"`
}

func (s Subject) EntityID() int { return s.ID }
func (s Subject) String() string { return s.LongName }

func (s Subject) Attr(name string) (any, bool) {
	switch name {
	case "id":
		return s.ID, true
	case "name":
		return s.Name, true
	case "longName":
		return s.LongName, true
	case "active":
		return s.Active, true
	}
	return nil, false
}

type Room struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	LongName string `json:"longName"`
	Active   bool   `json:"active"`
	Building string `json:"building"`
}

func (r Room) EntityID() int { return r.ID }
func (r Room) String() string { return r.Name }

func (r Room) Attr(name string) (any, bool) {
	switch name {
	case "id":
		return r.ID, true
	case "name":
		return r.Name, true
	case "longName":
		return r.LongName, true
	case "active":
		return r.Active, true
	case "building":
		return r.Building, true
	}
	return nil, false
}

// Holiday spans whole days from StartDate to EndDate inclusive.
type Holiday struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	LongName  string    `json:"longName"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

func (h Holiday) EntityID() int { return h.ID }
func (h Holiday) String() string { return h.LongName }

// Contains reports whether t falls on one of the holiday's days.
func (h Holiday) Contains(t time.Time) bool {
	return !t.Before(h.StartDate) && t.Before(h.EndDate.AddDate(0, 0, 1))
}

func (h Holiday) Attr(name string) (any, bool) {
	switch name {
	case "id":
		return h.ID, true
	case "name":
		return h.Name, true
	case "longName":
		return h.LongName, true
	case "startDate":
		return h.StartDate, true
	case "endDate":
		return h.EndDate, true
	}
	return nil, false
}
