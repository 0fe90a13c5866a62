package model

import "fmt"

// ReferenceKind is the upstream discriminator of the entity a timetable is
// requested for.
type ReferenceKind int

const (
	KindClass   ReferenceKind = 1
	KindTeacher ReferenceKind = 2
	KindSubject ReferenceKind = 3
	KindRoom    ReferenceKind = 4
	KindStudent ReferenceKind = 5
)

func (k ReferenceKind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindTeacher:
		return "teacher"
	case KindSubject:
		return "subject"
	case KindRoom:
		return "room"
	case KindStudent:
		return "student"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Valid reports whether k is a known discriminator.
func (k ReferenceKind) Valid() bool {
	switch k {
	case KindClass, KindTeacher, KindSubject, KindRoom, KindStudent:
		return true
	}
	return false
}

// Reference names the entity whose periods are looked up.
type Reference struct {
	Kind ReferenceKind
	ID   int
}

func (r Reference) String() string {
	return fmt.Sprintf("%s:%d", r.Kind, r.ID)
}

func ClassRef(c Class) Reference { return Reference{Kind: KindClass, ID: c.ID} }
func SubjectRef(s Subject) Reference { return Reference{Kind: KindSubject, ID: s.ID} }
func RoomRef(r Room) Reference { return Reference{Kind: KindRoom, ID: r.ID} }
