package entity

// Role is one of the two fixed seats of a room. Black is always seated
// first and moves first.
type Role string

const (
	RoleBlack Role = "black"
	RoleWhite Role = "white"
)

// Stone is the cell state a seat's placements produce.
func (that Role) Stone() Cell {
	if that == RoleBlack {
		return CellBlack
	}

	return CellWhite
}

func (that Role) Opponent() Role {
	if that == RoleBlack {
		return RoleWhite
	}

	return RoleBlack
}

// Player binds an opaque identity and display name to a seat. A room holds
// at most one binding per seat, set once at join and never swapped.
type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}
