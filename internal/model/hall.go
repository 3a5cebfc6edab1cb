package model

// Hall represents a screening hall.  Rows and SeatsPerRow describe
// the seating grid; capacity should equal Rows×SeatsPerRow but is
// stored independently and not enforced.  Creating a hall also
// creates its full seat grid (see the seat repository).
//
// Fields:
//  ID          – primary key identifier.
//  Name        – human readable hall name.
//  Capacity    – advertised seat capacity.
//  Rows        – number of seating rows.
//  SeatsPerRow – number of seats in each row.
type Hall struct {
	ID          uint64 `json:"id"`            // halls.id
	Name        string `json:"name"`          // halls.name
	Capacity    uint32 `json:"capacity"`      // halls.capacity
	Rows        uint32 `json:"rows"`          // halls.rows
	SeatsPerRow uint32 `json:"seats_per_row"` // halls.seats_per_row
}
