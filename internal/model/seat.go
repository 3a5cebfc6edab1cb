package model

// Seat describes a physical seat in a hall, identified within the
// hall by its (row, number) pair.  Seats are generated in bulk when
// their hall is created and live exactly as long as the hall does.
//
// Fields:
//  ID     – primary key identifier.
//  HallID – hall to which this seat belongs.
//  Row    – row number, 1-based.
//  Number – seat number within the row, 1-based.
type Seat struct {
	ID     uint64 `json:"id"`      // seats.id
	HallID uint64 `json:"hall_id"` // seats.hall_id
	Row    uint32 `json:"row"`     // seats.row
	Number uint32 `json:"number"`  // seats.number
}
