package record

// Record represents a single user entry in the table.
type Record struct {
	Name   string  `json:"name"`   // Name is the full name shown in the first column
	Email  string  `json:"email"`  // Email is the contact address of the user
	ID     string  `json:"id"`     // ID is the external unique identifier (employee code or uuid)
	Salary float64 `json:"salary"` // Salary is the monthly salary
	DOB    string  `json:"dob"`    // DOB is the date of birth formatted as YYYY-MM-DD
}

// Indexed pairs a record with its position in the full record list.
type Indexed struct {
	Index  int
	Record Record
}

// IndexOfID returns the position of the record with the given identifier, or -1.
func IndexOfID(records []Record, id string) int {
	for i := range records {
		if records[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a copy of records that does not share the backing array.
func Clone(records []Record) []Record {
	out := make([]Record, len(records))
	copy(out, records)
	return out
}
