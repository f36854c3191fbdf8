package order

// By is the requested result ordering.
type By string

// Ordering constants. Default sorts by distance when a position is known.
const (
	Default  By = ""
	Distance By = "distance"
	Name     By = "name"
	// Type sorts by facility type priority, highest first.
	Type By = "type"
)

// IsValid checks if the ordering is one of the supported values.
func (b By) IsValid() bool {
	return b == Default || b == Distance || b == Name || b == Type
}
