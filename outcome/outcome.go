package outcome

type Status int

const (
	Unchanged Status = iota
	Corrected
	Errored
)

func (s Status) String() string {
	switch s {
	case Unchanged:
		return "unchanged"
	case Corrected:
		return "corrected"
	case Errored:
		return "errored"
	default:
		return "unknown"
	}
}

// ParseStatus is the inverse of Status.String.
func ParseStatus(value string) (Status, bool) {
	switch value {
	case "unchanged":
		return Unchanged, true
	case "corrected":
		return Corrected, true
	case "errored":
		return Errored, true
	default:
		return Unchanged, false
	}
}

// Cell is the result of validating one cell. Row and Column are 1-based sheet
// coordinates; Label is the header text of the column.
type Cell struct {
	Row      int
	Column   int
	Label    string
	Original string
	New      string
	Numeric  bool
	Status   Status
	Reason   string
}
