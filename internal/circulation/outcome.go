package circulation

// Outcome is the result of an issue or return request. Refusals are
// outcomes, not errors.
type Outcome int

const (
	Issued Outcome = iota + 1
	AlreadyHeldBySelf
	HeldByOther
	Returned
	NotHeld
)

func (o Outcome) Message() string {
	switch o {
	case Issued:
		return "Book issued successfully!"
	case AlreadyHeldBySelf:
		return "You have already issued this book!"
	case HeldByOther:
		return "This book has been issued by someone else!"
	case Returned:
		return "Book returned successfully!"
	case NotHeld:
		return "You have not issued this book!"
	}
	return ""
}

func (o Outcome) String() string {
	switch o {
	case Issued:
		return "issued"
	case AlreadyHeldBySelf:
		return "already_held_by_self"
	case HeldByOther:
		return "held_by_other"
	case Returned:
		return "returned"
	case NotHeld:
		return "not_held"
	}
	return "unknown"
}

// Applied reports whether the outcome changed the book.
func (o Outcome) Applied() bool {
	return o == Issued || o == Returned
}
