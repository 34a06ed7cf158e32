package catalog

import "errors"

// ErrForbidden matches every *ForbiddenError.
var ErrForbidden = errors.New("forbidden")

const (
	MsgCreateForbidden = "Only admin can add a book!"
	MsgUpdateForbidden = "Only admin can update a book!"
	MsgDeleteForbidden = "Only admin can remove a book!"
)

// ForbiddenError is returned when a non-administrator attempts a catalog
// mutation. Message names the denied action.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string {
	return e.Message
}

func (e *ForbiddenError) Is(target error) bool {
	return target == ErrForbidden
}
