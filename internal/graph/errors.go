package graph

import (
	"errors"

	"github.com/ariefcatur/go-crm-graphql/internal/crm"
)

const (
	CodeValidation     = "VALIDATION_ERROR"
	CodeNotFound       = "NOT_FOUND"
	CodeEmptySelection = "EMPTY_SELECTION"
	CodeDatabase       = "DATABASE_ERROR"
	CodeInternal       = "INTERNAL"
)

// Error is what resolvers hand to graphql-go; Extensions ends up in the
// "extensions" member of the response error.
type Error struct {
	Message string
	Ext     map[string]interface{}
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Extensions() map[string]interface{} { return e.Ext }

func resolverError(err error) error {
	if err == nil {
		return nil
	}

	var (
		ve *crm.ValidationError
		nf *crm.NotFoundError
		de *crm.DatabaseError
	)
	switch {
	case errors.As(err, &ve):
		return &Error{Message: ve.Error(), Ext: map[string]interface{}{
			"code": CodeValidation, "field": ve.Field, "value": ve.Value,
		}}
	case errors.As(err, &nf):
		return &Error{Message: nf.Error(), Ext: map[string]interface{}{
			"code": CodeNotFound, "entity": nf.Entity, "id": nf.ID,
		}}
	case errors.Is(err, crm.ErrEmptySelection):
		return &Error{Message: err.Error(), Ext: map[string]interface{}{"code": CodeEmptySelection}}
	case errors.As(err, &de):
		return &Error{Message: de.Error(), Ext: map[string]interface{}{"code": CodeDatabase}}
	default:
		return &Error{Message: "internal error", Ext: map[string]interface{}{"code": CodeInternal}}
	}
}
