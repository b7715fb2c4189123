package graph

import (
	"github.com/berkai/picshare/services"
)

// apiError carries a machine-readable code into the GraphQL error extensions.
type apiError struct {
	message string
	code    string
}

func (e *apiError) Error() string { return e.message }

// Extensions implements gqlerrors.ExtendedError.
func (e *apiError) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": e.code}
}

// errAuthRequired rejects operations that need a viewer on an anonymous request.
var errAuthRequired = &apiError{message: "authentication required", code: "FORBIDDEN"}

// wrapErr maps a services error kind onto a GraphQL error with an extensions
// code, so clients can branch without parsing messages.
func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	var code string
	switch services.KindOf(err) {
	case services.KindNotFound:
		code = "NOT_FOUND"
	case services.KindForbidden:
		code = "FORBIDDEN"
	case services.KindConflict:
		code = "CONFLICT"
	case services.KindValidation:
		code = "BAD_USER_INPUT"
	case services.KindUpstream:
		code = "UPSTREAM_ERROR"
	default:
		code = "INTERNAL_SERVER_ERROR"
	}
	return &apiError{message: err.Error(), code: code}
}
