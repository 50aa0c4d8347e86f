package server

import (
	"net/http"

	"param-server/src/helpers"
)

// paramsQuery is validated by gin's validator binding.
type paramsQuery struct {
	Years int `form:"years" binding:"omitempty,min=1,max=100"`
}

// -----------------------------------------------------------------------------

func badQuery(err error) error {
	return helpers.NewProtocolError("%v", err)
}

// -----------------------------------------------------------------------------

func categoryOf(err error) string {
	return helpers.Category(err)
}

// -----------------------------------------------------------------------------

// errorResponse maps the error taxonomy onto HTTP statuses. The message is
// the same text the TCP front puts after "ERROR ".
func errorResponse(err error) (int, string) {
	msg := helpers.WireMessage(err)
	switch helpers.Category(err) {
	case "protocol":
		return http.StatusBadRequest, msg
	case "data_unavailable":
		return http.StatusNotFound, msg
	case "timeout":
		return http.StatusGatewayTimeout, msg
	case "fetch":
		return http.StatusBadGateway, msg
	default:
		return http.StatusInternalServerError, msg
	}
}

// -----------------------------------------------------------------------------

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
