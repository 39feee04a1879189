package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"orghierarchy-backend/shared/hierarchy"
)

// DataResponse is the success envelope.
type DataResponse struct {
	Data interface{} `json:"data"`
	Meta interface{} `json:"meta,omitempty"`
}

// ErrorResponse is the failure envelope.
type ErrorResponse struct {
	Error     string `json:"error"`
	Kind      string `json:"kind,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

func statusForKind(kind hierarchy.ErrorKind) int {
	switch kind {
	case hierarchy.KindValidation, hierarchy.KindPolicyViolation:
		return http.StatusBadRequest
	case hierarchy.KindForbidden:
		return http.StatusForbidden
	case hierarchy.KindNotFound:
		return http.StatusNotFound
	case hierarchy.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, log *logrus.Logger, err error) {
	kind := hierarchy.KindOf(err)
	if kind == hierarchy.KindUnexpected {
		log.WithError(err).WithFields(logrus.Fields{
			"request_id": c.GetString("requestID"),
			"path":       c.FullPath(),
		}).Error("request failed")
	}
	c.AbortWithStatusJSON(statusForKind(kind), ErrorResponse{
		Error:     hierarchy.MessageOf(err),
		Kind:      string(kind),
		RequestID: c.GetString("requestID"),
	})
}

func respondValidation(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
		Error:     message,
		Kind:      string(hierarchy.KindValidation),
		RequestID: c.GetString("requestID"),
	})
}

// bindingMessage turns a gin binding error into a user-facing sentence.
func bindingMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "request body is not valid JSON for this endpoint"
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := lowerFirst(fe.Field())
		switch fe.Tag() {
		case "max":
			parts = append(parts, field+" must be at most "+fe.Param()+" characters")
		case "min":
			parts = append(parts, field+" must be at least "+fe.Param())
		case "hexcolor":
			parts = append(parts, field+" must be a hex color such as #1a2b3c")
		case "url":
			parts = append(parts, field+" must be an absolute URL")
		case "fqdn":
			parts = append(parts, field+" must be a fully qualified domain name")
		case "timezone":
			parts = append(parts, field+" must be an IANA time zone")
		case "orgtypes":
			parts = append(parts, field+" contains an unknown organization type")
		case "plantiers":
			parts = append(parts, field+" contains an unknown plan tier")
		default:
			parts = append(parts, field+" is invalid")
		}
	}
	return strings.Join(parts, "; ")
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
