package handler

import (
	s "assent/pkg/string"
	"assent/pkg/validation"
)

// statusRequest carries the query parameters of GET /consent/status.
type statusRequest struct {
	Email string `validate:"required,email"`
}

// checkRequest carries the query parameters of GET /consent/check.
type checkRequest struct {
	Email   string `validate:"required,email"`
	Purpose string `validate:"required,uuid"`
}

func parseStatusRequest(rawEmail string) (statusRequest, error) {
	req := statusRequest{Email: rawEmail}
	s.TrimStrings(&req.Email)
	if err := validation.Validate(&req); err != nil {
		return statusRequest{}, err
	}
	return req, nil
}

func parseCheckRequest(rawEmail, rawPurpose string) (checkRequest, error) {
	req := checkRequest{Email: rawEmail, Purpose: rawPurpose}
	s.TrimStrings(&req.Email, &req.Purpose)
	if err := validation.Validate(&req); err != nil {
		return checkRequest{}, err
	}
	return req, nil
}
