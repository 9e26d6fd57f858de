package aws

import (
	"errors"

	"github.com/aws/aws-sdk-go-v2/service/iam/types"
	"github.com/aws/smithy-go"
)

// isEntityAlreadyExists checks if the error indicates the IAM entity
// already exists.
func isEntityAlreadyExists(err error) bool {
	if err == nil {
		return false
	}

	var eae *types.EntityAlreadyExistsException
	if errors.As(err, &eae) {
		return true
	}

	// Fall back to API error code checking
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == "EntityAlreadyExists"
	}

	return false
}

// isNoSuchEntity checks if the error indicates a missing IAM entity.
func isNoSuchEntity(err error) bool {
	if err == nil {
		return false
	}

	var nse *types.NoSuchEntityException
	if errors.As(err, &nse) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == "NoSuchEntity"
	}

	return false
}
