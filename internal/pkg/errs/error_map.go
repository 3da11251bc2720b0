/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to standardize
HTTP responses and internal error handling.
*/
package errs

import "net/http"

// errorMap stores the detailed CustomError struct corresponding to every application error code.
// The key is the error code (int), and the value contains the user message and HTTP status code.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:        {Code: ErrInvalidParams, Message: "Invalid request parameters."},
	ErrUnsupportedMediaType: {Code: ErrUnsupportedMediaType, Message: "Unsupported request format."},
	ErrInvalidJSONFormat:    {Code: ErrInvalidJSONFormat, Message: "Unsupported request format."},
	ErrExtraContentInBody:   {Code: ErrExtraContentInBody, Message: "Request contains unexpected data."},
	ErrRateLimitExceeded:    {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: Community, Course, and Content Business Logic Errors
	ErrCommunityNotFound:     {Code: ErrCommunityNotFound, Message: "Community not found."},
	ErrAlreadyMember:         {Code: ErrAlreadyMember, Message: "You are already a member of this community."},
	ErrNotMember:             {Code: ErrNotMember, Message: "You are not a member of this community."},
	ErrInviteCodeInvalid:     {Code: ErrInviteCodeInvalid, Message: "Invalid invite code."},
	ErrCourseNotFound:        {Code: ErrCourseNotFound, Message: "Course not found."},
	ErrAlreadyEnrolled:       {Code: ErrAlreadyEnrolled, Message: "You are already enrolled in this course."},
	ErrMaterialNotFound:      {Code: ErrMaterialNotFound, Message: "Course material not found."},
	ErrMessageContentTooLong: {Code: ErrMessageContentTooLong, Message: "Message is too long."},

	// 3xxx: User, Session, and Security Errors
	ErrPowChallengeRequired: {Code: ErrPowChallengeRequired, Message: "Verification required. Please try again."},
	ErrPowChallengeInvalid:  {Code: ErrPowChallengeInvalid, Message: "Verification failed. Please try again."},
	ErrUnauthorized:         {Code: ErrUnauthorized, Message: "Please sign in to continue.", Status: http.StatusUnauthorized},
	ErrInvalidCredentials:   {Code: ErrInvalidCredentials, Message: "Incorrect email or password."},
	ErrUserAlreadyExists:    {Code: ErrUserAlreadyExists, Message: "An account with this email already exists."},
	ErrInvalidEmail:         {Code: ErrInvalidEmail, Message: "Invalid email address."},
	ErrInvalidPassword:      {Code: ErrInvalidPassword, Message: "Invalid password."},
	ErrInvalidName:          {Code: ErrInvalidName, Message: "Invalid display name."},
	ErrOldPasswordInvalid:   {Code: ErrOldPasswordInvalid, Message: "Current password is incorrect."},
	ErrUserNotFound:         {Code: ErrUserNotFound, Message: "Account not found."},
	ErrAlreadyLoggedIn:      {Code: ErrAlreadyLoggedIn, Message: "You are already signed in."},

	// 4xxx: File and Storage Errors
	ErrFileSizeTooLarge: {Code: ErrFileSizeTooLarge, Message: "File is too large."},
	ErrFileTypeInvalid:  {Code: ErrFileTypeInvalid, Message: "This file type is not allowed."},
	ErrFileKeyInvalid:   {Code: ErrFileKeyInvalid, Message: "Invalid file reference."},

	// 5xxx: Internal System Errors
	ErrUnknown:              {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
	ErrAssistantUnavailable: {Code: ErrAssistantUnavailable, Message: "The study assistant is not available on this server.", Status: http.StatusServiceUnavailable},
	ErrAssistantUpstream:    {Code: ErrAssistantUpstream, Message: "The study assistant could not answer. Please try again.", Status: http.StatusBadGateway},
}
