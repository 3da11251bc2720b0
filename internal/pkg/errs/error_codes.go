/*
Package errs provides custom error types and application-level error code constants.

These error codes identify specific business or system errors both internally
within the server and in responses to clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1005
)

// 2xxx: Community, Course, and Content Business Logic Errors
const (
	// ErrCommunityNotFound indicates that the referenced community does not exist.
	ErrCommunityNotFound = 2101

	// ErrAlreadyMember indicates that the user already belongs to the community.
	ErrAlreadyMember = 2102

	// ErrNotMember indicates that the user does not belong to the community.
	ErrNotMember = 2103

	// ErrInviteCodeInvalid indicates that the supplied community invite code is malformed or unknown.
	ErrInviteCodeInvalid = 2104

	// ErrCourseNotFound indicates that the referenced course does not exist.
	ErrCourseNotFound = 2201

	// ErrAlreadyEnrolled indicates that the user is already enrolled in the course.
	ErrAlreadyEnrolled = 2202

	// ErrMaterialNotFound indicates that the referenced course material does not exist.
	ErrMaterialNotFound = 2203

	// ErrMessageContentTooLong indicates that a chat message exceeded the maximum length limit.
	ErrMessageContentTooLong = 2301
)

// 3xxx: User, Session, and Security Errors
const (
	// ErrPowChallengeRequired indicates the client must complete a Proof-of-Work challenge first.
	ErrPowChallengeRequired = 3001

	// ErrPowChallengeInvalid indicates that the PoW proof provided by the client is invalid.
	ErrPowChallengeInvalid = 3002

	// ErrUnauthorized indicates that the request lacks a valid identity token.
	ErrUnauthorized = 3003

	// ErrInvalidCredentials indicates that the email/password combination is wrong.
	ErrInvalidCredentials = 3004

	// ErrUserAlreadyExists indicates that an account with the given email already exists.
	ErrUserAlreadyExists = 3005

	// ErrInvalidEmail indicates that the supplied email address failed validation.
	ErrInvalidEmail = 3006

	// ErrInvalidPassword indicates that the supplied password failed the length policy.
	ErrInvalidPassword = 3007

	// ErrInvalidName indicates that the supplied display name failed validation.
	ErrInvalidName = 3008

	// ErrOldPasswordInvalid indicates that the current password check failed during a password change.
	ErrOldPasswordInvalid = 3009

	// ErrUserNotFound indicates that the referenced user does not exist.
	ErrUserNotFound = 3010

	// ErrAlreadyLoggedIn indicates that an authenticated user attempted to register or log in again.
	ErrAlreadyLoggedIn = 3011
)

// 4xxx: File and Storage Errors
const (
	// ErrFileSizeTooLarge indicates that the file exceeds the upload size limit.
	ErrFileSizeTooLarge = 4001

	// ErrFileTypeInvalid indicates that the file name or MIME type is not allowed.
	ErrFileTypeInvalid = 4002

	// ErrFileKeyInvalid indicates that the storage object key is malformed or outside the caller's namespace.
	ErrFileKeyInvalid = 4003
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000

	// ErrAssistantUnavailable indicates that the AI assistant is not configured on this deployment.
	ErrAssistantUnavailable = 5001

	// ErrAssistantUpstream indicates that the AI assistant upstream call failed.
	ErrAssistantUpstream = 5002
)
