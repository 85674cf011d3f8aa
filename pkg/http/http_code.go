package http

// Response vocabulary for the admin access surface. Body codes are stable
// for clients; Status carries the HTTP status the handler should set.
var (
	Failed                        = failed(500, 5000, "Request failed")
	InternalError                 = failed(500, 5000, "Internal error, please contact the administrator")
	RequestParameterParsingFailed = failed(400, 5001, "Request parameter parsing failed")

	// Unauthorized 401
	Unauthorized         = failed(401, 4401, "Unauthorized")
	AuthenticationFailed = failed(401, 4402, "Authentication failed")
	InvalidToken         = failed(401, 4405, "Invalid token")
	TokenBeEmpty         = failed(401, 4406, "Token cannot be empty")
	TokenExpired         = failed(401, 4407, "Token is expired")

	BadRequest = failed(400, 4000, "Bad request")
	NotFound   = failed(404, 4004, "Not found")

	Forbidden        = failed(403, 4030, "Forbidden")
	PermissionDenied = failed(403, 4031, "Permission denied")

	UserNotExist          = failed(404, 4041, "User does not exist")
	UserIncorrectPassword = failed(400, 4043, "User incorrect password")

	// Admin request lifecycle
	AlreadyAdmin            = failed(400, 4101, "User is already an admin")
	PendingRequestExists    = failed(400, 4102, "A pending admin request already exists")
	RequestRateLimited      = failed(400, 4103, "An admin request was already submitted within the last 24 hours")
	InvalidTargetAdmin      = failed(400, 4104, "Target admin is required and must be an admin of your organization")
	OrganizationNotFound    = failed(400, 4105, "Organization not found")
	RequestNotFound         = failed(404, 4106, "Admin request not found")
	RequestAlreadyProcessed = failed(404, 4107, "Admin request was already processed")
	RequestExpired          = failed(400, 4108, "Admin request has expired")
	RoleUpdateFailed        = failed(500, 4109, "Request approved but role update failed, contact support")
)

var (
	Success        = success(200, 200, "Request Success")
	SuccessCreated = success(201, 201, "Request Created")
)

func failed(status, code int, msg string) *Response {
	return &Response{
		Status: status,
		Code:   code,
		Msg:    msg,
		Detail: nil,
	}
}

func success(status, code int, msg string) *Response {
	return &Response{
		Status: status,
		Code:   code,
		Msg:    msg,
		Detail: nil,
	}
}
