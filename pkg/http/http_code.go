// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package http

var (
	Failed                        = failed(500, "Request failed")
	RequestParameterParsingFailed = failed(5001, "Request parameter parsing failed")
	TeamIdIsEmpty                 = failed(5002, "Team id is empty")
	ProjectNameIsEmpty            = failed(5003, "Project name is required")

	// Unauthorized 401
	Unauthorized           = failed(4401, "Unauthorized")
	AuthenticationFailed   = failed(4402, "Authentication failed")
	AuthorizationIncorrect = failed(4403, "The authorization format in the request header is incorrect")
	InvalidToken           = failed(4405, "Invalid token")
	TokenBeEmpty           = failed(4406, "Token cannot be empty")
	TokenExpired           = failed(4407, "Token is expired")

	// BadRequest 400
	BadRequest = failed(4000, "Bad request")
	NotFound   = failed(4004, "Not found")

	InternalError = failed(5000, "Internal error, please contact the administrator")

	UsernameArePasswordIsRequired = failed(4045, "Username and password are required")

	// webhook ingestion
	MalformedPayload     = failed(4601, "Malformed payload")
	MissingCredential    = failed(4602, "Missing access token")
	MissingOriginURL     = failed(4603, "Missing origin URL")
	UnsupportedEventKind = failed(4604, "Unsupported event kind")

	// team roster
	TeamNotFound        = failed(4701, "Team not found")
	UpstreamUnavailable = failed(4702, "Upstream membership source unavailable")
	EmptyUpstreamRoster = failed(4703, "Upstream membership source returned no members")
	InvalidArgument     = failed(4704, "Invalid argument")
	ValidationFailed    = failed(4705, "Validation failed")
)

var (
	Success = success(200, "Request Success")
)

// failed 构造函数
func failed(code int, msg string) *Response {
	return &Response{
		Code:   code,
		Msg:    msg,
		Detail: nil,
	}
}

// success 构造函数
func success(code int, msg string) *Response {
	return &Response{
		Code:   code,
		Msg:    msg,
		Detail: nil,
	}
}
