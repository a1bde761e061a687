package response

// APIResponseCode is a machine-readable code carried alongside the HTTP status.
type APIResponseCode int

const (
	APIResponseCodeOK                  APIResponseCode = 0
	APIResponseCodeBadRequest          APIResponseCode = 40000
	APIResponseCodeInvalidAmount       APIResponseCode = 40001
	APIResponseCodeInvalidPayment      APIResponseCode = 40002
	APIResponseCodeSubNotActive        APIResponseCode = 40003
	APIResponseCodeForbidden           APIResponseCode = 40300
	APIResponseCodeNotFound            APIResponseCode = 40400
	APIResponseCodeInsufficientCredits APIResponseCode = 40200
	APIResponseCodeDuplicate           APIResponseCode = 40900
	APIResponseCodeError               APIResponseCode = 50000
	APIResponseCodeUpstream            APIResponseCode = 50200
)

var codeToMsg = map[APIResponseCode]string{
	APIResponseCodeOK:                  "ok",
	APIResponseCodeBadRequest:          "bad request",
	APIResponseCodeInvalidAmount:       "invalid amount",
	APIResponseCodeInvalidPayment:      "payment amount mismatch",
	APIResponseCodeSubNotActive:        "subscription not active",
	APIResponseCodeForbidden:           "forbidden",
	APIResponseCodeNotFound:            "not found",
	APIResponseCodeInsufficientCredits: "insufficient credits",
	APIResponseCodeDuplicate:           "duplicate transaction",
	APIResponseCodeError:               "internal error",
	APIResponseCodeUpstream:            "payment provider unavailable",
}

// APIResponse is the generic response envelope used by HTTP APIs.
// Use OKT / ErrorT helpers to construct instances.
type APIResponse[T any] struct {
	Code    APIResponseCode `json:"code"`
	Message string          `json:"message"`
	Data    T               `json:"data"`
}

// OKT returns a successful response with data.
func OKT[T any](data T) *APIResponse[T] {
	return &APIResponse[T]{Code: APIResponseCodeOK, Message: codeToMsg[APIResponseCodeOK], Data: data}
}

// ErrorT returns an error response with a generic message and optional data.
// Messages for internal/upstream codes stay generic so provider internals
// never leak to clients.
func ErrorT[T any](code APIResponseCode, data T) *APIResponse[T] {
	return &APIResponse[T]{Code: code, Message: codeToMsg[code], Data: data}
}
