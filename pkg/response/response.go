package response

import "fmt"

const (
	MsgCodeRequired = "Code parameter is required"
	MsgNotFound     = "URL not found for code: "
	MsgServerError  = "Internal server error: "
)

// Response is the JSON body sent with every error status.
type Response struct {
	Error string `json:"error"`
}

// Error builds a Response carrying msg.
func Error(msg string) *Response {
	return &Response{Error: msg}
}

func CodeRequiredResponse() *Response {
	return Error(MsgCodeRequired)
}

// NotFoundResponse reports that code could not be resolved.
func NotFoundResponse(code string) *Response {
	return Error(MsgNotFound + code)
}

// ServerErrorResponse reports an unexpected failure together with its cause.
// The cause may be an error or a recovered panic value.
func ServerErrorResponse(cause any) *Response {
	switch v := cause.(type) {
	case error:
		return Error(MsgServerError + v.Error())
	case nil:
		return Error(MsgServerError + "unknown error")
	default:
		return Error(MsgServerError + fmt.Sprint(v))
	}
}
