package speech

import (
	"errors"
	"fmt"
)

// Kind 标识失败发生在中继链路的哪一环
type Kind string

const (
	KindInvalidArgument  Kind = "invalid_argument"
	KindTokenAcquisition Kind = "token_acquisition"
	KindSynthesisHTTP    Kind = "synthesis_http"
	KindUpstream         Kind = "upstream"
	KindVoiceList        Kind = "voice_list"
	KindUnknown          Kind = "unknown"
)

// Error 是语音服务返回的带类型错误。Status/StatusText 只在上游返回了
// 非 2xx 响应时有值。
type Error struct {
	Kind       Kind
	Op         string
	Status     int
	StatusText string
	Message    string
	Cause      error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s:%s] %s", e.Kind, e.Op, e.Message)
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d %s)", msg, e.Status, e.StatusText)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func newError(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

func wrapError(kind Kind, op, message string, err error) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Cause: err}
}

func statusError(kind Kind, op string, status int, statusText string) *Error {
	return &Error{
		Kind:       kind,
		Op:         op,
		Status:     status,
		StatusText: statusText,
		Message:    "upstream returned non-success status",
	}
}

// KindOf 返回错误链中第一个 *Error 的类型。
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Kind
	}
	return KindUnknown
}

// IsKind 判断错误链是否属于指定类型
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// NewInvalidArgument 供包外构造参数错误，例如 HTTP 层解析请求体失败
func NewInvalidArgument(op, message string, cause error) *Error {
	return wrapError(KindInvalidArgument, op, message, cause)
}
