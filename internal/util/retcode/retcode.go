package retcode

import (
	"errors"
	"net/http"
)

// Kind 错误分类；handler 据此决定 HTTP 状态码
type Kind int

const (
	StorageFailure Kind = iota + 1
	MissingFile
	EmptyFilename
	UnsupportedType
	TooLarge
	NotFound
)

var kindNames = map[Kind]string{
	StorageFailure:  "StorageFailure",
	MissingFile:     "MissingFile",
	EmptyFilename:   "EmptyFilename",
	UnsupportedType: "UnsupportedType",
	TooLarge:        "TooLarge",
	NotFound:        "NotFound",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "Unknown"
}

// HTTPStatus 分类 -> HTTP 状态码；未知分类按存储失败处理
func (k Kind) HTTPStatus() int {
	switch k {
	case MissingFile, EmptyFilename, UnsupportedType:
		return http.StatusBadRequest
	case TooLarge:
		return http.StatusRequestEntityTooLarge
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error 带分类的错误。Msg 为返回给调用方的文本，Err 为原始错误（可为空）。
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is 允许 errors.Is(err, retcode.ErrNotFound) 这类按分类比较
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Msg == "" && t.Err == nil
}

func New(k Kind, msg string) *Error { return &Error{Kind: k, Msg: msg} }

// Storage 包装数据库/存储错误，原始错误文本会直接返回给调用方
func Storage(err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: StorageFailure, Err: err}
}

// 仅用于 errors.Is 比较的哨兵
var (
	ErrStorageFailure  = &Error{Kind: StorageFailure}
	ErrMissingFile     = &Error{Kind: MissingFile}
	ErrEmptyFilename   = &Error{Kind: EmptyFilename}
	ErrUnsupportedType = &Error{Kind: UnsupportedType}
	ErrTooLarge        = &Error{Kind: TooLarge}
	ErrNotFound        = &Error{Kind: NotFound}
)

// KindOf 提取错误分类；非 *Error 视为 StorageFailure
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return StorageFailure
}
