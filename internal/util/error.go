package util

type CustomError struct {
	Message string
	Code    string
}

func (e *CustomError) Error() string {
	return e.Message
}

var (
	ErrInvalidDestination = &CustomError{Message: "目标 URL 格式无效", Code: "INVALID_DESTINATION"}
	ErrInvalidCodeFormat  = &CustomError{Message: "短码格式无效", Code: "INVALID_CODE_FORMAT"}
	ErrCodeAlreadyTaken   = &CustomError{Message: "自定义短码已被使用", Code: "CODE_TAKEN"}
	ErrCodeSpaceExhausted = &CustomError{Message: "无法在限定次数内生成唯一的短码", Code: "CODE_SPACE_EXHAUSTED"}
	ErrNotFoundInDB       = &CustomError{Message: "短链接未找到", Code: "NOT_FOUND"}
	ErrURLDisabled        = &CustomError{Message: "短链接已停用", Code: "URL_DISABLED"}
	ErrForbidden          = &CustomError{Message: "没有权限操作该短链接", Code: "FORBIDDEN"}
	ErrDatabase           = &CustomError{Message: "数据库操作失败", Code: "DB_ERROR"}
)
