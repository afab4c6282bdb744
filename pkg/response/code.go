package response

// 业务状态码
const (
	CodeSuccess = 0
	CodeError   = 1

	// 认证模块错误 100xx
	ErrAuthFailed   = 10003
	ErrTokenInvalid = 10004
	ErrNoPermission = 10005

	// 订单模块错误 300xx
	ErrOrderNotFound     = 30001
	ErrOrderInvalid      = 30002
	ErrInvalidTransition = 30003
	ErrVersionConflict   = 30004
	ErrPromoInvalid      = 30005

	// 上传错误 400xx
	ErrFileTooLarge = 40001
	ErrFileType     = 40002
	ErrUploadFailed = 40003

	// 目录模块错误 600xx
	ErrCatalogNotFound  = 60001
	ErrCatalogInvalid   = 60002
	ErrCatalogDuplicate = 60003

	// 系统错误 500xx
	ErrServerInternal  = 50001
	ErrInvalidParam    = 50002
	ErrTooManyRequests = 50003
)

// MsgRetry 面向用户的通用失败提示
const MsgRetry = "Une erreur est survenue. Veuillez réessayer."
