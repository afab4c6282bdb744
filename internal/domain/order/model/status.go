package model

// Status 订单状态，封闭枚举
type Status string

const (
	StatusPending                    Status = "pending"
	StatusPaymentPendingVerification Status = "payment_pending_verification"
	StatusPaid                       Status = "paid"
	StatusShipped                    Status = "shipped"
	StatusCompleted                  Status = "completed"
	StatusCancelled                  Status = "cancelled"
)

// AllStatuses 按流程顺序排列
var AllStatuses = []Status{
	StatusPending,
	StatusPaymentPendingVerification,
	StatusPaid,
	StatusShipped,
	StatusCompleted,
	StatusCancelled,
}

var transitions = map[Status][]Status{
	StatusPending:                    {StatusPaymentPendingVerification, StatusPaid, StatusCancelled},
	StatusPaymentPendingVerification: {StatusPaymentPendingVerification, StatusPaid, StatusCancelled},
	StatusPaid:                       {StatusShipped, StatusCancelled},
	StatusShipped:                    {StatusCompleted, StatusCancelled},
	StatusCompleted:                  {},
	StatusCancelled:                  {},
}

// Valid 是否为已知状态
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Terminal completed 和 cancelled 之后不能再变更
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransition 判断状态流转是否合法
// 同状态重写只允许 payment_pending_verification（重新上传凭证）
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
