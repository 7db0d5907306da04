package core

import "errors"

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持错误检查函数（IsXXX）
//
// 使用场景：
//   - 向量计算错误：DIMENSION_MISMATCH
//   - 协同过滤错误：INSUFFICIENT_DATA
//   - 参数校验错误：INVALID_ARGUMENT
//   - 数据查询错误：NOT_FOUND
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FOUND", "INVALID_ARGUMENT"）
	Message string // 错误消息
	Module  string // 模块名称（如 "recall", "fusion", "rerank"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// IsDomainError 检查错误是否为 DomainError 类型（支持包装链）
func IsDomainError(err error) bool {
	return GetDomainError(err) != nil
}

// GetDomainError 从错误链中提取 DomainError，不存在时返回 nil
func GetDomainError(err error) *DomainError {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// 错误代码常量
const (
	// ErrorCodeDimensionMismatch 向量维度不一致（单次比较失败，不代表整个请求失败）
	ErrorCodeDimensionMismatch = "DIMENSION_MISMATCH"
	// ErrorCodeInsufficientData 协同过滤数据不足（降级为 content-only，不是硬失败）
	ErrorCodeInsufficientData = "INSUFFICIENT_DATA"
	// ErrorCodeInvalidArgument 参数无效（在任何计算前拒绝）
	ErrorCodeInvalidArgument = "INVALID_ARGUMENT"
	// ErrorCodeNotFound 资源不存在（未知求职者/职位）
	ErrorCodeNotFound = "NOT_FOUND"
	// ErrorCodeNotSupported 操作不支持
	ErrorCodeNotSupported = "NOT_SUPPORTED"
	// ErrorCodeInternalError 内部错误
	ErrorCodeInternalError = "INTERNAL_ERROR"
)

// 模块名称常量
const (
	ModuleKernel = "kernel" // 向量计算模块
	ModuleRecall = "recall" // 召回模块（内容/协同过滤）
	ModuleFusion = "fusion" // 融合模块
	ModuleReRank = "rerank" // 重排模块
	ModuleEngine = "engine" // 引擎入口模块
	ModuleStore  = "store"  // 存储模块
)

// 通用错误检查函数

// IsDimensionMismatch 检查错误是否为 DIMENSION_MISMATCH
func IsDimensionMismatch(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeDimensionMismatch
	}
	return false
}

// IsInsufficientData 检查错误是否为 INSUFFICIENT_DATA
func IsInsufficientData(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeInsufficientData
	}
	return false
}

// IsInvalidArgument 检查错误是否为 INVALID_ARGUMENT
func IsInvalidArgument(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeInvalidArgument
	}
	return false
}

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeNotFound
	}
	return false
}

// IsNotSupported 检查错误是否为 NOT_SUPPORTED
func IsNotSupported(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeNotSupported
	}
	return false
}
