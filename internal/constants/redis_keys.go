package constants

// Redis Key 前缀和格式常量
// 使用统一的命名规范: app:{module}:{entity}:{unique_id}
const (
	// AppPrefix 是所有Redis Key的统一应用前缀
	AppPrefix = "portfolio"

	// ResumeModulePrefix 简历模块
	ResumeModulePrefix = "resume"
	// CacheModulePrefix 响应缓存模块
	CacheModulePrefix = "cache"

	// EntityLock 分布式锁实体
	EntityLock = "lock"
	// EntityResponse 缓存的接口响应
	EntityResponse = "response"

	// KeyResumeUploadLock 上传简历的互斥锁 (STRING)
	// 格式: portfolio:resume:lock:upload
	KeyResumeUploadLock = AppPrefix + ":" + ResumeModulePrefix + ":" + EntityLock + ":upload"

	// KeyResponseCache 接口响应缓存 (STRING)
	// 格式: portfolio:cache:response:{cacheKey}
	KeyResponseCache = AppPrefix + ":" + CacheModulePrefix + ":" + EntityResponse + ":%s"
)
