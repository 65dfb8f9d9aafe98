package constants

const (
	// CacheKeyResumeContent 简历内容接口的缓存键
	CacheKeyResumeContent = "resume-content"
	// CacheKeyResumeCheck 简历状态接口的缓存键
	CacheKeyResumeCheck = "resume-check"

	// ResumeObjectPrefix 简历文件在对象存储中的前缀
	ResumeObjectPrefix = "resume"
	// ResumeContentType 简历文件的MIME类型
	ResumeContentType = "application/pdf"

	// EventTypeResumeParsed 解析完成事件
	EventTypeResumeParsed = "resume.parsed"
)
