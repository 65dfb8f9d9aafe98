package storage

import "time"

// ResumeParsedEvent 简历解析完成后通过 outbox 投递的事件
type ResumeParsedEvent struct {
	ResumeID        uint64    `json:"resume_id"`
	Tier            string    `json:"tier"` // full, basic, sample
	Synthetic       bool      `json:"synthetic"`
	EducationCount  int       `json:"education_count"`
	ExperienceCount int       `json:"experience_count"`
	SkillsCount     int       `json:"skills_count"`
	PersistFailures int       `json:"persist_failures,omitempty"`
	ParsedAt        time.Time `json:"parsed_at"`
}
