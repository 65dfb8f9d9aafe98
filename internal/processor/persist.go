package processor

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"portfolio-go/internal/tracing"
	"portfolio-go/internal/types"
)

// persist 用解析结果替换某份简历已保存的内容，返回失败的存储调用次数。
// 逐条写入时任何一步失败只记录日志，剩余的调用仍会继续执行。
func (rp *ResumeProcessor) persist(ctx context.Context, resumeID uint64, result *types.ParseResult) int {
	ctx, span := tracer.Start(ctx, "ResumeProcessor.persist")
	defer span.End()

	if rp.Config.AtomicPersistence {
		if atomic, ok := rp.Store.(AtomicContentStore); ok {
			if err := atomic.ReplaceResumeContent(ctx, resumeID, result); err != nil {
				persistErr := NewPersistenceError(resumeID, "replace_content", err)
				rp.logError(persistErr, "简历 %d 事务替换内容失败", resumeID)
				recordPersistError(span, resumeID, "replace_content", persistErr)
				return 1
			}
			return 0
		}
		rp.logWarn("存储不支持事务替换, 简历 %d 改为逐条写入", resumeID)
	}

	failures := 0
	record := func(op string, err error) {
		if err == nil {
			return
		}
		failures++
		persistErr := NewPersistenceError(resumeID, op, err)
		rp.logError(persistErr, "简历 %d 存储操作 %s 失败", resumeID, op)
		recordPersistError(span, resumeID, op, persistErr)
	}

	record("delete_education", rp.Store.DeleteEducationByResumeID(ctx, resumeID))
	record("delete_experience", rp.Store.DeleteExperienceByResumeID(ctx, resumeID))
	record("delete_skills", rp.Store.DeleteSkillsByResumeID(ctx, resumeID))

	for _, edu := range result.Education {
		record("insert_education", rp.Store.InsertEducation(ctx, resumeID, edu))
	}
	for _, exp := range result.Experience {
		record("insert_experience", rp.Store.InsertExperience(ctx, resumeID, exp))
	}
	for _, skill := range result.Skills {
		record("insert_skill_category", rp.Store.InsertSkillCategory(ctx, resumeID, skill))
	}

	if failures > 0 {
		rp.logWarn("简历 %d 持久化完成, 其中 %d 个存储调用失败", resumeID, failures)
	}
	return failures
}

// recordPersistError 写入失败时 span 置为 Error，但层级不变
func recordPersistError(span trace.Span, resumeID uint64, op string, err error) {
	tracing.RecordErrorWithInfo(span, err, tracing.ErrorTypePersistence,
		attribute.Int64("resume.id", int64(resumeID)),
		attribute.String("persist.op", op),
	)
}
