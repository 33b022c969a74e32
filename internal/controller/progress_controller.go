package controller

import (
	"errors"

	"mentorprog_backend/internal/service"
	"mentorprog_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	Progress *service.ProgressService
}

func NewProgressController(progress *service.ProgressService) *ProgressController {
	return &ProgressController{Progress: progress}
}

// GetUserProgress godoc
// @Summary 当前用户的答题历史（最近的在前）
// @Tags 进度
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/progress [get]
func (c *ProgressController) GetUserProgress(ctx *gin.Context) {
	attempts, err := c.Progress.ForUser(util.GetUserFromContext(ctx))
	if err != nil {
		if errors.Is(err, util.ErrNoUsableIdentity) {
			util.Unauthorized(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, gin.H{"attempts": attempts})
}

// ListTopicAttempts godoc
// @Summary 讲师端：tema 范围内的全部尝试和平均分
// @Tags 进度
// @Produce json
// @Security ApiKeyAuth
// @Param subjectId path string true "materia ID"
// @Param topicId path string true "tema ID"
// @Param subtopicId query string false "只看这个子主题"
// @Success 200 {object} util.Response
// @Router /api/subjects/{subjectId}/topics/{topicId}/attempts [get]
func (c *ProgressController) ListTopicAttempts(ctx *gin.Context) {
	results, err := c.Progress.ForScope(ctx.Param("subjectId"), ctx.Param("topicId"), ctx.Query("subtopicId"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{
		"total":             len(results.Attempts),
		"attempts":          results.Attempts,
		"averagePercentage": results.AveragePercentage,
	})
}
