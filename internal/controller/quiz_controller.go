package controller

import (
	"errors"

	"mentorprog_backend/internal/service"
	"mentorprog_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	Quiz *service.QuizService
}

func NewQuizController(quiz *service.QuizService) *QuizController {
	return &QuizController{Quiz: quiz}
}

// ListQuizzes godoc
// @Summary 列出 tema 下的 quizzes（由带测验的子主题投影而来，选项不含答案）
// @Tags 测验
// @Produce json
// @Security ApiKeyAuth
// @Param subjectId path string true "materia ID"
// @Param topicId path string true "tema ID"
// @Param subtopicTitle query string false "只要这个子主题的 quiz"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/subjects/{subjectId}/topics/{topicId}/quizzes [get]
func (c *QuizController) ListQuizzes(ctx *gin.Context) {
	quizzes, err := c.Quiz.ListQuizzes(ctx.Param("subjectId"), ctx.Param("topicId"), ctx.Query("subtopicTitle"))
	if err != nil {
		if !writeContentNotFound(ctx, err) {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, gin.H{"total": len(quizzes), "quizzes": quizzes})
}

// swagger:model SubmitQuizRequest
type SubmitQuizRequest struct {
	Answers       map[string]int `json:"answers" binding:"required"`
	SubtopicTitle string         `json:"subtopicTitle"`
}

// SubmitQuiz godoc
// @Summary 提交测验答案
// @Description 每个用户每个 quiz 只能提交一次；重复提交返回 409 和之前的成绩。
// @Tags 测验
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param subjectId path string true "materia ID"
// @Param topicId path string true "tema ID"
// @Param quizId path string true "quiz 引用（子主题 id 或 {temaId}_subtema_{N}）"
// @Param body body SubmitQuizRequest true "答案：题目 id → 选项下标"
// @Success 200 {object} util.Response "correctCount/total/percentage/detail/attemptId"
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response "materia/tema/subtema 不存在"
// @Failure 409 {object} util.Response "已提交过，data 为之前的尝试"
// @Router /api/subjects/{subjectId}/topics/{topicId}/quizzes/{quizId}/submit [post]
func (c *QuizController) SubmitQuiz(ctx *gin.Context) {
	var req SubmitQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "answers es obligatorio y debe ser objeto")
		return
	}

	result, err := c.Quiz.Submit(service.SubmitRequest{
		SubjectID:     ctx.Param("subjectId"),
		TopicID:       ctx.Param("topicId"),
		QuizID:        ctx.Param("quizId"),
		SubtopicTitle: req.SubtopicTitle,
		Answers:       req.Answers,
		User:          util.GetUserFromContext(ctx),
	})
	if err != nil {
		var already *util.AlreadySubmittedError
		switch {
		case errors.As(err, &already):
			util.Conflict(ctx, "Ya existe un intento para este quiz por este usuario", gin.H{
				"priorAttempt": already.Existing,
			})
		case errors.Is(err, util.ErrAnswersRequired), errors.Is(err, util.ErrScopeRequired):
			util.BadRequest(ctx, err.Error())
		case errors.Is(err, util.ErrNoUsableIdentity):
			util.Unauthorized(ctx)
		case writeContentNotFound(ctx, err):
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, result)
}
