package controller

import (
	"errors"

	"mentorprog_backend/internal/model"
	"mentorprog_backend/internal/service"
	"mentorprog_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type TopicController struct {
	Content *service.ContentService
}

func NewTopicController(content *service.ContentService) *TopicController {
	return &TopicController{Content: content}
}

func writeContentNotFound(ctx *gin.Context, err error) bool {
	switch {
	case errors.Is(err, util.ErrSubjectNotFound):
		util.NotFoundMessage(ctx, "Materia no encontrada")
	case errors.Is(err, util.ErrTopicNotFound):
		util.NotFoundMessage(ctx, "Tema no encontrado")
	case errors.Is(err, util.ErrSubtopicNotFound):
		util.NotFoundMessage(ctx, "No se encontró el subtema para este quiz")
	default:
		return false
	}
	return true
}

// swagger:model CreateTopicRequest
type CreateTopicRequest struct {
	Title       string           `json:"title" binding:"required"`
	Description string           `json:"description"`
	Order       int              `json:"order"`
	Subtopics   []model.Subtopic `json:"subtopics"`
}

// CreateTopic godoc
// @Summary 在 materia 下创建 tema（子主题树内嵌在文档里）
// @Tags 课程内容
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param subjectId path string true "materia ID"
// @Param body body CreateTopicRequest true "tema 信息"
// @Success 201 {object} util.Response{data=model.Topic}
// @Router /api/subjects/{subjectId}/topics [post]
func (c *TopicController) CreateTopic(ctx *gin.Context) {
	var req CreateTopicRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	topic := &model.Topic{
		Title:       req.Title,
		Description: req.Description,
		Order:       req.Order,
		Subtopics:   req.Subtopics,
	}
	if err := c.Content.CreateTopic(ctx.Param("subjectId"), topic); err != nil {
		if !writeContentNotFound(ctx, err) {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, topic)
}

// ListTopics godoc
// @Summary 列出 materia 下的 temas
// @Tags 课程内容
// @Produce json
// @Security ApiKeyAuth
// @Param subjectId path string true "materia ID"
// @Success 200 {object} util.Response{data=[]model.Topic}
// @Router /api/subjects/{subjectId}/topics [get]
func (c *TopicController) ListTopics(ctx *gin.Context) {
	topics, err := c.Content.ListTopics(ctx.Param("subjectId"))
	if err != nil {
		if !writeContentNotFound(ctx, err) {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, topics)
}

// GetTopic godoc
// @Summary tema 详情（整个文档，含子主题树）
// @Tags 课程内容
// @Produce json
// @Security ApiKeyAuth
// @Param subjectId path string true "materia ID"
// @Param topicId path string true "tema ID"
// @Success 200 {object} util.Response{data=model.Topic}
// @Failure 404 {object} util.Response
// @Router /api/subjects/{subjectId}/topics/{topicId} [get]
func (c *TopicController) GetTopic(ctx *gin.Context) {
	topic, err := c.Content.FindForSubject(ctx.Param("subjectId"), ctx.Param("topicId"))
	if err != nil {
		if !writeContentNotFound(ctx, err) {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, topic)
}

type UpdateTopicRequest struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Order       *int             `json:"order"`
	Subtopics   []model.Subtopic `json:"subtopics"`
}

// UpdateTopic godoc
// @Summary 更新 tema（文档整体写回）
// @Tags 课程内容
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param subjectId path string true "materia ID"
// @Param topicId path string true "tema ID"
// @Param body body UpdateTopicRequest true "变更字段"
// @Success 200 {object} util.Response{data=model.Topic}
// @Router /api/subjects/{subjectId}/topics/{topicId} [put]
func (c *TopicController) UpdateTopic(ctx *gin.Context) {
	var req UpdateTopicRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	topic, err := c.Content.UpdateTopic(ctx.Param("subjectId"), ctx.Param("topicId"),
		req.Title, req.Description, req.Order, req.Subtopics)
	if err != nil {
		if !writeContentNotFound(ctx, err) {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, topic)
}

// DeleteTopic godoc
// @Summary 删除 tema
// @Tags 课程内容
// @Produce json
// @Security ApiKeyAuth
// @Param subjectId path string true "materia ID"
// @Param topicId path string true "tema ID"
// @Success 200 {object} util.Response
// @Router /api/subjects/{subjectId}/topics/{topicId} [delete]
func (c *TopicController) DeleteTopic(ctx *gin.Context) {
	if err := c.Content.DeleteTopic(ctx.Param("subjectId"), ctx.Param("topicId")); err != nil {
		if !writeContentNotFound(ctx, err) {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, gin.H{"deleted": true})
}
