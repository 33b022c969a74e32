package controller

import (
	"errors"

	"mentorprog_backend/internal/model"
	"mentorprog_backend/internal/service"
	"mentorprog_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SubjectController struct {
	Content *service.ContentService
}

func NewSubjectController(content *service.ContentService) *SubjectController {
	return &SubjectController{Content: content}
}

// swagger:model CreateSubjectRequest
type CreateSubjectRequest struct {
	ID          string `json:"id" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Program     string `json:"program"`
	Description string `json:"description"`
}

// CreateSubject godoc
// @Summary 创建 materia（课程代号由创建者指定，创建后不可变）
// @Tags 课程内容
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body CreateSubjectRequest true "materia 信息"
// @Success 201 {object} util.Response{data=model.Subject}
// @Failure 409 {object} util.Response "id 已被占用"
// @Router /api/subjects [post]
func (c *SubjectController) CreateSubject(ctx *gin.Context) {
	var req CreateSubjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	subject := &model.Subject{
		ID:          req.ID,
		Name:        req.Name,
		Program:     req.Program,
		Description: req.Description,
	}
	if err := c.Content.CreateSubject(subject); err != nil {
		if errors.Is(err, util.ErrSubjectExists) {
			util.Error(ctx, 409, "Ya existe una materia con ese id")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, subject)
}

// ListSubjects godoc
// @Summary 列出所有 materias
// @Tags 课程内容
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Subject}
// @Router /api/subjects [get]
func (c *SubjectController) ListSubjects(ctx *gin.Context) {
	subjects, err := c.Content.ListSubjects()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, subjects)
}

// GetSubject godoc
// @Summary materia 详情
// @Tags 课程内容
// @Produce json
// @Security ApiKeyAuth
// @Param subjectId path string true "materia ID"
// @Success 200 {object} util.Response{data=model.Subject}
// @Failure 404 {object} util.Response
// @Router /api/subjects/{subjectId} [get]
func (c *SubjectController) GetSubject(ctx *gin.Context) {
	subject, err := c.Content.GetSubject(ctx.Param("subjectId"))
	if err != nil {
		if errors.Is(err, util.ErrSubjectNotFound) {
			util.NotFoundMessage(ctx, "Materia no encontrada")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, subject)
}

type UpdateSubjectRequest struct {
	Name        *string `json:"name"`
	Program     *string `json:"program"`
	Description *string `json:"description"`
}

// UpdateSubject godoc
// @Summary 更新 materia（id 不可变）
// @Tags 课程内容
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param subjectId path string true "materia ID"
// @Param body body UpdateSubjectRequest true "变更字段"
// @Success 200 {object} util.Response{data=model.Subject}
// @Router /api/subjects/{subjectId} [put]
func (c *SubjectController) UpdateSubject(ctx *gin.Context) {
	var req UpdateSubjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	subject, err := c.Content.UpdateSubject(ctx.Param("subjectId"), req.Name, req.Program, req.Description)
	if err != nil {
		if errors.Is(err, util.ErrSubjectNotFound) {
			util.NotFoundMessage(ctx, "Materia no encontrada")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, subject)
}

// DeleteSubject godoc
// @Summary 删除 materia
// @Tags 课程内容
// @Produce json
// @Security ApiKeyAuth
// @Param subjectId path string true "materia ID"
// @Success 200 {object} util.Response
// @Router /api/subjects/{subjectId} [delete]
func (c *SubjectController) DeleteSubject(ctx *gin.Context) {
	if err := c.Content.DeleteSubject(ctx.Param("subjectId")); err != nil {
		if errors.Is(err, util.ErrSubjectNotFound) {
			util.NotFoundMessage(ctx, "Materia no encontrada")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, gin.H{"deleted": true})
}
