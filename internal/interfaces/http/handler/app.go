// Package handler 提供 HTTP 请求处理器
package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	appsvc "z-appgen-ai-api/internal/application/app"
	"z-appgen-ai-api/internal/application/codegen"
	"z-appgen-ai-api/internal/interfaces/http/dto"
)

// AppHandler 应用处理器
type AppHandler struct {
	appService *appsvc.Service
}

// NewAppHandler 创建应用处理器
func NewAppHandler(appService *appsvc.Service) *AppHandler {
	return &AppHandler{appService: appService}
}

// Create 创建应用
// @Summary 创建应用
// @Description 根据初始提示词创建应用，未指定生成类型时由模型路由判定
// @Tags Apps
// @Accept json
// @Produce json
// @Param body body dto.CreateAppRequest true "创建信息"
// @Success 201 {object} dto.Response[dto.AppResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/apps [post]
func (h *AppHandler) Create(c *gin.Context) {
	var req dto.CreateAppRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	app, err := h.appService.Create(c.Request.Context(), currentUserID(c), req.InitPrompt, req.CodeGenType)
	if err != nil {
		respondError(c, err)
		return
	}
	dto.Created(c, dto.FromApp(app))
}

// Get 获取应用详情
// @Summary 获取应用详情
// @Tags Apps
// @Produce json
// @Param id path string true "应用 ID"
// @Success 200 {object} dto.Response[dto.AppResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/apps/{id} [get]
func (h *AppHandler) Get(c *gin.Context) {
	app, err := h.appService.Get(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	dto.Success(c, dto.FromApp(app))
}

// ListMine 当前用户的应用列表
// @Summary 当前用户的应用列表
// @Tags Apps
// @Produce json
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} dto.Response[[]dto.AppResponse]
// @Router /v1/apps [get]
func (h *AppHandler) ListMine(c *gin.Context) {
	var q dto.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		dto.BadRequest(c, "invalid query: "+err.Error())
		return
	}

	result, err := h.appService.ListMine(c.Request.Context(), currentUserID(c), q.Page, q.PageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	dto.SuccessWithPage(c, dto.FromApps(result.Items), dto.NewPageMeta(result.Page, result.PageSize, int(result.Total)))
}

// ListFeatured 精选应用列表
// @Summary 精选应用列表
// @Tags Apps
// @Produce json
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} dto.Response[[]dto.AppResponse]
// @Router /v1/apps/featured [get]
func (h *AppHandler) ListFeatured(c *gin.Context) {
	var q dto.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		dto.BadRequest(c, "invalid query: "+err.Error())
		return
	}

	result, err := h.appService.ListFeatured(c.Request.Context(), q.Page, q.PageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	dto.SuccessWithPage(c, dto.FromApps(result.Items), dto.NewPageMeta(result.Page, result.PageSize, int(result.Total)))
}

// UpdateName 更新应用名称
// @Summary 更新应用名称
// @Tags Apps
// @Accept json
// @Produce json
// @Param id path string true "应用 ID"
// @Param body body dto.UpdateAppNameRequest true "应用名称"
// @Success 200 {object} dto.Response[dto.AppResponse]
// @Failure 403 {object} dto.ErrorResponse
// @Router /v1/apps/{id}/name [put]
func (h *AppHandler) UpdateName(c *gin.Context) {
	var req dto.UpdateAppNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	app, err := h.appService.UpdateName(c.Request.Context(), currentUserID(c), c.Param("id"), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	dto.Success(c, dto.FromApp(app))
}

// Delete 删除应用
// @Summary 删除应用及其全部对话历史
// @Tags Apps
// @Param id path string true "应用 ID"
// @Success 204 "no content"
// @Failure 403 {object} dto.ErrorResponse
// @Router /v1/apps/{id} [delete]
func (h *AppHandler) Delete(c *gin.Context) {
	if err := h.appService.Delete(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	dto.NoContent(c)
}

// chatOutcome 对话生成的最终结果
type chatOutcome struct {
	result *codegen.StreamResult
	err    error
}

// Chat 对话式生成（SSE）
// @Summary 对话式生成
// @Description 通过 SSE 流式返回生成过程，content 事件携带分块 JSON，结束时发送 done 或 error 事件
// @Tags Apps
// @Produce text/event-stream
// @Param id path string true "应用 ID"
// @Param message query string true "用户消息"
// @Success 200 "SSE stream"
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/apps/{id}/chat [get]
func (h *AppHandler) Chat(c *gin.Context) {
	message := c.Query("message")
	if message == "" {
		dto.BadRequest(c, "message is required")
		return
	}
	appID := c.Param("id")
	userID := currentUserID(c)

	// 设置 SSE 响应头
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	chunkChan := make(chan json.RawMessage, 16)
	doneChan := make(chan chatOutcome, 1)

	reqCtx := c.Request.Context()
	go func() {
		defer close(chunkChan)
		result, err := h.appService.ChatToGenCode(reqCtx, userID, appID, message, func(chunk []byte) error {
			buf := make(json.RawMessage, len(chunk))
			copy(buf, chunk)
			select {
			case chunkChan <- buf:
				return nil
			case <-reqCtx.Done():
				return reqCtx.Err()
			}
		})
		doneChan <- chatOutcome{result: result, err: err}
	}()

	index := 0
	c.Stream(func(w io.Writer) bool {
		select {
		case chunk, ok := <-chunkChan:
			if !ok {
				// 生成结束，发送终止事件
				out := <-doneChan
				if out.err != nil {
					c.SSEvent("error", gin.H{"message": out.err.Error()})
					return false
				}
				if out.result != nil && out.result.Err != nil {
					c.SSEvent("error", gin.H{"message": out.result.Err.Error()})
					return false
				}
				done := gin.H{"chunks": index}
				if out.result != nil && out.result.SavedDir != "" {
					done["saved"] = true
				}
				c.SSEvent("done", done)
				return false
			}
			c.SSEvent("content", chunk)
			index++
			return true

		case <-reqCtx.Done():
			// 客户端断开，后台继续消费直到持久化完成
			return false
		}
	})
}

// InitialGenerate 首次生成
// @Summary 执行完整生成工作流
// @Description 按应用的初始提示词执行 路由->生成->素材收集->质量检查 工作流
// @Tags Apps
// @Produce json
// @Param id path string true "应用 ID"
// @Success 200 {object} dto.Response[dto.GenerateResultResponse]
// @Failure 403 {object} dto.ErrorResponse
// @Router /v1/apps/{id}/generate [post]
func (h *AppHandler) InitialGenerate(c *gin.Context) {
	out, err := h.appService.InitialGenerate(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := &dto.GenerateResultResponse{
		App:          dto.FromApp(out.App),
		RouteReason:  out.RouteReason,
		GeneratedDir: out.GeneratedDir,
		Error:        out.GenerateError,
	}
	if out.Quality != nil {
		resp.Quality = map[string]interface{}{
			"checked":     out.Quality.Checked,
			"passed":      out.Quality.Passed,
			"issues":      out.Quality.Issues,
			"suggestions": out.Quality.Suggestions,
		}
	}
	dto.Success(c, resp)
}

// Deploy 部署应用
// @Summary 部署应用
// @Description 把生成产物发布到部署目录，重复部署沿用原部署标识
// @Tags Apps
// @Produce json
// @Param id path string true "应用 ID"
// @Success 200 {object} dto.Response[dto.DeployResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/apps/{id}/deploy [post]
func (h *AppHandler) Deploy(c *gin.Context) {
	result, err := h.appService.Deploy(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	dto.Success(c, &dto.DeployResponse{DeployKey: result.DeployKey, URL: result.URL})
}

// Download 下载生成产物
// @Summary 下载生成产物 zip 包
// @Tags Apps
// @Produce application/zip
// @Param id path string true "应用 ID"
// @Success 200 "zip archive"
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/apps/{id}/download [get]
func (h *AppHandler) Download(c *gin.Context) {
	var buf bytes.Buffer
	filename, err := h.appService.WriteArchive(c.Request.Context(), currentUserID(c), c.Param("id"), &buf)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/zip", buf.Bytes())
}

// ListHistory 查询对话历史
// @Summary 游标分页查询对话历史
// @Description 按创建时间倒序返回，before 传上一页的 next_cursor
// @Tags Apps
// @Produce json
// @Param id path string true "应用 ID"
// @Param before query string false "游标时间（RFC3339）"
// @Param limit query int false "数量上限"
// @Success 200 {object} dto.Response[dto.ChatHistoryListResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/apps/{id}/history [get]
func (h *AppHandler) ListHistory(c *gin.Context) {
	var before *time.Time
	if raw := c.Query("before"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			dto.BadRequest(c, "invalid before cursor: "+err.Error())
			return
		}
		before = &t
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			dto.BadRequest(c, "invalid limit")
			return
		}
		limit = n
	}

	records, err := h.appService.ListHistory(c.Request.Context(), currentUserID(c), c.Param("id"), before, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	dto.Success(c, dto.ToChatHistoryListResponse(records, limit))
}
