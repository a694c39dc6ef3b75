package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ariane/internal/entity"
	"github.com/ariane/internal/service"
)

// ListStories 获取当前用户的故事列表
func (a *API) ListStories(c *gin.Context) {
	userID, ok := requireSelf(c)
	if !ok {
		return
	}

	stories, err := a.stories.ListByUser(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err, "获取故事列表失败")
		return
	}
	c.JSON(http.StatusOK, stories)
}

// CreateStory 创建故事
func (a *API) CreateStory(c *gin.Context) {
	userID, ok := requireSelf(c)
	if !ok {
		return
	}

	var req service.StoryInput
	if !bindJSON(c, &req, "故事信息格式错误") {
		return
	}

	story, err := a.stories.Create(c.Request.Context(), userID, req)
	if err != nil {
		respondServiceError(c, err, "创建故事失败")
		return
	}
	c.JSON(http.StatusCreated, story)
}

// GetStory 获取故事
func (a *API) GetStory(c *gin.Context) {
	story, ok := a.ownedStory(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, story)
}

// UpdateStory 更新故事标题和简介
func (a *API) UpdateStory(c *gin.Context) {
	userID, ok := requireSelf(c)
	if !ok {
		return
	}

	var req service.StoryInput
	if !bindJSON(c, &req, "故事信息格式错误") {
		return
	}

	story, err := a.stories.Update(c.Request.Context(), userID, c.Param("storyId"), req)
	if err != nil {
		respondServiceError(c, err, "更新故事失败")
		return
	}
	c.JSON(http.StatusOK, story)
}

// DeleteStory 删除故事记录；页面与选项需通过各自的接口删除。
func (a *API) DeleteStory(c *gin.Context) {
	userID, ok := requireSelf(c)
	if !ok {
		return
	}

	if err := a.stories.Delete(c.Request.Context(), userID, c.Param("storyId")); err != nil {
		respondServiceError(c, err, "删除故事失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "故事已删除"})
}

// GetFullStory 返回故事及其全部页面和选项。
func (a *API) GetFullStory(c *gin.Context) {
	story, ok := a.ownedStory(c)
	if !ok {
		return
	}

	full, err := a.graphs.FullStory(c.Request.Context(), story.ID)
	if err != nil {
		respondServiceError(c, err, "获取完整故事失败")
		return
	}
	c.JSON(http.StatusOK, full)
}

// RenderStoryPDF 把故事渲染为 PDF 小册子。
func (a *API) RenderStoryPDF(c *gin.Context) {
	story, ok := a.ownedStory(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := a.booklets.Render(c.Request.Context(), story.ID, &buf); err != nil {
		respondServiceError(c, err, "生成 PDF 失败")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="story-%s.pdf"`, story.ID))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// ExportStory 导出故事归档。
func (a *API) ExportStory(c *gin.Context) {
	story, ok := a.ownedStory(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := a.archives.Export(c.Request.Context(), story.ID, &buf); err != nil {
		respondServiceError(c, err, "导出故事失败")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="story-%s.zip"`, story.ID))
	c.Data(http.StatusOK, "application/zip", buf.Bytes())
}

// ImportStory 从上传的归档创建新故事。
func (a *API) ImportStory(c *gin.Context) {
	userID, ok := requireSelf(c)
	if !ok {
		return
	}

	data, ok := readUpload(c, "archive")
	if !ok {
		return
	}

	result, err := a.archives.Import(c.Request.Context(), userID, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		respondServiceError(c, err, "导入故事失败")
		return
	}
	c.JSON(http.StatusCreated, result)
}

// UploadStoryCover 上传封面图片。
func (a *API) UploadStoryCover(c *gin.Context) {
	userID, ok := requireSelf(c)
	if !ok {
		return
	}

	data, ok := readUpload(c, "image")
	if !ok {
		return
	}

	story, err := a.stories.SetCover(c.Request.Context(), userID, c.Param("storyId"), data)
	if err != nil {
		respondServiceError(c, err, "上传封面失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"story": story, "url": a.assets.URL(entity.StringValue(story.Cover))})
}

// RefreshStoryStats 重新计算故事统计。
func (a *API) RefreshStoryStats(c *gin.Context) {
	userID, ok := requireSelf(c)
	if !ok {
		return
	}

	story, err := a.stories.RefreshStats(c.Request.Context(), userID, c.Param("storyId"))
	if err != nil {
		respondServiceError(c, err, "更新统计失败")
		return
	}
	c.JSON(http.StatusOK, story)
}

func (a *API) ownedStory(c *gin.Context) (*entity.Story, bool) {
	userID, ok := requireSelf(c)
	if !ok {
		return nil, false
	}

	story, err := a.stories.Get(c.Request.Context(), userID, c.Param("storyId"))
	if err != nil {
		respondServiceError(c, err, "获取故事失败")
		return nil, false
	}
	return story, true
}

// authorizeStory 确认 storyID 属于令牌持有者，供页面与选项接口使用。
func (a *API) authorizeStory(c *gin.Context, storyID string) bool {
	if _, err := a.stories.Get(c.Request.Context(), currentUser(c), storyID); err != nil {
		a.log.Debug("story access denied", zap.String("story_id", storyID), zap.Error(err))
		respondServiceError(c, err, "获取故事失败")
		return false
	}
	return true
}
