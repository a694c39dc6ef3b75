package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ariane/internal/entity"
	"github.com/ariane/internal/service"
)

// ListPages 返回故事的页面，每个页面附带发出的选项和到达标题。
func (a *API) ListPages(c *gin.Context) {
	storyID := c.Param("storyId")
	if !a.authorizeStory(c, storyID) {
		return
	}

	pages, err := a.graphs.Pages(c.Request.Context(), storyID)
	if err != nil {
		respondServiceError(c, err, "获取页面列表失败")
		return
	}
	c.JSON(http.StatusOK, pages)
}

// CreatePage 在故事中新建页面
func (a *API) CreatePage(c *gin.Context) {
	storyID := c.Param("storyId")
	if !a.authorizeStory(c, storyID) {
		return
	}

	var req service.PageInput
	if !bindJSON(c, &req, "页面信息格式错误") {
		return
	}

	page, err := a.pages.Create(c.Request.Context(), storyID, req)
	if err != nil {
		respondServiceError(c, err, "创建页面失败")
		return
	}
	c.JSON(http.StatusCreated, page)
}

// DeletePages 删除故事的全部页面及其选项。
func (a *API) DeletePages(c *gin.Context) {
	storyID := c.Param("storyId")
	if !a.authorizeStory(c, storyID) {
		return
	}

	deleted, err := a.pages.DeleteByStory(c.Request.Context(), storyID)
	if err != nil {
		respondServiceError(c, err, "删除页面失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// GetPage 获取单个页面
func (a *API) GetPage(c *gin.Context) {
	page, ok := a.ownedPage(c, c.Param("pageId"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, page)
}

// UpdatePage 更新页面
func (a *API) UpdatePage(c *gin.Context) {
	page, ok := a.ownedPage(c, c.Param("pageId"))
	if !ok {
		return
	}

	var req service.PageInput
	if !bindJSON(c, &req, "页面信息格式错误") {
		return
	}

	updated, err := a.pages.Update(c.Request.Context(), page.ID, req)
	if err != nil {
		respondServiceError(c, err, "更新页面失败")
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeletePage 删除页面及其发出的选项。
func (a *API) DeletePage(c *gin.Context) {
	page, ok := a.ownedPage(c, c.Param("pageId"))
	if !ok {
		return
	}

	if err := a.pages.Delete(c.Request.Context(), page.ID); err != nil {
		respondServiceError(c, err, "删除页面失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "页面已删除"})
}

// UploadPageImage 上传页面插图。
func (a *API) UploadPageImage(c *gin.Context) {
	page, ok := a.ownedPage(c, c.Param("pageId"))
	if !ok {
		return
	}

	data, ok := readUpload(c, "image")
	if !ok {
		return
	}

	updated, err := a.pages.SetImage(c.Request.Context(), page.ID, data)
	if err != nil {
		respondServiceError(c, err, "上传图片失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"page": updated, "url": a.assets.URL(entity.StringValue(updated.Image))})
}

// PreviewPage 将正文按 Markdown 渲染为 HTML 预览。
func (a *API) PreviewPage(c *gin.Context) {
	page, ok := a.ownedPage(c, c.Param("pageId"))
	if !ok {
		return
	}

	rendered, err := renderMarkdown(page.Text)
	if err != nil {
		respondServiceError(c, err, "渲染预览失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": page.ID, "title": page.Title, "html": rendered})
}

func (a *API) ownedPage(c *gin.Context, pageID string) (*entity.Page, bool) {
	page, err := a.pages.Get(c.Request.Context(), pageID)
	if err != nil {
		respondServiceError(c, err, "获取页面失败")
		return nil, false
	}
	if !a.authorizeStory(c, page.StoryID) {
		return nil, false
	}
	return page, true
}
