package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ariane/internal/entity"
	"github.com/ariane/internal/service"
)

// ListChoices 获取页面发出的选项
func (a *API) ListChoices(c *gin.Context) {
	page, ok := a.ownedPage(c, c.Param("pageId"))
	if !ok {
		return
	}

	choices, err := a.choices.ListByPage(c.Request.Context(), page.ID)
	if err != nil {
		respondServiceError(c, err, "获取选项列表失败")
		return
	}
	c.JSON(http.StatusOK, choices)
}

// CreateChoice 为页面新增选项
func (a *API) CreateChoice(c *gin.Context) {
	page, ok := a.ownedPage(c, c.Param("pageId"))
	if !ok {
		return
	}

	var req service.ChoiceInput
	if !bindJSON(c, &req, "选项信息格式错误") {
		return
	}

	choice, err := a.choices.Create(c.Request.Context(), page.ID, req)
	if err != nil {
		respondServiceError(c, err, "创建选项失败")
		return
	}
	c.JSON(http.StatusCreated, choice)
}

// DeleteChoices 删除页面的全部选项
func (a *API) DeleteChoices(c *gin.Context) {
	page, ok := a.ownedPage(c, c.Param("pageId"))
	if !ok {
		return
	}

	deleted, err := a.choices.DeleteByPage(c.Request.Context(), page.ID)
	if err != nil {
		respondServiceError(c, err, "删除选项失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// GetChoice 获取单个选项
func (a *API) GetChoice(c *gin.Context) {
	choice, ok := a.ownedChoice(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, choice)
}

// UpdateChoice 更新选项标题或目标页面
func (a *API) UpdateChoice(c *gin.Context) {
	choice, ok := a.ownedChoice(c)
	if !ok {
		return
	}

	var req service.ChoiceInput
	if !bindJSON(c, &req, "选项信息格式错误") {
		return
	}

	updated, err := a.choices.Update(c.Request.Context(), choice.ID, req)
	if err != nil {
		respondServiceError(c, err, "更新选项失败")
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteChoice 删除选项
func (a *API) DeleteChoice(c *gin.Context) {
	choice, ok := a.ownedChoice(c)
	if !ok {
		return
	}

	if err := a.choices.Delete(c.Request.Context(), choice.ID); err != nil {
		respondServiceError(c, err, "删除选项失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "选项已删除"})
}

// GetChoiceSendTo 返回指向该页面的选项。
func (a *API) GetChoiceSendTo(c *gin.Context) {
	page, ok := a.ownedPage(c, c.Param("sendToPageId"))
	if !ok {
		return
	}

	choice, err := a.choices.GetBySendTo(c.Request.Context(), page.ID)
	if err != nil {
		respondServiceError(c, err, "获取选项失败")
		return
	}
	c.JSON(http.StatusOK, choice)
}

func (a *API) ownedChoice(c *gin.Context) (*entity.Choice, bool) {
	choice, err := a.choices.Get(c.Request.Context(), c.Param("choiceId"))
	if err != nil {
		respondServiceError(c, err, "获取选项失败")
		return nil, false
	}
	if _, ok := a.ownedPage(c, choice.PageID); !ok {
		return nil, false
	}
	return choice, true
}
